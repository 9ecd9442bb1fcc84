// Package app wires the inventory dashboard together and runs it.
//
// # Initialization Flow
//
// NewApplication loads configuration and the global logger, then New builds
// the rest from an explicit configuration:
//
//	1. OpenTelemetry providers and business metrics
//	2. WebSocket hub, inventory parser and inventory service
//	3. HTTP router with middleware, API routes and the /ws endpoint
//	4. HTTP server
//
// Preload installs the startup dataset. A configured preload file is tried
// first; when it fails the bundled sample is served if sample loading is
// enabled.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// Run serves until SIGINT or SIGTERM. Serve accepts a listener and a context
// for callers that manage their own lifecycle, such as tests.
//
// # Graceful Shutdown
//
// Stop drains HTTP requests within the configured shutdown timeout, closes
// every WebSocket client and flushes telemetry. Initialization errors are
// returned to the caller; the package never calls os.Exit.
package app
