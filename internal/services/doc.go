// Package services implements the business logic layer of the inventory
// dashboard. It sits between the HTTP handlers and the inventory engine.
//
// # Architecture
//
// InventoryService owns the dataset currently served. Datasets are immutable
// snapshots held behind an atomic pointer: a successful load swaps the whole
// snapshot, readers take one snapshot per call, and a failed load leaves the
// previous snapshot in place.
//
// Listeners registered with Subscribe are told about every swap. The
// WebSocket hub is one of them, through WebSocketDatasetListener.
//
// HealthService reports liveness, readiness (a dataset is loaded) and version.
//
// # Usage
//
//	parser := inventory.NewParser(logger, inventory.DefaultParserConfig())
//	svc := services.NewInventoryService(parser, logger)
//	if _, err := svc.LoadSample(ctx); err != nil {
//	    return err
//	}
//	report, err := svc.Summary(ctx, "")
package services
