package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "IT Inventory Dashboard"
	AppVersion = "1.0.0"

	// Configuration sources
	EnvPrefix     = "INVENTORY"
	ConfigFileEnv = "INVENTORY_CONFIG"

	// Dataset defaults
	DefaultHeaderRows     = 1
	DefaultDelimiter      = ","
	DefaultMaxUploadBytes = 10 << 20

	// Rate Limiting
	DefaultRateLimit = 10 // upload requests per second
	DefaultBurstSize = 20

	// Network Timeouts
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	WebSocketPingPeriod    = 30 * time.Second
	WebSocketPongWait      = 60 * time.Second

	// File Paths
	DefaultLogFile = "logs/app.log"
)

// Supported legacy encodings for non UTF-8 uploads
var LegacyEncodings = []string{"windows-874", "cp874", "tis-620"}
