package websocket

import (
	"time"

	"github.com/phetchalermchai/it-inventory/internal/config"
)

// Options tunes client buffering and keepalive
type Options struct {
	// Outbound messages buffered per client before it is dropped
	SendBuffer int

	// PingPeriod must be less than PongWait
	PingPeriod time.Duration
	PongWait   time.Duration
	WriteWait  time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		SendBuffer:     16,
		PingPeriod:     config.WebSocketPingPeriod,
		PongWait:       config.WebSocketPongWait,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 512,
	}
}

// OptionsFrom derives hub options from configuration
func OptionsFrom(cfg config.WebSocketConfig) Options {
	opts := DefaultOptions()
	if cfg.SendBuffer > 0 {
		opts.SendBuffer = cfg.SendBuffer
	}
	if cfg.PongWait > 0 {
		opts.PongWait = cfg.PongWait
	}
	if cfg.PingPeriod > 0 {
		opts.PingPeriod = cfg.PingPeriod
	}
	if opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}
	return opts
}
