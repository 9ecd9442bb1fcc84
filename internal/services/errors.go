package services

import "errors"

// Inventory service errors
var (
	// ErrNoDataset is returned by reads before the first successful load
	ErrNoDataset = errors.New("no dataset loaded")
)
