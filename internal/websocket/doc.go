// Package websocket pushes dashboard events to browser clients.
//
// A single Hub goroutine owns the client set. Each Client runs a read pump,
// which only keeps the connection alive, and a write pump fed by a bounded
// send buffer. A client whose buffer is full when a broadcast arrives is
// disconnected rather than allowed to stall the hub.
package websocket
