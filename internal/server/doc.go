// Package server provides the wire-protocol TCP server.
//
// Each client connection gets its own goroutine. Incoming bytes are
// accumulated per connection and decoded frame by frame; complete
// frames are interpreted as commands and executed against the storage
// engine. Pipelined requests are answered in order.
package server
