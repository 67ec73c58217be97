// Package proto implements the RESP wire format used by wirecache.
//
// It provides a decoder that turns a raw byte buffer into an immutable
// Value tree plus the unconsumed remainder of the buffer, and an encoder
// for writing values back out. Both are pure functions of their input:
// no state is kept between calls, so they are safe to use concurrently
// on independent inputs.
//
// The decoder deliberately separates "the buffer does not yet hold a
// complete value" (ErrIncomplete) from structural protocol errors, so a
// streaming caller can keep reading on the former and hang up on the
// latter.
package proto
