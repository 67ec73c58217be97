// Package command interprets decoded wire values as typed command
// requests.
//
// Parse expects a non-null, non-empty array whose first element names
// the command and validates the remaining elements against that
// command's argument grammar. Parsing is pure: the same value always
// yields the same Command (or the same error), and nothing is retained
// between calls.
package command
