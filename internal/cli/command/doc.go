// Package command provides CLI command definitions for wirecache-cli.
//
// It uses urfave/cli/v2 for command parsing. Every command opens a
// connection, runs one request and prints the reply.
package command
