package command

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/wirecache/wirecache/internal/proto"
)

// SetCommand stores a value under a key.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "store a value under a key",
		ArgsUsage: "KEY VALUE",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "ex",
				Usage: "expiry in seconds",
			},
			&cli.Uint64Flag{
				Name:  "px",
				Usage: "expiry in milliseconds",
			},
			&cli.BoolFlag{
				Name:  "nx",
				Usage: "only set if the key does not exist",
			},
			&cli.BoolFlag{
				Name:  "xx",
				Usage: "only set if the key already exists",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("set requires KEY and VALUE")
			}
			if c.IsSet("ex") && c.IsSet("px") {
				return errors.New("--ex and --px are mutually exclusive")
			}
			if c.Bool("nx") && c.Bool("xx") {
				return errors.New("--nx and --xx are mutually exclusive")
			}

			args := []string{"set", c.Args().Get(0), c.Args().Get(1)}
			if c.IsSet("ex") {
				args = append(args, "ex", strconv.FormatUint(c.Uint64("ex"), 10))
			} else if c.IsSet("px") {
				args = append(args, "px", strconv.FormatUint(c.Uint64("px"), 10))
			}
			if c.Bool("nx") {
				args = append(args, "nx")
			} else if c.Bool("xx") {
				args = append(args, "xx")
			}

			return run(c, args...)
		},
	}
}

// GetCommand retrieves the value stored under a key.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "retrieve the value stored under a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("get requires KEY")
			}
			return run(c, "get", c.Args().Get(0))
		},
	}
}

// GetSetCommand stores a value and prints the previous one.
func GetSetCommand() *cli.Command {
	return &cli.Command{
		Name:      "getset",
		Usage:     "store a value and print the previous one",
		ArgsUsage: "KEY VALUE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("getset requires KEY and VALUE")
			}
			return run(c, "getset", c.Args().Get(0), c.Args().Get(1))
		},
	}
}

// StrLenCommand prints the length of the value stored under a key.
func StrLenCommand() *cli.Command {
	return &cli.Command{
		Name:      "strlen",
		Usage:     "print the length of the value stored under a key",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("strlen requires KEY")
			}
			return run(c, "strlen", c.Args().Get(0))
		},
	}
}

// ExistsCommand reports whether a key is present.
func ExistsCommand() *cli.Command {
	return &cli.Command{
		Name:      "exists",
		Usage:     "report whether a key is present",
		ArgsUsage: "KEY",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("exists requires KEY")
			}
			return run(c, "exists", c.Args().Get(0))
		},
	}
}

// DelCommand removes keys.
func DelCommand() *cli.Command {
	return &cli.Command{
		Name:      "del",
		Usage:     "remove one or more keys",
		ArgsUsage: "KEY...",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("del requires at least one KEY")
			}
			return run(c, append([]string{"del"}, c.Args().Slice()...)...)
		},
	}
}

// PingCommand checks server liveness.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "check server liveness",
		ArgsUsage: "[MESSAGE]",
		Action: func(c *cli.Context) error {
			args := append([]string{"ping"}, c.Args().Slice()...)
			return run(c, args...)
		},
	}
}

// formatReply renders a reply value for terminal output.
func formatReply(v proto.Value) (string, error) {
	if v.IsNull() {
		return "(nil)", nil
	}

	switch v.Kind() {
	case proto.KindError:
		return "", errors.New(v.ErrorText())
	case proto.KindInteger:
		n, err := v.Int()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(integer) %d", n), nil
	case proto.KindArray:
		elems, err := v.Elements()
		if errors.Is(err, proto.ErrEmptyArray) {
			return "(empty array)", nil
		}
		if err != nil {
			return "", err
		}
		out := ""
		for i, e := range elems {
			s, err := formatReply(e)
			if err != nil {
				return "", err
			}
			if i > 0 {
				out += "\n"
			}
			out += fmt.Sprintf("%d) %s", i+1, s)
		}
		return out, nil
	default:
		s, err := v.Text()
		if err != nil {
			return "", err
		}
		return s, nil
	}
}
