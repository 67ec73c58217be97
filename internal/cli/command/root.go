package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/wirecache/wirecache/internal/cli/client"
	"github.com/wirecache/wirecache/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "wirecache-cli",
		Usage:   "wirecache command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SetCommand(),
			GetCommand(),
			GetSetCommand(),
			StrLenCommand(),
			ExistsCommand(),
			DelCommand(),
			PingCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "server address",
			EnvVars: []string{"WIRECACHE_SERVER"},
			Value:   "localhost:6379",
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "dial and request timeout",
			Value:   client.DefaultTimeout,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "print request timing",
		},
	}
}

// connect opens a client for the addressed server.
func connect(c *cli.Context) (*client.Client, error) {
	return client.Dial(c.String("server"), c.Duration("timeout"))
}

// run dials, executes one request and prints the reply.
func run(c *cli.Context, args ...string) error {
	cl, err := connect(c)
	if err != nil {
		return err
	}
	defer cl.Close()

	start := time.Now()
	reply, err := cl.Do(args...)
	if err != nil {
		return err
	}

	out, err := formatReply(reply)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)

	if c.Bool("verbose") {
		fmt.Fprintf(c.App.Writer, "(%.2fms)\n", float64(time.Since(start).Microseconds())/1000.0)
	}
	return nil
}
