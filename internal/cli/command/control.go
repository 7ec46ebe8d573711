package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/supsim/internal/cli/connection"
	"github.com/yndnr/supsim/internal/cli/repl"
)

// control runs one control-socket command and renders its reply.
func control(c *cli.Context, line string) error {
	sock, err := socketClient(c)
	if err != nil {
		return err
	}
	defer sock.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	var data any
	if err := sock.Execute(ctx, line, &data); err != nil {
		return err
	}
	if data == nil {
		return render(c, map[string]string{"result": "ok"})
	}
	return render(c, data)
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "show uptime, store totals, gate state and settings",
		Action: func(c *cli.Context) error {
			return control(c, "status")
		},
	}
}

// GateCommand returns the gate subcommand group.
func GateCommand() *cli.Command {
	return &cli.Command{
		Name:  "gate",
		Usage: "inspect or toggle the snapshot creation gate",
		Action: func(c *cli.Context) error {
			return control(c, "gate")
		},
		Subcommands: []*cli.Command{
			{
				Name:  "status",
				Usage: "show whether the gate is held",
				Action: func(c *cli.Context) error {
					return control(c, "gate")
				},
			},
			{
				Name:  "toggle",
				Usage: "hold or release the outer lock to simulate a busy device",
				Action: func(c *cli.Context) error {
					return control(c, "gate toggle")
				},
			},
		},
	}
}

// TuneCommand returns the tune subcommand group.
func TuneCommand() *cli.Command {
	return &cli.Command{
		Name:  "tune",
		Usage: "change snapshot creation settings at runtime",
		Subcommands: []*cli.Command{
			{
				Name:      "size",
				Usage:     "set the archive size range in bytes",
				ArgsUsage: "MIN MAX",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 2, "MIN MAX"); err != nil {
						return err
					}
					return control(c, "size "+c.Args().Get(0)+" "+c.Args().Get(1))
				},
			},
			{
				Name:      "delay",
				Usage:     "set the simulated creation delay",
				ArgsUsage: "DURATION",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "DURATION"); err != nil {
						return err
					}
					return control(c, "delay "+c.Args().First())
				},
			},
		},
	}
}

// HACommand returns the Home Assistant inspection group.
func HACommand() *cli.Command {
	return &cli.Command{
		Name:  "ha",
		Usage: "inspect what add-ons sent to the Home Assistant echo endpoints",
		Subcommands: []*cli.Command{
			{
				Name:  "events",
				Usage: "list fired events",
				Action: func(c *cli.Context) error {
					return control(c, "events")
				},
			},
			{
				Name:      "entity",
				Usage:     "show one entity state",
				ArgsUsage: "ENTITY_ID",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1, "ENTITY_ID"); err != nil {
						return err
					}
					return control(c, "entity "+c.Args().First())
				},
			},
			{
				Name:  "clear",
				Usage: "forget all entity states",
				Action: func(c *cli.Context) error {
					return control(c, "entities clear")
				},
			},
			{
				Name:  "notification",
				Usage: "show the current persistent notification",
				Action: func(c *cli.Context) error {
					return control(c, "notification")
				},
			},
		},
	}
}

// ShellCommand returns the interactive control shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive control-socket shell",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-history", Usage: "do not read or write ~/.supsim/history"},
		},
		Action: func(c *cli.Context) error {
			sock, err := socketClient(c)
			if err != nil {
				return err
			}
			defer sock.Close()

			history := repl.NewHistory(repl.DefaultHistoryFile())
			if c.Bool("no-history") {
				history = repl.NewHistory("")
			}
			in := c.App.Reader
			if in == nil {
				in = os.Stdin
			}
			return repl.New(in, c.App.Writer, shellExecutor(c, sock), history).Run(c.Context)
		},
	}
}

// shellExecutor renders each reply as indented JSON.
func shellExecutor(c *cli.Context, sock *connection.SocketClient) repl.Executor {
	return func(ctx context.Context, line string) (string, error) {
		if timeout := c.Duration("timeout"); timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		var data any
		if err := sock.Execute(ctx, line, &data); err != nil {
			return "", err
		}
		if data == nil {
			return "ok", nil
		}
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("format reply: %w", err)
		}
		return strings.TrimSpace(string(out)), nil
	}
}
