package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/supsim/internal/cli/config"
	"github.com/yndnr/supsim/internal/cli/connection"
	"github.com/yndnr/supsim/internal/cli/output"
	"github.com/yndnr/supsim/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "supsim-cli",
		Usage:                "drive a simulated Home Assistant supervisor",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Before:               applyProfile,
		Commands: []*cli.Command{
			SnapshotCommand(),
			AddonCommand(),
			StatusCommand(),
			GateCommand(),
			TuneCommand(),
			HACommand(),
			ShellCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI profile file",
			EnvVars: []string{"SUPSIM_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "supervisor API address",
			EnvVars: []string{"SUPSIM_SERVER"},
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "shared secret sent as X-Supervisor-Token",
			EnvVars: []string{"SUPSIM_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "control socket path",
			EnvVars: []string{"SUPSIM_SOCKET"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show more columns",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout (archive transfers excluded)",
			Value: 30 * time.Second,
		},
	}
}

// applyProfile fills the connection flags the user left unset from the
// profile file.
func applyProfile(c *cli.Context) error {
	profile, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	defaults := map[string]string{
		"server": profile.Server,
		"token":  profile.Token,
		"socket": profile.Socket,
		"output": profile.Output,
	}
	for name, value := range defaults {
		if c.IsSet(name) || value == "" {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlags are the resolved global flags.
type GlobalFlags struct {
	Server  string
	Token   string
	Socket  string
	Output  output.Format
	Wide    bool
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Token:   c.String("token"),
		Socket:  c.String("socket"),
		Output:  format,
		Wide:    c.Bool("wide"),
		Timeout: c.Duration("timeout"),
	}, nil
}

func httpClient(c *cli.Context) (*connection.HTTPClient, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, err
	}
	if flags.Server == "" {
		return nil, errors.New("no server address: set --server or the profile")
	}
	return connection.NewHTTPClient(flags.Server, flags.Token), nil
}

func socketClient(c *cli.Context) (*connection.SocketClient, error) {
	socket := c.String("socket")
	if socket == "" {
		return nil, errors.New("no control socket: set --socket or the profile")
	}
	return connection.NewSocketClient(socket), nil
}

// requestContext bounds one request by --timeout.
func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		return context.WithCancel(c.Context)
	}
	return context.WithTimeout(c.Context, timeout)
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// interactive reports whether decoration (spinners, bars) belongs on
// stderr: only for table output.
func interactive(c *cli.Context) bool {
	return c.String("output") == "" || c.String("output") == string(output.FormatTable)
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return io.Discard
}

func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() != n {
		return fmt.Errorf("usage: %s %s", c.Command.HelpName, usage)
	}
	return nil
}
