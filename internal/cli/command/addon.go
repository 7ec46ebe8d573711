package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

type addonView struct {
	Slug         string         `json:"slug"`
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	State        string         `json:"state"`
	Boot         string         `json:"boot"`
	Watchdog     bool           `json:"watchdog"`
	IngressEntry string         `json:"ingress_entry" table:"wide"`
	Options      map[string]any `json:"options,omitempty" table:"wide"`
}

type addonInfoView struct {
	Boot     string `json:"boot"`
	Watchdog bool   `json:"watchdog"`
	State    string `json:"state"`
}

// AddonCommand returns the addon subcommand group.
func AddonCommand() *cli.Command {
	slugCmd := func(name, usage string, action cli.ActionFunc) *cli.Command {
		return &cli.Command{Name: name, Usage: usage, ArgsUsage: "SLUG", Action: action}
	}
	return &cli.Command{
		Name:  "addon",
		Usage: "inspect and control add-ons",
		Subcommands: []*cli.Command{
			{Name: "list", Aliases: []string{"ls"}, Usage: "list installed add-ons", Action: addonList},
			slugCmd("info", "show an add-on's boot, watchdog and state", addonInfo),
			slugCmd("start", "start an add-on", addonAction("start", "started")),
			slugCmd("stop", "stop an add-on", addonAction("stop", "stopped")),
			{
				Name:      "options",
				Usage:     "set add-on options",
				ArgsUsage: "SLUG KEY=VALUE...",
				Action:    addonOptions,
			},
		},
	}
}

func addonList(c *cli.Context) error {
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var info struct {
		Addons []addonView `json:"addons"`
	}
	if err := client.Get(ctx, "/supervisor/info", &info); err != nil {
		return err
	}
	return render(c, info.Addons)
}

func addonInfo(c *cli.Context) error {
	if err := requireArgs(c, 1, "SLUG"); err != nil {
		return err
	}
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var info addonInfoView
	if err := client.Get(ctx, "/addons/"+c.Args().First()+"/info", &info); err != nil {
		return err
	}
	return render(c, info)
}

func addonAction(verb, result string) cli.ActionFunc {
	return func(c *cli.Context) error {
		if err := requireArgs(c, 1, "SLUG"); err != nil {
			return err
		}
		client, err := httpClient(c)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(c)
		defer cancel()

		slug := c.Args().First()
		if err := client.Post(ctx, "/addons/"+slug+"/"+verb, nil, nil); err != nil {
			return err
		}
		return render(c, map[string]string{"slug": slug, "result": result})
	}
}

func addonOptions(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: %s SLUG KEY=VALUE...", c.Command.HelpName)
	}
	options := make(map[string]any, c.NArg()-1)
	for _, kv := range c.Args().Slice()[1:] {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return fmt.Errorf("option %q is not KEY=VALUE", kv)
		}
		options[key] = value
	}

	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	slug := c.Args().First()
	if err := client.Post(ctx, "/addons/"+slug+"/options", map[string]any{"options": options}, nil); err != nil {
		return err
	}
	return render(c, options)
}
