package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/supsim/internal/cli/output"
)

// snapshotView is a snapshot as listed by the API.
type snapshotView struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Type      string    `json:"type"`
	Size      int64     `json:"size" table:"bytes"`
	Protected bool      `json:"protected"`
	Folders   []string  `json:"folders" table:"wide"`
	Addons    []string  `json:"addons" table:"wide"`
}

type slugView struct {
	Slug string `json:"slug"`
}

type createBody struct {
	Name     string   `json:"name,omitempty"`
	Password string   `json:"password,omitempty"`
	Folders  []string `json:"folders,omitempty"`
	Addons   []string `json:"addons,omitempty"`
}

// SnapshotCommand returns the snapshot subcommand group.
func SnapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Aliases: []string{"snap"},
		Usage:   "manage backup snapshots",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "list stored snapshots",
				Action:  snapshotList,
			},
			{
				Name:  "create",
				Usage: "create a snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "partial", Usage: "create a partial snapshot"},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "snapshot name"},
					&cli.StringFlag{Name: "password", Usage: "protect the archive with a password"},
					&cli.StringSliceFlag{Name: "folder", Usage: "include a folder (partial only, repeatable)"},
					&cli.StringSliceFlag{Name: "addon", Usage: "include an add-on (partial only, repeatable)"},
				},
				Action: snapshotCreate,
			},
			{
				Name:      "info",
				Usage:     "show one snapshot",
				ArgsUsage: "SLUG",
				Action:    snapshotInfo,
			},
			{
				Name:      "download",
				Usage:     "download a snapshot archive",
				ArgsUsage: "SLUG",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "destination, - for stdout (default SLUG.tar)"},
				},
				Action: snapshotDownload,
			},
			{
				Name:      "upload",
				Usage:     "upload a snapshot archive",
				ArgsUsage: "FILE",
				Action:    snapshotUpload,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "delete a snapshot",
				ArgsUsage: "SLUG",
				Action:    snapshotRemove,
			},
			{
				Name:      "restore",
				Usage:     "restore a snapshot",
				ArgsUsage: "SLUG",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "partial", Usage: "partial restore"},
					&cli.StringFlag{Name: "password", Usage: "archive password"},
				},
				Action: snapshotRestore,
			},
		},
	}
}

func snapshotList(c *cli.Context) error {
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var data struct {
		Snapshots []snapshotView `json:"snapshots"`
	}
	if err := client.Get(ctx, "/snapshots", &data); err != nil {
		return err
	}
	return render(c, data.Snapshots)
}

func snapshotCreate(c *cli.Context) error {
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	kind := "full"
	if c.Bool("partial") {
		kind = "partial"
	}
	body := createBody{
		Name:     c.String("name"),
		Password: c.String("password"),
		Folders:  c.StringSlice("folder"),
		Addons:   c.StringSlice("addon"),
	}

	var spinner *output.Spinner
	if interactive(c) {
		spinner = output.NewSpinner(stderr(c), "creating "+kind+" snapshot")
		spinner.Start()
	}
	var created slugView
	err = client.Post(ctx, "/snapshots/new/"+kind, body, &created)
	if spinner != nil {
		spinner.Stop("")
	}
	if err != nil {
		return err
	}
	return render(c, created)
}

func snapshotInfo(c *cli.Context) error {
	if err := requireArgs(c, 1, "SLUG"); err != nil {
		return err
	}
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var snap snapshotView
	if err := client.Get(ctx, "/snapshots/"+c.Args().First()+"/info", &snap); err != nil {
		return err
	}
	return render(c, snap)
}

func snapshotDownload(c *cli.Context) error {
	if err := requireArgs(c, 1, "SLUG"); err != nil {
		return err
	}
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	slug := c.Args().First()

	body, size, err := client.OpenDownload(c.Context, "/snapshots/"+slug+"/download")
	if err != nil {
		return err
	}
	defer body.Close()

	dest := c.String("file")
	if dest == "" {
		dest = slug + ".tar"
	}

	var dst io.Writer = c.App.Writer
	if dest != "-" {
		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	var src io.Reader = body
	var bar *output.ProgressBar
	if dest != "-" && interactive(c) {
		bar = output.NewProgressBar(stderr(c), filepath.Base(dest), size)
		src = io.TeeReader(body, bar)
	}
	n, err := io.Copy(dst, src)
	if err != nil {
		return fmt.Errorf("download %s: %w", slug, err)
	}
	if bar != nil {
		bar.Finish()
	}
	if dest == "-" {
		return nil
	}
	return render(c, map[string]any{"slug": slug, "file": dest, "bytes": n})
}

func snapshotUpload(c *cli.Context) error {
	if err := requireArgs(c, 1, "FILE"); err != nil {
		return err
	}
	client, err := httpClient(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var src io.Reader = f
	if interactive(c) {
		var size int64 = -1
		if info, err := f.Stat(); err == nil {
			size = info.Size()
		}
		bar := output.NewProgressBar(stderr(c), filepath.Base(path), size)
		defer bar.Finish()
		src = io.TeeReader(f, bar)
	}

	var uploaded slugView
	if err := client.Upload(c.Context, "/snapshots/new/upload", filepath.Base(path), src, &uploaded); err != nil {
		return err
	}
	return render(c, uploaded)
}

func snapshotRemove(c *cli.Context) error {
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
	if err := client.Post(ctx, "/snapshots/"+slug+"/remove", nil, nil); err != nil {
		return err
	}
	return render(c, map[string]string{"slug": slug, "result": "deleted"})
}

func snapshotRestore(c *cli.Context) error {
	if err := requireArgs(c, 1, "SLUG"); err != nil {
		return err
	}
	client, err := httpClient(c)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	kind := "full"
	if c.Bool("partial") {
		kind = "partial"
	}
	slug := c.Args().First()
	body := map[string]string{"password": c.String("password")}
	if err := client.Post(ctx, "/snapshots/"+slug+"/restore/"+kind, body, nil); err != nil {
		return err
	}
	return render(c, map[string]string{"slug": slug, "result": "restored"})
}
