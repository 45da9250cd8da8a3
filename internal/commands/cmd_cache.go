package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/benchwatch/revdiff/internal/revdiff"
	"github.com/benchwatch/revdiff/pkg/iojson"
)

// CacheCmd manages the persisted diff cache.
type CacheCmd struct {
	app *revdiff.App

	// flags
	jsonOutput bool
}

// NewCacheCmd creates a new cache command.
func NewCacheCmd(app *revdiff.App) *CacheCmd {
	return &CacheCmd{app: app}
}

// Register adds the cache command to the application.
func (cmd *CacheCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "cache",
		Usage: "Manage the persisted diff cache",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List cached diffs",
				UsageText: "revdiff cache ls [--json]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runLs,
			},
			{
				Name:      "clear",
				Usage:     "Remove all cached diffs",
				UsageText: "revdiff cache clear",
				Action:    cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *CacheCmd) runLs(ctx context.Context, c *cli.Command) error {
	entries, err := cmd.app.Store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cache: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, entry := range entries {
			if err := iojson.WriteLine(out, entry); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "cache is empty")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "RUN\tVARIANT\tCOUNT\tAGE")

	now := time.Now()
	for _, entry := range entries {
		variant := "base-vs-new"
		if entry.MasterVariant {
			variant = "base-vs-master"
		}
		age := now.Sub(entry.SavedAt).Round(time.Minute)
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", entry.RunID, variant, entry.Result.Count, age)
	}

	return w.Flush()
}

func (cmd *CacheCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.app.Store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	_, err := fmt.Fprintln(c.Root().Writer, "cache cleared")
	return err
}
