package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/benchwatch/revdiff/internal/core/run"
	"github.com/benchwatch/revdiff/internal/render"
	"github.com/benchwatch/revdiff/internal/revdiff"
	"github.com/benchwatch/revdiff/pkg/iojson"
)

// ShowCmd resolves and prints the code diff for a run.
type ShowCmd struct {
	app *revdiff.App

	runReader iojson.FileReader[run.Run]

	// flags
	jsonOutput bool
	noColor    bool
	master     bool

	runID         string
	baseRev       string
	baseRevShort  string
	newRev        string
	baseRepo      string
	newRepo       string
	tuning        bool
	sharedHistory bool
}

// NewShowCmd creates a new show command.
func NewShowCmd(app *revdiff.App) *ShowCmd {
	return &ShowCmd{app: app}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Show the code diff for a run",
		UsageText: "revdiff show [--run-id ID --base REV --new REV ...] | [-f run.json]",
		Description: `Resolves the diff between a run's base and new revisions, consulting
the local cache before the hosting API.

The run descriptor is read from --run-id/--base/--new flags, or as JSON
from a file or stdin. Pass --master to compare the run's base revision
against the base repository's master branch instead.`,
		Flags: []cli.Flag{
			cmd.runReader.Flag(),
			&cli.StringFlag{
				Name:        "run-id",
				Usage:       "run identifier (cache key)",
				Destination: &cmd.runID,
			},
			&cli.StringFlag{
				Name:        "base",
				Usage:       "base revision",
				Destination: &cmd.baseRev,
			},
			&cli.StringFlag{
				Name:        "base-short",
				Usage:       "abbreviated base revision (defaults to --base)",
				Destination: &cmd.baseRevShort,
			},
			&cli.StringFlag{
				Name:        "new",
				Usage:       "new revision",
				Destination: &cmd.newRev,
			},
			&cli.StringFlag{
				Name:        "base-repo",
				Usage:       "repository holding the base revision (owner/name)",
				Destination: &cmd.baseRepo,
			},
			&cli.StringFlag{
				Name:        "new-repo",
				Usage:       "repository holding the new revision (owner/name)",
				Destination: &cmd.newRepo,
			},
			&cli.BoolFlag{
				Name:        "tuning",
				Usage:       "mark this as a parameter-tuning run",
				Destination: &cmd.tuning,
			},
			&cli.BoolFlag{
				Name:        "shared-history",
				Usage:       "base and new share ancestry in one repository",
				Destination: &cmd.sharedHistory,
			},
			&cli.BoolFlag{
				Name:        "master",
				Usage:       "compare base against the base repository's master branch",
				Destination: &cmd.master,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the presenter view as JSON",
				Destination: &cmd.jsonOutput,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "disable diff coloring",
				Destination: &cmd.noColor,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	r, err := cmd.descriptor()
	if err != nil {
		if cmd.jsonOutput {
			return iojson.WriteError(fmt.Sprintf("read run descriptor: %s", err), nil)
		}
		return err
	}

	view := cmd.app.Diffs.View(ctx, r, cmd.master)

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.WriteWith(out, os.Stderr, view)
	}

	_, err = fmt.Fprint(out, render.View(view, !cmd.noColor))
	return err
}

// descriptor builds the run descriptor from inline flags when --run-id
// is set, otherwise from the JSON file or piped stdin.
func (cmd *ShowCmd) descriptor() (run.Run, error) {
	if cmd.runID == "" {
		return cmd.runReader.Read()
	}

	if cmd.runReader.HasFile() {
		return run.Run{}, fmt.Errorf("--run-id and -f are mutually exclusive")
	}

	if cmd.baseRev == "" || cmd.newRev == "" {
		return run.Run{}, fmt.Errorf("--base and --new are required with --run-id")
	}
	if cmd.baseRepo == "" || cmd.newRepo == "" {
		return run.Run{}, fmt.Errorf("--base-repo and --new-repo are required with --run-id")
	}

	return run.Run{
		ID:                cmd.runID,
		BaseRevision:      cmd.baseRev,
		BaseRevisionShort: cmd.baseRevShort,
		NewRevision:       cmd.newRev,
		BaseRepo:          cmd.baseRepo,
		NewRepo:           cmd.newRepo,
		Tuning:            cmd.tuning,
		SharedHistory:     cmd.sharedHistory,
	}, nil
}
