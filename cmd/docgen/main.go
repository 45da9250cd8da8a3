// Command docgen generates CLI reference documentation from the revdiff
// command definitions. Output is written to docs/cli-reference.md.
package main

import (
	"fmt"
	"os"

	docs "github.com/urfave/cli-docs/v3"
	"github.com/urfave/cli/v3"

	"github.com/benchwatch/revdiff/internal/commands"
	"github.com/benchwatch/revdiff/internal/revdiff"
)

func main() {
	app := &revdiff.App{}

	root := &cli.Command{
		Name:      "revdiff",
		Usage:     "Show the code diff behind a test run",
		UsageText: "revdiff [global options] command [command options]",
		Description: `Revdiff resolves, caches and renders the code difference between the two
revisions under statistical evaluation in a test run.

Diffs are fetched from the hosting API (precomputed for revisions that
share history, reconstructed from two tree snapshots otherwise) and
cached locally for 24 hours.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("REVDIFF_LOG_LEVEL"),
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "log-file",
				Usage:   "path to log file (defaults to <data-dir>/revdiff.log)",
				Sources: cli.EnvVars("REVDIFF_LOG_FILE"),
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
				Sources: cli.EnvVars("REVDIFF_CONFIG"),
				Value:   commands.DefaultConfigPath(),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "path to data directory",
				Sources: cli.EnvVars("REVDIFF_DATA_DIR"),
				Value:   commands.DefaultDataDir(),
			},
		},
	}

	root = commands.NewShowCmd(app).Register(root)
	root = commands.NewCacheCmd(app).Register(root)
	root = commands.NewRateLimitCmd(app).Register(root)

	md, err := docs.ToMarkdown(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error generating docs: %v\n", err)
		os.Exit(1)
	}

	outPath := "docs/cli-reference.md"
	if len(os.Args) > 1 {
		outPath = os.Args[1]
	}

	if err := os.WriteFile(outPath, []byte(md), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", outPath, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outPath)
}
