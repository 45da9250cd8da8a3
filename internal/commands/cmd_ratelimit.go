package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/benchwatch/revdiff/internal/revdiff"
	"github.com/benchwatch/revdiff/pkg/iojson"
)

// nearLimitThreshold is the remaining-calls count below which the probe
// warns that diff fetches are likely to fail.
const nearLimitThreshold = 10

// RateLimitCmd probes the hosting API's remaining call budget.
type RateLimitCmd struct {
	app *revdiff.App

	// flags
	jsonOutput bool
}

// NewRateLimitCmd creates a new ratelimit command.
func NewRateLimitCmd(app *revdiff.App) *RateLimitCmd {
	return &RateLimitCmd{app: app}
}

// Register adds the ratelimit command to the application.
func (cmd *RateLimitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ratelimit",
		Usage:     "Show remaining hosting-API calls",
		UsageText: "revdiff ratelimit [--json]",
		Description: `Probes the hosting API's rate-limit endpoint with a short timeout.
An unreachable probe reports zero remaining calls.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RateLimitCmd) run(ctx context.Context, c *cli.Command) error {
	status := cmd.app.API.RateLimit(ctx)

	out := c.Root().Writer
	if cmd.jsonOutput {
		return iojson.Write(status)
	}

	if _, err := fmt.Fprintf(out, "remaining: %d / %d\n", status.Remaining, status.Limit); err != nil {
		return err
	}

	if status.Remaining <= nearLimitThreshold {
		_, err := fmt.Fprintln(out, "warning: API call budget nearly exhausted; supply a token or wait for the window to reset")
		return err
	}
	return nil
}
