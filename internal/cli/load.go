package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilerow/pkg/display"
	"github.com/matzehuels/tilerow/pkg/errors"
	"github.com/matzehuels/tilerow/pkg/loader"
)

// loadCommand creates the headless load command.
func (c *CLI) loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load the whole catalog and report per-row results",
		Long: `Load fetches the root catalog, downloads every tile on the worker pool,
and prints how many tiles each row ended up with. Rows whose refset could not
be resolved are reported as degraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := c.openSession(ctx, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			snap, err := runLoad(ctx, s, logger)
			if err != nil {
				return err
			}

			writeRowStats(os.Stdout, snap)
			degraded := 0
			for _, r := range snap.Rows {
				if r.Degraded {
					degraded++
				}
			}
			if degraded > 0 {
				printWarning("%d of %d rows degraded", degraded, len(snap.Rows))
			}
			printSuccess("Loaded %d tiles in %d rows", tileCount(snap), len(snap.Rows))
			printNextStep("Browse them", appName+" browse")
			return nil
		},
	}
}

// runLoad starts a load and consumes completions until every worker has
// exited. It returns the final state.
func runLoad(ctx context.Context, s *session, logger *log.Logger) (*display.Snapshot, error) {
	prog := newProgress(logger)

	spin := newSpinnerWithContext(ctx, "Fetching catalog...")
	spin.Start()
	res, err := s.loader.Load(ctx)
	if err != nil {
		spin.StopWithError(errors.UserMessage(err))
		return nil, err
	}
	logger.Debug("catalog loaded", "rows", len(res.Rows), "workers", res.Pool.Workers())

	model := display.NewModel(res.Rows, s.store, s.cfg.Animation.Display(), logger)
	defer model.Close(res.Completions)

	err = consume(ctx, model, res, prog, spin)
	spin.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d rows", len(res.Rows)))
	return model.Snapshot(), nil
}

// consume applies completions to model as they arrive and returns once the
// pool has drained the queue. spin, if not nil, shows row progress.
func consume(ctx context.Context, model *display.Model, res *loader.Result, prog *progress, spin *Spinner) error {
	waitErr := make(chan error, 1)
	go func() { waitErr <- res.Pool.Wait() }()

	last := time.Now()
	tick := func() {
		now := time.Now()
		model.Tick(res.Completions, now.Sub(last).Seconds())
		last = now
		if spin != nil {
			done, total := model.Progress()
			spin.SetMessage(fmt.Sprintf("Loading tiles (%d/%d rows)", done, total))
		}
	}

	ready := false
	for {
		select {
		case <-res.Completions.Notify():
			tick()
			if !ready && model.TilesReady() {
				ready = true
				prog.logger.Info("tiles ready", "after", prog.elapsed())
			}
		case err := <-waitErr:
			tick()
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
