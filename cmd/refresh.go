package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/internal/scheduler"
	"github.com/change-of-scenery/placesync/internal/status"
)

var (
	refreshAll      bool
	refreshForce    bool
	refreshInterval int
)

var refreshCmd = &cobra.Command{
	Use:   "refresh [area]",
	Short: "Refresh review data for every eligible place in an area",
	Long:  "Walks the places of an area, fetches fresh Google and Yelp data through Outscraper for places that have not been enriched yet, and replaces their stored reviews. Use --all to refresh every area, and --force to re-enrich places that already carry an address.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshAll, "all", false, "refresh every area in the store")
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false, "refresh places even when already enriched")
	refreshCmd.Flags().IntVar(&refreshInterval, "interval", 0, "seconds to wait between places (defaults to config)")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if !refreshAll && len(args) == 0 {
		return eris.New("an area name is required unless --all is set")
	}
	if refreshAll && len(args) > 0 {
		return eris.New("--all cannot be combined with an area name")
	}

	ctx := cmd.Context()
	log := zap.L().With(zap.String("component", "refresh"))

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	feed := status.NewFeed(func(msg string) {
		fmt.Println(msg)
	})

	svc, err := initService(st, feed)
	if err != nil {
		return err
	}

	interval := cfg.Refresh.IntervalSecs
	if refreshInterval > 0 {
		interval = refreshInterval
	}

	opts := []scheduler.Option{
		scheduler.WithInterval(time.Duration(interval) * time.Second),
	}
	if refreshForce {
		opts = append(opts, scheduler.WithGate(model.Always))
	}
	sched := scheduler.New(st, svc, feed, opts...)

	var results []scheduler.RunResult
	if refreshAll {
		areas, err := st.ListAreas(ctx)
		if err != nil {
			return eris.Wrap(err, "list areas")
		}
		if len(areas) == 0 {
			log.Warn("no areas found in store")
			return nil
		}
		results, err = sched.RefreshAreas(ctx, areas, cfg.Refresh.MaxConcurrentAreas)
		if err != nil {
			return err
		}
	} else {
		res, err := sched.RefreshArea(ctx, args[0])
		if err != nil {
			return err
		}
		results = []scheduler.RunResult{*res}
	}

	for _, res := range results {
		fmt.Printf("%s: %d processed, %d enriched, %d skipped, %d failed (%s)\n",
			res.Area, res.Processed, res.Enriched, res.Skipped, res.Failed,
			res.Duration.Round(time.Second))
	}

	return nil
}
