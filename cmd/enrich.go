package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/change-of-scenery/placesync/internal/status"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <place-name>",
	Short: "Run a full enrichment cycle for a single place",
	Long:  "Looks up a place by name and runs the Google and Yelp enrichment passes for it: metadata fetch, stored field update, and review replacement.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

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

	place, err := st.GetPlaceByName(ctx, args[0])
	if err != nil {
		return eris.Wrapf(err, "look up place %q", args[0])
	}

	outcome := svc.EnrichPlace(ctx, *place)
	if outcome.GoogleErr != nil {
		fmt.Printf("google pass failed: %v\n", outcome.GoogleErr)
	}
	if outcome.YelpErr != nil {
		fmt.Printf("yelp pass failed: %v\n", outcome.YelpErr)
	}
	fmt.Printf("%s: %d reviews stored\n", place.Name, outcome.ReviewsStored)

	if outcome.Failed() {
		return eris.Errorf("enrichment of %q did not complete", place.Name)
	}

	return nil
}
