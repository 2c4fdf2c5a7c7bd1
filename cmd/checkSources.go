/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tour-stats/internal/source"
	"github.com/ademuri/tour-stats/internal/stats"
)

var checkSourcesCmd = &cobra.Command{
	Use:   "check-sources",
	Short: "Checks that both catalogs answer for the latest show",
	Long: `Finds the most recent show on phish.net, resolves its tour and fetches its
track durations from phish.in, reporting each step.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("phishnet_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := source.Config{RequestInterval: viper.GetDuration("request_interval")}
		phishNet := source.NewPhishNet(viper.GetString("phishnet_api_key"), viper.GetString("artist"), config)
		checker := sourceChecker{
			shows:     phishNet,
			tours:     phishNet,
			durations: source.NewPhishIn(config),
		}

		if err := checker.check(cmd.Context(), os.Stdout, time.Now()); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkSourcesCmd)
}

type sourceChecker struct {
	shows     latestShowFinder
	tours     stats.TourResolver
	durations stats.DurationSource
}

func (c sourceChecker) check(ctx context.Context, out io.Writer, now time.Time) error {
	if ctx == nil {
		ctx = context.Background()
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Catalog", "Check", "Result"})
	failed := 0
	report := func(catalog, check string, err error, result string) {
		if err != nil {
			failed++
			result = "FAILED: " + err.Error()
		}
		table.Append([]string{catalog, check, result})
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	latest, err := c.shows.LatestShow(ctx, today)
	report("phish.net", "latest show", err, latest.Format(stats.DateFormat))

	if err == nil {
		tour, err := c.tours.ResolveTour(ctx, latest)
		report("phish.net", "tour", err, tour.Name)

		tracks, err := c.durations.ShowTrackDurations(ctx, latest)
		report("phish.in", "track durations", err, strconv.Itoa(len(tracks))+" tracks")
	}

	if err := table.Render(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
