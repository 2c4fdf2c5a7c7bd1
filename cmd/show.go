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
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tour-stats/internal/notify"
	"github.com/ademuri/tour-stats/internal/publish"
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the published statistics",
	Run: func(cmd *cobra.Command, args []string) {
		err := showArtifact(os.Stdout, viper.GetString("output"), time.Now())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showArtifact(out io.Writer, path string, now time.Time) error {
	a, err := publish.Read(path)
	if err != nil {
		return fmt.Errorf("reading published statistics: %w", err)
	}

	updated := a.LastUpdated
	if t, err := time.Parse(time.RFC3339, a.LastUpdated); err == nil {
		updated = humanize.RelTime(t, now, "ago", "from now")
	}
	fmt.Fprintf(out, "%s through %s (updated %s)\n\n", a.TourName, a.LatestShow, updated)

	fmt.Fprintln(out, "Longest songs")
	longest := tablewriter.NewWriter(out)
	longest.Header([]string{"#", "Song", "Length", "Date", "Venue", "Run"})
	for i, s := range a.LongestSongs {
		run := ""
		if s.VenueRun != nil {
			run = s.VenueRun.DisplayText
		}
		longest.Append([]string{
			strconv.Itoa(i + 1), s.SongName, notify.FormatDuration(s.DurationSeconds), s.ShowDate, s.Venue, run,
		})
	}
	if err := longest.Render(); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nRarest songs")
	rarest := tablewriter.NewWriter(out)
	rarest.Header([]string{"#", "Song", "Gap", "Last Played", "Date", "Venue"})
	for i, s := range a.RarestSongs {
		rarest.Append([]string{
			strconv.Itoa(i + 1), s.SongName, humanize.Comma(int64(s.Gap)), s.LastPlayed, s.TourDate, s.TourVenue,
		})
	}
	return rarest.Render()
}
