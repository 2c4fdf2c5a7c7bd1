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

	"github.com/ademuri/tour-stats/internal/store"
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history [from] [to]",
	Short: "Lists previous generate runs",
	Long: `Lists recorded runs, newest first. Dates may be a year (2025), a month
(2025-07), a day (2025-07-18) or relative (30d, 12w, 6m, 1y).`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := parseDateRangeFromArgs(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		err = printHistory(os.Stdout, viper.GetString("database"), start, end, viper.GetInt("limit"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	var limit int
	historyCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list, 0 for all")
	viper.BindPFlag("limit", historyCmd.Flags().Lookup("limit"))
}

func printHistory(out io.Writer, dbPath string, start, end time.Time, limit int) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(start, end, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Started", "Latest Show", "Tour", "Published", "Degraded", "Notified", "Error"})
	for _, r := range runs {
		notified := ""
		if !r.Notified.IsZero() {
			notified = humanize.Time(r.Notified)
		}
		table.Append([]string{
			r.Started.Local().Format("2006-01-02 15:04"),
			r.LatestShow,
			r.Tour,
			strconv.FormatBool(r.Published),
			strconv.FormatBool(r.Degraded),
			notified,
			r.Error,
		})
	}
	return table.Render()
}
