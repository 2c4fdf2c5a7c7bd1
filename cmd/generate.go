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
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tour-stats/internal/notify"
	"github.com/ademuri/tour-stats/internal/publish"
	"github.com/ademuri/tour-stats/internal/source"
	"github.com/ademuri/tour-stats/internal/stats"
	"github.com/ademuri/tour-stats/internal/store"
)

type GenerateConfig struct {
	DbPath          string
	OutputPath      string
	ApiKey          string
	Artist          string
	TopK            int
	RequestInterval time.Duration
	ShowDate        string
	Force           bool
	DryRun          bool

	NotifyAddress  string
	SendgridApiKey string
	From           string
}

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [show-date]",
	Short: "Computes and publishes the tour statistics",
	Long: `Finds the most recent show (or uses the given yyyy-mm-dd date), computes the
longest and rarest songs of its tour so far and writes the JSON document.
Nothing is published when the latest show has not changed since the last run.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("phishnet_api_key")
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := GenerateConfig{
			DbPath:          viper.GetString("database"),
			OutputPath:      viper.GetString("output"),
			ApiKey:          viper.GetString("phishnet_api_key"),
			Artist:          viper.GetString("artist"),
			TopK:            viper.GetInt("top_k"),
			RequestInterval: viper.GetDuration("request_interval"),
			Force:           viper.GetBool("force"),
			DryRun:          viper.GetBool("dry-run"),
			NotifyAddress:   viper.GetString("notify"),
			SendgridApiKey:  viper.GetString("sendgrid_api_key"),
			From:            viper.GetString("from"),
		}
		if len(args) > 0 {
			config.ShowDate = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := generate(ctx, config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	var force bool
	generateCmd.Flags().BoolVarP(&force, "force", "f", false, "Publish even if the latest show has not changed")
	viper.BindPFlag("force", generateCmd.Flags().Lookup("force"))

	var dryRun bool
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the document instead of writing it")
	viper.BindPFlag("dry-run", generateCmd.Flags().Lookup("dry-run"))
}

func generate(ctx context.Context, config GenerateConfig) error {
	if config.TopK < 1 || config.TopK > stats.DefaultTopK {
		return fmt.Errorf("--top_k must be between 1 and %d, got %d", stats.DefaultTopK, config.TopK)
	}
	if config.NotifyAddress != "" && (config.SendgridApiKey == "" || config.From == "") {
		return fmt.Errorf("--notify needs --sendgrid_api_key and --from")
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	logger := slog.Default()
	sourceConfig := source.Config{RequestInterval: config.RequestInterval, Logger: logger}
	phishNet := source.NewPhishNet(config.ApiKey, config.Artist, sourceConfig)

	g := &generator{
		db:    db,
		shows: phishNet,
		aggregator: &stats.Aggregator{
			Tours:     phishNet,
			Durations: source.NewPhishIn(sourceConfig),
			Gaps:      &source.CachedGapSource{Upstream: phishNet, Store: db, Logger: logger},
			TopK:      config.TopK,
			Logger:    logger,
		},
		writer: publish.NewWriter(config.OutputPath),
		out:    os.Stdout,
		now:    time.Now,
	}
	if config.NotifyAddress != "" {
		g.mailer = notify.New(config.SendgridApiKey, config.From)
		g.notifyAddress = config.NotifyAddress
	}

	return g.run(ctx, config.ShowDate, config.Force, config.DryRun)
}

type latestShowFinder interface {
	LatestShow(ctx context.Context, day time.Time) (time.Time, error)
}

type summarySender interface {
	Send(to string, a publish.Artifact) error
}

// generator runs one generate pass. Its dependencies are fields so tests can
// swap the catalogs out.
type generator struct {
	db         *store.Store
	shows      latestShowFinder
	aggregator *stats.Aggregator
	writer     *publish.Writer

	mailer        summarySender
	notifyAddress string

	out io.Writer
	now func() time.Time
}

func (g *generator) run(ctx context.Context, showDate string, force, dryRun bool) error {
	now := g.now()

	var latest time.Time
	var err error
	if showDate != "" {
		latest, err = parseShowDate(showDate)
		if err != nil {
			return err
		}
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		latest, err = g.shows.LatestShow(ctx, today)
		if err != nil {
			return fmt.Errorf("finding the latest show: %w", err)
		}
	}
	latestStr := latest.Format(stats.DateFormat)
	fmt.Fprintf(g.out, "Latest show: %s\n", latestStr)

	last, err := g.db.LastPublishedRun()
	if err != nil {
		return err
	}
	if !force && !dryRun && last.LatestShow == latestStr && !last.Degraded {
		fmt.Fprintf(g.out, "Statistics through %s were already published at %s\n",
			latestStr, last.Started.Format(time.RFC3339))
		return nil
	}

	run := store.NewRun(now)
	run.LatestShow = latestStr

	s, err := g.aggregator.Aggregate(ctx, latest)
	if err != nil {
		return g.fail(run, dryRun, fmt.Errorf("computing statistics: %w", err))
	}
	run.Tour = s.TourName
	run.Degraded = s.Degraded
	if s.Degraded {
		fmt.Fprintln(g.out, "Some catalog data was unavailable, publishing partial statistics")
	}
	for _, r := range s.RarestSongs {
		fmt.Fprintf(g.out, "Rarest: %s, gap %d at %s\n", r.SongName, r.Gap, r.TourDate.Format(stats.DateFormat))
		if r.HistoricalVenue != "" {
			fmt.Fprintf(g.out, "  previously at %s, %s %s (%d plays)\n",
				r.HistoricalVenue, r.HistoricalCity, r.HistoricalState, r.TimesPlayed)
		}
	}

	if dryRun {
		_, data, err := g.writer.Encode(s)
		if err != nil {
			return err
		}
		_, err = g.out.Write(data)
		return err
	}

	a, err := g.writer.Publish(s)
	if err != nil {
		return g.fail(run, dryRun, err)
	}
	run.Published = true
	run.ContentHash = publish.ContentHash(a)
	if err := g.db.RecordRun(run); err != nil {
		return err
	}
	fmt.Fprintf(g.out, "Published %s through %s to %s\n", s.TourName, latestStr, g.writer.Path)

	if run.ContentHash == last.ContentHash {
		fmt.Fprintln(g.out, "Statistics are unchanged since the last run")
		return nil
	}
	if g.mailer == nil {
		return nil
	}
	if err := g.mailer.Send(g.notifyAddress, a); err != nil {
		return fmt.Errorf("notifying: %w", err)
	}
	fmt.Fprintf(g.out, "Notified %s\n", g.notifyAddress)
	return g.db.MarkNotified(run.ID, g.now())
}

// fail records a run that ended in err and returns err.
func (g *generator) fail(run store.Run, dryRun bool, err error) error {
	if dryRun {
		return err
	}
	run.Error = err.Error()
	if recordErr := g.db.RecordRun(run); recordErr != nil {
		slog.Default().Error("recording failed run", "run", run.ID, "error", recordErr)
	}
	return err
}
