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
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ademuri/tour-stats/internal/stats"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tour-stats",
	Short: "Publishes tour statistics for the live-music app",
	Long: `Computes the longest songs and the rarest songs played on the current tour
and publishes them as a JSON document for the app to read.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.tour-stats.yaml)")

	rootCmd.PersistentFlags().String("phishnet_api_key", "", "phish.net API key")
	viper.BindPFlag("phishnet_api_key", rootCmd.PersistentFlags().Lookup("phishnet_api_key"))

	rootCmd.PersistentFlags().String("artist", "Phish", "Only count shows by this artist")
	viper.BindPFlag("artist", rootCmd.PersistentFlags().Lookup("artist"))

	rootCmd.PersistentFlags().StringP("database", "d", "./tour-stats.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringP("output", "o", "./tour-stats.json", "Path of the published JSON file")
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.PersistentFlags().Int("top_k", stats.DefaultTopK, "Number of songs in each list, 1 to 3")
	viper.BindPFlag("top_k", rootCmd.PersistentFlags().Lookup("top_k"))

	rootCmd.PersistentFlags().Duration("request_interval", time.Second, "Minimum time between requests to each catalog")
	viper.BindPFlag("request_interval", rootCmd.PersistentFlags().Lookup("request_interval"))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.PersistentFlags().String("sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))

	rootCmd.PersistentFlags().String("from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))

	rootCmd.PersistentFlags().String("notify", "", "Email address told about newly published statistics")
	viper.BindPFlag("notify", rootCmd.PersistentFlags().Lookup("notify"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".tour-stats" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".tour-stats")
	}

	viper.SetEnvPrefix("TOUR_STATS")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})

	slog.SetDefault(newLogger(viper.GetBool("verbose")))
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func requireConfig(keys ...string) error {
	for _, k := range keys {
		if viper.GetString(k) == "" {
			return fmt.Errorf("required flag(s) %q not set", k)
		}
	}
	return nil
}
