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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tour-stats/internal/notify"
	"github.com/ademuri/tour-stats/internal/publish"
)

// notifyCmd represents the notify command
var notifyCmd = &cobra.Command{
	Use:   "notify <address>",
	Short: "Emails a summary of the published statistics",
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return requireConfig("sendgrid_api_key", "from")
	},
	Run: func(cmd *cobra.Command, args []string) {
		mailer := notify.New(viper.GetString("sendgrid_api_key"), viper.GetString("from"))
		if err := sendSummary(mailer, viper.GetString("output"), args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Sent summary to %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func sendSummary(mailer summarySender, path, to string) error {
	a, err := publish.Read(path)
	if err != nil {
		return fmt.Errorf("reading published statistics: %w", err)
	}
	return mailer.Send(to, *a)
}
