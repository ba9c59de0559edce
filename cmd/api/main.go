package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ip-inspection",
	Short: "IP inspection service: monitoring snapshot plus AI health score",
	Long: `ip-inspection looks up the monitoring status of an address in its
region's Nagios XI, has an AI model score the server health and records
the outcome. Without a subcommand it starts the HTTP service.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	RunE: runServe,
}

func init() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", path, "path to config.yaml")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
