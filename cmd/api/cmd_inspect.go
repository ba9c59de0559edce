package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appinspection "github.com/bryanwahyu/ip-inspection/internal/application/inspection"
	"github.com/bryanwahyu/ip-inspection/internal/config"
	"github.com/bryanwahyu/ip-inspection/internal/middleware"
)

var inspectToken string

var inspectCmd = &cobra.Command{
	Use:   "inspect <address> [address...]",
	Short: "Inspect one address and print the result as JSON",
	Long: `Runs a single inspection like the HTTP endpoint does. Only the first
address is inspected; the others are stored on the record.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectToken, "token", "", "session token to attribute the record to")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	a, err := build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.svc.Inspect(cmd.Context(), appinspection.InspectCommand{
		Addresses:  middleware.SanitizeAddresses(args),
		Credential: inspectToken,
	})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
