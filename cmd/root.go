package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/config"
	"github.com/vedsharma/reqpad/internal/format"
	httpclient "github.com/vedsharma/reqpad/internal/http"
	"github.com/vedsharma/reqpad/internal/storage"
)

// cfg is resolved before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "reqpad",
	Short: "Compose, import and send HTTP requests",
	Long: `reqpad keeps a list of HTTP requests you can edit and send from the terminal.

Paste a curl command to import it, send requests in the background and keep
a history of every response.

Examples:
  reqpad import "curl -X POST https://api.example.com/users -d '{\"name\":\"John\"}' -H 'Content-Type: application/json'"
  reqpad list
  reqpad send 1
  reqpad get https://api.example.com/users
  reqpad history`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		format.SetNoColor(cfg.NoColor)
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		format.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func openStore() (*storage.SQLiteStorage, error) {
	return storage.Open(cfg.DataDir)
}

func newClient() *httpclient.Client {
	return httpclient.NewClient(
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithMaxResponseSize(cfg.MaxResponseSize),
		httpclient.WithWarnings(os.Stderr),
	)
}
