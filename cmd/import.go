package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/curl"
	"github.com/vedsharma/reqpad/internal/format"
	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/shell"
)

var (
	importFile   string
	importName   string
	importSend   bool
	importFilter string
)

func init() {
	importCmd := &cobra.Command{
		Use:   "import [curl command]",
		Short: "Import curl commands as saved requests",
		Long: `Import a curl command as a saved request.

The command can be passed as a single quoted argument, as plain arguments
after --, or read from a file (or stdin with --file -) where each command may
span several lines ending in a backslash.

Examples:
  reqpad import "curl -X POST https://api.example.com/users -d '{\"name\":\"John\"}'"
  reqpad import -- curl -H 'Accept: application/json' https://api.example.com/users
  reqpad import --file requests.sh --send`,
		RunE: runImport,
	}
	importCmd.Flags().StringVar(&importFile, "file", "", "Read commands from a file, - for stdin")
	importCmd.Flags().StringVar(&importName, "name", "", "Name for the imported request")
	importCmd.Flags().BoolVar(&importSend, "send", false, "Send the imported requests right away")
	importCmd.Flags().StringVarP(&importFilter, "filter", "f", "", "Print only this path of a JSON response")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	specs, importErr := importSpecs(args)
	if len(specs) == 0 {
		if importErr == nil {
			importErr = errors.New("no commands to import")
		}
		return importErr
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	// save in reverse so the first command ends up at the top of the list
	for i := len(specs) - 1; i >= 0; i-- {
		if importName != "" {
			specs[i].Name = importName
		}
		if err := store.SaveRequest(specs[i]); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}
	}

	if len(specs) == 1 {
		format.PrintSpec(specs[0])
	} else {
		format.PrintSuccess(fmt.Sprintf("Imported %d requests", len(specs)))
	}
	if importErr != nil {
		format.PrintWarning(importErr.Error())
	}

	if !importSend {
		return nil
	}
	opts := sendOptions{filter: importFilter, verbose: cfg.Verbose, history: store}
	if len(specs) == 1 {
		return sendOne(cmd.Context(), specs[0], opts)
	}
	return sendAll(cmd.Context(), specs, opts)
}

// importSpecs reads commands from --file, the arguments or stdin. Commands that
// fail are reported in the error while the rest are still returned.
func importSpecs(args []string) ([]*model.Http, error) {
	switch {
	case importFile != "":
		var r io.Reader = os.Stdin
		if importFile != "-" {
			f, err := os.Open(importFile)
			if err != nil {
				return nil, fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()
			r = f
		}
		return curl.ImportAll(r)

	case len(args) == 1:
		return importOne(args[0])

	case len(args) > 1:
		// the shell already split the command, quote it back together
		return importOne(shell.Join(args...))

	default:
		return curl.ImportAll(os.Stdin)
	}
}

func importOne(command string) ([]*model.Http, error) {
	spec, err := curl.Import(command)
	if err != nil {
		return nil, fmt.Errorf("failed to import command: %w", err)
	}
	return []*model.Http{spec}, nil
}
