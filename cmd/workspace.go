package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/format"
	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/storage"
)

var (
	newName   string
	newMethod string
	newURL    string

	editFlags       requestFlags
	editName        string
	editURL         string
	editClearHeader bool
)

func init() {
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a request at the top of the list",
		Args:  cobra.NoArgs,
		RunE:  runNew,
	}
	newCmd.Flags().StringVar(&newName, "name", model.DefaultName, "Request name")
	newCmd.Flags().StringVarP(&newMethod, "method", "X", "GET", "HTTP method")
	newCmd.Flags().StringVar(&newURL, "url", "", "Request URL")

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved requests",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	showCmd := &cobra.Command{
		Use:   "show <id or index>",
		Short: "Show a saved request",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id or index>",
		Short: "Remove a saved request",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemove,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every saved request",
		Args:  cobra.NoArgs,
		RunE:  runClear,
	}

	methodCmd := &cobra.Command{
		Use:   "method <id or index> <METHOD>",
		Short: "Change the method of a saved request",
		Long: `Change the method of a saved request.

Switching to GET drops the form fields and sends parameters in the query
string. Any other method switches the request to a multipart form body.`,
		Args: cobra.ExactArgs(2),
		RunE: runMethod,
	}

	editCmd := &cobra.Command{
		Use:   "edit <id or index>",
		Short: "Edit a saved request",
		Long: `Edit a saved request. Headers are appended; --data, --form and --query
replace the current parameters.

Example:
  reqpad edit 1 --url https://api.example.com/v2/users -H 'Accept: application/json'`,
		Args: cobra.ExactArgs(1),
		RunE: runEdit,
	}
	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVar(&editURL, "url", "", "New URL")
	editCmd.Flags().BoolVar(&editClearHeader, "clear-headers", false, "Remove existing headers first")
	addRequestFlags(editCmd, &editFlags)

	rootCmd.AddCommand(newCmd, listCmd, showCmd, rmCmd, clearCmd, methodCmd, editCmd)
}

// resolveRequest finds a saved request by 1-based list index, id or unique id prefix
func resolveRequest(store *storage.SQLiteStorage, ref string) (*model.Http, error) {
	specs, err := store.LoadRequests()
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index > 0 && index <= len(specs) {
			return specs[index-1], nil
		}
	}

	var match *model.Http
	for _, spec := range specs {
		if spec.ID() == ref {
			return spec, nil
		}
		if strings.HasPrefix(spec.ID(), ref) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous request id: %s", ref)
			}
			match = spec
		}
	}
	if match == nil {
		return nil, fmt.Errorf("request not found: %s", ref)
	}
	return match, nil
}

func runNew(cmd *cobra.Command, args []string) error {
	method, err := model.ParseMethod(newMethod)
	if err != nil {
		return err
	}

	spec := model.NewHttp()
	spec.Name = newName
	spec.URL = newURL
	spec.SetMethod(method)

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	if err := store.SaveRequest(spec); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	format.PrintSuccess(fmt.Sprintf("Created %s (%s)", spec.DisplayName(), spec.ID()))
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	specs, err := store.LoadRequests()
	if err != nil {
		return fmt.Errorf("failed to load requests: %w", err)
	}
	format.PrintSpecList(specs)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	spec, err := resolveRequest(store, args[0])
	if err != nil {
		return err
	}
	format.PrintSpec(spec)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	spec, err := resolveRequest(store, args[0])
	if err != nil {
		return err
	}
	if err := store.DeleteRequest(spec.ID()); err != nil {
		return fmt.Errorf("failed to remove request: %w", err)
	}
	format.PrintSuccess(fmt.Sprintf("Removed %s", spec.DisplayName()))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	if err := store.ClearRequests(); err != nil {
		return fmt.Errorf("failed to clear requests: %w", err)
	}
	format.PrintSuccess("Requests cleared")
	return nil
}

func runMethod(cmd *cobra.Command, args []string) error {
	method, err := model.ParseMethod(args[1])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	spec, err := resolveRequest(store, args[0])
	if err != nil {
		return err
	}
	spec.SetMethod(method)
	if err := store.SaveRequest(spec); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	format.PrintSuccess(fmt.Sprintf("%s is now %s with %s params", spec.DisplayName(), spec.Method, spec.ParamType))
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	spec, err := resolveRequest(store, args[0])
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("name") {
		spec.Name = editName
	}
	if cmd.Flags().Changed("url") {
		spec.URL = editURL
	}
	if editClearHeader {
		spec.Headers = nil
	}
	if err := editFlags.apply(spec); err != nil {
		return err
	}

	if err := store.SaveRequest(spec); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	format.PrintSpec(spec)
	return nil
}
