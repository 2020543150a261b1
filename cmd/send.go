package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/engine"
	"github.com/vedsharma/reqpad/internal/format"
	httpclient "github.com/vedsharma/reqpad/internal/http"
	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/storage"
)

var errCanceled = errors.New("request canceled")

// sensitiveHeaders are redacted from responses before they are stored in history
var sensitiveHeaders = map[string]bool{
	"authorization":        true,
	"proxy-authorization":  true,
	"www-authenticate":     true,
	"cookie":               true,
	"set-cookie":           true,
	"x-api-key":            true,
	"api-key":              true,
	"x-auth-token":         true,
	"x-csrf-token":         true,
	"x-xsrf-token":         true,
	"x-amz-security-token": true,
	"x-access-token":       true,
	"x-refresh-token":      true,
	"x-session-token":      true,
}

// sendOptions controls how completed sends are shown and recorded
type sendOptions struct {
	filter  string
	verbose bool
	// history is nil when the send should not be recorded
	history *storage.SQLiteStorage
}

var (
	sendFilter    string
	sendNoHistory bool
)

func init() {
	sendCmd := &cobra.Command{
		Use:   "send <id or index>...",
		Short: "Send saved requests",
		Long: `Send one or more saved requests. Several requests are sent concurrently
and printed as they complete. Press Ctrl-C to cancel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSend,
	}
	sendCmd.Flags().StringVarP(&sendFilter, "filter", "f", "", "Print only this path of a JSON response (e.g. data.items.#.id)")
	sendCmd.Flags().BoolVar(&sendNoHistory, "no-history", false, "Don't save to history")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open workspace: %w", err)
	}
	defer store.Close()

	specs := make([]*model.Http, 0, len(args))
	for _, arg := range args {
		spec, err := resolveRequest(store, arg)
		if err != nil {
			return err
		}
		specs = append(specs, spec)
	}

	opts := sendOptions{filter: sendFilter, verbose: cfg.Verbose}
	if !sendNoHistory {
		opts.history = store
	}

	if len(specs) == 1 {
		return sendOne(cmd.Context(), specs[0], opts)
	}
	return sendAll(cmd.Context(), specs, opts)
}

// sendOne runs a single request through a lifecycle, polling it on every tick
// until it completes or the user interrupts
func sendOne(ctx context.Context, spec *model.Http, opts sendOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	lifecycle := engine.NewLifecycle(engine.New(newClient()))
	if err := lifecycle.Send(ctx, spec); err != nil {
		return err
	}

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	for lifecycle.Poll() == engine.Pending {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			lifecycle.Cancel()
			return errCanceled
		}
	}

	result, _ := lifecycle.Result()
	return report(spec, result, opts)
}

// sendAll dispatches every request at once on a board and reports each one as
// a tick observes it complete
func sendAll(ctx context.Context, specs []*model.Http, opts sendOptions) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	board := engine.NewBoard(engine.New(newClient()))
	for i := len(specs) - 1; i >= 0; i-- {
		board.Insert(specs[i])
	}

	var errs *multierror.Error
	finish := func(entry *engine.Entry) {
		result, _ := entry.Lifecycle.Result()
		format.PrintHeading(fmt.Sprintf("%s %s", entry.Spec.DisplayName(), entry.Spec.URL))
		if err := report(entry.Spec, result, opts); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", entry.Spec.DisplayName(), err))
		}
		entry.Lifecycle.Acknowledge()
	}

	pending := 0
	for _, entry := range board.Entries() {
		if err := board.Send(ctx, entry.Spec.ID()); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		// rejected URLs complete without being dispatched
		if entry.Lifecycle.State() == engine.Completed {
			finish(entry)
			continue
		}
		pending++
	}

	ticker := time.NewTicker(cfg.Tick)
	defer ticker.Stop()

	for pending > 0 {
		select {
		case <-ticker.C:
			for _, entry := range board.Tick() {
				finish(entry)
				pending--
			}
		case <-ctx.Done():
			board.Clear()
			return multierror.Append(errs, errCanceled)
		}
	}

	return errs.ErrorOrNil()
}

// report prints a finished send and records it in history
func report(spec *model.Http, result engine.Result, opts sendOptions) error {
	if opts.history != nil {
		recordHistory(opts.history, spec, result)
	}

	if result.Err != nil {
		return describeSendError(result.Err)
	}
	if opts.filter != "" {
		return format.PrintFiltered(result.Response, opts.filter)
	}
	format.PrintResponse(result.Response, opts.verbose)
	return nil
}

func describeSendError(err error) error {
	var sendErr *httpclient.SendError
	if !errors.As(err, &sendErr) {
		return fmt.Errorf("request failed: %w", err)
	}
	switch sendErr.Kind {
	case httpclient.ErrURL:
		return fmt.Errorf("invalid URL: %w", err)
	case httpclient.ErrFile:
		return fmt.Errorf("failed to read form file: %w", err)
	case httpclient.ErrCanceled:
		return errCanceled
	default:
		return fmt.Errorf("request failed: %w", err)
	}
}

func recordHistory(store *storage.SQLiteStorage, spec *model.Http, result engine.Result) {
	entry := &model.HistoryEntry{
		RequestID: spec.ID(),
		Method:    spec.Method,
		URL:       spec.URL,
	}
	if result.Err != nil {
		entry.Error = result.Err.Error()
	} else {
		resp := *result.Response
		resp.Headers = redactHeaders(resp.Headers)
		entry.Response = &resp
	}

	if err := store.AddToHistory(entry); err != nil {
		format.PrintWarning(fmt.Sprintf("failed to save history: %v", err))
	}
}

// redactHeaders returns a copy of headers with sensitive values replaced
func redactHeaders(headers []model.Header) []model.Header {
	if headers == nil {
		return nil
	}

	filtered := make([]model.Header, len(headers))
	for i, h := range headers {
		if sensitiveHeaders[strings.ToLower(h.Key)] {
			h.Value = "[REDACTED]"
		}
		filtered[i] = h
	}
	return filtered
}
