package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vedsharma/reqpad/internal/format"
	"github.com/vedsharma/reqpad/internal/model"
	"github.com/vedsharma/reqpad/internal/storage"
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View sent requests",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "n", 10, "Number of entries to show")

	showCmd := &cobra.Command{
		Use:   "show <id or index>",
		Short: "Show the full response of a sent request",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShow,
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}

	historyCmd.AddCommand(showCmd, clearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.LoadHistory(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	format.PrintHistoryList(entries)
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer store.Close()

	entry, err := resolveHistoryEntry(store, args[0])
	if err != nil {
		return err
	}
	format.PrintHistoryEntry(entry)
	return nil
}

// resolveHistoryEntry accepts a 1-based index (newest first) or an entry id
func resolveHistoryEntry(store *storage.SQLiteStorage, ref string) (*model.HistoryEntry, error) {
	if index, err := strconv.Atoi(ref); err == nil && index > 0 {
		entries, err := store.LoadHistory(index)
		if err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
		if index <= len(entries) {
			return &entries[index-1], nil
		}
	}

	entry, err := store.GetHistoryEntry(ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("history entry not found: %s", ref)
	}
	return entry, err
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	defer store.Close()

	if err := store.ClearHistory(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	format.PrintSuccess("History cleared")
	return nil
}
