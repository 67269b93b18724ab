package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sppin/internal/cache"
	"sppin/internal/config"
	"sppin/internal/taxa"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the result cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheCheckCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var (
		authority  string
		formatFlag string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached results",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			manager, err := ctx.requireCache()
			if err != nil {
				return err
			}
			entries, err := manager.List(cmd.Context(), authority)
			if err != nil {
				return err
			}

			switch resolveFormat(cmd, format) {
			case formatJSON:
				return writeJSON(cmd, entryViews(manager, entries))
			case formatYAML:
				return writeYAML(cmd, entryViews(manager, entries))
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			view := newTableView("ID", "Authority", "Search Key", "Status", "Message", "Processed", "Fresh").
				alignRight(0).
				wrapAt(4, 40)
			for _, e := range entries {
				view.add(
					strconv.FormatInt(e.ID, 10),
					e.Authority,
					e.SearchKey.String(),
					titleCase(string(e.Status)),
					e.StatusMessage,
					e.DateProcessed.Format(time.DateTime),
					yesNo(manager.IsFresh(e)),
				)
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
	cmd.Flags().StringVarP(&authority, "authority", "a", "", "Only list entries for this authority")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(formatAuto), "Output format: auto, json, yaml, table")
	return cmd
}

type entryView struct {
	ID            int64       `json:"id" yaml:"id"`
	Authority     string      `json:"authority" yaml:"authority"`
	SearchKey     string      `json:"search_key" yaml:"search_key"`
	Status        taxa.Status `json:"status" yaml:"status"`
	StatusMessage string      `json:"status_message" yaml:"status_message"`
	CorrelationID string      `json:"correlation_id,omitempty" yaml:"correlation_id,omitempty"`
	DateProcessed time.Time   `json:"date_processed" yaml:"date_processed"`
	Fresh         bool        `json:"fresh" yaml:"fresh"`
}

func entryViews(manager *cache.Manager, entries []cache.Entry) []entryView {
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, entryView{
			ID:            e.ID,
			Authority:     e.Authority,
			SearchKey:     e.SearchKey.String(),
			Status:        e.Status,
			StatusMessage: e.StatusMessage,
			CorrelationID: e.CorrelationID,
			DateProcessed: e.DateProcessed,
			Fresh:         manager.IsFresh(e),
		})
	}
	return views
}

func newCacheCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		authority  string
		flagged    bool
		taxonIDs   bool
		formatFlag string
	)
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Report which names in a file still need resolving",
		Long: "Without --flagged, prints the search keys that have no fresh cached result.\n" +
			"With --flagged, prints every key annotated with whether any cached result exists.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			manager, err := ctx.requireCache()
			if err != nil {
				return err
			}
			lines, err := readInputFile(args[0])
			if err != nil {
				return err
			}
			keys := make([]taxa.SearchKey, 0, len(lines))
			for _, line := range lines {
				var key taxa.SearchKey
				if taxonIDs {
					key = taxa.TaxonIDKey(line)
				} else if key, err = taxa.DeriveSearchKey(line); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped %q: %v\n", line, err)
					continue
				}
				keys = append(keys, key)
			}

			if flagged {
				result, err := manager.FilterFlagged(cmd.Context(), authority, keys)
				if err != nil {
					return err
				}
				switch resolveFormat(cmd, format) {
				case formatJSON:
					return writeJSON(cmd, result)
				case formatYAML:
					return writeYAML(cmd, result)
				}
				view := newTableView("Search Key", "In Cache")
				for _, f := range result {
					view.add(f.Key.String(), yesNo(f.InCache))
				}
				fmt.Fprintln(cmd.OutOrStdout(), view.render())
				return nil
			}

			pending, err := manager.FilterProcessable(cmd.Context(), authority, keys, manager.FreshnessDays())
			if err != nil {
				return err
			}
			switch resolveFormat(cmd, format) {
			case formatJSON:
				return writeJSON(cmd, pending)
			case formatYAML:
				return writeYAML(cmd, pending)
			}
			out := cmd.OutOrStdout()
			for _, key := range pending {
				fmt.Fprintln(out, key.String())
			}
			fmt.Fprintf(out, "%d of %d need resolving\n", len(pending), len(keys))
			return nil
		},
	}
	cmd.Flags().StringVarP(&authority, "authority", "a", config.AuthorityITIS, "Authority whose cache entries are checked")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "Annotate every key instead of filtering")
	cmd.Flags().BoolVar(&taxonIDs, "taxon-ids", false, "Treat each line as a native taxon id")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(formatAuto), "Output format: auto, json, yaml, table")
	return cmd
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var (
		authority string
		olderThan int
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete stale cached results that have been superseded",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.requireCache()
			if err != nil {
				return err
			}
			removed, err := manager.Prune(cmd.Context(), authority, olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&olderThan, "older-than", 0, "Age in days beyond which superseded entries are removed")
	cmd.Flags().StringVarP(&authority, "authority", "a", "", "Only prune entries for this authority")
	_ = cmd.MarkFlagRequired("older-than")
	return cmd
}
