package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sppin/internal/batch"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		authorities []string
		workers     int
		taxonIDs    bool
		source      string
		formatFlag  string
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Resolve every name (or taxon id) listed in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lines, err := readInputFile(args[0])
			if err != nil {
				return err
			}
			if strings.TrimSpace(source) == "" {
				source = args[0]
			}
			var (
				items    []batch.Item
				rejected []batch.Rejection
			)
			if taxonIDs {
				items, rejected = batch.TaxonIDQueue(lines, source)
			} else {
				items, rejected = batch.NameQueue(lines, source)
			}
			stderr := cmd.ErrOrStderr()
			for _, r := range rejected {
				fmt.Fprintf(stderr, "skipped %q: %s\n", r.Input, r.Reason)
			}
			if len(items) == 0 {
				return fmt.Errorf("no valid entries in %s", args[0])
			}

			svc, err := ctx.lookupService(authorities)
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Batch.Workers
			}
			runner := batch.NewRunner(svc, batch.Options{
				Workers:  workers,
				LockPath: cfg.Paths.LockPath,
				Logger:   ctx.ensureLogger(),
			})
			reports, err := runner.Run(cmd.Context(), items)
			if err != nil {
				return err
			}

			switch resolveFormat(cmd, format) {
			case formatJSON:
				return writeJSON(cmd, reports)
			case formatYAML:
				return writeYAML(cmd, reports)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), renderReports(reports))
				return nil
			}
		},
	}

	cmd.Flags().StringSliceVarP(&authorities, "authority", "a", nil, "Authorities to query; defaults to all enabled")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent lookups (defaults to batch.workers)")
	cmd.Flags().BoolVar(&taxonIDs, "taxon-ids", false, "Treat each line as a native taxon id")
	cmd.Flags().StringVar(&source, "source", "", "Name source recorded with each result (defaults to the file path)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(formatAuto), "Output format: auto, json, yaml, table")
	return cmd
}

func readInputFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer file.Close()
	return batch.ReadLines(file)
}

func renderReports(reports []batch.Report) string {
	view := newTableView("Authority", "Total", "Skipped", "Processed", "Succeeded", "Failed", "Errored").
		alignRight(1, 2, 3, 4, 5, 6)
	for _, r := range reports {
		view.add(
			r.Authority,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Processed),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Errored),
		)
	}
	return view.render()
}
