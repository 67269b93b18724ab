package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sppin/internal/taxa"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var (
		authorities []string
		nameSource  string
		sourceDate  string
		formatFlag  string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <search-key|name>",
		Short: "Resolve a name or taxon id against the configured authorities",
		Long: "Resolve a scientific name or a qualified search key such as \"TSN:180543\".\n" +
			"Bare names are cleaned before lookup; fresh cached results are reused unless --no-cache is set.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(formatFlag)
			if err != nil {
				return err
			}
			key, err := taxa.DeriveSearchKey(strings.Join(args, " "))
			if err != nil {
				return err
			}
			svc, err := ctx.lookupService(authorities)
			if err != nil {
				return err
			}
			prov := taxa.Provenance{NameSource: nameSource, SourceDate: sourceDate}
			envelopes, err := svc.LookupAll(cmd.Context(), key, prov, noCache)
			if err != nil {
				return err
			}

			switch resolveFormat(cmd, format) {
			case formatJSON:
				return writeJSON(cmd, envelopes)
			case formatYAML:
				return writeYAML(cmd, envelopes)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), renderEnvelopes(key, envelopes))
				return nil
			}
		},
	}

	cmd.Flags().StringSliceVarP(&authorities, "authority", "a", nil, "Authorities to query (itis, worms, iucn, natureserve); defaults to all enabled")
	cmd.Flags().StringVar(&nameSource, "name-source", "", "Where the name came from, recorded with the result")
	cmd.Flags().StringVar(&sourceDate, "source-date", "", "Date of the name source, recorded with the result")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(formatAuto), "Output format: auto, json, yaml, table")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip cached results and query the authorities")
	return cmd
}

func renderEnvelopes(key taxa.SearchKey, envelopes []taxa.Envelope) string {
	view := newTableView("Authority", "Status", "Message", "Scientific Name", "Rank", "Common Name", "Cached", "URL").
		withTitle(key.String()).
		wrapAt(2, 40).
		wrapAt(7, 60)
	for _, env := range envelopes {
		name, rank, common, url := "-", "-", "-", "-"
		if s := env.Summary; s != nil {
			name = fallback(s.ScientificName, "-")
			rank = fallback(s.Rank, "-")
			common = fallback(s.CommonName, "-")
			url = fallback(s.AuthorityURL, "-")
		}
		view.add(env.Authority, titleCase(string(env.Status)), env.StatusMessage, name, rank, common, yesNo(env.FromCache), url)
	}
	return view.render()
}
