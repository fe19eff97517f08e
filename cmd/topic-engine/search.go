package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/search"
	"github.com/pdiddy/topic-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the catalog for open topics",
	Long: `Search queries the public topics catalog for open and pre-release topics
matching a free-text term and optional component or program-year filters.
A query with no term and no filters does not reach the network and shows
an empty result.

Results can be saved to a YAML file with --save and shown again later,
offline, with --from.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		fromPath, _ := cmd.Flags().GetString("from")
		if fromPath != "" {
			return showSavedSearch(cmd, fromPath)
		}

		term, _ := cmd.Flags().GetString("term")
		components, _ := cmd.Flags().GetStringSlice("component")
		years, _ := cmd.Flags().GetIntSlice("year")
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		asJSON, _ := cmd.Flags().GetBool("json")
		savePath, _ := cmd.Flags().GetString("save")

		if pageSize <= 0 {
			pageSize = cfg.Search.PageSize
		}
		q := types.NewQuery(pageSize).
			WithTerm(term).
			WithComponents(components).
			WithProgramYears(years).
			WithPage(page)

		if !q.IsActive() {
			fmt.Fprintln(os.Stderr, "nothing to search: provide --term, --component, or --year")
		}

		client := newCatalogClient(cfg)
		fetcher := search.NewFetcher(client, cfg.Search)

		result, err := fetcher.Fetch(cmd.Context(), q)
		if err != nil {
			return err
		}

		if hist := openHistory(cfg); hist != nil && q.IsActive() {
			defer hist.Close()
			if err := hist.RecordSearch(cmd.Context(), result); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording search: %v\n", err)
			}
		}

		if savePath != "" {
			if err := search.WriteSavedSearch(savePath, cfg.Search, result); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "saved search to %s\n", savePath)
		}

		if asJSON {
			return search.FormatJSON(result, os.Stdout)
		}
		search.FormatTable(result, os.Stdout)
		return nil
	},
}

// showSavedSearch renders a previously saved search file without touching
// the network.
func showSavedSearch(cmd *cobra.Command, path string) error {
	ss, err := search.ReadSavedSearch(path)
	if err != nil {
		return err
	}
	q, err := ss.Query.ToQuery()
	if err != nil {
		return err
	}

	page := &types.ResultPage{
		Topics: ss.Topics,
		Total:  ss.Summary.Total,
		Query:  q,
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return search.FormatJSON(page, os.Stdout)
	}
	fmt.Fprintf(os.Stdout, "saved %s\n\n", ss.Summary.Timestamp.Format("2006-01-02 15:04"))
	search.FormatTable(page, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("term", "", "free-text search term")
	searchCmd.Flags().StringSlice("component", nil, "filter by component (e.g. ARMY, NAVY, USAF; repeatable)")
	searchCmd.Flags().IntSlice("year", nil, "filter by program year (repeatable)")
	searchCmd.Flags().Int("page", 0, "zero-based page index")
	searchCmd.Flags().Int("page-size", 0, "results per page (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "save the query and results to a YAML file")
	searchCmd.Flags().String("from", "", "show a previously saved search file (offline)")

	rootCmd.AddCommand(searchCmd)
}
