package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local ledger of searches and retrievals",
	Long: `History reads the local SQLite ledger that search, browse, and download
write to. Every search, every topic ever seen, and every retrieval outcome
is queryable offline.`,
}

var historySearchesCmd = &cobra.Command{
	Use:   "searches",
	Short: "List recent searches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := mustHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := hist.RecentSearches(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no searches recorded")
			return nil
		}

		fmt.Printf("%-6s  %-20s  %-16s  %-5s  %-6s  %s\n", "ID", "Term", "Filters", "Page", "Total", "When")
		for _, r := range records {
			var filters []string
			if len(r.Components) > 0 {
				filters = append(filters, strings.Join(r.Components, ","))
			}
			for _, y := range r.ProgramYears {
				filters = append(filters, fmt.Sprintf("%d", y))
			}
			fmt.Printf("%-6d  %-20s  %-16s  %-5d  %-6d  %s\n",
				r.ID, clip(r.Term, 20), clip(strings.Join(filters, " "), 16),
				r.Page, r.Total, r.SearchedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyRetrievalsCmd = &cobra.Command{
	Use:   "retrievals",
	Short: "List recent retrieval operations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := mustHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := hist.Retrievals(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no retrievals recorded")
			return nil
		}

		fmt.Printf("%-8s  %-6s  %-10s  %-5s  %-24s  %s\n", "ID", "Kind", "State", "Count", "Artifact", "When")
		for _, r := range records {
			detail := r.Artifact
			if r.State == types.StateFailed {
				detail = clip(r.Cause, 24)
			}
			fmt.Printf("%-8s  %-6s  %-10s  %-5d  %-24s  %s\n",
				shortID(r.ID), r.Kind, r.State, r.Count, detail,
				r.Started.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historySummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show ledger-wide counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := mustHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		sum, err := hist.Summary(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("searches:    %d\n", sum.Searches)
		fmt.Printf("topics seen: %d\n", sum.Topics)
		fmt.Printf("retrievals:  %d (%d delivered, %d failed)\n",
			sum.Retrievals, sum.Delivered, sum.Failed)
		return nil
	},
}

var historyFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Full-text search over every topic ever seen",
	Long: `Find searches the ledger's topic index (codes, titles, keywords) without
touching the network. The query uses SQLite FTS5 syntax, so bare words,
phrases in quotes, and AND/OR all work.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := mustHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		records, err := hist.FindTopics(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no matching topics in history")
			return nil
		}

		fmt.Printf("%-14s  %-60s  %-8s  %s\n", "Code", "Title", "Comp", "Last seen")
		for _, r := range records {
			fmt.Printf("%-14s  %-60s  %-8s  %s\n",
				r.Code, clip(r.Title, 60), r.Component,
				r.LastSeen.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the whole ledger to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		hist, err := mustHistory()
		if err != nil {
			return err
		}
		defer hist.Close()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return hist.ExportJSON(cmd.Context(), os.Stdout)
		}
		return hist.ExportYAML(cmd.Context(), os.Stdout)
	},
}

// mustHistory opens the ledger or fails; unlike the other commands, the
// history command is useless without one.
func mustHistory() (*history.Store, error) {
	cfg := loadConfig()
	if cfg.History.Path == "" {
		return nil, types.Errorf(types.EINVALID, "history is disabled: set history.path in the config")
	}
	return history.NewStore(cfg.History)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func shortID(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:8]
}

func init() {
	historySearchesCmd.Flags().Int("limit", 20, "maximum rows to show")
	historyRetrievalsCmd.Flags().Int("limit", 20, "maximum rows to show")
	historyFindCmd.Flags().Int("limit", 20, "maximum rows to show")
	historyExportCmd.Flags().Bool("json", false, "export as JSON instead of YAML")

	historyCmd.AddCommand(historySearchesCmd)
	historyCmd.AddCommand(historyRetrievalsCmd)
	historyCmd.AddCommand(historySummaryCmd)
	historyCmd.AddCommand(historyFindCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
