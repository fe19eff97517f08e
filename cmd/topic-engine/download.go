package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/internal/retrieve"
	"github.com/pdiddy/topic-engine/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [code...]",
	Short: "Download topic PDFs, one file or a zip archive",
	Long: `Download retrieves the published PDF for one or more topics. Arguments
are topic codes (e.g. AF244-0001), resolved to catalog identifiers through
the local history first and a live search second; pass --uid to supply raw
catalog identifiers instead.

One topic delivers a single PDF. Several deliver a zip archive with one
entry per topic, failed entries included as error notes, and a manifest.
Pass --term (and filters) to name archive entries by topic code when
downloading by --uid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		byUID, _ := cmd.Flags().GetBool("uid")
		dir, _ := cmd.Flags().GetString("dir")
		term, _ := cmd.Flags().GetString("term")
		components, _ := cmd.Flags().GetStringSlice("component")
		years, _ := cmd.Flags().GetIntSlice("year")

		if dir != "" {
			cfg.Retrieval.DownloadsDir = dir
		}

		client := newCatalogClient(cfg)
		hist := openHistory(cfg)
		if hist != nil {
			defer hist.Close()
		}

		ctx := cmd.Context()
		coord := retrieve.NewCoordinator(client, &retrieve.DirSink{Dir: cfg.Retrieval.DownloadsDir})
		coord.Progress = os.Stderr

		for _, arg := range args {
			uid := arg
			if !byUID {
				resolved, err := resolveTopicUID(ctx, hist, client, cfg, arg)
				if err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "resolved %s -> %s\n", arg, resolved)
				uid = resolved
			}
			if !coord.Selection().Contains(uid) {
				coord.Selection().Toggle(uid)
			}
		}

		// The query gives the batch its naming context: archive entries are
		// named by re-running the search the topics came from.
		q := types.NewQuery(cfg.Search.PageSize).
			WithTerm(term).
			WithComponents(components).
			WithProgramYears(years)
		if !q.IsActive() && !byUID && len(args) == 1 {
			q = q.WithTerm(args[0])
		}

		uids := coord.Selection().UIDs()
		out, err := coord.RetrieveBatch(ctx, q)
		if hist != nil && out != nil {
			if rerr := hist.RecordRetrieval(ctx, out, uids); rerr != nil {
				fmt.Fprintf(os.Stderr, "warning: recording retrieval: %v\n", rerr)
			}
		}
		return err
	},
}

// resolveTopicUID maps a topic code to its catalog identifier, preferring
// the local history ledger and falling back to a live search.
func resolveTopicUID(ctx context.Context, hist *history.Store, svc catalog.Service, cfg types.Config, code string) (string, error) {
	if hist != nil {
		rec, err := hist.TopicByCode(ctx, code)
		if err == nil {
			return rec.UID, nil
		}
		if types.ErrorCode(err) != types.ENOTFOUND {
			return "", err
		}
	}

	q := types.NewQuery(cfg.Search.PageSize).WithTerm(code)
	page, err := svc.Search(ctx, q)
	if err != nil {
		return "", err
	}
	for _, t := range page.Topics {
		if strings.EqualFold(t.Code, code) {
			return t.UID, nil
		}
	}
	return "", types.Errorf(types.ENOTFOUND, "no open topic with code %q", code)
}

func init() {
	downloadCmd.Flags().Bool("uid", false, "treat arguments as catalog identifiers, not topic codes")
	downloadCmd.Flags().String("dir", "", "destination directory (default from config)")
	downloadCmd.Flags().String("term", "", "search term the topics came from, for archive entry naming")
	downloadCmd.Flags().StringSlice("component", nil, "component filter for archive entry naming")
	downloadCmd.Flags().IntSlice("year", nil, "program-year filter for archive entry naming")

	rootCmd.AddCommand(downloadCmd)
}
