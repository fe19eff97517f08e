package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/browse"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse topics interactively",
	Long: `Browse starts an interactive shell for working through the catalog: set
a search term and filters, page through results, mark topics, and download
the marked set as a zip archive. Type 'help' at the prompt for the command
list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			cfg.Retrieval.DownloadsDir = dir
		}

		client := newCatalogClient(cfg)
		client.Progress = nil // the session owns the terminal

		hist := openHistory(cfg)
		if hist != nil {
			defer hist.Close()
		}

		s := browse.NewSession(cfg, client, hist, os.Stdout)
		return s.Run(cmd.Context(), os.Stdin)
	},
}

func init() {
	browseCmd.Flags().String("dir", "", "destination directory for downloads (default from config)")

	rootCmd.AddCommand(browseCmd)
}
