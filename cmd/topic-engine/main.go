// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the topic-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/topic-engine/internal/catalog"
	"github.com/pdiddy/topic-engine/internal/history"
	"github.com/pdiddy/topic-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the topic-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "topic-engine",
	Short: "Search, browse, and retrieve solicitation topics",
	Long: `topic-engine works against the public solicitation topics catalog. It
searches open topics, keeps an interactive selection, downloads topic PDFs
one at a time or as a zip archive, and records everything it has seen in a
local history ledger.

Each operation is a subcommand: search, browse, download, questions,
history, and serve (an HTTP gateway for browser frontends).`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./topic-engine.yaml or ~/.config/topic-engine/topic-engine.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("topic-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "topic-engine"))
		}
	}

	viper.SetEnvPrefix("TOPIC_ENGINE")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("catalog.base_url", "https://www.dodsbirsttr.mil/topics/api/public")
	viper.SetDefault("catalog.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("catalog.referer", "https://www.dodsbirsttr.mil/")
	viper.SetDefault("catalog.search_timeout", 30*time.Second)
	viper.SetDefault("catalog.download_timeout", 60*time.Second)
	viper.SetDefault("catalog.connect_timeout", 5*time.Second)
	viper.SetDefault("catalog.retries", 1)
	viper.SetDefault("catalog.rate_limit", 4.0)
	viper.SetDefault("catalog.concurrency", 3)

	viper.SetDefault("search.page_size", 10)
	viper.SetDefault("search.max_page_size", 100)
	viper.SetDefault("search.staleness", 5*time.Minute)

	viper.SetDefault("retrieval.downloads_dir", "downloads")
	viper.SetDefault("retrieval.inspect_pdf", true)

	viper.SetDefault("history.path", defaultHistoryPath())

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.allowed_origins", []string{"*"})
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "topic-engine.db"
	}
	return filepath.Join(home, ".local", "share", "topic-engine", "history.db")
}

// loadConfig materializes the viper state into the typed configuration.
func loadConfig() types.Config {
	return types.Config{
		Catalog: types.CatalogConfig{
			BaseURL:         viper.GetString("catalog.base_url"),
			UserAgent:       viper.GetString("catalog.user_agent"),
			Referer:         viper.GetString("catalog.referer"),
			SearchTimeout:   viper.GetDuration("catalog.search_timeout"),
			DownloadTimeout: viper.GetDuration("catalog.download_timeout"),
			ConnectTimeout:  viper.GetDuration("catalog.connect_timeout"),
			Retries:         viper.GetInt("catalog.retries"),
			RateLimit:       viper.GetFloat64("catalog.rate_limit"),
			Concurrency:     viper.GetInt("catalog.concurrency"),
		},
		Search: types.SearchConfig{
			PageSize:    viper.GetInt("search.page_size"),
			MaxPageSize: viper.GetInt("search.max_page_size"),
			Staleness:   viper.GetDuration("search.staleness"),
		},
		Retrieval: types.RetrievalConfig{
			DownloadsDir: viper.GetString("retrieval.downloads_dir"),
			InspectPDF:   viper.GetBool("retrieval.inspect_pdf"),
		},
		History: types.HistoryConfig{
			Path: viper.GetString("history.path"),
		},
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		},
	}
}

// newCatalogClient builds the catalog client every command shares.
func newCatalogClient(cfg types.Config) *catalog.Client {
	c := catalog.NewClient(cfg.Catalog)
	c.InspectPDF = cfg.Retrieval.InspectPDF
	c.Progress = os.Stderr
	return c
}

// openHistory opens the ledger, or returns nil when history is disabled.
// Ledger problems are reported but never block the command.
func openHistory(cfg types.Config) *history.Store {
	if cfg.History.Path == "" {
		return nil
	}
	s, err := history.NewStore(cfg.History)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: history disabled: %v\n", err)
		return nil
	}
	return s
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
