package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/topic-engine/internal/search"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <code>",
	Short: "Show the published Q&A for a topic",
	Long: `Questions lists the questions submitted against a topic and any answers
the sponsor has published. The argument is a topic code, resolved the same
way download resolves codes; pass --uid for a raw catalog identifier.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		byUID, _ := cmd.Flags().GetBool("uid")
		asJSON, _ := cmd.Flags().GetBool("json")

		client := newCatalogClient(cfg)

		uid := args[0]
		if !byUID {
			hist := openHistory(cfg)
			if hist != nil {
				defer hist.Close()
			}
			resolved, err := resolveTopicUID(cmd.Context(), hist, client, cfg, args[0])
			if err != nil {
				return err
			}
			uid = resolved
		}

		questions, err := client.Questions(cmd.Context(), uid)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		}
		search.FormatQuestions(questions, os.Stdout)
		return nil
	},
}

func init() {
	questionsCmd.Flags().Bool("uid", false, "treat the argument as a catalog identifier, not a topic code")
	questionsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(questionsCmd)
}
