package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Highscore commands",
	}

	cmd.AddCommand(newScoresTopCmd())
	cmd.AddCommand(newScoresMeCmd())

	return cmd
}

func newScoresTopCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the highscore table",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/scores"
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result Leaderboard
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Number of entries to show")

	return cmd
}

func newScoresMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show your best score",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result BestScore

			if err := client.Get("/api/v1/scores/me", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
