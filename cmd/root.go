package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tutorbot",
	Short: "Conversational tutoring service",
	Long:  "Tutorbot — HTTP service that runs adaptive tutoring conversations: Q&A, quizzes, study plans, and progress tracking.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("addr", "", "Listen address (overrides TUTORBOT_ADDR env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
