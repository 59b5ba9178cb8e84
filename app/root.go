// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notevault",
	Short: "NoteVault is a web-based note-taking application",
	Long: `NoteVault is a web-based note-taking application with guest and
AWS Cognito sign-in, categories, markdown rendering, sharing and export.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
