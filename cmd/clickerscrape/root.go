// Package main provides the entry point for the clickerscrape CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for clickerscrape.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clickerscrape",
		Short: "Recover attendance codes from recorded lecture videos",
		Long: `clickerscrape recovers in-class attendance codes from recorded lecture videos.

It opens the lecture viewer in a headless browser, runs OCR over the
thumbnail gallery, and falls back to seeking through the video itself when
the gallery yields nothing. Discovered codes are printed, reported, and
recorded in a local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
