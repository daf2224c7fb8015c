// Package main implements the wasmsig CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wasmsig/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "wasmsig",
	Short: "Native signature inference for JS library symbols",
	Long: `wasmsig infers native calling-convention signatures for JS library
functions by compiling a generated stub under both wasm32 and wasm64
and reconciling the resulting import types.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
