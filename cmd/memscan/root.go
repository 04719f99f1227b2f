package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool

	// log is the process-wide diagnostic sink, injected into every
	// component that takes one.
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "memscan",
	Short: "Memscan - pattern scanner for memory images",
	Long: `Memscan scans large address spaces (captured memory images, raw dumps)
for byte patterns described by YARA-style rules. Rules come from an inline
expression or a rule file, and each match is reported with its absolute
offset, the matching rule and the matched bytes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		if quiet {
			level = zerolog.ErrorLevel
		}
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
