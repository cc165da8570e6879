package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/kpcrkit/cmd/kpcrscan/logger"
)

var (
	// Global flags
	verbose  bool
	quiet    bool
	jsonOut  bool
	logDir   string
	logDebug bool
)

// out formats human-readable output; decimal counts get digit grouping.
var out = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "kpcrscan",
	Short: "Locate the Windows KPCR in a raw memory image",
	Long: `kpcrscan finds the kernel processor control region (KPCR) in a memory
image by scanning kernel space for its self-referencing pointers. No symbols,
page tables or base addresses are required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if logDebug {
			level = slog.LevelDebug
		}
		return logger.Init(logger.Options{
			Enabled: logDir != "",
			LogDir:  logDir,
			Level:   level,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write a JSON log file to this directory")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "log-debug", false, "Include per-run debug records in the log file")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v\n", err)
		stop()
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		out.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		out.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// hex formats an address the way the text output shows them.
func hex(v uint64) string {
	return fmt.Sprintf("0x%08x", v)
}
