// casync mirrors Cognitive Architect artifacts into a Markdown vault.
//
// Usage:
//
//	casync config init
//	casync architectures
//	casync select [ID]
//	casync artifacts
//	casync instances TYPE [--type-id ID]
//	casync preview TYPE ID
//	casync sync TYPE [ID...] [--all]
//	casync diagram TYPE ID [--format svg|png] [--name N]
//	casync log [--clear]
//	casync serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casync/internal/console"
	"casync/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config    string
	vault     string
	logLevel  string
	logFormat string
	markdown  bool
}

var rootCmd = &cobra.Command{
	Use:   "casync",
	Short: "Mirror Cognitive Architect artifacts into a Markdown vault",
	Long: `casync downloads architecture artifacts (elements and diagrams) from
Cognitive Architect and writes them as Markdown notes with YAML front
matter into a local vault.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.config, "config", "", "Settings file (default <user config dir>/casync/config.yaml)")
	pf.StringVar(&rootFlags.vault, "vault", "", "Vault root directory (overrides vault_path)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")
	pf.BoolVar(&rootFlags.markdown, "markdown", false, "Print tables as Markdown")

	rootCmd.AddCommand(architecturesCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(instancesCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(diagramCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.Version = version
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(rootFlags.logFormat)
	if err != nil {
		return err
	}
	logging.Init(level, format, cmd.ErrOrStderr())
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		if h := hint(err); h != "" {
			fmt.Fprintln(os.Stderr, console.FormatInfoMessage(h))
		}
		os.Exit(1)
	}
}
