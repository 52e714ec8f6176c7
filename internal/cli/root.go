// Package cli wires the engine's packages into a Cobra command tree. The
// CLI itself holds no engine logic, only flag parsing and output formatting.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	rulesPath  string
	configPath string
	logPath    string
	baseline   string
	format     string
)

var rootCmd = &cobra.Command{
	Use:   "polyglotscan",
	Short: "polyglotscan - multi-language static analysis engine",
	Long: `polyglotscan parses source files into a shared intermediate
representation, evaluates a rule set (native patterns, Semgrep-dialect
YAML, or compiled Rego/WASM policies) against them, and reports findings
with taint-aware sanitizer tracking.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to a rule directory (required)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to an engine config YAML file")
	rootCmd.PersistentFlags().StringVar(&logPath, "audit-log", "", "Path to an audit log file (default: disabled)")
	rootCmd.PersistentFlags().StringVar(&baseline, "baseline", "", "Path to a baseline file of findings to suppress")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text or json")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
