package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/polyglotscan/engine/internal/config"
	"github.com/polyglotscan/engine/internal/evaluator"
	"github.com/polyglotscan/engine/internal/filecache"
	"github.com/polyglotscan/engine/internal/findings"
	"github.com/polyglotscan/engine/internal/ignore"
	"github.com/polyglotscan/engine/internal/logger"
	"github.com/polyglotscan/engine/internal/rules"
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan one or more files or directories against a rule set",
	Long: `scan walks the given paths (or the current directory if none are
given), parses every file it recognizes, and evaluates --rules against
them, printing each finding.`,
	RunE: scanCommand,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func scanCommand(cmd *cobra.Command, args []string) error {
	if rulesPath == "" {
		return fmt.Errorf("--rules is required")
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if baseline != "" {
		cfg.BaselinePath = baseline
	}

	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	paths, err := expandPaths(args)
	if err != nil {
		return fmt.Errorf("collect files: %w", err)
	}

	eval := evaluator.New(cfg)
	if logPath != "" {
		audit, err := logger.New(logPath)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer audit.Close()
		eval = eval.WithAuditLogger(audit)
	}

	found, metrics, err := eval.Analyze(context.Background(), paths, ruleSet, cfg, filecache.NewInMemory())
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	switch format {
	case "json":
		err = printJSON(found)
	default:
		printText(found, metrics)
	}
	if err != nil {
		return err
	}

	if len(found) > 0 {
		os.Exit(1)
	}
	return nil
}

// expandPaths walks every entry of roots, collecting regular files; a root
// that is itself a file is included as-is. Each directory root's own
// .staticignore (gitignore-glob syntax, relative to that root) excludes
// matching files and directories from the walk.
func expandPaths(roots []string) ([]string, error) {
	var out []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, root)
			continue
		}
		matcher, err := ignore.Load(root)
		if err != nil {
			return nil, err
		}
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if d.IsDir() {
				if d.Name() == ".git" || matcher.Match(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if matcher.Match(rel) {
				return nil
			}
			out = append(out, path)
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return out, nil
}

func printText(found []findings.Finding, metrics *evaluator.Metrics) {
	for _, f := range found {
		fmt.Printf("%s:%d:%d [%s] %s — %s\n", f.File, f.Line, f.Column, f.Severity, f.RuleID, f.Message)
	}
	if metrics != nil {
		fmt.Printf("\nscanned %d file(s), %d finding(s), run %s\n", metrics.FilesParsed, len(found), metrics.RunID)
	}
}

func printJSON(found []findings.Finding) error {
	data, err := json.MarshalIndent(found, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
