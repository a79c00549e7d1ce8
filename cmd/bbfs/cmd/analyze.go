package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	analyzeTopN      int
	analyzePlain     bool
	analyzeJSON      bool
	analyzePositions bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE... | -",
	Short: "Analyze history files (no daemon needed)",
	Long: `Analyze one or more history files, one entry per line. Use - for stdin.
Several files are analyzed in parallel and printed in argument order.
A missing file prints the empty-data report instead of failing.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().IntVarP(&analyzeTopN, "top", "n", 0, "number of top digits (default from config, 7)")
	analyzeCmd.Flags().BoolVar(&analyzePlain, "plain", false, "print the report without terminal styling")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the structured analysis as JSON")
	analyzeCmd.Flags().BoolVar(&analyzePositions, "positions", false, "append per-position digit rankings")
}

// fileAnalysis is one file's result, in argument order.
type fileAnalysis struct {
	File     string         `json:"file"`
	Analysis *bbfs.Analysis `json:"analysis"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	topN := analyzeTopN
	if topN <= 0 {
		topN = settings.TopN
	}

	results := make([]fileAnalysis, len(args))
	var g errgroup.Group
	g.SetLimit(settings.BatchWorkers)
	for i, path := range args {
		g.Go(func() error {
			history, err := loadHistory(path)
			if err != nil {
				return err
			}
			results[i] = fileAnalysis{File: path, Analysis: bbfs.Run(history, topN)}
			logger.Debug("analyzed",
				zap.String("file", path),
				zap.Int("entries", results[i].Analysis.Entries),
				zap.String("outcome", string(results[i].Analysis.Outcome)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0].Analysis)
		}
		return enc.Encode(results)
	}

	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s── %s ──%s\n", colorGray, r.File, colorReset)
		}
		report := r.Analysis.Report()
		if analyzePositions {
			report += formatPositions(r.Analysis)
		}
		if analyzePlain {
			fmt.Println(report)
		} else {
			fmt.Println(render(report))
		}
	}
	return nil
}

// loadHistory reads a history from a path, or stdin for "-". An unavailable
// file is logged and yields an empty history; only stdin read errors fail.
func loadHistory(path string) ([]string, error) {
	if path == "-" {
		history, err := bbfs.Load(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return history, nil
	}

	history, err := bbfs.LoadFile(path)
	if errors.Is(err, bbfs.ErrSourceUnavailable) {
		logger.Warn("history source unavailable", zap.String("file", path), zap.Error(err))
		return history, nil
	}
	return history, err
}
