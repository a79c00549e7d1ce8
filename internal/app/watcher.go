package app

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	fsw "github.com/corey/bbfs/internal/adapters/fsnotify"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/ports"
	"go.uber.org/zap"
)

// Inbox analyzes history files dropped into a watched directory and writes
// each report to OutDir as <name>.report.txt.
type Inbox struct {
	watcher ports.Watcher
	outDir  string
	topN    int
	log     *zap.Logger

	reports atomic.Int64

	// OnReport, if set, is called after each report is written.
	OnReport func(historyPath, reportPath string, a *bbfs.Analysis)
}

// NewInbox creates an inbox that writes reports into outDir.
func NewInbox(w ports.Watcher, outDir string, topN int, log *zap.Logger) *Inbox {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inbox{watcher: w, outDir: outDir, topN: topN, log: log}
}

// Start watches dir. Files already present are not analyzed; only files
// created or modified after Start.
func (in *Inbox) Start(dir string) error {
	if err := os.MkdirAll(in.outDir, 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	return in.watcher.Watch(dir, in.onFile)
}

// Stop stops watching.
func (in *Inbox) Stop() error {
	return in.watcher.Stop()
}

// Reports returns how many reports have been written.
func (in *Inbox) Reports() int64 {
	return in.reports.Load()
}

func (in *Inbox) onFile(path string) {
	if _, err := in.Process(path); err != nil {
		in.log.Error("inbox analysis failed", zap.String("file", path), zap.Error(err))
	}
}

// Process analyzes one history file and writes its report. A missing or
// unreadable history still produces a report (the empty-data message).
func (in *Inbox) Process(historyPath string) (string, error) {
	history, err := bbfs.LoadFile(historyPath)
	if err != nil {
		if !errors.Is(err, bbfs.ErrSourceUnavailable) {
			return "", err
		}
		in.log.Warn("history source unavailable", zap.String("file", historyPath), zap.Error(err))
	}

	a := bbfs.Run(history, in.topN)
	reportPath := fsw.ReportPath(in.outDir, historyPath)
	if err := os.WriteFile(reportPath, []byte(a.Report()+"\n"), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	in.reports.Add(1)
	in.log.Info("inbox report written",
		zap.String("file", historyPath),
		zap.String("report", reportPath),
		zap.String("outcome", string(a.Outcome)),
		zap.Int("entries", a.Entries),
		zap.String("bbfs", a.BBFS))

	if in.OnReport != nil {
		in.OnReport(historyPath, reportPath, a)
	}
	return reportPath, nil
}
