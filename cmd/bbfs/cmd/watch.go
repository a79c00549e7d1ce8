package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fsw "github.com/corey/bbfs/internal/adapters/fsnotify"
	"github.com/corey/bbfs/internal/app"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/spf13/cobra"
)

var watchOut string

var watchCmd = &cobra.Command{
	Use:   "watch [DIR]",
	Short: "Analyze history files as they land in DIR (foreground, no daemon)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchOut, "out", "o", "", "report directory (default .bbfs/reports)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root).WithInbox(settings.InboxDir, root)

	dir := paths.InboxDir
	if len(args) == 1 {
		dir = args[0]
	}
	out := watchOut
	if out == "" {
		out = paths.ReportsDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create inbox: %w", err)
	}

	w, err := fsw.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	inbox := app.NewInbox(w, out, settings.TopN, logger)
	inbox.OnReport = func(historyPath, reportPath string, a *bbfs.Analysis) {
		bbfsSet := a.BBFS
		if bbfsSet == "" {
			bbfsSet = "-"
		}
		fmt.Printf("  %s%s%s → %s  %sBBFS %s%s\n",
			colorCyan, historyPath, colorReset, reportPath, colorBold, bbfsSet, colorReset)
	}
	if err := inbox.Start(dir); err != nil {
		return err
	}
	defer inbox.Stop()

	fmt.Printf("⚡ watching %s (reports → %s), Ctrl-C to stop\n", dir, out)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	<-sigCh

	fmt.Printf("\n⚡ %d reports written\n", inbox.Reports())
	return nil
}
