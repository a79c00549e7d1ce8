// Package app wires together all adapters and domain logic.
// It provides lifecycle management for the bbfs daemon: create, start, stop.
package app

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corey/bbfs/internal/adapters/bbolt"
	fsw "github.com/corey/bbfs/internal/adapters/fsnotify"
	"github.com/corey/bbfs/internal/adapters/socket"
	"github.com/corey/bbfs/internal/adapters/web"
	"github.com/corey/bbfs/internal/config"
	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/corey/bbfs/internal/domain/chat"
	"github.com/corey/bbfs/internal/domain/status"
	"go.uber.org/zap"
)

// pruneInterval is how often abandoned uploads are swept.
const pruneInterval = 10 * time.Minute

// App is the top-level container wiring all components together.
type App struct {
	ProjectRoot string
	Paths       *Paths
	Settings    config.Config

	Store     *bbolt.Store
	Bot       *chat.Bot
	Server    *socket.Server
	WebServer *web.Server
	Inbox     *Inbox

	log      *zap.Logger
	sockPath string
	started  time.Time

	messages atomic.Int64
	analyses atomic.Int64

	statusMu sync.Mutex

	stopPrune chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Config holds initialization parameters for the App.
type Config struct {
	ProjectRoot string
	Settings    config.Config
	SocketPath  string      // default: socket.SocketPath(ProjectRoot)
	Logger      *zap.Logger // default: no-op
}

// New creates an App with all dependencies wired. Does not start services.
func New(cfg Config) (*App, error) {
	if cfg.ProjectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = socket.SocketPath(cfg.ProjectRoot)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	paths := NewPaths(cfg.ProjectRoot).WithInbox(cfg.Settings.InboxDir, cfg.ProjectRoot)
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}

	store, err := bbolt.NewStore(paths.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	watcher, err := fsw.NewWatcher()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	a := &App{
		ProjectRoot: cfg.ProjectRoot,
		Paths:       paths,
		Settings:    cfg.Settings,
		Store:       store,
		log:         log,
		sockPath:    cfg.SocketPath,
		stopPrune:   make(chan struct{}),
	}
	a.Bot = chat.New(store, log.Named("chat"), chat.Options{
		MaxUploadBytes: cfg.Settings.MaxUploadBytes,
		UploadTTL:      cfg.Settings.UploadTTL,
		DefaultTopN:    cfg.Settings.TopN,
	})
	a.Inbox = NewInbox(watcher, paths.ReportsDir, cfg.Settings.TopN, log.Named("inbox"))
	a.Inbox.OnReport = func(historyPath, _ string, result *bbfs.Analysis) {
		a.writeStatus(result, historyPath)
	}
	a.Server = socket.NewServer(cfg.SocketPath, a, log.Named("socket"))
	a.WebServer = web.NewServer(a, paths.PortFile, log.Named("web"))
	return a, nil
}

// Start brings up the socket server (fatal on failure), then the HTTP API
// and inbox watcher (non-fatal), and the upload pruner.
func (a *App) Start() error {
	a.started = time.Now()
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	httpPort := a.Settings.HTTPPort
	if httpPort == 0 {
		httpPort = web.DefaultPort(a.ProjectRoot)
	}
	if err := a.WebServer.Start(httpPort); err != nil {
		a.log.Warn("HTTP API unavailable", zap.Error(err))
	}

	if err := a.Inbox.Start(a.Paths.InboxDir); err != nil {
		a.log.Warn("inbox watcher unavailable", zap.Error(err))
	}

	if err := os.WriteFile(a.Paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		a.log.Warn("write pid file", zap.Error(err))
	}

	if _, err := a.Bot.Prune(); err != nil {
		a.log.Warn("prune uploads", zap.Error(err))
	}
	a.wg.Add(1)
	go a.pruneLoop()

	a.log.Info("daemon started",
		zap.String("socket", a.sockPath),
		zap.Int("http_port", a.WebServer.Port()),
		zap.String("inbox", a.Paths.InboxDir))
	return nil
}

// Stop shuts everything down in reverse order. Idempotent.
func (a *App) Stop() error {
	a.stopOnce.Do(func() {
		close(a.stopPrune)
		a.wg.Wait()
		a.Inbox.Stop()
		a.WebServer.Stop()
		a.Server.Stop()
		a.Store.Close()
		a.Paths.CleanEphemeral()
		a.log.Info("daemon stopped")
	})
	return nil
}

// SocketPath returns the daemon socket path.
func (a *App) SocketPath() string {
	return a.sockPath
}

func (a *App) pruneLoop() {
	defer a.wg.Done()
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := a.Bot.Prune(); err != nil {
				a.log.Warn("prune uploads", zap.Error(err))
			}
		case <-a.stopPrune:
			return
		}
	}
}

// HandleMessage implements socket.AppQueries.
func (a *App) HandleMessage(m chat.Message) chat.Reply {
	a.messages.Add(1)
	return a.Bot.Handle(m)
}

// Analyze implements socket.AppQueries. topN <= 0 uses the configured default.
func (a *App) Analyze(history []string, topN int) *bbfs.Analysis {
	if topN <= 0 {
		topN = a.Settings.TopN
	}
	a.analyses.Add(1)
	result := bbfs.Run(history, topN)
	a.log.Debug("analysis served",
		zap.Int("entries", result.Entries),
		zap.Int("top_n", result.TopN),
		zap.String("outcome", string(result.Outcome)))
	a.writeStatus(result, "api")
	return result
}

// writeStatus refreshes the status file. Failures are logged, never returned.
func (a *App) writeStatus(result *bbfs.Analysis, source string) {
	a.statusMu.Lock()
	defer a.statusMu.Unlock()
	total := a.analyses.Load() + a.Inbox.Reports()
	sd := status.Generate(result, source, total, time.Now())
	if err := status.WriteJSON(a.Paths.Status, sd); err != nil {
		a.log.Warn("write status file", zap.String("path", a.Paths.Status), zap.Error(err))
	}
}

// Health implements socket.AppQueries.
func (a *App) Health() socket.HealthResult {
	return socket.HealthResult{
		Status:       "ok",
		Uptime:       time.Since(a.started).Round(time.Second).String(),
		Messages:     a.messages.Load(),
		Analyses:     a.analyses.Load(),
		InboxReports: a.Inbox.Reports(),
		HTTPPort:     a.WebServer.Port(),
	}
}
