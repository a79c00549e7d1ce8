package app

import (
	"os"
	"path/filepath"

	"github.com/corey/bbfs/internal/domain/status"
)

// Paths holds all resolved filesystem paths for the .bbfs/ project directory.
type Paths struct {
	Root   string // .bbfs/
	DB     string // .bbfs/bbfs.db
	Config string // .bbfs/config.yaml
	Env    string // <project>/.env

	LogDir    string // .bbfs/log/
	DaemonLog string // .bbfs/log/daemon.log

	RunDir   string // .bbfs/run/
	PIDFile  string // .bbfs/run/daemon.pid
	PortFile string // .bbfs/run/http.port
	Status   string // .bbfs/run/status.json

	InboxDir   string // .bbfs/inbox/
	ReportsDir string // .bbfs/reports/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".bbfs")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "bbfs.db"),
		Config: filepath.Join(root, "config.yaml"),
		Env:    filepath.Join(projectRoot, ".env"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),
		Status:   filepath.Join(root, "run", status.StatusFile),

		InboxDir:   filepath.Join(root, "inbox"),
		ReportsDir: filepath.Join(root, "reports"),
	}
}

// WithInbox points the inbox somewhere else (config inbox_dir).
// Relative paths are resolved against the project root.
func (p *Paths) WithInbox(dir, projectRoot string) *Paths {
	if dir == "" {
		return p
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectRoot, dir)
	}
	p.InboxDir = dir
	return p
}

// EnsureDirs creates all subdirectories under .bbfs/. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{
		p.Root,
		p.LogDir,
		p.RunDir,
		p.InboxDir,
		p.ReportsDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
