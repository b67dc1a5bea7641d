package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .chatmon/ project directory.
type Paths struct {
	Root   string // .chatmon/
	DB     string // .chatmon/stats.db
	Config string // .chatmon/config.yaml

	LogDir    string // .chatmon/log/
	DaemonLog string // .chatmon/log/daemon.log

	RunDir   string // .chatmon/run/
	PIDFile  string // .chatmon/run/daemon.pid
	AddrFile string // .chatmon/run/http.addr
	Status   string // .chatmon/run/status.json
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".chatmon")
	return &Paths{
		Root:   root,
		DB:     filepath.Join(root, "stats.db"),
		Config: filepath.Join(root, "config.yaml"),

		LogDir:    filepath.Join(root, "log"),
		DaemonLog: filepath.Join(root, "log", "daemon.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		AddrFile: filepath.Join(root, "run", "http.addr"),
		Status:   filepath.Join(root, "run", "status.json"),
	}
}

// EnsureDirs creates all subdirectories under .chatmon/. Idempotent.
func (p *Paths) EnsureDirs() error {
	for _, d := range []string{p.Root, p.LogDir, p.RunDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes runtime files (PID, address and status files).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.AddrFile)
	os.Remove(p.Status)
}
