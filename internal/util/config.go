package util

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Configuration carries everything cmd/app assembles from flags plus,
// optionally, a TOML config file — the same record the teacher threads
// through its service wiring, expanded with the fields this interpreter
// actually consumes.
type Configuration struct {
	Version   string
	BuildDate string
	Commit    string
	RootPath  string

	LogLevel string
	LogFile  string

	// Traceable lists builtin/global function names to register with
	// the trace registry (spec §4.7) automatically at startup, before
	// any source is evaluated.
	Traceable []string

	// Persistence is forwarded to the domain stack's db_open primitive
	// as a convenience default; scripts may still call db_open with an
	// explicit driver/dsn of their own.
	Persistence PersistenceConfig
}

// PersistenceConfig names the default database connection the config
// file may declare under [persistence].
type PersistenceConfig struct {
	Driver string
	DSN    string
}

// fileConfig is the TOML document shape; fields are optional, and a
// missing config file is not an error (see LoadFile).
type fileConfig struct {
	LogLevel    string             `toml:"log_level"`
	Traceable   []string           `toml:"traceable"`
	Persistence PersistenceConfig  `toml:"persistence"`
}

// DefaultConfigName is the config file LoadFile looks for under
// RootPath when -config isn't given.
const DefaultConfigName = ".fexlrc.toml"

// LoadFile reads path (or RootPath/DefaultConfigName if path is empty)
// and merges its contents into cfg. A missing file is not an error — the
// interpreter starts with flag/defaults; a malformed file is logged at
// error level and ignored, per SPEC_FULL §2's "best-effort" rule.
func (cfg *Configuration) LoadFile(path string) {
	if path == "" {
		path = filepath.Join(cfg.RootPath, DefaultConfigName)
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		slog.Error("malformed config file, ignoring", "path", path, "error", err)
		return
	}

	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if len(fc.Traceable) > 0 {
		cfg.Traceable = fc.Traceable
	}
	if fc.Persistence.DSN != "" {
		cfg.Persistence = fc.Persistence
	}
}
