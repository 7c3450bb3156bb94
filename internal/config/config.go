// Package config holds the immutable process configuration: the workspace
// boundary root, the command allow-list, and resource caps. A Config is
// built once at startup and passed by value into tool constructors; nothing
// here is ambient global state, so tests can instantiate independent
// configurations freely.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// CommandRule constrains the arguments of one allow-listed command.
type CommandRule struct {
	// Flags lists permitted flag tokens. Empty means no flags are allowed.
	// A token matches when it equals an entry or starts with "entry=".
	Flags []string `toml:"flags"`
	// DenyFlags rejects specific flags even when Flags would admit them
	// (e.g. find -exec, sed -i).
	DenyFlags []string `toml:"deny_flags"`
	// MaxArgs caps the total argument count; 0 means unlimited.
	MaxArgs int `toml:"max_args"`
}

// ReplaceMode selects how the text editor treats multiple matches.
type ReplaceMode string

const (
	// ReplaceUnique fails with AMBIGUOUS_MATCH unless exactly one occurrence exists.
	ReplaceUnique ReplaceMode = "unique"
	// ReplaceFirst replaces only the first occurrence.
	ReplaceFirst ReplaceMode = "first"
	// ReplaceAll replaces every occurrence.
	ReplaceAll ReplaceMode = "all"
)

// Config is the full, immutable configuration for the tool layer.
type Config struct {
	// Root is the path boundary: no tool may read or write outside it.
	Root string `toml:"root"`
	// Commands is the executor allow-list, keyed by command name.
	Commands map[string]CommandRule `toml:"commands"`
	// EnvPassthrough lists environment variable names forwarded to spawned
	// commands in addition to PATH and HOME.
	EnvPassthrough []string `toml:"env_passthrough"`

	ReplaceMode       ReplaceMode `toml:"replace_mode"`
	MaxOutputKB       int         `toml:"max_output_kb"`
	DefaultTimeoutSec int         `toml:"default_timeout_sec"`
	TimeoutCeilingSec int         `toml:"timeout_ceiling_sec"`
	TreeMaxDepth      int         `toml:"tree_max_depth"`
	GrepMaxMatches    int         `toml:"grep_max_matches"`
	AuditEnabled      bool        `toml:"audit_enabled"`
}

// Default returns the conservative built-in configuration for the given
// workspace root: read-only inspection commands plus the common build and
// VCS entry points, bounded output and timeouts.
func Default(root string) Config {
	return Config{
		Root: root,
		Commands: map[string]CommandRule{
			"ls":       {Flags: []string{"-l", "-a", "-la", "-al", "-1"}},
			"cat":      {Flags: []string{"-n"}},
			"head":     {Flags: []string{"-n", "-c"}},
			"tail":     {Flags: []string{"-n", "-c"}},
			"wc":       {Flags: []string{"-l", "-c", "-w"}},
			"grep":     {Flags: []string{"-r", "-R", "-n", "-i", "-l", "-c", "-F", "-E", "-w"}},
			"find":     {Flags: []string{"-name", "-type", "-maxdepth", "-path"}, DenyFlags: []string{"-exec", "-execdir", "-ok", "-okdir", "-delete"}},
			"stat":     {},
			"basename": {},
			"dirname":  {},
			"echo":     {Flags: []string{"-n"}},
			"go":       {Flags: []string{"build", "test", "vet", "fmt", "version", "env", "-v", "-run", "-count", "-o", "./..."}},
			"git":      {Flags: []string{"status", "log", "diff", "show", "branch", "--oneline", "--stat", "--name-only", "-n"}},
			"sleep":    {},
		},
		ReplaceMode:       ReplaceUnique,
		MaxOutputKB:       64,
		DefaultTimeoutSec: 10,
		TimeoutCeilingSec: 60,
		TreeMaxDepth:      3,
		GrepMaxMatches:    500,
		AuditEnabled:      true,
	}
}

// Load reads a TOML configuration file and overlays it on the defaults for
// root. Absent file keys keep their default values.
func Load(path, root string) (Config, error) {
	cfg := Default(root)
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		keys := make([]string, 0, len(undec))
		for _, k := range undec {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("config %s: unknown key(s): %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv applies environment overrides: CODEU_ROOT replaces the root when
// set. Returns the (possibly updated) config.
func FromEnv(cfg Config) Config {
	if v := os.Getenv("CODEU_ROOT"); v != "" {
		cfg.Root = v
	}
	return cfg
}

// Validate rejects configurations the tool layer cannot honor.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return fmt.Errorf("root is required")
	}
	switch c.ReplaceMode {
	case ReplaceUnique, ReplaceFirst, ReplaceAll:
	default:
		return fmt.Errorf("replace_mode must be one of unique, first, all (got %q)", c.ReplaceMode)
	}
	if c.TreeMaxDepth < 1 || c.TreeMaxDepth > 8 {
		return fmt.Errorf("tree_max_depth must be in [1,8] (got %d)", c.TreeMaxDepth)
	}
	if c.TimeoutCeilingSec < 1 {
		return fmt.Errorf("timeout_ceiling_sec must be >= 1 (got %d)", c.TimeoutCeilingSec)
	}
	for name := range c.Commands {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\\ ") {
			return fmt.Errorf("command name %q must be a bare program name", name)
		}
	}
	return nil
}

// AuditDir returns the audit log directory under the workspace root.
func (c Config) AuditDir() string {
	return filepath.Join(c.Root, ".codeu", "audit")
}
