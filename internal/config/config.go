// Package config loads drill's settings from defaults, an optional YAML
// file, the environment and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/drill/internal/reconcile"
	"github.com/conorfennell/drill/internal/schedule"
)

// EnvPrefix prefixes every environment variable drill reads. A double
// underscore separates nested keys: DRILL_LOG__LEVEL sets log.level.
const EnvPrefix = "DRILL_"

// Config holds all of drill's settings.
type Config struct {
	Root       string `koanf:"root" validate:"required"`
	DB         string `koanf:"db" validate:"required"`
	Ext        string `koanf:"ext" validate:"required,startswith=."`
	Editor     string `koanf:"editor" validate:"required"`
	Remote     string `koanf:"remote"`
	Ladder     []int  `koanf:"ladder" validate:"min=2,dive,gte=0"`
	PruneBasis string `koanf:"prune_basis" validate:"oneof=question chunk"`
	Log        Log    `koanf:"log"`
}

// Log configures the process logger.
type Log struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	// File receives log output when set; otherwise logs go to stderr.
	File string `koanf:"file"`
}

// Default returns the built-in settings, rooted in the user's ~/anki.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	root := filepath.Join(home, "anki")
	return Config{
		Root:       root,
		DB:         filepath.Join(root, "anki.db"),
		Ext:        ".txt",
		Editor:     "vim",
		Ladder:     append([]int(nil), schedule.DefaultLadder...),
		PruneBasis: string(reconcile.BasisQuestion),
		Log:        Log{Level: "warn"},
	}
}

// DefaultPath is where Load looks for a config file when none is named.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "drill", "config.yaml")
}

// flagKeys maps flag names onto config keys. Flags not listed here are not
// configuration, and flags left at their defaults never override lower layers.
var flagKeys = map[string]string{
	"root":        "root",
	"db":          "db",
	"ext":         "ext",
	"editor":      "editor",
	"remote":      "remote",
	"prune-basis": "prune_basis",
	"log-level":   "log.level",
	"log-file":    "log.file",
}

// Load builds the configuration. path names the YAML file; a missing file is
// fine unless it was named explicitly. A .env file beside it is loaded into
// the environment first. flags may be nil.
func Load(path string, explicit bool, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		dotenv := filepath.Join(filepath.Dir(path), ".env")
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", dotenv, err)
		}

		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, f.Value.String()
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	cfg := Default()
	ladder := cfg.Ladder
	cfg.Ladder = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Ladder) == 0 {
		cfg.Ladder = ladder
	}
	// A db outside the default root follows a relocated root.
	if !k.Exists("db") && k.Exists("root") {
		cfg.DB = filepath.Join(cfg.Root, "anki.db")
	}

	cfg.Root = expandHome(cfg.Root)
	cfg.DB = expandHome(cfg.DB)
	cfg.Log.File = expandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and that the ladder can schedule.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := schedule.New(c.Ladder); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
