package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/fstree/crawld/internal/errkind"
)

// envConfigPath is the environment variable that overrides the config file
// location (spec.md §6.5).
const envConfigPath = "CONFIG_PATH"

// defaultConfigPath is used when CONFIG_PATH is unset.
const defaultConfigPath = "./crawld.toml"

// Load reads the config file named by CONFIG_PATH (or defaultConfigPath),
// merges it over Default(), and rejects unrecognized top-level sections as
// a fatal config-invalid error. A missing file is tolerated and Default()
// is returned unchanged — only an unreadable-but-present file, or a
// present file naming an unknown section, is fatal.
func Load() (*CrawlConfig, error) {
	path := os.Getenv(envConfigPath)
	if path == "" {
		path = defaultConfigPath
	}

	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errkind.New(errkind.ConfigMissing, fmt.Errorf("stat %s: %w", path, err))
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errkind.New(errkind.ConfigInvalid, fmt.Errorf("parse %s: %w", path, err))
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errkind.New(errkind.ConfigInvalid,
			fmt.Errorf("unrecognized config section %q in %s", undecoded[0].String(), path))
	}

	return cfg, nil
}
