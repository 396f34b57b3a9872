package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/absfs/absfs"
	"github.com/absfs/eea"
	"github.com/spf13/viper"
)

const configFileName = "eea.conf"

const defaultConfigContents = `# Elite Encryption Algorithm (EEA) config file

# The directory to search for your '.keys' files in.
# NOTE: The default is the same directory as the EEA executable
# keysDir: ~/.eeaKeys

# Number of worker threads used for directory mode
# threads: 1

# Remove the source file after a successful encryption or decryption
# overwrite: true

# Size and number of generated keys
# keyBits: 512
# numKeys: 3

# debug, info, warn or error
# logLevel: info

# Every setting can be overridden from the environment:
# EEA_KEYSDIR, EEA_THREADS, EEA_OVERWRITE, EEA_KEYBITS, EEA_NUMKEYS, EEA_LOGLEVEL
`

// loadConfig reads the config file at path on fsys, or eea.conf next to
// the executable or in the working directory. When no file is found a
// commented default is written next to the executable. EEA_* environment
// variables override file values.
func loadConfig(fsys absfs.FileSystem, path, exeDir string, logger *slog.Logger) (eea.Config, error) {
	def := eea.DefaultConfig()
	if exeDir != "" {
		def.KeysDir = exeDir
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("keysDir", def.KeysDir)
	v.SetDefault("threads", def.Threads)
	v.SetDefault("overwrite", def.Overwrite)
	v.SetDefault("keyBits", def.KeyBits)
	v.SetDefault("numKeys", def.NumKeys)
	v.SetDefault("logLevel", def.LogLevel)

	v.SetEnvPrefix("EEA")
	v.AutomaticEnv()

	if path == "" {
		path = findConfig(fsys, exeDir)
		if path == "" && exeDir != "" {
			defaultPath := filepath.Join(exeDir, configFileName)
			if err := writeDefaultConfig(fsys, defaultPath); err != nil {
				logger.Warn("failed to write default config", slog.String("path", defaultPath), slog.Any("error", err))
			}
		}
	}

	if path != "" {
		if err := readConfig(fsys, v, path); err != nil {
			return eea.Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	keysDir, err := expandHome(v.GetString("keysDir"))
	if err != nil {
		return eea.Config{}, err
	}

	cfg := eea.Config{
		KeysDir:   keysDir,
		Threads:   v.GetInt("threads"),
		Overwrite: v.GetBool("overwrite"),
		KeyBits:   v.GetInt("keyBits"),
		NumKeys:   v.GetInt("numKeys"),
		LogLevel:  v.GetString("logLevel"),
	}
	if err := cfg.Validate(); err != nil {
		return eea.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readConfig(fsys absfs.FileSystem, v *viper.Viper, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return v.ReadConfig(f)
}

func writeDefaultConfig(fsys absfs.FileSystem, path string) error {
	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write([]byte(defaultConfigContents)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// findConfig returns the first existing config file, or ""
func findConfig(fsys absfs.FileSystem, exeDir string) string {
	var candidates []string
	if exeDir != "" {
		candidates = append(candidates, filepath.Join(exeDir, configFileName))
	}
	candidates = append(candidates, configFileName)

	for _, c := range candidates {
		if info, err := fsys.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// expandHome replaces a leading ~/ with the user's home directory
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
