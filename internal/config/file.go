package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileSettings are the settings that may change while the server runs.
type FileSettings struct {
	MaxHeadingDepth int `yaml:"max_heading_depth"`
}

// LoadFile reads a YAML settings file.
func LoadFile(path string) (FileSettings, error) {
	var fs FileSettings
	data, err := os.ReadFile(path)
	if err != nil {
		return fs, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fs, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fs, nil
}

// Apply overrides c with the non-zero file settings.
func (c *Config) Apply(fs FileSettings) {
	if fs.MaxHeadingDepth > 0 {
		c.MaxHeadingDepth = fs.MaxHeadingDepth
	}
}

// WatchFile calls onChange with freshly loaded settings whenever path is
// written, until ctx is done. The parent directory is watched so editors that
// replace the file on save are followed. Parse errors are logged and skipped.
func WatchFile(ctx context.Context, path string, log *slog.Logger, onChange func(FileSettings)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				fs, err := LoadFile(abs)
				if err != nil {
					log.Warn("config reload failed", "path", abs, "error", err)
					continue
				}
				log.Info("config file reloaded", "path", abs, "max_heading_depth", fs.MaxHeadingDepth)
				onChange(fs)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "error", err)
			}
		}
	}()
	return nil
}
