package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dgallion1/docoutline/internal/doctree"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// Editors often write a file in several steps; events closer together than
// this are handled once.
const watchDebounce = 100 * time.Millisecond

func watchCmd(logger func() *slog.Logger) *cobra.Command {
	var opts outputOptions

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Print the outline of a document every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			log := logger()
			m, err := opts.newModel(path, log)
			if err != nil {
				return err
			}
			defer m.Destroy()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			m.OnDidUpdate(func(o *doctree.Outline) {
				_, text := m.Snapshot()
				fmt.Fprintf(out, "--- revision %d (%s)\n", o.Revision, o.BuiltAt.Format(time.TimeOnly))
				if err := render(out, o, text, opts); err != nil {
					fmt.Fprintln(errOut, err)
				}
			})
			m.OnDidError(func(err error) {
				fmt.Fprintln(errOut, "outline error:", err)
			})

			reload := func() {
				text, err := readDocument(path)
				if err != nil {
					fmt.Fprintln(errOut, err)
					return
				}
				m.Update(text)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()
			// Watch the directory so atomic renames by editors are seen.
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
			}

			reload()

			ctx := cmd.Context()
			var debounce <-chan time.Time
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) != path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					log.Debug("document changed", "path", path, "op", ev.Op.String())
					debounce = time.After(watchDebounce)
				case <-debounce:
					debounce = nil
					reload()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn("watcher error", "error", err)
				}
			}
		},
	}
	opts.register(cmd)
	return cmd
}
