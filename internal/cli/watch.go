package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/meshackyaro/Sanctifier/internal/analyzers"
	"github.com/meshackyaro/Sanctifier/internal/cache"
	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/engine"
	"github.com/meshackyaro/Sanctifier/internal/report"
)

// debounceWindow coalesces editor save bursts into one re-analysis.
const debounceWindow = 400 * time.Millisecond

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-analyze the project whenever a source or wasm file changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			cfg, _, err := config.Load(dir)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := addWatchDirs(watcher, dir, cfg); err != nil {
				return err
			}

			reg := analyzers.NewRegistry()
			reg.RegisterBuiltin()
			eng := engine.New(reg)

			run := func() {
				key := cache.ArtifactKey(watchedArtifacts(dir, cfg))
				if _, hit := cache.Load(key); hit {
					return
				}
				result, err := eng.Scan(cmd.Context(), dir, cfg)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "analysis failed: %v\n", err)
					return
				}
				report.WriteText(cmd.OutOrStdout(), result.Findings)
				_ = cache.Store(key, []byte{1})
			}
			run()

			var timer *time.Timer
			fire := make(chan struct{}, 1)
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if !watchable(ev.Name) {
						continue
					}
					if ev.Op.Has(fsnotify.Create) {
						if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
							_ = watcher.Add(ev.Name)
							continue
						}
					}
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounceWindow, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				case <-fire:
					run()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
				case <-cmd.Context().Done():
					return nil
				}
			}
		},
	}
	return cmd
}

func watchable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".rs" || ext == ".wasm" || filepath.Base(name) == config.FileName || ext == ""
}

func addWatchDirs(w *fsnotify.Watcher, root string, cfg config.Config) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr == nil && rel != "." && cfg.Ignored(rel) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func watchedArtifacts(root string, cfg config.Config) []string {
	var paths []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr == nil && rel != "." && d.IsDir() && cfg.Ignored(rel) {
			return filepath.SkipDir
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".rs" || ext == ".wasm" {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}
