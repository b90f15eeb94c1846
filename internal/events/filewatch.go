package events

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/fsnotify/fsnotify"
)

// FileWatchRunner recursively watches a trigger's configured directory and
// fires on any filename matching its regex filter.
type FileWatchRunner struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	stop     chan struct{}
}

// NewFileWatchRunner starts one fsnotify watcher shared across every
// file_watch trigger; directories are added per trigger in Start.
func NewFileWatchRunner(registry *Registry) (*FileWatchRunner, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &FileWatchRunner{registry: registry, watcher: w, stop: make(chan struct{})}, nil
}

// Start adds every enabled file_watch trigger's directory, together with
// each subdirectory present beneath it at that moment, and begins
// dispatching matched events. Subdirectories created later are not added.
func (r *FileWatchRunner) Start() error {
	filters := map[string]*regexp.Regexp{}
	for _, t := range r.registry.All() {
		if t.Type != KindFileWatch || !t.Enabled {
			continue
		}
		dir, _ := t.Config["directory"].(string)
		if dir == "" {
			continue
		}
		if err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return r.watcher.Add(p)
			}
			return nil
		}); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		pattern, _ := t.Config["filenameRegex"].(string)
		if pattern != "" {
			re, err := regexp.Compile(pattern)
			if err == nil {
				filters[t.ID] = re
			}
		}
	}

	go r.run(filters)
	return nil
}

func (r *FileWatchRunner) run(filters map[string]*regexp.Regexp) {
	for {
		select {
		case <-r.stop:
			return
		case ev, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			r.dispatch(ev, filters)
		case <-r.watcher.Errors:
			// best effort; a single watcher error does not stop the runner.
		}
	}
}

func (r *FileWatchRunner) dispatch(ev fsnotify.Event, filters map[string]*regexp.Regexp) {
	for _, t := range r.registry.All() {
		if t.Type != KindFileWatch || !t.Enabled {
			continue
		}
		if re, ok := filters[t.ID]; ok && !re.MatchString(ev.Name) {
			continue
		}
		_ = r.registry.Fire(t.ID, map[string]any{
			"eventType": ev.Op.String(),
			"filename":  ev.Name,
			"path":      ev.Name,
		})
	}
}

// Stop closes the underlying watcher.
func (r *FileWatchRunner) Stop() error {
	close(r.stop)
	return r.watcher.Close()
}
