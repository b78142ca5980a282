package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/taigrr/termrast/pkg/render"
)

// changeBuffer bounds how many distinct change notifications queue up
// between two Drain calls. Further events are dropped.
const changeBuffer = 8

// Watcher reports writes to a fixed set of files.
//
// Directories are watched rather than the files themselves, so editors
// that save by renaming a temporary file over the original are seen too.
type Watcher struct {
	// Changes receives the absolute path of a watched file after it was
	// written, created or renamed into place.
	Changes <-chan string

	changes chan string
	watcher *fsnotify.Watcher
	files   map[string]bool
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching the given files. Empty paths are ignored.
func NewWatcher(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		changes: make(chan string, changeBuffer),
		watcher: fw,
		files:   make(map[string]bool),
		done:    make(chan struct{}),
	}
	w.Changes = w.changes

	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	log := render.Logger()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(event.Name)
			if !w.files[name] {
				continue
			}
			select {
			case w.changes <- name:
			default:
				log.Debug("change dropped, queue full", "path", name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("file watcher error", "err", err)
		}
	}
}

// Drain returns the distinct paths that changed since the last call
// without blocking.
func (w *Watcher) Drain() []string {
	var out []string
	seen := make(map[string]bool)
	for {
		select {
		case p := <-w.changes:
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		default:
			return out
		}
	}
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}
