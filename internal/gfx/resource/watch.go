package resource

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gfx/internal/logger"
)

// Watcher observes texture files for changes. The fsnotify goroutine only
// queues paths; the render goroutine applies them with Cache.ApplyChanges.
type Watcher struct {
	fs  *fsnotify.Watcher
	log *zap.Logger

	mu      sync.Mutex
	files   map[string]struct{} // watched files
	dirs    map[string]int      // watched directories, by file count
	pending map[string]struct{}
	closed  bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts a watcher.
func NewWatcher() (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:      fs,
		log:     logger.Named("watcher"),
		files:   make(map[string]struct{}),
		dirs:    make(map[string]int),
		pending: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Add starts watching file. The containing directory is watched so that
// editors replacing the file are seen as well.
func (w *Watcher) Add(file string) error {
	file = cleanPath(file)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return errors.New("watcher already closed")
	}
	if _, ok := w.files[file]; ok {
		return nil
	}
	dir := filepath.Dir(file)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[file] = struct{}{}
	return nil
}

// Remove stops watching file.
func (w *Watcher) Remove(file string) error {
	file = cleanPath(file)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[file]; !ok {
		return nil
	}
	delete(w.files, file)
	dir := filepath.Dir(file)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if w.closed {
		return nil
	}
	return w.fs.Remove(dir)
}

// Drain returns the changed files queued since the last call, sorted.
func (w *Watcher) Drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	changed := make([]string, 0, len(w.pending))
	for f := range w.pending {
		changed = append(changed, f)
	}
	clear(w.pending)
	sort.Strings(changed)
	return changed
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fs.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.queue(e.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) queue(name string) {
	name = cleanPath(name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[name]; ok {
		w.pending[name] = struct{}{}
		w.log.Debug("file changed", zap.String("file", name))
	}
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
