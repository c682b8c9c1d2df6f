package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeKind tells what sort of prefab changed on disk.
type ChangeKind int

const (
	ChangeSpec ChangeKind = iota
	ChangeScript
)

// Change is one debounced file event. Name is relative to the prefab
// directory the way Load and LoadScript expect it.
type Change struct {
	Name string
	Path string
	Kind ChangeKind
}

type Watcher struct {
	watcher  *fsnotify.Watcher
	Events   chan Change
	Errors   chan error
	debounce time.Duration
	closeCh  chan struct{}
	done     chan struct{}
	once     sync.Once
}

// NewWatcher watches dirs and their scripts subdirectory when present.
func NewWatcher(debounce time.Duration, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		_ = w.Add(filepath.Join(dir, "scripts"))
	}

	watcher := &Watcher{
		watcher:  w,
		Events:   make(chan Change, 16),
		Errors:   make(chan error, 1),
		debounce: debounce,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			kind, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			change := Change{Name: relativeName(event.Name, kind), Path: event.Name, Kind: kind}
			select {
			case w.Events <- change:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func classify(path string) (ChangeKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ChangeSpec, true
	case ".tengo":
		return ChangeScript, true
	}
	return 0, false
}

func relativeName(path string, kind ChangeKind) string {
	base := filepath.Base(path)
	if kind == ChangeScript {
		return "scripts/" + base
	}
	return base
}
