/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package starconfig

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"sigs.k8s.io/yaml"

	"github.com/starlane-io/starlane/internal/starerr"
)

// Loader loads and watches a star's boot configuration.
type Loader interface {
	Load(ctx context.Context) (*Config, error)
	Watch(ctx context.Context) (<-chan ConfigEvent, error)
	Close() error
}

// ConfigEventType is the kind of change a Watch channel reports.
type ConfigEventType string

const (
	ConfigEventModified ConfigEventType = "Modified"
	ConfigEventDeleted  ConfigEventType = "Deleted"
	ConfigEventError    ConfigEventType = "Error"
)

// ConfigEvent is one change reported by Watch.
type ConfigEvent struct {
	Type   ConfigEventType
	Config *Config
	Error  error
}

// LoaderOptions configures a FileLoader. Mirrors the teacher's
// LoaderOptions shape (string TTL, EnableCache toggle).
type LoaderOptions struct {
	EnableCache bool
	CacheTTL    string
}

func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{EnableCache: true, CacheTTL: "5m"}
}

// FileLoader loads Config from a YAML file on disk and, on Watch,
// hot-reloads it whenever the file changes.
type FileLoader struct {
	path      string
	options   LoaderOptions
	cache     *configCache
	validator *Validator
	log       logr.Logger

	watchMu  sync.Mutex
	watchers map[string]chan ConfigEvent
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
}

func NewFileLoader(path string, options LoaderOptions, log logr.Logger) *FileLoader {
	l := &FileLoader{
		path:      path,
		options:   options,
		validator: NewValidator(),
		log:       log,
		watchers:  map[string]chan ConfigEvent{},
		stopCh:    make(chan struct{}),
	}
	if options.EnableCache {
		ttl, err := time.ParseDuration(options.CacheTTL)
		if err != nil {
			ttl = 5 * time.Minute
		}
		l.cache = newConfigCache(ttl)
	}
	return l
}

// Load reads, parses, and validates the config file, serving from
// cache when enabled and still fresh.
func (l *FileLoader) Load(ctx context.Context) (*Config, error) {
	if l.cache != nil {
		if cfg := l.cache.get(); cfg != nil {
			return cfg, nil
		}
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, starerr.NotFound(fmt.Sprintf("star config: %s", l.path))
		}
		return nil, starerr.Wrap(starerr.ReasonInternal, "star config: read", err)
	}

	cfg, err := l.parse(raw)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		l.cache.set(cfg)
	}
	return cfg, nil
}

func (l *FileLoader) parse(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, starerr.Wrap(starerr.ReasonBadRequest, "star config: malformed YAML", err)
	}
	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch starts an fsnotify watch on the config file's directory (so
// editors that replace-by-rename are still observed) and streams a
// ConfigEvent per change. The channel closes when ctx is cancelled.
func (l *FileLoader) Watch(ctx context.Context) (<-chan ConfigEvent, error) {
	eventCh := make(chan ConfigEvent, 10)
	watcherID := fmt.Sprintf("watcher-%d", len(l.watchers)+1)

	l.watchMu.Lock()
	l.watchers[watcherID] = eventCh
	if l.watcher == nil {
		if err := l.startWatch(); err != nil {
			delete(l.watchers, watcherID)
			l.watchMu.Unlock()
			close(eventCh)
			return nil, err
		}
	}
	l.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		l.watchMu.Lock()
		delete(l.watchers, watcherID)
		close(eventCh)
		l.watchMu.Unlock()
	}()

	return eventCh, nil
}

func (l *FileLoader) startWatch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return starerr.Wrap(starerr.ReasonInternal, "star config: fsnotify", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return starerr.Wrap(starerr.ReasonInternal, "star config: fsnotify watch dir", err)
	}
	l.watcher = w

	go l.runWatch(w)
	return nil
}

func (l *FileLoader) runWatch(w *fsnotify.Watcher) {
	target := filepath.Clean(l.path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			l.handleFSEvent(ev)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.broadcast(ConfigEvent{Type: ConfigEventError, Error: err})
		case <-l.stopCh:
			return
		}
	}
}

func (l *FileLoader) handleFSEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Remove != 0 {
		if l.cache != nil {
			l.cache.invalidate()
		}
		l.broadcast(ConfigEvent{Type: ConfigEventDeleted})
		return
	}

	raw, err := os.ReadFile(l.path)
	if err != nil {
		l.broadcast(ConfigEvent{Type: ConfigEventError, Error: err})
		return
	}
	cfg, err := l.parse(raw)
	if err != nil {
		l.broadcast(ConfigEvent{Type: ConfigEventError, Error: err})
		return
	}
	if l.cache != nil {
		l.cache.set(cfg)
	}
	l.broadcast(ConfigEvent{Type: ConfigEventModified, Config: cfg})
}

func (l *FileLoader) broadcast(ev ConfigEvent) {
	l.watchMu.Lock()
	defer l.watchMu.Unlock()

	for _, ch := range l.watchers {
		select {
		case ch <- ev:
		default:
			l.log.Info("star config watcher channel full, dropping event")
		}
	}
}

// Close releases the fsnotify watcher and closes every watcher channel.
func (l *FileLoader) Close() error {
	l.watchMu.Lock()
	defer l.watchMu.Unlock()

	for id, ch := range l.watchers {
		close(ch)
		delete(l.watchers, id)
	}
	if l.watcher != nil {
		close(l.stopCh)
		err := l.watcher.Close()
		l.watcher = nil
		return err
	}
	return nil
}
