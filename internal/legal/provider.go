package legal

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Provider serves the current legal document and reloads it when the file
// changes on disk. A broken edit keeps the last good document.
type Provider struct {
	mu      sync.RWMutex
	doc     *Document
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}
	onLoad  func(*Document)
}

type ProviderOption func(*Provider)

// WithReloadHook runs fn after every successful reload.
func WithReloadHook(fn func(*Document)) ProviderOption {
	return func(p *Provider) {
		p.onLoad = fn
	}
}

// NewProvider loads path, or the embedded default when path is empty, and
// starts watching the file's directory.
func NewProvider(path string, logger *slog.Logger, opts ...ProviderOption) (*Provider, error) {
	p := &Provider{path: path, logger: logger, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if path == "" {
		p.doc = Default()
		close(p.done)
		return p, nil
	}

	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	p.doc = doc

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("legal: could not create file watcher, changes need a restart", "error", err)
		close(p.done)
		return p, nil
	}
	// Watch the directory: editors replace files via rename, which drops a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("legal: could not watch config directory", "error", err)
		watcher.Close() //nolint:errcheck
		close(p.done)
		return p, nil
	}
	p.watcher = watcher
	go p.watchLoop()
	return p, nil
}

// Document returns the current document.
func (p *Provider) Document() *Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc
}

// Reload re-reads the file now.
func (p *Provider) Reload() error {
	if p.path == "" {
		return nil
	}
	doc, err := Load(p.path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
	if p.onLoad != nil {
		p.onLoad(doc)
	}
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (p *Provider) Close() error {
	if p.watcher == nil {
		return nil
	}
	err := p.watcher.Close()
	<-p.done
	return err
}

func (p *Provider) watchLoop() {
	defer close(p.done)
	target := filepath.Clean(p.path)
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := p.Reload(); err != nil {
					p.logger.Warn("legal: reload failed, keeping previous config", "error", err)
					continue
				}
				p.logger.Info("legal: config reloaded", "path", p.path)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("legal: watcher error", "error", err)
		}
	}
}
