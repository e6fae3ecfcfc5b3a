// Package watcher tracks ingested source files and flags their
// documents as stale when the file changes on disk after processing.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// markTimeout bounds the store update for a single change event.
const markTimeout = 5 * time.Second

// Watcher observes registered source files with fsnotify and sets the
// Stale flag on their documents when the file is written, renamed, or
// removed. Chunks and the Processed flag are left untouched; the user
// decides when to reprocess.
type Watcher struct {
	fs       *fsnotify.Watcher
	docStore driven.DocumentStore

	mu    sync.Mutex
	paths map[string]string // source path -> document ID

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher and starts its event loop.
func New(docStore driven.DocumentStore) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fs:       fs,
		docStore: docStore,
		paths:    make(map[string]string),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Watch registers a source file for the document.
func (w *Watcher) Watch(path, documentID string) error {
	w.mu.Lock()
	w.paths[path] = documentID
	w.mu.Unlock()

	if err := w.fs.Add(path); err != nil {
		w.mu.Lock()
		delete(w.paths, path)
		w.mu.Unlock()
		return fmt.Errorf("watching %s: %w", path, err)
	}
	return nil
}

// Unwatch stops tracking a source file.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	_, known := w.paths[path]
	delete(w.paths, path)
	w.mu.Unlock()

	if !known {
		return nil
	}
	// Remove fails if the path already vanished; that is fine.
	if err := w.fs.Remove(path); err != nil {
		logger.Debug("Unwatch %s: %v", path, err)
	}
	return nil
}

// Close stops the event loop and releases the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Rename|fsnotify.Remove|fsnotify.Create) != 0 {
				w.markStale(event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warn("File watcher: %v", err)
		}
	}
}

// markStale sets the Stale flag on the document registered for the
// path, if it has been processed.
func (w *Watcher) markStale(path string) {
	w.mu.Lock()
	docID, ok := w.paths[path]
	w.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), markTimeout)
	defer cancel()

	doc, err := w.docStore.GetDocument(ctx, docID)
	if err != nil {
		logger.Debug("Stale check for %s: %v", path, err)
		return
	}
	if !doc.Processed || doc.Stale {
		return
	}

	doc.Stale = true
	if err := w.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Marking %s stale: %v", doc.Name, err)
		return
	}
	logger.Info("Source changed, marked %s stale", doc.Name)
}
