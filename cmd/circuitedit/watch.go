package main

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fileChanged is posted to the event loop when the open circuit file is
// modified by another program.
type fileChanged struct {
	path string
}

// fileWatcher reports external writes to a single file. It watches the
// parent directory so editors that replace the file by rename are seen too.
type fileWatcher struct {
	w      *fsnotify.Watcher
	logger *zap.Logger
	notify func(fileChanged)

	mu      sync.Mutex
	path    string
	dir     string
	ignoreT time.Time // writes before this instant are our own
}

func newFileWatcher(logger *zap.Logger, notify func(fileChanged)) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	fw := &fileWatcher{w: w, logger: logger, notify: notify}
	go fw.loop()
	return fw, nil
}

// Watch switches to path. An empty path stops watching.
func (fw *fileWatcher) Watch(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	if path == fw.path {
		return nil
	}
	if fw.dir != "" {
		_ = fw.w.Remove(fw.dir)
	}
	fw.path, fw.dir = path, ""
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := fw.w.Add(dir); err != nil {
		return err
	}
	fw.dir = dir
	fw.logger.Debug("watching file", zap.String("path", path))
	return nil
}

// IgnoreFor suppresses change reports for d, covering the editor's own save.
func (fw *fileWatcher) IgnoreFor(d time.Duration) {
	fw.mu.Lock()
	fw.ignoreT = time.Now().Add(d)
	fw.mu.Unlock()
}

// Close stops the watcher.
func (fw *fileWatcher) Close() error {
	return fw.w.Close()
}

func (fw *fileWatcher) loop() {
	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			fw.mu.Lock()
			match := fw.path != "" && filepath.Clean(ev.Name) == fw.path
			ignored := time.Now().Before(fw.ignoreT)
			path := fw.path
			fw.mu.Unlock()
			if match && !ignored {
				fw.notify(fileChanged{path: path})
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watch error", zap.Error(err))
		}
	}
}
