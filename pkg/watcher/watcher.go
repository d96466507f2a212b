package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/canvas-auth/canvas-auth-proxy/pkg/logger"
)

var debugLogger = logger.Verbose(logger.CoreDebug)

// replacementPoll is how often a removed file is looked for again.
const replacementPoll = 50 * time.Millisecond

// WatchFileForUpdates calls onChange whenever filename is written, created
// or swapped for a new file. Editors and Kubernetes volume updates replace
// the file rather than write it, so a removal re-arms the watch once the
// new file appears. Watching ends when done is closed; a nil done watches
// for the life of the process.
func WatchFileForUpdates(filename string, done <-chan bool, onChange func()) error {
	filename = filepath.Clean(filename)
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher for '%s': %s", filename, err)
	}
	if err := w.Add(filename); err != nil {
		w.Close()
		return fmt.Errorf("failed to add '%s' to watcher: %v", filename, err)
	}
	logger.Printf("watching '%s' for updates", filename)

	go watch(w, filename, done, onChange)
	return nil
}

func watch(w *fsnotify.Watcher, filename string, done <-chan bool, onChange func()) {
	defer w.Close()
	for {
		select {
		case <-done:
			logger.Printf("shutting down watcher for: %s", filename)
			return
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Errorf("error watching '%s': %s", filename, err)
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filename {
				debugLogger.Infof("ignoring event for %s", event.Name)
				continue
			}
			switch {
			case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
				logger.Printf("watching interrupted on event: %s", event)
				if !rewatch(w, filename, done) {
					return
				}
				onChange()
			case event.Has(fsnotify.Create) || event.Has(fsnotify.Write):
				logger.Printf("reloading after event: %s", event)
				onChange()
			}
		}
	}
}

// rewatch waits for filename to exist again and adds it back to w. It gives
// up, returning false, when done is closed first.
func rewatch(w *fsnotify.Watcher, filename string, done <-chan bool) bool {
	ticker := time.NewTicker(replacementPoll)
	defer ticker.Stop()
	for {
		if _, err := os.Stat(filename); err == nil && w.Add(filename) == nil {
			logger.Printf("watching resumed for '%s'", filename)
			return true
		}
		select {
		case <-done:
			return false
		case <-ticker.C:
		}
	}
}
