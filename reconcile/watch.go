package reconcile

import (
	"github.com/fsnotify/fsnotify"
)

// journalWatcher reports outside edits to the journal file between REPL
// commands. Events are drained cooperatively from the command loop; no
// goroutine mutates session state.
type journalWatcher struct {
	fs *fsnotify.Watcher
}

func watchJournal(path string) (*journalWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return &journalWatcher{fs: w}, nil
}

// changed drains all buffered events and reports whether any of them wrote
// to the journal.
func (w *journalWatcher) changed() bool {
	var seen bool
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return seen
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				seen = true
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return seen
			}
		default:
			return seen
		}
	}
}

// drain discards buffered events, typically right after our own write.
func (w *journalWatcher) drain() {
	_ = w.changed()
}

func (w *journalWatcher) close() {
	_ = w.fs.Close()
}
