package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spaghettifunk/ashaderc/shaderc/build"
	"github.com/spaghettifunk/ashaderc/shaderc/core"
)

/**
 * @brief Keeps the tool alive and re-runs the build whenever the input
 * file changes. Each rebuild gets its own run id so log lines from
 * overlapping edits can be told apart. Build failures are logged, not
 * fatal; the watcher stays up waiting for the next edit.
 */
type Watcher struct {
	builder *build.Builder
	input   string
	targets []string

	fsnotify *fsnotify.Watcher
	done     chan struct{}
}

func New(b *build.Builder, input string, targets []string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		builder:  b,
		input:    input,
		targets:  targets,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}, nil
}

// Run performs an initial build and then blocks, rebuilding on every
// write to the input file, until Close is called.
func (w *Watcher) Run() error {
	// Watch the containing directory: editors typically replace the file,
	// which drops a watch placed on the file itself.
	if err := w.fsnotify.Add(filepath.Dir(w.input)); err != nil {
		return err
	}
	w.rebuild()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != filepath.Clean(w.input) {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.rebuild()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			core.LogError(err.Error())

		case <-w.done:
			return w.fsnotify.Close()
		}
	}
}

// Close stops the watcher and makes Run return.
func (w *Watcher) Close() {
	close(w.done)
}

func (w *Watcher) rebuild() {
	runID := uuid.New().String()
	core.LogInfo("run %s: building %s", runID, w.input)
	if err := w.builder.Run(w.input, w.targets); err != nil {
		core.LogError("run %s: build failed: %v", runID, err)
		return
	}
	core.LogInfo("run %s: done", runID)
}
