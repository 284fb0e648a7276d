package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long the deck file must stay quiet before a re-run.
const settle = 200 * time.Millisecond

// watch runs once and again every time the deck file is written, until ctx
// is cancelled. Failed runs are logged and do not stop the watch.
func (r *runner) watch(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(r.deckPath)); err != nil {
		return fmt.Errorf("failed to watch deck directory: %w", err)
	}
	target := filepath.Clean(r.deckPath)

	r.runLogged(ctx)
	fmt.Fprintf(r.out, "👀 watching %s for changes\n", r.deckPath)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				pending = time.After(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("File watcher error: %v", err)
		case <-pending:
			pending = nil
			fmt.Fprintf(r.out, "🔁 %s changed, re-running\n", r.deckPath)
			r.runLogged(ctx)
		}
	}
}

func (r *runner) runLogged(ctx context.Context) {
	if err := r.run(ctx); err != nil {
		log.Printf("run failed: %v", err)
	}
}
