package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mansoorceksport/fitcoach/internal/render"
)

const watchDebounce = 300 * time.Millisecond

// runWatch regenerates the plan whenever the profile file changes.
// Bursts of events are collapsed into one request.
func runWatch(ctx context.Context, args []string) error {
	fs := newFlagSet("watch")
	path := fs.String("profile", "profile.json", "profile JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	abs, err := filepath.Abs(*path)
	if err != nil {
		return err
	}
	c, err := sessionClient(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files on save, so watch the directory
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	generate := func() {
		profile, err := loadProfile(abs)
		if err != nil {
			log.Printf("Skipping: %v", err)
			return
		}
		log.Printf("Profile changed, generating plan for %s...", profile.Name)
		if _, err := c.GeneratePlan(ctx, profile); err != nil {
			log.Printf("Error: %v", err)
			return
		}
		if err := printPlan(ctx, c, render.TabWorkout); err != nil {
			log.Printf("Error: %v", err)
		}
	}

	log.Printf("Watching %s (Ctrl-C to stop)", abs)
	generate()

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProfileChange(event, abs) {
				continue
			}
			debounce = time.After(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: watcher error: %v", err)
		case <-debounce:
			debounce = nil
			generate()
		}
	}
}

func isProfileChange(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}
