package storage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the re-check interval used when native file
// notifications are not available.
const DefaultPollInterval = 2 * time.Second

// Dir is a Store keeping one file per key in a directory.
//
// Files are replaced atomically, so readers never see a partial value.
// Changes are detected with native file notifications; when they cannot be
// set up (unsupported platform or filesystem, exhausted watches) Watch falls
// back to polling the file every PollInterval.
type Dir struct {
	path string

	// PollInterval is the polling period of the fallback watcher.
	PollInterval time.Duration
	// Poll forces the polling watcher, even when native notifications work.
	Poll bool
}

// NewDir returns a store in the directory at path, creating it if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("cannot create store directory %q: %w", path, err)
	}
	return &Dir{path: path, PollInterval: DefaultPollInterval}, nil
}

// Path returns the store directory.
func (d *Dir) Path() string { return d.path }

// filename returns the file holding key.
func (d *Dir) filename(key string) string {
	return filepath.Join(d.path, url.PathEscape(key)+".json")
}

// Get reads the file for key.
func (d *Dir) Get(_ context.Context, key string) ([]byte, error) {
	content, err := os.ReadFile(d.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", key, err)
	}
	return content, nil
}

// Set writes value to a temporary file and renames it over the file for key.
func (d *Dir) Set(_ context.Context, key string, value []byte) error {
	f, err := os.CreateTemp(d.path, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op once renamed

	if _, err := f.Write(value); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	if err := os.Rename(tmp, d.filename(key)); err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	return nil
}

// Watch notifies writes to the file for key.
func (d *Dir) Watch(ctx context.Context, key string) (<-chan Event, error) {
	if d.Poll {
		return d.poll(ctx, key), nil
	}
	w, err := fsnotify.NewWatcher()
	if err == nil {
		if err = w.Add(d.path); err != nil {
			w.Close()
		}
	}
	if err != nil {
		log.Printf("file notifications unavailable, polling %q every %v: %v", d.path, d.interval(), err)
		return d.poll(ctx, key), nil
	}

	ch := make(chan Event, 1)
	name := d.filename(key)
	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// the atomic rename in Set shows up as a Create.
				if filepath.Clean(ev.Name) == name && ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
					notify(ch, Event{Key: key})
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("file notification error on %q (ignored): %v", d.path, err)
			}
		}
	}()
	return ch, nil
}

func (d *Dir) interval() time.Duration {
	if d.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return d.PollInterval
}

// poll re-reads the file for key every interval and notifies when its
// content changed.
func (d *Dir) poll(ctx context.Context, key string) <-chan Event {
	ch := make(chan Event, 1)
	name := d.filename(key)
	digest := func() []byte {
		content, err := os.ReadFile(name)
		if err != nil {
			return nil
		}
		sum := sha1.Sum(content)
		return sum[:]
	}

	go func() {
		defer close(ch)
		ticker := time.NewTicker(d.interval())
		defer ticker.Stop()

		last := digest()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if cur := digest(); !bytes.Equal(cur, last) {
					last = cur
					notify(ch, Event{Key: key})
				}
			}
		}
	}()
	return ch
}

var _ Store = (*Dir)(nil)
