package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lixenwraith/phosphor/core"
	"github.com/lixenwraith/phosphor/effect"
)

const reloadDebounce = 100 * time.Millisecond

// Live is the configuration in force. The frame pipeline reads Params once
// per frame, so a Set between frames takes effect at the next one.
type Live struct {
	cur atomic.Pointer[Config]
}

// NewLive starts with c
func NewLive(c *Config) *Live {
	l := &Live{}
	l.cur.Store(c)
	return l
}

// Get returns the current configuration
func (l *Live) Get() *Config { return l.cur.Load() }

// Set replaces the configuration
func (l *Live) Set(c *Config) { l.cur.Store(c) }

// Params returns the active effect profile
func (l *Live) Params() effect.Params { return l.cur.Load().Params() }

// Watch reloads path whenever it changes and passes every valid result to
// fn, on the watcher goroutine. Invalid files are logged and skipped. The
// directory is watched so editors that replace the file are followed.
// Watching stops when ctx is done.
func Watch(ctx context.Context, path string, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	core.Go(func() {
		defer w.Close()
		timer := time.NewTimer(time.Hour)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer.Reset(reloadDebounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Printf("config: watch %s: %v", abs, err)
			case <-timer.C:
				c, err := Load(abs)
				if err != nil {
					log.Printf("config: reload: %v", err)
					continue
				}
				log.Printf("config: reloaded %s, profile %s", abs, c.Effects.Active)
				fn(c)
			}
		}
	})
	return nil
}
