package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jakubtomsu/raven/internal/logger"
)

func cmdWatch(args []string) {
	cfg, fs := setup("watch", args)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	path := fs.Arg(0)
	e := newExporter(cfg)
	log := logger.Named("watch")

	run := func() {
		res, err := exportOnce(ctx, e, path, cfg.Export.Output)
		if err != nil {
			log.Error("export failed", zap.String("scene", path), zap.Error(err))
			return
		}
		log.Info("exported", zap.String("scene", path), zap.Int("warnings", len(res.Warnings)))
	}

	run()
	if err := watchFile(ctx, path, cfg.Watch.Debounce, log, run); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// watchFile calls run after path is written, created or renamed into
// place, once no further event arrived for debounce. It returns when ctx
// is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *zap.Logger, run func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}
	log.Info("watching", zap.String("scene", target), zap.Duration("debounce", debounce))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debug("scene changed", zap.Stringer("op", ev.Op))
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			run()
		}
	}
}
