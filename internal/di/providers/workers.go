package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/watcher"
)

// SnapshotWatcherHandle wraps the snapshot directory watcher with shutdown capability.
type SnapshotWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SnapshotWatcherHandle) Shutdown() error {
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideSnapshotWatcher provides the snapshot directory watcher. Changes
// made outside the API, such as artifacts copied in from a phone, are
// logged as they settle.
func ProvideSnapshotWatcher(i do.Injector) (*SnapshotWatcherHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	snapshots := do.MustInvoke[*snapshot.Service](i)

	// The directory is created lazily by the first export; make sure it
	// exists before watching it.
	if err := snapshots.EnsureDir(); err != nil {
		return nil, err
	}

	w, err := watcher.New(snapshots.Dir(), log, watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Snapshot watcher error", "error", err)
		}
	}()

	go func() {
		for {
			select {
			case event, ok := <-w.Events():
				if !ok {
					return
				}
				log.Info("snapshot directory changed",
					"change", event.Type.String(),
					"id", snapshot.ArtifactID(event.Path),
					"size", event.Size,
				)
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Warn("snapshot watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Snapshot watcher started", "dir", snapshots.Dir())

	return &SnapshotWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
