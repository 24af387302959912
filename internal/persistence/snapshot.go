// Package persistence saves and restores cache snapshots across restarts.
// The on-disk format is a single JSON document keyed by the raw cache key;
// files are written via temp-and-rename so a crash never leaves a torn file.
package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/plexcord/plexcord/internal/cache"
)

type snapshotRecord struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Persister periodically snapshots a cache store to disk.
type Persister struct {
	path     string
	interval time.Duration
	store    *cache.Store
	clk      clock.Clock
}

func New(path string, interval time.Duration, store *cache.Store, clk clock.Clock) *Persister {
	return &Persister{path: path, interval: interval, store: store, clk: clk}
}

// Load restores a previously written snapshot into the store. A missing file
// is a clean first start; a corrupt file is logged and treated as empty so a
// bad snapshot can never prevent startup.
func (p *Persister) Load() int {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("file", p.path).Msg("[snapshot] read error, starting empty")
		}
		return 0
	}

	records := map[string]snapshotRecord{}
	if err = json.Unmarshal(data, &records); err != nil {
		log.Warn().Err(err).Str("file", p.path).Msg("[snapshot] corrupt snapshot, starting empty")
		return 0
	}

	entries := make([]cache.SnapshotEntry, 0, len(records))
	for key, rec := range records {
		entries = append(entries, cache.SnapshotEntry{
			Key:       key,
			Payload:   []byte(rec.Content),
			CreatedAt: rec.Timestamp,
		})
	}

	restored := p.store.Restore(entries)
	log.Info().Int("restored", restored).Str("file", p.path).Msg("[snapshot] loaded")
	return restored
}

// Save writes the current live entries to disk.
func (p *Persister) Save() error {
	entries := p.store.Export()
	records := make(map[string]snapshotRecord, len(entries))
	for _, e := range entries {
		records[e.Key] = snapshotRecord{Content: string(e.Payload), Timestamp: e.CreatedAt}
	}

	data, err := json.Marshal(records)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}

	if dir := filepath.Dir(p.path); dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create snapshot dir")
		}
	}

	tmp := p.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrap(err, "write snapshot tmp")
	}
	if err = os.Rename(tmp, p.path); err != nil {
		return errors.Wrap(err, "rename snapshot")
	}
	return nil
}

// Run snapshots on the configured interval until ctx is cancelled. The
// owner takes the final snapshot itself during shutdown, after cancelling.
func (p *Persister) Run(ctx context.Context) {
	t := p.clk.Ticker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := p.Save(); err != nil {
				log.Err(err).Str("file", p.path).Msg("[snapshot] save error")
			}
		}
	}
}
