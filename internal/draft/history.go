package draft

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
)

// RetentionCap is the maximum number of drafts kept locally. Older drafts
// are purged along with their photo assets.
const RetentionCap = 20

// AssetStore removes locally stored photo assets by name.
type AssetStore interface {
	Remove(name string) error
}

// History lists stored drafts and enforces the retention cap.
type History struct {
	store  *Store
	assets AssetStore
}

// NewHistory returns a History over store whose draft assets live in assets.
func NewHistory(store *Store, assets AssetStore) *History {
	return &History{store: store, assets: assets}
}

// List returns all stored drafts sorted by capture time, newest first.
func (h *History) List() ([]*Draft, error) {
	var drafts []*Draft
	err := h.store.ForEach(func(key string, value []byte) error {
		if !strings.HasPrefix(key, draftKeyPrefix) {
			return nil
		}
		d, err := h.store.Load(parseID(key))
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", key, err)
		}
		drafts = append(drafts, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].Time.After(drafts[j].Time)
	})
	return drafts, nil
}

// Cleanup deletes every draft beyond the RetentionCap most recent ones,
// including their photo assets. It is idempotent.
func (h *History) Cleanup() error {
	drafts, err := h.List()
	if err != nil {
		return err
	}
	for _, d := range drafts[min(len(drafts), RetentionCap):] {
		if err := h.Delete(d); err != nil {
			return err
		}
		slog.Info("evicted draft past retention cap", "id", d.ID, "captured", d.Time)
	}
	return nil
}

// Delete removes a draft's photo assets (best effort) and then its record.
func (h *History) Delete(d *Draft) error {
	for _, name := range []string{d.Image, d.Thumbnail} {
		if name == "" {
			continue
		}
		if err := h.assets.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove draft asset", "id", d.ID, "asset", name, "err", err)
		}
	}
	return h.store.Remove(Key(d.ID))
}

func parseID(key string) int64 {
	var id int64
	fmt.Sscanf(strings.TrimPrefix(key, draftKeyPrefix), "%d", &id)
	return id
}
