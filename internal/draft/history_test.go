package draft

import (
	"fmt"
	"io/fs"
	"testing"
	"time"
)

type fakeAssets struct {
	removed []string
	missing map[string]bool
}

func (f *fakeAssets) Remove(name string) error {
	if f.missing[name] {
		return fs.ErrNotExist
	}
	f.removed = append(f.removed, name)
	return nil
}

func storeDrafts(t *testing.T, s *Store, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		d := &Draft{
			ID:        int64(i),
			Image:     fmt.Sprintf("img-%d.jpg", i),
			Thumbnail: fmt.Sprintf("img-%d_thumb.jpg", i),
			Time:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Save(d); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	h := NewHistory(s, &fakeAssets{})
	storeDrafts(t, s, 3)

	drafts, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("Expected 3 drafts, got %d", len(drafts))
	}
	for i, want := range []int64{3, 2, 1} {
		if drafts[i].ID != want {
			t.Errorf("Position %d: expected id %d, got %d", i, want, drafts[i].ID)
		}
	}
}

func TestCleanupEnforcesCap(t *testing.T) {
	s := newTestStore(t)
	assets := &fakeAssets{}
	h := NewHistory(s, assets)
	storeDrafts(t, s, RetentionCap+5)

	if err := h.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	drafts, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(drafts) != RetentionCap {
		t.Fatalf("Expected %d drafts after cleanup, got %d", RetentionCap, len(drafts))
	}
	// Oldest five (ids 1..5) are gone, newest survive
	for _, d := range drafts {
		if d.ID <= 5 {
			t.Errorf("Draft %d should have been evicted", d.ID)
		}
	}
	// Both assets of each evicted draft were removed
	if len(assets.removed) != 10 {
		t.Errorf("Expected 10 asset removals, got %d: %v", len(assets.removed), assets.removed)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	s := newTestStore(t)
	h := NewHistory(s, &fakeAssets{})
	storeDrafts(t, s, RetentionCap+3)

	if err := h.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	once, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if err := h.Cleanup(); err != nil {
		t.Fatalf("second Cleanup: %v", err)
	}
	twice, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	if len(once) != len(twice) {
		t.Fatalf("Cleanup not idempotent: %d then %d drafts", len(once), len(twice))
	}
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Errorf("Surviving set changed at %d: %d vs %d", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestCleanupUnderCapKeepsAll(t *testing.T) {
	s := newTestStore(t)
	h := NewHistory(s, &fakeAssets{})
	storeDrafts(t, s, 4)

	if err := h.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	drafts, err := h.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(drafts) != 4 {
		t.Errorf("Expected 4 drafts, got %d", len(drafts))
	}
}

func TestDeleteBestEffortAssets(t *testing.T) {
	s := newTestStore(t)
	assets := &fakeAssets{missing: map[string]bool{"img-1.jpg": true}}
	h := NewHistory(s, assets)
	storeDrafts(t, s, 1)

	d, err := s.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	// Missing image asset must not fail the delete
	if err := h.Delete(d); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(1); err == nil {
		t.Error("Draft record should be gone after Delete")
	}
}
