package wizard

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pshebel/lazer/internal/draft"
)

// scriptedPrompter replays a fixed sequence of selections and records which
// steps were shown.
type scriptedPrompter struct {
	script []Selection
	steps  []string
}

func (p *scriptedPrompter) next(step string) Selection {
	p.steps = append(p.steps, step)
	sel := p.script[0]
	p.script = p.script[1:]
	return sel
}

func (p *scriptedPrompter) SelectVehicle(candidates []draft.Vehicle) (Selection, error) {
	return p.next("vehicle"), nil
}

func (p *scriptedPrompter) SelectAddress(candidates []string) (Selection, error) {
	return p.next("address"), nil
}

func (p *scriptedPrompter) SelectViolationType(options []string) (Selection, error) {
	return p.next("violation"), nil
}

func newTestStore(t *testing.T) *draft.Store {
	t.Helper()
	s, err := draft.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func processedDraft(addresses []string, vehicles int) *draft.Draft {
	d := &draft.Draft{
		ID:        1,
		Time:      time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		Processed: true,
		Raw: &draft.Detection{
			Addresses:    addresses,
			SubmissionID: "sub-1",
		},
	}
	for i := 0; i < vehicles; i++ {
		d.Raw.Vehicles = append(d.Raw.Vehicles, draft.Vehicle{
			Vehicle: draft.VehicleDetail{Score: 0.9 - float64(i)*0.1, Type: "SUV"},
		})
	}
	return d
}

func TestRunSavesEachStep(t *testing.T) {
	store := newTestStore(t)
	d := processedDraft([]string{"123 Main St, Philadelphia, PA, 19107"}, 2)
	if err := store.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := &scriptedPrompter{script: []Selection{
		{Choice: 1, Role: RoleSave},
		{Choice: 0, Role: RoleSave},
		{Choice: 4, Role: RoleSave}, // "Sidewalk"
	}}
	w := &Wizard{Store: store, Prompt: p}

	done, err := w.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !done {
		t.Fatal("Expected wizard to complete")
	}

	stored, err := store.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.Vehicle == nil || stored.Vehicle.Vehicle.Score != 0.8 {
		t.Errorf("Expected second vehicle candidate saved, got %+v", stored.Vehicle)
	}
	if stored.Address != "123 Main St, Philadelphia, PA, 19107" {
		t.Errorf("Address = %q", stored.Address)
	}
	if stored.ViolationType != "Sidewalk" {
		t.Errorf("ViolationType = %q", stored.ViolationType)
	}
}

func TestRunSkipsAddressWhenNoViableCandidates(t *testing.T) {
	store := newTestStore(t)
	// Candidates exist but none pass the viability filter
	d := processedDraft([]string{"Broad & Market", "Main St, Philadelphia"}, 1)
	if err := store.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := &scriptedPrompter{script: []Selection{
		{Choice: 0, Role: RoleSave},
		{Choice: 0, Role: RoleSave},
	}}
	w := &Wizard{Store: store, Prompt: p}

	done, err := w.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !done {
		t.Fatal("Expected wizard to complete")
	}
	for _, step := range p.steps {
		if step == "address" {
			t.Error("Address step should have been skipped")
		}
	}
}

func TestRunBackReentersPreviousStep(t *testing.T) {
	store := newTestStore(t)
	d := processedDraft([]string{"123 Main St, Philadelphia, PA, 19107"}, 1)
	if err := store.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := &scriptedPrompter{script: []Selection{
		{Choice: 0, Role: RoleSave}, // vehicle
		{Role: RoleBack},            // address -> back to vehicle
		{Choice: 0, Role: RoleSave}, // vehicle again
		{Choice: 0, Role: RoleSave}, // address
		{Choice: 0, Role: RoleSave}, // violation
	}}
	w := &Wizard{Store: store, Prompt: p}

	done, err := w.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !done {
		t.Fatal("Expected wizard to complete")
	}

	want := []string{"vehicle", "address", "vehicle", "address", "violation"}
	if len(p.steps) != len(want) {
		t.Fatalf("Steps = %v, expected %v", p.steps, want)
	}
	for i := range want {
		if p.steps[i] != want[i] {
			t.Fatalf("Steps = %v, expected %v", p.steps, want)
		}
	}
}

func TestRunCancelKeepsLastSavedState(t *testing.T) {
	store := newTestStore(t)
	d := processedDraft([]string{"123 Main St, Philadelphia, PA, 19107"}, 1)
	if err := store.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := &scriptedPrompter{script: []Selection{
		{Choice: 0, Role: RoleSave}, // vehicle saved
		{Role: RoleCancel},          // cancel at address
	}}
	w := &Wizard{Store: store, Prompt: p}

	done, err := w.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if done {
		t.Fatal("Expected wizard to report cancellation")
	}

	stored, err := store.Load(1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stored.Vehicle == nil {
		t.Error("Vehicle selection from before the cancel should persist")
	}
	if stored.Address != "" || stored.ViolationType != "" {
		t.Errorf("Unsaved steps leaked onto the draft: %+v", stored)
	}
}

func TestRunRequiresProcessedDraft(t *testing.T) {
	store := newTestStore(t)
	w := &Wizard{Store: store, Prompt: &scriptedPrompter{}}

	_, err := w.Run(&draft.Draft{ID: 2})
	if !errors.Is(err, ErrNotProcessed) {
		t.Errorf("Expected ErrNotProcessed, got %v", err)
	}
}

func TestRunSkipsVehicleWhenNoCandidates(t *testing.T) {
	store := newTestStore(t)
	d := processedDraft([]string{"123 Main St, Philadelphia, PA, 19107"}, 0)
	if err := store.Save(d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	p := &scriptedPrompter{script: []Selection{
		{Choice: 0, Role: RoleSave}, // address
		{Choice: 0, Role: RoleSave}, // violation
	}}
	w := &Wizard{Store: store, Prompt: p}

	done, err := w.Run(d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !done {
		t.Fatal("Expected wizard to complete")
	}
	for _, step := range p.steps {
		if step == "vehicle" {
			t.Error("Vehicle step should have been skipped")
		}
	}
}
