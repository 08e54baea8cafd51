// Package wizard sequences the post-detection selection steps for one
// draft: vehicle, address disambiguation and violation type. The flow is an
// explicit state machine; each save persists immediately so a crash
// mid-wizard resumes at the last completed step.
package wizard

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/pshebel/lazer/internal/address"
	"github.com/pshebel/lazer/internal/draft"
	"github.com/pshebel/lazer/internal/refdata"
)

// State is a wizard step.
type State int

const (
	StateVehicle State = iota
	StateAddress
	StateViolationType
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateVehicle:
		return "vehicle"
	case StateAddress:
		return "address"
	case StateViolationType:
		return "violation-type"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Role is how the user dismissed a step.
type Role int

const (
	RoleSave Role = iota
	RoleBack
	RoleCancel
)

// Selection is a step's outcome: the chosen index (for RoleSave) and the
// dismissal role.
type Selection struct {
	Choice int
	Role   Role
}

// Prompter presents one step to the user and reports the outcome.
type Prompter interface {
	SelectVehicle(candidates []draft.Vehicle) (Selection, error)
	SelectAddress(candidates []string) (Selection, error)
	SelectViolationType(options []string) (Selection, error)
}

// ErrNotProcessed is returned when the wizard is entered before detection
// results exist.
var ErrNotProcessed = errors.New("draft has no detection results yet")

type transition struct {
	state State
	role  Role
}

var transitions = map[transition]State{
	{StateVehicle, RoleSave}:         StateAddress,
	{StateVehicle, RoleBack}:         StateVehicle, // first step re-enters
	{StateVehicle, RoleCancel}:       StateCancelled,
	{StateAddress, RoleSave}:         StateViolationType,
	{StateAddress, RoleBack}:         StateVehicle,
	{StateAddress, RoleCancel}:       StateCancelled,
	{StateViolationType, RoleSave}:   StateDone,
	{StateViolationType, RoleBack}:   StateAddress,
	{StateViolationType, RoleCancel}: StateCancelled,
}

// Wizard drives the selection steps over one draft.
type Wizard struct {
	Store  *draft.Store
	Prompt Prompter
}

// Run walks the draft through the steps. It returns true when all steps
// were saved, false when the user cancelled; a cancel leaves the draft at
// its last saved state.
func (w *Wizard) Run(d *draft.Draft) (bool, error) {
	if !d.Processed || d.Raw == nil {
		return false, ErrNotProcessed
	}

	candidates := address.FilterCandidates(d.Raw.Addresses)
	state := StateVehicle
	movingBack := false

	for {
		slog.Debug("wizard step", "draft", d.ID, "state", state.String())
		switch state {
		case StateVehicle:
			if len(d.Raw.Vehicles) == 0 {
				state = StateAddress
				movingBack = false
				continue
			}
			sel, err := w.Prompt.SelectVehicle(d.Raw.Vehicles)
			if err != nil {
				return false, err
			}
			if sel.Role == RoleSave {
				if sel.Choice < 0 || sel.Choice >= len(d.Raw.Vehicles) {
					return false, fmt.Errorf("vehicle choice %d out of range", sel.Choice)
				}
				d.Vehicle = &d.Raw.Vehicles[sel.Choice]
				if err := w.Store.Save(d); err != nil {
					return false, err
				}
			}
			state = transitions[transition{state, sel.Role}]
			movingBack = sel.Role == RoleBack

		case StateAddress:
			if len(candidates) == 0 {
				if movingBack {
					state = StateVehicle
				} else {
					state = StateViolationType
				}
				continue
			}
			sel, err := w.Prompt.SelectAddress(candidates)
			if err != nil {
				return false, err
			}
			if sel.Role == RoleSave {
				if sel.Choice < 0 || sel.Choice >= len(candidates) {
					return false, fmt.Errorf("address choice %d out of range", sel.Choice)
				}
				d.Address = candidates[sel.Choice]
				if err := w.Store.Save(d); err != nil {
					return false, err
				}
			}
			state = transitions[transition{state, sel.Role}]
			movingBack = sel.Role == RoleBack

		case StateViolationType:
			options := refdata.ListOptions(refdata.FieldViolationObserved)
			sel, err := w.Prompt.SelectViolationType(options)
			if err != nil {
				return false, err
			}
			if sel.Role == RoleSave {
				if sel.Choice < 0 || sel.Choice >= len(options) {
					return false, fmt.Errorf("violation type choice %d out of range", sel.Choice)
				}
				d.ViolationType = options[sel.Choice]
				if err := w.Store.Save(d); err != nil {
					return false, err
				}
			}
			state = transitions[transition{state, sel.Role}]
			movingBack = sel.Role == RoleBack

		case StateDone:
			return true, nil

		case StateCancelled:
			slog.Info("wizard cancelled", "draft", d.ID)
			return false, nil
		}
	}
}
