package workflow

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
)

var (
	// ErrStepMissing is returned when a step runs before its prerequisites
	ErrStepMissing = errors.New("previous step has not been completed")

	// ErrNoZones is returned when no known zone was selected
	ErrNoZones = errors.New("select at least one zone")

	// ErrDuplicateWell is returned when two rigs are placed on the same well
	ErrDuplicateWell = errors.New("each pulling unit must be on a different well")

	// ErrUnknownWell is returned when a rig's well is not in the selected zones
	ErrUnknownWell = errors.New("well is not in the selected zones")

	// ErrRigCountMismatch is returned when the number of rig inputs differs from the selected count
	ErrRigCountMismatch = errors.New("number of pulling units does not match the selection")

	// ErrNoCandidates is returned when every filtered well is occupied by a rig
	ErrNoCandidates = errors.New("no wells left to assign")

	// ErrInvalidHours is returned for negative hour values
	ErrInvalidHours = errors.New("hours cannot be negative")
)

// MaxRigCount bounds the number of pulling units in a single plan
const MaxRigCount = 50

// Stage is the furthest workflow step a state has completed
type Stage int

const (
	StageEmpty Stage = iota
	StageUploaded
	StageZonesSelected
	StageRigsAssigned
	StageAvailabilitySet
)

func (s Stage) String() string {
	switch s {
	case StageUploaded:
		return "uploaded"
	case StageZonesSelected:
		return "zones selected"
	case StageRigsAssigned:
		return "rigs assigned"
	case StageAvailabilitySet:
		return "availability set"
	default:
		return "empty"
	}
}

// prerequisite describes what the user has to do to reach a stage
func (s Stage) prerequisite() string {
	switch s {
	case StageUploaded:
		return "upload a wells file first"
	case StageZonesSelected:
		return "select zones first"
	case StageRigsAssigned:
		return "assign the pulling units first"
	case StageAvailabilitySet:
		return "enter availability hours first"
	default:
		return ""
	}
}

// RigInput is the raw form input for one pulling unit
type RigInput struct {
	Well  string
	Hours string
}

// State holds the inputs collected across the planning steps. Every step
// returns a new State and leaves the receiver untouched.
type State struct {
	Wells        []dispatch.Well          `json:"wells,omitempty"`
	Zones        []string                 `json:"zones,omitempty"`
	RigCount     int                      `json:"rigCount,omitempty"`
	Rigs         []dispatch.Rig           `json:"rigs,omitempty"`
	Availability dispatch.AvailabilityMap `json:"availability,omitempty"`
	Flash        []string                 `json:"flash,omitempty"`
}

// New returns an empty state
func New() State {
	return State{}
}

func (s State) clone() State {
	return State{
		Wells:        slices.Clone(s.Wells),
		Zones:        slices.Clone(s.Zones),
		RigCount:     s.RigCount,
		Rigs:         slices.Clone(s.Rigs),
		Availability: maps.Clone(s.Availability),
		Flash:        slices.Clone(s.Flash),
	}
}

// Stage reports the furthest step completed
func (s State) Stage() Stage {
	switch {
	case len(s.Wells) == 0:
		return StageEmpty
	case len(s.Zones) == 0:
		return StageUploaded
	case len(s.Rigs) == 0:
		return StageZonesSelected
	case s.Availability == nil:
		return StageRigsAssigned
	default:
		return StageAvailabilitySet
	}
}

// Require returns ErrStepMissing when the state has not reached the given stage
func (s State) Require(stage Stage) error {
	current := s.Stage()
	if current >= stage {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrStepMissing, (current + 1).prerequisite())
}

// Table returns the uploaded wells as a table
func (s State) Table() *dispatch.WellTable {
	table, err := dispatch.NewWellTable(s.Wells)
	if err != nil {
		return nil
	}
	return table
}

// FilteredTable returns the wells in the selected zones
func (s State) FilteredTable() *dispatch.WellTable {
	return s.Table().FilterZones(s.Zones)
}

// Upload starts a new plan from the given wells, discarding any later steps
func (s State) Upload(table *dispatch.WellTable) (State, error) {
	if table.Len() == 0 {
		return s, fmt.Errorf("%w: the wells table is empty", dispatch.ErrInvalidInput)
	}
	next := State{Wells: table.Wells(), Flash: slices.Clone(s.Flash)}
	return next, nil
}

// SelectZones restricts the plan to the given zones. Unknown zones are
// ignored, and a rig count outside 1..MaxRigCount falls back to defaultCount.
func (s State) SelectZones(zones []string, rigCount, defaultCount int) (State, error) {
	if err := s.Require(StageUploaded); err != nil {
		return s, err
	}

	known := s.Table().Zones()
	selected := make([]string, 0, len(zones))
	for _, z := range zones {
		z = strings.TrimSpace(z)
		if slices.Contains(known, z) && !slices.Contains(selected, z) {
			selected = append(selected, z)
		}
	}
	if len(selected) == 0 {
		return s, ErrNoZones
	}

	if rigCount < 1 || rigCount > MaxRigCount {
		rigCount = defaultCount
	}

	next := s.clone()
	next.Zones = selected
	next.RigCount = rigCount
	next.Rigs = nil
	next.Availability = nil
	return next, nil
}

// AssignRigs places each pulling unit on a well and records its remaining
// hours. Rigs are labelled "Pulling 1".."Pulling n" in input order, and
// hours that cannot be parsed count as zero.
func (s State) AssignRigs(inputs []RigInput) (State, error) {
	if err := s.Require(StageZonesSelected); err != nil {
		return s, err
	}
	if len(inputs) != s.RigCount {
		return s, fmt.Errorf("%w: expected %d, got %d", ErrRigCountMismatch, s.RigCount, len(inputs))
	}

	filtered := s.FilteredTable()
	used := make(map[string]bool, len(inputs))
	rigs := make([]dispatch.Rig, 0, len(inputs))

	for i, in := range inputs {
		well := strings.TrimSpace(in.Well)
		if !filtered.Has(well) {
			return s, fmt.Errorf("%w: %q", ErrUnknownWell, well)
		}
		if used[well] {
			return s, fmt.Errorf("%w: %q", ErrDuplicateWell, well)
		}
		used[well] = true

		hours, err := parseHours(in.Hours)
		if err != nil {
			return s, fmt.Errorf("%s: %w", dispatch.RigLabel(i), err)
		}

		rigs = append(rigs, dispatch.Rig{
			ID:             dispatch.RigLabel(i),
			CurrentWell:    well,
			RemainingHours: hours,
		})
	}

	next := s.clone()
	next.Rigs = rigs
	next.Availability = nil
	return next, nil
}

// RemainingWells lists the filtered wells not occupied by a rig, in table order
func (s State) RemainingWells() []string {
	occupied := make(map[string]bool, len(s.Rigs))
	for _, r := range s.Rigs {
		occupied[r.CurrentWell] = true
	}

	var remaining []string
	for _, name := range s.FilteredTable().Names() {
		if !occupied[name] {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

// SetAvailability records the hours until each remaining well's equipment
// is ready. Wells left out, or whose value cannot be parsed, are ready now.
func (s State) SetAvailability(hours map[string]string) (State, error) {
	if err := s.Require(StageRigsAssigned); err != nil {
		return s, err
	}

	remaining := s.RemainingWells()
	if len(remaining) == 0 {
		return s, ErrNoCandidates
	}

	availability := make(dispatch.AvailabilityMap, len(remaining))
	for _, name := range remaining {
		value, err := parseHours(hours[name])
		if err != nil {
			return s, fmt.Errorf("%s: %w", name, err)
		}
		availability[name] = value
	}

	next := s.clone()
	next.Availability = availability
	return next, nil
}

// PlanOptions carries the engine settings that do not come from the user
type PlanOptions struct {
	Comparison  dispatch.ComparisonPolicy
	ZeroHours   dispatch.ZeroHoursPolicy
	Constraints []dispatch.Constraint
	Logger      *zap.Logger
}

// EngineConfig builds the engine configuration for a completed state
func (s State) EngineConfig(opts PlanOptions) (dispatch.Config, error) {
	if err := s.Require(StageAvailabilitySet); err != nil {
		return dispatch.Config{}, err
	}

	return dispatch.Config{
		Table:        s.FilteredTable(),
		Rigs:         slices.Clone(s.Rigs),
		Availability: maps.Clone(s.Availability),
		Comparison:   opts.Comparison,
		ZeroHours:    opts.ZeroHours,
		Constraints:  opts.Constraints,
		Logger:       opts.Logger,
	}, nil
}

// Plan runs the dispatch engine over the collected inputs
func (s State) Plan(opts PlanOptions) (*dispatch.Outcome, error) {
	cfg, err := s.EngineConfig(opts)
	if err != nil {
		return nil, err
	}
	return dispatch.Run(cfg)
}

// WithFlash returns a copy of the state carrying an extra user message
func (s State) WithFlash(message string) State {
	next := s.clone()
	next.Flash = append(next.Flash, message)
	return next
}

// TakeFlash returns the pending messages and a copy of the state without them
func (s State) TakeFlash() ([]string, State) {
	messages := slices.Clone(s.Flash)
	next := s.clone()
	next.Flash = nil
	return messages, next
}

// parseHours accepts a comma decimal mark. Blank or unparsable input is zero.
func parseHours(raw string) (float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, nil
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidHours, raw)
	}
	return value, nil
}
