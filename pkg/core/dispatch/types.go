package dispatch

import (
	"fmt"
	"slices"
)

// Well is a production site that a pulling unit can service
type Well struct {
	Name          string  `validate:"required"`
	Zone          string  `validate:"required"`
	NetProduction float64 `validate:"gt=0"`
	PlannedHours  float64 `validate:"gt=0"`
	Latitude      float64 `validate:"gte=-90,lte=90"`
	Longitude     float64 `validate:"gte=-180,lte=180"`
}

// WellTable is an ordered, read-only collection of wells keyed by name
type WellTable struct {
	wells []Well
	index map[string]int
}

// NewWellTable builds a table from the given wells, preserving their order.
// Names must be non-empty and unique.
func NewWellTable(wells []Well) (*WellTable, error) {
	table := &WellTable{
		wells: make([]Well, 0, len(wells)),
		index: make(map[string]int, len(wells)),
	}

	for i, w := range wells {
		if w.Name == "" {
			return nil, fmt.Errorf("%w: well at position %d has no name", ErrInvalidInput, i)
		}
		if _, exists := table.index[w.Name]; exists {
			return nil, fmt.Errorf("%w: well %q appears more than once", ErrInvalidInput, w.Name)
		}
		table.index[w.Name] = len(table.wells)
		table.wells = append(table.wells, w)
	}

	return table, nil
}

// Get returns the well with the given name
func (t *WellTable) Get(name string) (Well, bool) {
	if t == nil {
		return Well{}, false
	}
	idx, ok := t.index[name]
	if !ok {
		return Well{}, false
	}
	return t.wells[idx], true
}

// Has reports whether the table contains a well with the given name
func (t *WellTable) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Len returns the number of wells in the table
func (t *WellTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.wells)
}

// Wells returns a copy of the wells in table order
func (t *WellTable) Wells() []Well {
	if t == nil {
		return nil
	}
	return slices.Clone(t.wells)
}

// Names returns the well names in table order
func (t *WellTable) Names() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.wells))
	for i, w := range t.wells {
		names[i] = w.Name
	}
	return names
}

// Zones returns the distinct zones in the table, sorted
func (t *WellTable) Zones() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]bool)
	zones := make([]string, 0)
	for _, w := range t.wells {
		if !seen[w.Zone] {
			seen[w.Zone] = true
			zones = append(zones, w.Zone)
		}
	}
	slices.Sort(zones)
	return zones
}

// FilterZones returns a new table holding only the wells in the given zones
func (t *WellTable) FilterZones(zones []string) *WellTable {
	filtered := &WellTable{index: make(map[string]int)}
	if t == nil {
		return filtered
	}
	for _, w := range t.wells {
		if slices.Contains(zones, w.Zone) {
			filtered.index[w.Name] = len(filtered.wells)
			filtered.wells = append(filtered.wells, w)
		}
	}
	return filtered
}

// Rig represents a pulling unit and the well it is currently servicing
type Rig struct {
	// ID is the ordinal label, e.g. "Pulling 1"
	ID string `validate:"required"`

	// CurrentWell is the name of the well the rig is working on
	CurrentWell string `validate:"required"`

	// RemainingHours is the service time left on the current well
	RemainingHours float64 `validate:"gte=0"`
}

// RigLabel returns the ordinal label for the rig at the given zero-based position
func RigLabel(position int) string {
	return fmt.Sprintf("Pulling %d", position+1)
}

// AvailabilityMap maps a well name to the hours until its equipment is ready.
// Wells missing from the map are ready immediately.
type AvailabilityMap map[string]float64

// Hours returns the availability hours for a well, defaulting to 0
func (m AvailabilityMap) Hours(well string) float64 {
	return m[well]
}

// Round identifies one of the three allocation rounds
type Round int

const (
	RoundN1 Round = iota
	RoundN2
	RoundN3
)

// RoundCount is the number of allocation rounds per run
const RoundCount = 3

// Rounds lists the allocation rounds in execution order
var Rounds = []Round{RoundN1, RoundN2, RoundN3}

func (r Round) String() string {
	return fmt.Sprintf("N+%d", int(r)+1)
}

// Sentinel values reported for an unfilled slot
const (
	NoCandidateLabel        = "N/A"
	NoCandidateScore        = 1.0
	NoCandidateDistanceKm   = 1.0
	NoCandidateNet          = 1.0
	NoCandidatePlannedHours = 1.0
)

// Assignment is one candidate accepted for a rig in a round, or the
// no-candidate placeholder when the round could not be filled
type Assignment struct {
	Well       string
	Score      float64
	DistanceKm float64

	// Empty marks the no-candidate variant
	Empty bool
}

// NoCandidate returns the placeholder used for unfilled slots
func NoCandidate() Assignment {
	return Assignment{
		Score:      NoCandidateScore,
		DistanceKm: NoCandidateDistanceKm,
		Empty:      true,
	}
}

// Label returns the well name, or "N/A" for the no-candidate variant
func (a Assignment) Label() string {
	if a.Empty {
		return NoCandidateLabel
	}
	return a.Well
}

// Recommendation is the stay-or-move decision for a rig
type Recommendation int

const (
	RecommendContinue Recommendation = iota
	RecommendMove
)

func (r Recommendation) String() string {
	switch r {
	case RecommendMove:
		return "Abandon current well and move to N+1"
	default:
		return "Continue at current well"
	}
}

// PriorityRow is the final report line for a single rig
type PriorityRow struct {
	RigID          string
	CurrentWell    string
	CurrentNet     float64
	RemainingHours float64

	// Candidates always holds exactly three entries (N+1, N+2, N+3)
	Candidates [RoundCount]Assignment

	CoefficientActual float64
	CoefficientNext   float64
	Recommendation    Recommendation
}

// RoundWarning records a rig/round for which no eligible candidate existed
type RoundWarning struct {
	RigID string
	Round Round
}

func (w RoundWarning) String() string {
	return fmt.Sprintf("no wells available to assign as %s for %s", w.Round, w.RigID)
}
