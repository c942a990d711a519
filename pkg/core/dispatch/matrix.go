package dispatch

import (
	"fmt"
)

// ComparisonPolicy decides which way the current coefficient is compared
// against the N+1 coefficient
type ComparisonPolicy string

const (
	// MoveIfBetter recommends moving when N+1 is more productive than staying
	// (coefficient_actual < coefficient_N+1)
	MoveIfBetter ComparisonPolicy = "move_if_better"

	// MoveIfWorse recommends moving when coefficient_actual > coefficient_N+1
	MoveIfWorse ComparisonPolicy = "move_if_worse"
)

// ZeroHoursPolicy decides what happens when a rig has no remaining hours on
// its current well
type ZeroHoursPolicy string

const (
	// ZeroHoursAlwaysMove treats the current coefficient as 0
	ZeroHoursAlwaysMove ZeroHoursPolicy = "always_move"

	// ZeroHoursReject fails the run with ErrInvalidInput
	ZeroHoursReject ZeroHoursPolicy = "reject"
)

// PriorityMatrixBuilder turns the assigned candidates into report rows
type PriorityMatrixBuilder struct {
	table      *WellTable
	comparison ComparisonPolicy
	zeroHours  ZeroHoursPolicy
}

// NewPriorityMatrixBuilder creates a builder; empty policies take their defaults
func NewPriorityMatrixBuilder(table *WellTable, comparison ComparisonPolicy, zeroHours ZeroHoursPolicy) *PriorityMatrixBuilder {
	if comparison == "" {
		comparison = MoveIfBetter
	}
	if zeroHours == "" {
		zeroHours = ZeroHoursAlwaysMove
	}
	return &PriorityMatrixBuilder{
		table:      table,
		comparison: comparison,
		zeroHours:  zeroHours,
	}
}

// Build creates one row per rig, in rig order
func (b *PriorityMatrixBuilder) Build(rigs []*RigState) ([]PriorityRow, error) {
	rows := make([]PriorityRow, 0, len(rigs))
	for _, rig := range rigs {
		row, err := b.buildRow(rig.Rig, rig.Assignments())
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *PriorityMatrixBuilder) buildRow(rig Rig, assignments [RoundCount]Assignment) (PriorityRow, error) {
	current, ok := b.table.Get(rig.CurrentWell)
	if !ok {
		return PriorityRow{}, fmt.Errorf("%w: current well %q of %s not found", ErrInvalidInput, rig.CurrentWell, rig.ID)
	}

	row := PriorityRow{
		RigID:          rig.ID,
		CurrentWell:    current.Name,
		CurrentNet:     current.NetProduction,
		RemainingHours: rig.RemainingHours,
		Candidates:     assignments,
	}

	actual, err := b.currentCoefficient(rig, current)
	if err != nil {
		return PriorityRow{}, err
	}
	row.CoefficientActual = actual
	row.CoefficientNext = b.nextCoefficient(row.Candidates[RoundN1])
	row.Recommendation = b.recommend(row.CoefficientActual, row.CoefficientNext)

	return row, nil
}

func (b *PriorityMatrixBuilder) currentCoefficient(rig Rig, current Well) (float64, error) {
	if rig.RemainingHours > 0 {
		return current.NetProduction / rig.RemainingHours, nil
	}
	if b.zeroHours == ZeroHoursReject {
		return 0, fmt.Errorf("%w: %s has no remaining hours on %s", ErrInvalidInput, rig.ID, rig.CurrentWell)
	}
	return 0, nil
}

// nextCoefficient rates the N+1 slot. An unfilled slot, or one whose well
// cannot be looked up, falls back to net=1 and planned=1 over its own distance.
func (b *PriorityMatrixBuilder) nextCoefficient(next Assignment) float64 {
	net := NoCandidateNet
	planned := NoCandidatePlannedHours
	if !next.Empty {
		if well, ok := b.table.Get(next.Well); ok {
			net = well.NetProduction
			planned = well.PlannedHours
		}
	}
	return net / (DistanceWeight*next.DistanceKm + planned)
}

func (b *PriorityMatrixBuilder) recommend(actual, next float64) Recommendation {
	move := actual < next
	if b.comparison == MoveIfWorse {
		move = actual > next
	}
	if move {
		return RecommendMove
	}
	return RecommendContinue
}
