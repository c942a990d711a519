package dispatch

import (
	"go.uber.org/zap"
)

// GreedyAssigner fills the N+1, N+2 and N+3 slots of every rig. Within a
// round rigs are served first-come-first-served in their fixed order, so a
// well taken by an earlier rig is gone for every later rig.
type GreedyAssigner struct {
	calculator  *ScoreCalculator
	constraints []Constraint
	logger      *zap.Logger
}

// NewGreedyAssigner creates an assigner. The availability constraint is
// always applied; extra constraints are checked after it.
func NewGreedyAssigner(calculator *ScoreCalculator, logger *zap.Logger, extra ...Constraint) *GreedyAssigner {
	if logger == nil {
		logger = zap.NewNop()
	}
	constraints := append([]Constraint{NewAvailabilityConstraint()}, extra...)
	return &GreedyAssigner{
		calculator:  calculator,
		constraints: constraints,
		logger:      logger,
	}
}

// Constraints returns the constraints applied by this assigner
func (g *GreedyAssigner) Constraints() []Constraint {
	return g.constraints
}

// Assign runs all rounds in order against the given state
func (g *GreedyAssigner) Assign(state *DispatchState) error {
	for _, round := range Rounds {
		if err := g.AssignRound(state, round); err != nil {
			return err
		}
	}
	return nil
}

// AssignRound picks at most one well for every rig
func (g *GreedyAssigner) AssignRound(state *DispatchState, round Round) error {
	for _, rig := range state.Rigs {
		best, err := g.findBestCandidate(state, rig)
		if err != nil {
			return err
		}

		// Unfillable slots degrade to a warning, the run carries on
		if best == nil {
			warning := RoundWarning{RigID: rig.Rig.ID, Round: round}
			state.Warnings = append(state.Warnings, warning)
			g.logger.Warn("No eligible well for round",
				zap.String("rig", rig.Rig.ID),
				zap.String("round", round.String()))
			continue
		}

		g.acceptCandidate(state, rig, *best, round)
		g.logger.Debug("Accepted candidate",
			zap.String("rig", rig.Rig.ID),
			zap.String("round", round.String()),
			zap.String("well", best.Well.Name),
			zap.Float64("score", best.Score),
			zap.Float64("distance_km", best.DistanceKm))
	}
	return nil
}

// findBestCandidate scores every eligible well in the pool against the rig's
// reference well and returns the best one, or nil if none is eligible
func (g *GreedyAssigner) findBestCandidate(state *DispatchState, rig *RigState) (*Candidate, error) {
	reference := rig.ReferenceWell()

	var best *Candidate
	for _, well := range state.CandidatePool() {
		if !IsCandidateValidForRig(state, rig, well, g.constraints) {
			continue
		}

		candidate, err := g.calculator.Score(reference, well.Name)
		if err != nil {
			return nil, err
		}

		if best == nil || better(candidate, *best) {
			c := candidate
			best = &c
		}
	}
	return best, nil
}

// acceptCandidate records the candidate for the rig and takes the well out of
// the pool for everyone else
func (g *GreedyAssigner) acceptCandidate(state *DispatchState, rig *RigState, candidate Candidate, round Round) {
	candidate.Round = round
	rig.Accepted = append(rig.Accepted, candidate)
	state.Occupied[candidate.Well.Name] = true
}
