package dispatch

// RigState tracks the candidates a rig has accepted during a run
type RigState struct {
	Rig Rig

	// Accepted holds one entry per filled round, in round order. Unfilled
	// rounds have no entry.
	Accepted []Candidate
}

// ReferenceWell returns the well candidates are measured from: the most
// recently accepted candidate, or the rig's current well
func (rs *RigState) ReferenceWell() string {
	if len(rs.Accepted) > 0 {
		return rs.Accepted[len(rs.Accepted)-1].Well.Name
	}
	return rs.Rig.CurrentWell
}

// AccumulatedHours is the planned service time of all accepted candidates
func (rs *RigState) AccumulatedHours() float64 {
	total := 0.0
	for _, c := range rs.Accepted {
		total += c.Well.PlannedHours
	}
	return total
}

// Assignments returns one report assignment per round, with the
// no-candidate placeholder in every round the rig did not fill
func (rs *RigState) Assignments() [RoundCount]Assignment {
	var assignments [RoundCount]Assignment
	for i := range assignments {
		assignments[i] = NoCandidate()
	}
	for _, c := range rs.Accepted {
		if c.Round < RoundN1 || c.Round > RoundN3 {
			continue
		}
		assignments[c.Round] = Assignment{
			Well:       c.Well.Name,
			Score:      c.Score,
			DistanceKm: c.DistanceKm,
		}
	}
	return assignments
}

// DispatchState is the mutable bookkeeping of a single run. It is owned by
// one run and never shared.
type DispatchState struct {
	Table        *WellTable
	Availability AvailabilityMap

	// Rigs in their fixed processing order
	Rigs []*RigState

	// Occupied holds every well accepted by any rig so far
	Occupied map[string]bool

	// Excluded holds wells that can never be candidates (the rigs' current wells)
	Excluded map[string]bool

	// Warnings collects the rig/rounds that could not be filled
	Warnings []RoundWarning
}

// NewDispatchState creates the initial state for the given rigs
func NewDispatchState(table *WellTable, rigs []Rig, availability AvailabilityMap) *DispatchState {
	state := &DispatchState{
		Table:        table,
		Availability: availability,
		Rigs:         make([]*RigState, len(rigs)),
		Occupied:     make(map[string]bool),
		Excluded:     make(map[string]bool, len(rigs)),
		Warnings:     []RoundWarning{},
	}
	if state.Availability == nil {
		state.Availability = AvailabilityMap{}
	}
	for i, rig := range rigs {
		state.Rigs[i] = &RigState{Rig: rig, Accepted: []Candidate{}}
		state.Excluded[rig.CurrentWell] = true
	}
	return state
}

// CandidatePool returns the wells still open for assignment, in table order
func (s *DispatchState) CandidatePool() []Well {
	pool := make([]Well, 0, s.Table.Len())
	for _, w := range s.Table.wells {
		if s.Occupied[w.Name] || s.Excluded[w.Name] {
			continue
		}
		pool = append(pool, w)
	}
	return pool
}
