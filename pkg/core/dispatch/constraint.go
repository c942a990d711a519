package dispatch

// Constraint defines a hard rule a candidate well must satisfy before it can
// be scored for a rig
type Constraint interface {
	// Name returns a human-readable identifier for this constraint
	Name() string

	// IsCandidateValid returns false if assigning the well to the rig would
	// break the rule. This acts as a veto: if ANY constraint returns false the
	// candidate is skipped for this rig in this round.
	IsCandidateValid(state *DispatchState, rig *RigState, well Well) bool
}

// AvailabilityConstraint only admits wells whose equipment will be ready by
// the time the rig is free: availability <= remaining + accumulated planned hours
type AvailabilityConstraint struct{}

// NewAvailabilityConstraint creates the built-in feasibility constraint
func NewAvailabilityConstraint() *AvailabilityConstraint {
	return &AvailabilityConstraint{}
}

func (c *AvailabilityConstraint) Name() string {
	return "Availability"
}

func (c *AvailabilityConstraint) IsCandidateValid(state *DispatchState, rig *RigState, well Well) bool {
	return state.Availability.Hours(well.Name) <= rig.Rig.RemainingHours+rig.AccumulatedHours()
}

// IsCandidateValidForRig runs every constraint against the candidate
func IsCandidateValidForRig(state *DispatchState, rig *RigState, well Well, constraints []Constraint) bool {
	for _, constraint := range constraints {
		if !constraint.IsCandidateValid(state, rig, well) {
			return false
		}
	}
	return true
}
