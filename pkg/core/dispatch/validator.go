package dispatch

import "fmt"

// ValidateOutcome re-checks the invariants of a finished run against the final
// state. An empty slice means the run is consistent.
func ValidateOutcome(state *DispatchState, constraints []Constraint) []OutcomeValidationError {
	var errors []OutcomeValidationError

	owners := make(map[string]string)
	for _, rig := range state.Rigs {
		last := RoundN1 - 1
		for i, candidate := range rig.Accepted {
			round := candidate.Round
			name := candidate.Well.Name

			if round <= last || round > RoundN3 {
				errors = append(errors, OutcomeValidationError{
					RigID:       rig.Rig.ID,
					Round:       round,
					Check:       "RoundMonotonicity",
					Description: fmt.Sprintf("well %q accepted out of round order (%s)", name, round),
				})
			}
			last = max(last, round)

			if owner, taken := owners[name]; taken {
				errors = append(errors, OutcomeValidationError{
					RigID:       rig.Rig.ID,
					Round:       round,
					Check:       "NoDoubleAssignment",
					Description: fmt.Sprintf("well %q already assigned to %s", name, owner),
				})
			}
			owners[name] = rig.Rig.ID

			if state.Excluded[name] {
				errors = append(errors, OutcomeValidationError{
					RigID:       rig.Rig.ID,
					Round:       round,
					Check:       "NoDoubleAssignment",
					Description: fmt.Sprintf("well %q is a rig's current well", name),
				})
			}

			// Replay the rig as it was when the candidate was accepted
			prefix := &RigState{Rig: rig.Rig, Accepted: rig.Accepted[:i]}
			for _, constraint := range constraints {
				if !constraint.IsCandidateValid(state, prefix, candidate.Well) {
					errors = append(errors, OutcomeValidationError{
						RigID:       rig.Rig.ID,
						Round:       round,
						Check:       constraint.Name(),
						Description: fmt.Sprintf("well %q violates constraint at acceptance", name),
					})
				}
			}
		}
	}

	return errors
}
