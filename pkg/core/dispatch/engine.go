package dispatch

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Config contains everything needed for a single dispatch run
type Config struct {
	// Table holds every well that may be referenced or assigned
	Table *WellTable

	// Rigs in their fixed processing order
	Rigs []Rig

	// Availability is the per-well equipment availability in hours
	Availability AvailabilityMap

	// Comparison selects the direction of the stay/move comparison
	Comparison ComparisonPolicy

	// ZeroHours selects how rigs with no remaining hours are handled
	ZeroHours ZeroHoursPolicy

	// Constraints are applied on top of the built-in availability constraint
	Constraints []Constraint

	// Logger receives per-round diagnostics (optional)
	Logger *zap.Logger
}

// Outcome is the result of a dispatch run
type Outcome struct {
	// Rows holds one priority row per rig, in rig order
	Rows []PriorityRow

	// Warnings lists the rig/rounds left unfilled
	Warnings []RoundWarning

	// State is the final bookkeeping state of the run
	State *DispatchState
}

// Engine wires the score calculator, greedy assigner and matrix builder
type Engine struct {
	config     Config
	assigner   *GreedyAssigner
	builder    *PriorityMatrixBuilder
	calculator *ScoreCalculator
	logger     *zap.Logger
}

// NewEngine validates the configuration and creates an engine for one run
func NewEngine(config Config) (*Engine, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	calculator := NewScoreCalculator(config.Table)
	return &Engine{
		config:     config,
		calculator: calculator,
		assigner:   NewGreedyAssigner(calculator, logger, config.Constraints...),
		builder:    NewPriorityMatrixBuilder(config.Table, config.Comparison, config.ZeroHours),
		logger:     logger,
	}, nil
}

// Run executes the three allocation rounds and builds the priority matrix
func Run(config Config) (*Outcome, error) {
	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	return engine.Run()
}

// Run executes the three allocation rounds and builds the priority matrix.
// Every call starts from a fresh state.
func (e *Engine) Run() (*Outcome, error) {
	state := NewDispatchState(e.config.Table, e.config.Rigs, e.config.Availability)

	e.logger.Debug("Starting dispatch run",
		zap.Int("rigs", len(state.Rigs)),
		zap.Int("wells", state.Table.Len()),
		zap.Int("candidates", len(state.CandidatePool())))

	if err := e.assigner.Assign(state); err != nil {
		return nil, fmt.Errorf("failed to assign wells: %w", err)
	}

	if violations := ValidateOutcome(state, e.assigner.Constraints()); len(violations) > 0 {
		errs := make([]error, len(violations))
		for i, v := range violations {
			errs[i] = v
		}
		return nil, fmt.Errorf("dispatch produced an inconsistent outcome: %w", errors.Join(errs...))
	}

	rows, err := e.builder.Build(state.Rigs)
	if err != nil {
		return nil, fmt.Errorf("failed to build priority matrix: %w", err)
	}

	e.logger.Debug("Dispatch run complete",
		zap.Int("rows", len(rows)),
		zap.Int("warnings", len(state.Warnings)))

	return &Outcome{
		Rows:     rows,
		Warnings: state.Warnings,
		State:    state,
	}, nil
}

// validateConfig rejects inputs that would make the ranking meaningless
func validateConfig(config Config) error {
	if config.Table == nil {
		return fmt.Errorf("%w: no well table", ErrInvalidInput)
	}

	seenWells := make(map[string]string, len(config.Rigs))
	seenIDs := make(map[string]bool, len(config.Rigs))
	for _, rig := range config.Rigs {
		if rig.ID == "" {
			return fmt.Errorf("%w: rig with empty id", ErrInvalidInput)
		}
		if seenIDs[rig.ID] {
			return fmt.Errorf("%w: rig %s defined more than once", ErrInvalidInput, rig.ID)
		}
		seenIDs[rig.ID] = true

		if !config.Table.Has(rig.CurrentWell) {
			return fmt.Errorf("%w: %s references unknown well %q", ErrInvalidInput, rig.ID, rig.CurrentWell)
		}
		if other, dup := seenWells[rig.CurrentWell]; dup {
			return fmt.Errorf("%w: well %q is the current well of both %s and %s",
				ErrInvalidInput, rig.CurrentWell, other, rig.ID)
		}
		seenWells[rig.CurrentWell] = rig.ID

		if rig.RemainingHours < 0 {
			return fmt.Errorf("%w: %s has negative remaining hours %v", ErrInvalidInput, rig.ID, rig.RemainingHours)
		}
		if rig.RemainingHours == 0 && config.ZeroHours == ZeroHoursReject {
			return fmt.Errorf("%w: %s has no remaining hours on %s", ErrInvalidInput, rig.ID, rig.CurrentWell)
		}
	}

	for well, hours := range config.Availability {
		if hours < 0 {
			return fmt.Errorf("%w: well %q has negative availability hours %v", ErrInvalidInput, well, hours)
		}
	}

	switch config.Comparison {
	case "", MoveIfBetter, MoveIfWorse:
	default:
		return fmt.Errorf("%w: unknown comparison policy %q", ErrInvalidInput, config.Comparison)
	}
	switch config.ZeroHours {
	case "", ZeroHoursAlwaysMove, ZeroHoursReject:
	default:
		return fmt.Errorf("%w: unknown zero hours policy %q", ErrInvalidInput, config.ZeroHours)
	}

	return nil
}
