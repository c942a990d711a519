package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Lucianogalizia/CronoPUHEROKE/internal/config"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/dispatch"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/core/workflow"
	"github.com/Lucianogalizia/CronoPUHEROKE/pkg/metrics"
)

// PlanOptions translates the dispatch configuration into engine options
func PlanOptions(cfg config.DispatchConfig, logger *zap.Logger) workflow.PlanOptions {
	return workflow.PlanOptions{
		Comparison: dispatch.ComparisonPolicy(cfg.ComparisonPolicy),
		ZeroHours:  dispatch.ZeroHoursPolicy(cfg.ZeroHoursPolicy),
		Logger:     logger,
	}
}

// PlanDispatch runs the three allocation rounds over a completed workflow
// state and returns the priority matrix
func PlanDispatch(
	ctx context.Context,
	state workflow.State,
	cfg config.DispatchConfig,
	recorder metrics.Recorder,
	logger *zap.Logger,
) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logger.Debug("Planning dispatch",
		zap.Int("rigs", len(state.Rigs)),
		zap.Strings("zones", state.Zones),
		zap.Int("candidates", len(state.Availability)))

	start := time.Now()
	outcome, err := state.Plan(PlanOptions(cfg, logger))
	elapsed := time.Since(start).Seconds()
	if err != nil {
		recorder.RecordPlan(len(state.Rigs), elapsed, metrics.ResultFailure)
		return nil, err
	}
	recorder.RecordPlan(len(state.Rigs), elapsed, metrics.ResultSuccess)

	for _, w := range outcome.Warnings {
		recorder.IncrementRoundWarning(w.Round.String())
		logger.Warn("Round left unfilled", zap.String("rig", w.RigID), zap.Stringer("round", w.Round))
	}
	for _, row := range outcome.Rows {
		recorder.IncrementRecommendation(RecommendationClass(row.Recommendation))
	}

	report := NewReport(outcome, state.Fingerprint(), time.Now())

	logger.Info("Dispatch planned",
		zap.Int("rigs", len(report.Rows)),
		zap.Int("warnings", len(report.Warnings)),
		zap.String("fingerprint", report.Fingerprint))

	return report, nil
}
