package dispatch

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances
const EarthRadiusKm = 6371.0088

// DistanceWeight converts kilometres of travel into equivalent service hours
const DistanceWeight = 0.5

// Candidate is a scored well relative to a reference well
type Candidate struct {
	Well       Well
	Score      float64
	DistanceKm float64

	// Round is set when the candidate is accepted
	Round Round
}

// ScoreCalculator ranks candidate wells against a reference well
type ScoreCalculator struct {
	table *WellTable
}

// NewScoreCalculator creates a calculator backed by the given table
func NewScoreCalculator(table *WellTable) *ScoreCalculator {
	return &ScoreCalculator{table: table}
}

// DistanceKm returns the great-circle distance between two wells in kilometres
func DistanceKm(from, to Well) float64 {
	a := s2.LatLngFromDegrees(from.Latitude, from.Longitude)
	b := s2.LatLngFromDegrees(to.Latitude, to.Longitude)
	return a.Distance(b).Radians() * EarthRadiusKm
}

// Score computes the candidate's productivity per effective hour:
//
//	net / (planned + 0.5 * distance)
//
// Both wells must be in the table.
func (c *ScoreCalculator) Score(reference, candidate string) (Candidate, error) {
	ref, ok := c.table.Get(reference)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: reference well %q not found", ErrInvalidInput, reference)
	}
	cand, ok := c.table.Get(candidate)
	if !ok {
		return Candidate{}, fmt.Errorf("%w: candidate well %q not found", ErrInvalidInput, candidate)
	}

	return scoreWells(ref, cand)
}

func scoreWells(ref, cand Well) (Candidate, error) {
	if cand.PlannedHours <= 0 {
		return Candidate{}, fmt.Errorf("%w: well %q has non-positive planned hours %v",
			ErrInvalidRecord, cand.Name, cand.PlannedHours)
	}

	distance := DistanceKm(ref, cand)
	denominator := cand.PlannedHours + DistanceWeight*distance

	return Candidate{
		Well:       cand,
		Score:      cand.NetProduction / denominator,
		DistanceKm: distance,
	}, nil
}

// better reports whether a should be preferred over b: higher score first,
// then shorter distance, then the lexicographically smaller name
func better(a, b Candidate) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.DistanceKm != b.DistanceKm {
		return a.DistanceKm < b.DistanceKm
	}
	return a.Well.Name < b.Well.Name
}
