package session

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hmzi67/cervical-posture-detection/internal/exercise"
)

// RollingWindow is the number of records averaged by the accuracy trend.
const RollingWindow = 10

// Stats is an aggregate snapshot of a session log.
type Stats struct {
	TotalMeasurements  int                      `json:"total_measurements"`
	SessionDuration    float64                  `json:"session_duration"`
	ExercisesPerformed int                      `json:"exercises_performed"`
	AverageAccuracy    float64                  `json:"average_accuracy"`
	ByExercise         map[string]ExerciseStats `json:"by_exercise"`
}

// ExerciseStats summarizes the records of one exercise.
type ExerciseStats struct {
	Count           int     `json:"count"`
	Accuracy        float64 `json:"accuracy"`
	AvgMeasurement  float64 `json:"avg_measurement"`
	BestMeasurement float64 `json:"best_measurement"`
}

// ComputeStats folds records into a Stats snapshot. An empty log yields a
// zeroed snapshot with an empty breakdown.
func ComputeStats(records []Record) Stats {
	stats := Stats{ByExercise: make(map[string]ExerciseStats)}
	if len(records) == 0 {
		return stats
	}

	inRange := 0
	groups := make(map[string][]Record)
	for _, rec := range records {
		if rec.InTargetRange {
			inRange++
		}
		if rec.Elapsed > stats.SessionDuration {
			stats.SessionDuration = rec.Elapsed
		}
		groups[rec.Exercise] = append(groups[rec.Exercise], rec)
	}

	stats.TotalMeasurements = len(records)
	stats.ExercisesPerformed = len(groups)
	stats.AverageAccuracy = percent(inRange, len(records))

	for name, group := range groups {
		values := make([]float64, len(group))
		hits := 0
		for i, rec := range group {
			values[i] = rec.Measurement
			if rec.InTargetRange {
				hits++
			}
		}
		stats.ByExercise[name] = ExerciseStats{
			Count:           len(group),
			Accuracy:        percent(hits, len(group)),
			AvgMeasurement:  stat.Mean(values, nil),
			BestMeasurement: floats.Max(values),
		}
	}
	return stats
}

// TracePoint is one measurement plotted against its target band.
type TracePoint struct {
	Elapsed     float64 `json:"elapsed_seconds"`
	Exercise    string  `json:"exercise"`
	Measurement float64 `json:"measurement"`
	TargetMin   float64 `json:"target_min"`
	TargetMax   float64 `json:"target_max"`
}

// ExerciseAccuracy is the share of in-range records for one exercise.
type ExerciseAccuracy struct {
	Exercise string  `json:"exercise"`
	Accuracy float64 `json:"accuracy"`
}

// StatusShare is the proportion of records carrying one status.
type StatusShare struct {
	Status  exercise.Status `json:"status"`
	Count   int             `json:"count"`
	Percent float64         `json:"percent"`
}

// TrendPoint is the rolling accuracy after a record.
type TrendPoint struct {
	Elapsed  float64 `json:"elapsed_seconds"`
	Accuracy float64 `json:"accuracy"`
}

// Progress holds the four visual summaries of a session.
type Progress struct {
	Trace              []TracePoint       `json:"trace"`
	AccuracyByExercise []ExerciseAccuracy `json:"accuracy_by_exercise"`
	StatusShares       []StatusShare      `json:"status_shares"`
	RollingAccuracy    []TrendPoint       `json:"rolling_accuracy"`
	Window             int                `json:"window"`
}

// ComputeProgress derives the progress summaries from records.
func ComputeProgress(records []Record) (Progress, bool) {
	if len(records) == 0 {
		return Progress{}, false
	}

	p := Progress{
		Trace:           make([]TracePoint, 0, len(records)),
		RollingAccuracy: make([]TrendPoint, 0, len(records)),
		Window:          RollingWindow,
	}

	var order []string
	hits := make(map[string]int)
	counts := make(map[string]int)
	statusCounts := make(map[exercise.Status]int)
	windowHits := 0

	for i, rec := range records {
		p.Trace = append(p.Trace, TracePoint{
			Elapsed:     rec.Elapsed,
			Exercise:    rec.Exercise,
			Measurement: rec.Measurement,
			TargetMin:   rec.TargetMin,
			TargetMax:   rec.TargetMax,
		})

		if _, seen := counts[rec.Exercise]; !seen {
			order = append(order, rec.Exercise)
		}
		counts[rec.Exercise]++
		if rec.InTargetRange {
			hits[rec.Exercise]++
			windowHits++
		}
		statusCounts[rec.Status]++

		if i >= RollingWindow && records[i-RollingWindow].InTargetRange {
			windowHits--
		}
		size := min(i+1, RollingWindow)
		p.RollingAccuracy = append(p.RollingAccuracy, TrendPoint{
			Elapsed:  rec.Elapsed,
			Accuracy: percent(windowHits, size),
		})
	}

	for _, name := range order {
		p.AccuracyByExercise = append(p.AccuracyByExercise, ExerciseAccuracy{
			Exercise: name,
			Accuracy: percent(hits[name], counts[name]),
		})
	}

	for status, count := range statusCounts {
		p.StatusShares = append(p.StatusShares, StatusShare{
			Status:  status,
			Count:   count,
			Percent: percent(count, len(records)),
		})
	}
	sort.Slice(p.StatusShares, func(i, j int) bool {
		if p.StatusShares[i].Count != p.StatusShares[j].Count {
			return p.StatusShares[i].Count > p.StatusShares[j].Count
		}
		return p.StatusShares[i].Status < p.StatusShares[j].Status
	})

	return p, true
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
