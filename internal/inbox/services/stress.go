package services

import "github.com/felixgeelhaar/calmbox/internal/inbox/domain"

// Share of high-stress emails above which the inbox level rises.
const (
	highStressThreshold   = 0.3
	mediumStressThreshold = 0.1
)

// AggregateStress derives the overall stress reading from emails. It keeps
// no state; callers recompute it whenever the collection changes.
func AggregateStress(emails []domain.Email) domain.StressSnapshot {
	snapshot := domain.StressSnapshot{
		OverallLevel: domain.LevelLow,
		Total:        len(emails),
	}
	if len(emails) == 0 {
		return snapshot
	}

	for _, e := range emails {
		if e.StressLevel == domain.LevelHigh {
			snapshot.HighCount++
		}
	}
	snapshot.HighFraction = float64(snapshot.HighCount) / float64(snapshot.Total)

	switch {
	case snapshot.HighFraction > highStressThreshold:
		snapshot.OverallLevel = domain.LevelHigh
	case snapshot.HighFraction > mediumStressThreshold:
		snapshot.OverallLevel = domain.LevelMedium
	}
	snapshot.NeedsBreak = snapshot.OverallLevel == domain.LevelHigh

	return snapshot
}
