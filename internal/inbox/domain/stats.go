package domain

const (
	// UrgentUnreadLimit caps the urgent-and-unread list.
	UrgentUnreadLimit = 3
	// ActionRequiredLimit caps the action-required list.
	ActionRequiredLimit = 5
)

// Stats is the derived view over an email collection.
type Stats struct {
	Total           int            `json:"total"`
	Unread          int            `json:"unread"`
	Flagged         int            `json:"flagged"`
	Processed       int            `json:"processed"`
	ByCategory      map[string]int `json:"by_category"`
	ByPriority      map[Level]int  `json:"by_priority"`
	ByStress        map[Level]int  `json:"by_stress"`
	UrgentUnread    []Email        `json:"urgent_unread"`
	ActionRequired  []Email        `json:"action_required"`
	OverallPriority Level          `json:"overall_priority"`
}

// ComputeStats derives statistics from emails. The capped subsets keep
// collection order.
func ComputeStats(emails []Email) Stats {
	stats := Stats{
		Total:           len(emails),
		ByCategory:      make(map[string]int),
		ByPriority:      make(map[Level]int),
		ByStress:        make(map[Level]int),
		UrgentUnread:    []Email{},
		ActionRequired:  []Email{},
		OverallPriority: LevelLow,
	}

	for _, e := range emails {
		if !e.Read {
			stats.Unread++
		}
		if e.Flagged {
			stats.Flagged++
		}
		if e.Processed {
			stats.Processed++
		}
		if e.Category != "" {
			stats.ByCategory[e.Category]++
		}
		if e.Priority.IsValid() {
			stats.ByPriority[e.Priority]++
		}
		if e.StressLevel.IsValid() {
			stats.ByStress[e.StressLevel]++
		}

		if e.Priority == LevelHigh && !e.Read && len(stats.UrgentUnread) < UrgentUnreadLimit {
			stats.UrgentUnread = append(stats.UrgentUnread, e.Clone())
		}
		if e.HasOpenActionItems() && len(stats.ActionRequired) < ActionRequiredLimit {
			stats.ActionRequired = append(stats.ActionRequired, e.Clone())
		}
	}

	switch {
	case stats.ByPriority[LevelHigh] > 0:
		stats.OverallPriority = LevelHigh
	case stats.ByPriority[LevelMedium] > 0:
		stats.OverallPriority = LevelMedium
	}

	return stats
}
