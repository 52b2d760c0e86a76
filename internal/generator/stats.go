package generator

import (
	"datagen-service/pkg/models"
)

// StageStat is one row of the funnel summary.
type StageStat struct {
	Stage      models.EventType `json:"stage"`
	Count      int              `json:"count"`
	Conversion float64          `json:"conversion"` // fraction of the previous stage, 1.0 at the root
}

// FunnelSummary aggregates one run's event stream the same way the
// downstream dashboards do: stage counts, step conversion, A/B split.
type FunnelSummary struct {
	TotalEvents int                    `json:"total_events"`
	Stages      []StageStat            `json:"stages"`
	ABGroups    map[models.ABGroup]int `json:"ab_groups"` // distinct users per group
	Sessions    int                    `json:"sessions"`
}

// Summarize computes the funnel summary for a generated event set.
func Summarize(events []models.Event) FunnelSummary {
	counts := make(map[models.EventType]int, len(FunnelStages))
	sessions := make(map[string]struct{})
	groupUsers := make(map[models.ABGroup]map[string]struct{})

	for _, ev := range events {
		counts[ev.EventType]++
		sessions[ev.SessionID] = struct{}{}
		if groupUsers[ev.ABGroup] == nil {
			groupUsers[ev.ABGroup] = make(map[string]struct{})
		}
		groupUsers[ev.ABGroup][ev.UserID] = struct{}{}
	}

	stages := make([]StageStat, 0, len(FunnelStages))
	prev := 0
	for i, stage := range FunnelStages {
		count := counts[stage]
		conv := 0.0
		if i == 0 {
			if count > 0 {
				conv = 1.0
			}
		} else if prev > 0 {
			conv = float64(count) / float64(prev)
		}
		stages = append(stages, StageStat{Stage: stage, Count: count, Conversion: conv})
		prev = count
	}

	groups := make(map[models.ABGroup]int, len(groupUsers))
	for g, users := range groupUsers {
		groups[g] = len(users)
	}

	return FunnelSummary{
		TotalEvents: len(events),
		Stages:      stages,
		ABGroups:    groups,
		Sessions:    len(sessions),
	}
}
