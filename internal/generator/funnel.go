package generator

import (
	"datagen-service/pkg/models"
)

// Transition names one edge of the funnel; the continue-probability table
// is keyed by these, matching the warehouse naming downstream.
type Transition string

const (
	PageViewToSearch    Transition = "page_view_to_search"
	SearchToItemView    Transition = "search_to_item_view"
	ItemViewToChatClick Transition = "item_view_to_chat_click"
	ChatClickToChatSend Transition = "chat_click_to_chat_send"
)

// FunnelStages is the fixed stage order. A session always opens with the
// first stage; each later stage is reached only via its transition.
var FunnelStages = []models.EventType{
	models.EventPageView,
	models.EventSearch,
	models.EventItemView,
	models.EventChatClick,
	models.EventChatSend,
}

// funnelTransitions[i] leads from FunnelStages[i] to FunnelStages[i+1].
var funnelTransitions = []Transition{
	PageViewToSearch,
	SearchToItemView,
	ItemViewToChatClick,
	ChatClickToChatSend,
}

var stageRank = func() map[models.EventType]int {
	m := make(map[models.EventType]int, len(FunnelStages))
	for i, s := range FunnelStages {
		m[s] = i
	}
	return m
}()

// StageRank returns the position of a stage in the funnel order, or -1 for
// an unknown stage.
func StageRank(t models.EventType) int {
	if r, ok := stageRank[t]; ok {
		return r
	}
	return -1
}

// DefaultContinueProb mirrors the observed baseline conversion of the real
// funnel; item_view -> chat_click is the known bottleneck.
func DefaultContinueProb() map[Transition]float64 {
	return map[Transition]float64{
		PageViewToSearch:    0.60,
		SearchToItemView:    0.75,
		ItemViewToChatClick: 0.25,
		ChatClickToChatSend: 0.80,
	}
}

// Per-stage dwell before the next funnel event, in seconds [min, max).
var stageDelaySeconds = map[models.EventType][2]int{
	models.EventPageView:  {5, 30},
	models.EventSearch:    {3, 15},
	models.EventItemView:  {10, 60},
	models.EventChatClick: {2, 10},
}
