package generator

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
	"time"

	"datagen-service/pkg/models"
)

func generateBoth(t *testing.T, p Params) ([]models.User, []models.Event) {
	t.Helper()
	users, err := GenerateUsers(p)
	if err != nil {
		t.Fatalf("GenerateUsers() error = %v", err)
	}
	events, err := GenerateEvents(context.Background(), users, p)
	if err != nil {
		t.Fatalf("GenerateEvents() error = %v", err)
	}
	return users, events
}

func bySession(events []models.Event) map[string][]models.Event {
	sessions := make(map[string][]models.Event)
	for _, ev := range events {
		sessions[ev.SessionID] = append(sessions[ev.SessionID], ev)
	}
	for id := range sessions {
		evs := sessions[id]
		sort.Slice(evs, func(i, j int) bool { return evs[i].EventTimestamp.Before(evs[j].EventTimestamp) })
		sessions[id] = evs
	}
	return sessions
}

func TestGenerateEvents_ReferentialIntegrity(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 200
	users, events := generateBoth(t, p)

	known := make(map[string]models.User, len(users))
	for _, u := range users {
		known[u.UserID] = u
	}

	eventIDs := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, ok := known[ev.UserID]; !ok {
			t.Fatalf("event %s references unknown user %s", ev.EventID, ev.UserID)
		}
		if _, dup := eventIDs[ev.EventID]; dup {
			t.Fatalf("duplicate event_id %s", ev.EventID)
		}
		eventIDs[ev.EventID] = struct{}{}
	}
}

func TestGenerateEvents_FunnelOrderPerSession(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 300

	_, events := generateBoth(t, p)

	for id, evs := range bySession(events) {
		if evs[0].EventType != models.EventPageView {
			t.Fatalf("session %s starts with %s, want page_view", id, evs[0].EventType)
		}
		for i := 1; i < len(evs); i++ {
			if StageRank(evs[i].EventType) <= StageRank(evs[i-1].EventType) {
				t.Fatalf("session %s: stage %s does not advance past %s", id, evs[i].EventType, evs[i-1].EventType)
			}
			if !evs[i].EventTimestamp.After(evs[i-1].EventTimestamp) {
				t.Fatalf("session %s: timestamps not strictly increasing", id)
			}
		}
	}
}

func TestGenerateEvents_ABGroupStablePerUser(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 300

	_, events := generateBoth(t, p)

	groups := make(map[string]models.ABGroup)
	for _, ev := range events {
		if ev.ABGroup != models.ABControl && ev.ABGroup != models.ABTreatment {
			t.Fatalf("unexpected ab_group %q", ev.ABGroup)
		}
		if prev, ok := groups[ev.UserID]; ok && prev != ev.ABGroup {
			t.Fatalf("user %s appears in both %s and %s", ev.UserID, prev, ev.ABGroup)
		}
		groups[ev.UserID] = ev.ABGroup
		if want := assignABGroup(ev.UserID, p.ABRatio); ev.ABGroup != want {
			t.Fatalf("user %s carries %s, assignment function says %s", ev.UserID, ev.ABGroup, want)
		}
	}
}

func TestGenerateEvents_TimestampBounds(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 200

	users, events := generateBoth(t, p)

	joinDates := make(map[string]time.Time, len(users))
	for _, u := range users {
		joinDates[u.UserID] = u.JoinDate
	}

	windowStart := p.RunDate.AddDate(0, 0, -p.HistoryWindowDays)
	// Session starts are capped at end of run date; intra-session dwell can
	// spill a funnel walk a few minutes past midnight.
	windowEnd := p.RunDate.AddDate(0, 0, 1).Add(5 * time.Minute)

	for _, ev := range events {
		if ev.EventTimestamp.Before(joinDates[ev.UserID]) {
			t.Fatalf("event %s at %v precedes user join date %v", ev.EventID, ev.EventTimestamp, joinDates[ev.UserID])
		}
		if ev.EventTimestamp.Before(windowStart) || ev.EventTimestamp.After(windowEnd) {
			t.Fatalf("event %s at %v outside activity window", ev.EventID, ev.EventTimestamp)
		}
	}
}

func TestGenerateEvents_ItemIDPropagation(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 400

	_, events := generateBoth(t, p)

	for id, evs := range bySession(events) {
		var itemID *string
		for _, ev := range evs {
			switch ev.EventType {
			case models.EventPageView, models.EventSearch:
				if ev.ItemID != nil {
					t.Fatalf("session %s: %s carries an item_id", id, ev.EventType)
				}
			case models.EventItemView:
				if ev.ItemID == nil {
					t.Fatalf("session %s: item_view without item_id", id)
				}
				itemID = ev.ItemID
			case models.EventChatClick, models.EventChatSend:
				if ev.ItemID == nil || itemID == nil || *ev.ItemID != *itemID {
					t.Fatalf("session %s: %s item_id does not match the viewed item", id, ev.EventType)
				}
			}
		}
	}
}

func TestGenerateEvents_Reproducible(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 150
	p.Seed = 42

	users, err := GenerateUsers(p)
	if err != nil {
		t.Fatalf("GenerateUsers() error = %v", err)
	}

	p.Workers = 1
	serial, err := GenerateEvents(context.Background(), users, p)
	if err != nil {
		t.Fatalf("serial GenerateEvents() error = %v", err)
	}

	p.Workers = 8
	parallel, err := GenerateEvents(context.Background(), users, p)
	if err != nil {
		t.Fatalf("parallel GenerateEvents() error = %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Fatal("worker count changed the generated event stream")
	}
}

func TestGenerateEvents_NoSessionsNoEvents(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 50
	p.SessionMean = 0

	_, events := generateBoth(t, p)
	if len(events) != 0 {
		t.Fatalf("session_mean=0 produced %d events, want 0", len(events))
	}
}

func TestGenerateEvents_FullConversionTable(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 100
	p.ContinueProb = map[Transition]float64{
		PageViewToSearch:    1.0,
		SearchToItemView:    1.0,
		ItemViewToChatClick: 1.0,
		ChatClickToChatSend: 1.0,
	}

	_, events := generateBoth(t, p)
	if len(events) == 0 {
		t.Fatal("no events generated")
	}

	for id, evs := range bySession(events) {
		if len(evs) != len(FunnelStages) {
			t.Fatalf("session %s has %d events, want %d (no attrition)", id, len(evs), len(FunnelStages))
		}
		if evs[len(evs)-1].EventType != models.EventChatSend {
			t.Fatalf("session %s ends with %s, want chat_send", id, evs[len(evs)-1].EventType)
		}
	}
}

func TestGenerateEvents_ZeroFirstTransition(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 100
	p.ContinueProb[PageViewToSearch] = 0.0

	_, events := generateBoth(t, p)
	for _, ev := range events {
		if ev.EventType != models.EventPageView {
			t.Fatalf("got %s event with page_view->search probability 0", ev.EventType)
		}
	}
}

func TestGenerateEvents_TreatmentLiftRaisesChatClicks(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 4000
	p.SessionMean = 3
	p.ABLift = 0.25

	_, events := generateBoth(t, p)

	itemViews := map[models.ABGroup]int{}
	chatClicks := map[models.ABGroup]int{}
	for _, ev := range events {
		switch ev.EventType {
		case models.EventItemView:
			itemViews[ev.ABGroup]++
		case models.EventChatClick:
			chatClicks[ev.ABGroup]++
		}
	}

	for _, g := range []models.ABGroup{models.ABControl, models.ABTreatment} {
		if itemViews[g] < 100 {
			t.Fatalf("sample too small for %s: %d item views", g, itemViews[g])
		}
	}

	control := float64(chatClicks[models.ABControl]) / float64(itemViews[models.ABControl])
	treatment := float64(chatClicks[models.ABTreatment]) / float64(itemViews[models.ABTreatment])
	if treatment <= control {
		t.Fatalf("treatment chat_click rate %.3f not above control %.3f", treatment, control)
	}
}

func TestGenerateEvents_InvalidConfiguration(t *testing.T) {
	p := DefaultParams(testRunDate())
	delete(p.ContinueProb, SearchToItemView)

	users := []models.User{{UserID: "u1", RunDate: p.RunDate, JoinDate: p.RunDate}}
	_, err := GenerateEvents(context.Background(), users, p)
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("GenerateEvents() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestSummarize(t *testing.T) {
	p := DefaultParams(testRunDate())
	p.UserCount = 300
	_, events := generateBoth(t, p)

	sum := Summarize(events)
	if sum.TotalEvents != len(events) {
		t.Fatalf("TotalEvents = %d, want %d", sum.TotalEvents, len(events))
	}
	if len(sum.Stages) != len(FunnelStages) {
		t.Fatalf("len(Stages) = %d, want %d", len(sum.Stages), len(FunnelStages))
	}
	// Funnel counts can only shrink stage over stage.
	for i := 1; i < len(sum.Stages); i++ {
		if sum.Stages[i].Count > sum.Stages[i-1].Count {
			t.Fatalf("stage %s count %d exceeds previous stage %d",
				sum.Stages[i].Stage, sum.Stages[i].Count, sum.Stages[i-1].Count)
		}
	}
}
