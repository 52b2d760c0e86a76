package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"datagen-service/pkg/models"
)

// Catalog of queries buyers actually type into the marketplace.
var searchQueries = []string{
	"아이폰", "노트북", "자전거", "책상", "의자", "냉장고", "세탁기",
	"에어컨", "선풍기", "전자레인지", "청소기", "운동화", "패딩",
	"가방", "시계", "카메라", "게임기", "모니터", "키보드", "마우스",
}

// segmentOddsMultiplier scales continuation on the odds scale, so boundary
// probabilities survive: 0 stays 0 and 1 stays 1 regardless of segment.
var segmentOddsMultiplier = map[string]float64{
	SegmentHigh:   1.3,
	SegmentMedium: 1.0,
	SegmentLow:    0.7,
}

// Hourly activity weights, midnight..23h; evening-heavy like the real app.
var hourWeights = []float64{
	0.01, 0.01, 0.01, 0.01, 0.01, 0.01,
	0.02, 0.03, 0.04, 0.04, 0.04, 0.05,
	0.05, 0.04, 0.04, 0.04, 0.05, 0.06,
	0.08, 0.09, 0.10, 0.09, 0.07, 0.03,
}

// GenerateEvents simulates funnel activity for every user in the given set.
// Each user is independent: its draws come from a PRNG derived from
// (p.Seed, user_id), so the fan-out below cannot reorder results and two
// invocations with the same inputs produce identical output.
func GenerateEvents(ctx context.Context, users []models.User, p Params) ([]models.Event, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("generate events: %w", err)
	}

	perUser := make([][]models.Event, len(users))
	g, ctx := errgroup.WithContext(ctx)
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g.SetLimit(workers)

	for i := range users {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perUser[i] = simulateUser(users[i], p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("generate events: %w", err)
	}

	total := 0
	for _, evs := range perUser {
		total += len(evs)
	}
	events := make([]models.Event, 0, total)
	for _, evs := range perUser {
		events = append(events, evs...)
	}
	return events, nil
}

// simulateUser walks zero or more sessions for one user and returns the
// user's events in chronological order.
func simulateUser(u models.User, p Params) []models.Event {
	rng := userSource(p.Seed, u.UserID)
	abGroup := assignABGroup(u.UserID, p.ABRatio)

	numSessions := poisson(rng, p.SessionMean)
	if numSessions == 0 {
		return nil
	}

	sessions := make([][]models.Event, 0, numSessions)
	for s := 0; s < numSessions; s++ {
		start := sessionStart(rng, u.JoinDate, p.RunDate)
		sessions = append(sessions, simulateSession(rng, u, abGroup, start, p))
	}

	// Sessions were drawn with independent start times; order the user's
	// contribution chronologically, session id as tie-break.
	sort.Slice(sessions, func(i, j int) bool {
		ti, tj := sessions[i][0].EventTimestamp, sessions[j][0].EventTimestamp
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return sessions[i][0].SessionID < sessions[j][0].SessionID
	})

	var events []models.Event
	for _, s := range sessions {
		events = append(events, s...)
	}
	return events
}

// simulateSession emits the funnel walk for one visit: page_view always,
// then each next stage with the configured continuation probability. A
// session therefore always has at least one event.
func simulateSession(rng *rand.Rand, u models.User, abGroup models.ABGroup, start time.Time, p Params) []models.Event {
	sessionID := newID(rng)
	ts := start

	events := []models.Event{newEvent(rng, u, sessionID, models.EventPageView, ts, abGroup, nil, nil)}

	var itemID *string
	oddsMult := segmentOddsMultiplier[u.UserSegment]
	if oddsMult == 0 {
		oddsMult = 1.0
	}

	for i, tr := range funnelTransitions {
		prob := continueProb(p, tr, abGroup, oddsMult)
		if rng.Float64() >= prob {
			break
		}

		stage := FunnelStages[i]      // stage just left
		next := FunnelStages[i+1]     // stage being entered
		ts = ts.Add(stageDelay(rng, stage))

		var props map[string]any
		switch next {
		case models.EventSearch:
			props = map[string]any{"search_query": searchQueries[rng.Intn(len(searchQueries))]}
		case models.EventItemView:
			id := newID(rng)
			itemID = &id
		case models.EventChatSend:
			props = map[string]any{"message_length": 10 + rng.Intn(190)}
		}

		events = append(events, newEvent(rng, u, sessionID, next, ts, abGroup, itemID, props))
	}

	return events
}

// continueProb resolves the effective continuation probability for one
// transition: base rate, segment multiplier on the odds scale, and the
// additive treatment lift on the experiment's target transition.
func continueProb(p Params, tr Transition, abGroup models.ABGroup, oddsMult float64) float64 {
	prob := p.ContinueProb[tr]
	if oddsMult != 1.0 && prob > 0 && prob < 1 {
		odds := prob / (1 - prob) * oddsMult
		prob = odds / (1 + odds)
	}
	if abGroup == models.ABTreatment && tr == p.ABLiftTransition {
		prob += p.ABLift
	}
	if prob < 0 {
		return 0
	}
	if prob > 1 {
		return 1
	}
	return prob
}

func newEvent(rng *rand.Rand, u models.User, sessionID string, t models.EventType, ts time.Time, abGroup models.ABGroup, itemID *string, props map[string]any) models.Event {
	ev := models.Event{
		RunDate:        u.RunDate,
		EventID:        newID(rng),
		UserID:         u.UserID,
		SessionID:      sessionID,
		EventType:      t,
		EventTimestamp: ts,
		ABGroup:        abGroup,
	}
	if t == models.EventItemView || t == models.EventChatClick || t == models.EventChatSend {
		ev.ItemID = itemID
	}
	if props != nil {
		b, err := json.Marshal(props)
		if err == nil {
			ev.Properties = b
		}
	}
	return ev
}

// sessionStart picks a day the user was already a member, then an
// evening-weighted time of day. Never earlier than the join date, never
// later than the run date.
func sessionStart(rng *rand.Rand, joinDate, runDate time.Time) time.Time {
	span := int(midnightUTC(runDate).Sub(midnightUTC(joinDate)).Hours() / 24)
	day := midnightUTC(joinDate).AddDate(0, 0, rng.Intn(span+1))
	hour := weightedIndex(rng, hourWeights)
	return day.Add(time.Duration(hour)*time.Hour +
		time.Duration(rng.Intn(60))*time.Minute +
		time.Duration(rng.Intn(60))*time.Second)
}

func stageDelay(rng *rand.Rand, stage models.EventType) time.Duration {
	bounds, ok := stageDelaySeconds[stage]
	if !ok {
		return time.Second
	}
	return time.Duration(bounds[0]+rng.Intn(bounds[1]-bounds[0])) * time.Second
}
