// internal/export/csv.go
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"datagen-service/pkg/models"
)

// Column order matches the warehouse loader schemas; changing it breaks the
// downstream ingestion, so both encoders pin it explicitly.

var userColumns = []string{
	"user_id", "name", "location", "join_date", "verified_neighborhood",
	"created_at", "age_group", "device_type", "user_segment",
}

var eventColumns = []string{
	"event_id", "user_id", "session_id", "event_type", "event_timestamp",
	"ab_group", "item_id", "properties",
}

// UsersCSV renders the users dataset; deterministic for a given input.
func UsersCSV(users []models.User) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(userColumns); err != nil {
		return nil, fmt.Errorf("write users header: %w", err)
	}
	for _, u := range users {
		record := []string{
			u.UserID,
			u.Name,
			u.Location,
			u.JoinDate.UTC().Format("2006-01-02"),
			strconv.FormatBool(u.VerifiedNeighborhood),
			u.CreatedAt.UTC().Format(time.RFC3339),
			u.AgeGroup,
			u.DeviceType,
			u.UserSegment,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write user %s: %w", u.UserID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush users csv: %w", err)
	}
	return buf.Bytes(), nil
}

// EventsCSV renders the events dataset; deterministic for a given input.
func EventsCSV(events []models.Event) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(eventColumns); err != nil {
		return nil, fmt.Errorf("write events header: %w", err)
	}
	for _, ev := range events {
		itemID := ""
		if ev.ItemID != nil {
			itemID = *ev.ItemID
		}
		record := []string{
			ev.EventID,
			ev.UserID,
			ev.SessionID,
			string(ev.EventType),
			ev.EventTimestamp.UTC().Format(time.RFC3339),
			string(ev.ABGroup),
			itemID,
			string(ev.Properties),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write event %s: %w", ev.EventID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush events csv: %w", err)
	}
	return buf.Bytes(), nil
}
