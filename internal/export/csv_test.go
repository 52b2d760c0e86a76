package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"datagen-service/internal/generator"
)

func TestUsersCSV(t *testing.T) {
	p := generator.DefaultParams(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	p.UserCount = 25

	users, err := generator.GenerateUsers(p)
	if err != nil {
		t.Fatalf("GenerateUsers() error = %v", err)
	}

	data, err := UsersCSV(users)
	if err != nil {
		t.Fatalf("UsersCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != len(users)+1 {
		t.Fatalf("csv rows = %d, want %d", len(records), len(users)+1)
	}
	if records[0][0] != "user_id" || records[0][3] != "join_date" {
		t.Fatalf("unexpected header: %v", records[0])
	}
	for i, u := range users {
		if records[i+1][0] != u.UserID {
			t.Fatalf("row %d user_id = %s, want %s", i+1, records[i+1][0], u.UserID)
		}
	}
}

func TestEventsCSV(t *testing.T) {
	p := generator.DefaultParams(time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	p.UserCount = 50

	users, err := generator.GenerateUsers(p)
	if err != nil {
		t.Fatalf("GenerateUsers() error = %v", err)
	}
	events, err := generator.GenerateEvents(context.Background(), users, p)
	if err != nil {
		t.Fatalf("GenerateEvents() error = %v", err)
	}

	data, err := EventsCSV(events)
	if err != nil {
		t.Fatalf("EventsCSV() error = %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != len(events)+1 {
		t.Fatalf("csv rows = %d, want %d", len(records), len(events)+1)
	}

	// Same input, same bytes.
	again, err := EventsCSV(events)
	if err != nil {
		t.Fatalf("second EventsCSV() error = %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatal("EventsCSV output is not deterministic")
	}
}
