package models

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventPageView  EventType = "page_view"  // user views main page
	EventSearch    EventType = "search"     // user performs search
	EventItemView  EventType = "item_view"  // user views item detail page
	EventChatClick EventType = "chat_click" // user clicks chat button
	EventChatSend  EventType = "chat_send"  // user sends actual chat message
)

type ABGroup string

const (
	ABControl   ABGroup = "control"
	ABTreatment ABGroup = "treatment"
)

// Event is one behavioral log record. Events are derived from the user set
// of the same run and never mutated once emitted; rows are keyed by
// (run_date, event_id) so repeated runs append cleanly.
type Event struct {
	RunDate        time.Time `json:"run_date" gorm:"type:date;primaryKey"`
	EventID        string    `json:"event_id" gorm:"type:varchar(36);primaryKey"`
	RunID          string    `json:"run_id" gorm:"type:varchar(36);index;not null"`
	UserID         string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	SessionID      string    `json:"session_id" gorm:"type:varchar(36);index;not null"`
	EventType      EventType `json:"event_type" gorm:"type:varchar(20);not null;index"`
	EventTimestamp time.Time `json:"event_timestamp" gorm:"not null;index"`
	ABGroup        ABGroup   `json:"ab_group" gorm:"type:varchar(10);not null;index"`
	// ItemID is set from item_view onward and shared by the later stages
	// of the same session; nil for page_view/search.
	ItemID *string `json:"item_id,omitempty" gorm:"type:varchar(36)"`
	// Properties carries stage-specific extras (search_query, message_length).
	Properties datatypes.JSON `json:"properties,omitempty" gorm:"type:jsonb"`
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}
