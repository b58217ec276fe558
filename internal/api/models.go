package api

import (
	"time"

	"github.com/skoglund/timegrid/internal/date"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Client struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived"`
}

type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ClientID string `json:"clientId"`
	Archived bool   `json:"archived"`
}

type Task struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ProjectID string `json:"projectId"`
}

// TimeEntry is a persisted entry as the server returns it. Date is a plain
// calendar day; Hours is a positive decimal.
type TimeEntry struct {
	ID        string    `json:"id"`
	Date      date.Date `json:"date"`
	ClientID  string    `json:"clientId"`
	ProjectID string    `json:"projectId"`
	Task      string    `json:"task"`
	Hours     float64   `json:"hours"`
	Notes     string    `json:"notes,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// EntryRequest creates a new entry.
type EntryRequest struct {
	Date      date.Date `json:"date"`
	ClientID  string    `json:"clientId"`
	ProjectID string    `json:"projectId"`
	Task      string    `json:"task"`
	Hours     float64   `json:"hours"`
	Notes     string    `json:"notes,omitempty"`
}

// EntryPatch updates fields of an existing entry. It mirrors EntryRequest
// so an update can re-point an entry at a different client, project, or
// task, not just change its hours. Pointers distinguish an explicit zero
// or empty value from an omitted field.
type EntryPatch struct {
	ClientID  *string  `json:"clientId,omitempty"`
	ProjectID *string  `json:"projectId,omitempty"`
	Task      *string  `json:"task,omitempty"`
	Hours     *float64 `json:"hours,omitempty"`
	Notes     *string  `json:"notes,omitempty"`
}
