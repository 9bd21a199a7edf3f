package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotConfigured is returned when no database connection has been configured.
	ErrNotConfigured = errors.New("storage: no database connection configured")
	// ErrDuplicateEvent is returned when an event with the same chat, title and date already exists.
	ErrDuplicateEvent = errors.New("storage: event already registered")
)

// Error wraps a failure reported by the database driver.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Chat represents a registered group conversation.
type Chat struct {
	ID     int64
	ChatID int64
	Name   string
}

// Event represents a reminder stored for a chat.
type Event struct {
	ID     int64
	ChatID int64
	Title  string
	Date   time.Time
	Text   string
}

// EventSummary is the subset of an event shown in listings.
type EventSummary struct {
	ID    int64
	Date  time.Time
	Title string
}

// DateFilter restricts listings relative to the current time.
type DateFilter string

const (
	DateFilterNone   DateFilter = "NoFilter"
	DateFilterPast   DateFilter = "past"
	DateFilterFuture DateFilter = "next"
)

// Store defines persistence operations used by the bot.
type Store interface {
	Migrate(ctx context.Context) error

	// ResolveChat maps an external chat id to the internal chat id, refreshing
	// the stored name when it differs. ok is false for unregistered chats.
	ResolveChat(ctx context.Context, externalID int64, name string) (id int64, ok bool, err error)
	RegisterChat(ctx context.Context, externalID int64, name string) (Chat, error)
	ListChats(ctx context.Context) ([]Chat, error)

	InsertEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) (int64, error)
	ListEvents(ctx context.Context, chatID int64, amount int, filter DateFilter) ([]EventSummary, error)
	// GetEvent returns the event with eventID, or the soonest future event
	// when eventID is nil.
	GetEvent(ctx context.Context, chatID int64, eventID *int64) (Event, bool, error)
}

// Naive drops the location of t and keeps its wall clock, so that event dates
// compare the same way regardless of the server time zone.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
