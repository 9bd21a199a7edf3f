package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// Store is a GORM-backed implementation of storage.Store.
type Store struct {
	schema *Schema
	now    func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for past/future filtering.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore returns a store reading and writing through schema.
func NewStore(schema *Schema, options ...Option) *Store {
	s := &Store{schema: schema, now: time.Now}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	return s
}

// Migrate applies schema updates.
func (s *Store) Migrate(ctx context.Context) error {
	return s.schema.Initialize(ctx)
}

func (s *Store) currentTime() time.Time {
	return storage.Naive(s.now())
}

// ResolveChat looks up a registered chat by its external id and keeps the
// stored name in sync with name.
func (s *Store) ResolveChat(ctx context.Context, externalID int64, name string) (int64, bool, error) {
	table, err := s.schema.Table(TableChat)
	if err != nil {
		return 0, false, err
	}
	var model chatModel
	if err := table.query(ctx).Where("chat_id = ?", externalID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, &storage.Error{Op: "resolve chat", Err: err}
	}
	if model.Name != name {
		if err := table.query(ctx).Where("id = ?", model.ID).Update("name", name).Error; err != nil {
			return 0, false, &storage.Error{Op: "rename chat", Err: err}
		}
	}
	return model.ID, true, nil
}

// RegisterChat creates the chat row for externalID, or renames it when it
// already exists.
func (s *Store) RegisterChat(ctx context.Context, externalID int64, name string) (storage.Chat, error) {
	id, ok, err := s.ResolveChat(ctx, externalID, name)
	if err != nil {
		return storage.Chat{}, err
	}
	if ok {
		return storage.Chat{ID: id, ChatID: externalID, Name: name}, nil
	}
	table, err := s.schema.Table(TableChat)
	if err != nil {
		return storage.Chat{}, err
	}
	model := chatModel{ChatID: externalID, Name: name}
	if err := table.query(ctx).Create(&model).Error; err != nil {
		return storage.Chat{}, &storage.Error{Op: "register chat", Err: err}
	}
	return chatFromModel(model), nil
}

// ListChats returns every registered chat ordered by id.
func (s *Store) ListChats(ctx context.Context) ([]storage.Chat, error) {
	table, err := s.schema.Table(TableChat)
	if err != nil {
		return nil, err
	}
	var models []chatModel
	if err := table.query(ctx).Order("id ASC").Find(&models).Error; err != nil {
		return nil, &storage.Error{Op: "list chats", Err: err}
	}
	chats := make([]storage.Chat, 0, len(models))
	for _, m := range models {
		chats = append(chats, chatFromModel(m))
	}
	return chats, nil
}

// InsertEvent stores a new event. It returns storage.ErrDuplicateEvent when
// the chat already has an event with the same title and date.
func (s *Store) InsertEvent(ctx context.Context, event storage.Event) error {
	table, err := s.schema.Table(TableReminder)
	if err != nil {
		return err
	}
	model := reminderModel{
		ChatID: event.ChatID,
		Title:  event.Title,
		Date:   storage.Naive(event.Date),
		Text:   event.Text,
	}
	if err := table.query(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errors.Wrapf(storage.ErrDuplicateEvent, "chat %d title %q", event.ChatID, event.Title)
		}
		return &storage.Error{Op: "insert event", Err: err}
	}
	return nil
}

// UpdateEvent replaces the text of the event matching chat, title and date.
// It returns the number of rows changed; zero is not an error.
func (s *Store) UpdateEvent(ctx context.Context, event storage.Event) (int64, error) {
	table, err := s.schema.Table(TableReminder)
	if err != nil {
		return 0, err
	}
	res := table.query(ctx).
		Where(map[string]interface{}{
			"chat_id": event.ChatID,
			"title":   event.Title,
			"date":    storage.Naive(event.Date),
		}).
		Update("text", event.Text)
	if res.Error != nil {
		return 0, &storage.Error{Op: "update event", Err: res.Error}
	}
	return res.RowsAffected, nil
}

// ListEvents returns up to amount events of a chat, or all of them when amount
// is zero. Future listings are sorted soonest first, the others latest first.
func (s *Store) ListEvents(ctx context.Context, chatID int64, amount int, filter storage.DateFilter) ([]storage.EventSummary, error) {
	table, err := s.schema.Table(TableReminder)
	if err != nil {
		return nil, err
	}
	tx := table.query(ctx).Select("id", "date", "title").Where("chat_id = ?", chatID)
	switch filter {
	case storage.DateFilterFuture:
		tx = tx.Where(clause.Gt{Column: dateColumn, Value: s.currentTime()}).Order(byDate(false))
	case storage.DateFilterPast:
		tx = tx.Where(clause.Lt{Column: dateColumn, Value: s.currentTime()}).Order(byDate(true))
	case storage.DateFilterNone:
		tx = tx.Order(byDate(true))
	default:
		return nil, errors.Errorf("unknown date filter %q", filter)
	}
	if amount > 0 {
		tx = tx.Limit(amount)
	}

	var models []reminderModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, &storage.Error{Op: "list events", Err: err}
	}
	events := make([]storage.EventSummary, 0, len(models))
	for _, m := range models {
		events = append(events, storage.EventSummary{ID: m.ID, Date: m.Date, Title: m.Title})
	}
	return events, nil
}

// GetEvent fetches a single event of the chat.
func (s *Store) GetEvent(ctx context.Context, chatID int64, eventID *int64) (storage.Event, bool, error) {
	table, err := s.schema.Table(TableReminder)
	if err != nil {
		return storage.Event{}, false, err
	}
	tx := table.query(ctx).Where("chat_id = ?", chatID)
	if eventID == nil {
		tx = tx.Where(clause.Gt{Column: dateColumn, Value: s.currentTime()}).Order(byDate(false))
	} else {
		tx = tx.Where("id = ?", *eventID)
	}

	var model reminderModel
	if err := tx.Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.Event{}, false, nil
		}
		return storage.Event{}, false, &storage.Error{Op: "get event", Err: err}
	}
	return eventFromModel(model), true, nil
}

var dateColumn = clause.Column{Name: "date"}

// byDate orders by date, falling back to insertion order for equal dates.
func byDate(desc bool) clause.OrderBy {
	return clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: dateColumn, Desc: desc},
		{Column: clause.Column{Name: "id"}, Desc: desc},
	}}
}

func chatFromModel(m chatModel) storage.Chat {
	return storage.Chat{ID: m.ID, ChatID: m.ChatID, Name: m.Name}
}

func eventFromModel(m reminderModel) storage.Event {
	return storage.Event{
		ID:     m.ID,
		ChatID: m.ChatID,
		Title:  m.Title,
		Date:   m.Date,
		Text:   m.Text,
	}
}
