package database

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

// Table names managed by Schema.
const (
	TableChat     = "chat"
	TableReminder = "reminder"
)

type chatModel struct {
	ID     int64  `gorm:"primaryKey"`
	ChatID int64  `gorm:"column:chat_id;index;not null"`
	Name   string `gorm:"type:text;not null"`
}

func (chatModel) TableName() string { return TableChat }

type reminderModel struct {
	ID     int64     `gorm:"primaryKey"`
	ChatID int64     `gorm:"column:chat_id;index;not null;uniqueIndex:idx_reminder_chat_title_date,priority:1"`
	Title  string    `gorm:"type:text;not null;uniqueIndex:idx_reminder_chat_title_date,priority:2"`
	Date   time.Time `gorm:"type:timestamp;not null;uniqueIndex:idx_reminder_chat_title_date,priority:3"`
	Text   string    `gorm:"type:text;not null"`
}

func (reminderModel) TableName() string { return TableReminder }

var tableModels = map[string]interface{}{
	TableChat:     &chatModel{},
	TableReminder: &reminderModel{},
}

// Table is a table descriptor bound to the engine.
type Table struct {
	Name   string
	Schema *schema.Schema
	db     *gorm.DB
}

func (t *Table) query(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

// Schema builds table descriptors on first access and keeps them for the
// lifetime of the process.
type Schema struct {
	provider *Provider

	mu     sync.Mutex
	tables map[string]*Table
	cache  sync.Map
}

// NewSchema returns a registry backed by provider.
func NewSchema(provider *Provider) *Schema {
	return &Schema{
		provider: provider,
		tables:   make(map[string]*Table, len(tableModels)),
	}
}

// Table returns the descriptor for name.
func (s *Schema) Table(name string) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if table, ok := s.tables[name]; ok {
		return table, nil
	}
	model, ok := tableModels[name]
	if !ok {
		return nil, errors.Errorf("unknown table %q", name)
	}
	engine, err := s.provider.Engine()
	if err != nil {
		return nil, err
	}
	parsed, err := schema.Parse(model, &s.cache, engine.NamingStrategy)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s table", name)
	}
	table := &Table{
		Name:   name,
		Schema: parsed,
		db:     engine.Table(name).Session(&gorm.Session{}),
	}
	s.tables[name] = table
	return table, nil
}

// Initialize creates both tables when they do not exist yet. Running it again
// is a no-op.
func (s *Schema) Initialize(ctx context.Context) error {
	if !s.provider.Enabled() {
		return errors.Wrap(storage.ErrNotConfigured, "initialize schema")
	}
	engine, err := s.provider.Engine()
	if err != nil {
		return err
	}
	for _, name := range []string{TableReminder, TableChat} {
		if _, err := s.Table(name); err != nil {
			return err
		}
	}
	if err := engine.WithContext(ctx).AutoMigrate(&reminderModel{}, &chatModel{}); err != nil {
		return &storage.Error{Op: "initialize schema", Err: err}
	}
	return nil
}
