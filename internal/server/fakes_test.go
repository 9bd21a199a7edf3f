package server

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/fenggwsx/ReminderBot/internal/storage"
)

type sentMessage struct {
	Ref      MessageRef
	Text     string
	Markdown bool
}

type fakeTransport struct {
	mu        sync.Mutex
	calls     []string
	sent      []sentMessage
	deleted   []MessageRef
	pinned    []MessageRef
	nextID    int
	deleteErr error
	pinErr    error

	// rejectMarkdown makes SendMarkdown fail when the text contains it.
	rejectMarkdown string
}

func (t *fakeTransport) send(chatID int64, text string, markdown bool) MessageRef {
	t.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: 1000 + t.nextID}
	t.sent = append(t.sent, sentMessage{Ref: ref, Text: text, Markdown: markdown})
	return ref
}

func (t *fakeTransport) SendText(_ context.Context, chatID int64, text string) (MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "text")
	return t.send(chatID, text, false), nil
}

func (t *fakeTransport) SendMarkdown(_ context.Context, chatID int64, text string) (MessageRef, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "markdown")
	if t.rejectMarkdown != "" && strings.Contains(text, t.rejectMarkdown) {
		return MessageRef{}, errors.New("Bad Request: can't parse entities: character '" + t.rejectMarkdown + "' is reserved")
	}
	return t.send(chatID, text, true), nil
}

func (t *fakeTransport) SendTyping(context.Context, int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "typing")
	return nil
}

func (t *fakeTransport) DeleteMessage(_ context.Context, ref MessageRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "delete")
	if t.deleteErr != nil {
		return t.deleteErr
	}
	t.deleted = append(t.deleted, ref)
	return nil
}

func (t *fakeTransport) PinMessage(_ context.Context, ref MessageRef) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, "pin")
	if t.pinErr != nil {
		return t.pinErr
	}
	t.pinned = append(t.pinned, ref)
	return nil
}

func (t *fakeTransport) lastSent() sentMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.sent) == 0 {
		return sentMessage{}
	}
	return t.sent[len(t.sent)-1]
}

// fakeStore records every call; the chats map decides which chats are registered.
type fakeStore struct {
	chats  map[int64]int64
	calls  []string
	events []storage.Event

	insertErr  error
	updateErr  error
	listErr    error
	resolveErr error

	listed []storage.EventSummary
	found  *storage.Event
}

func (s *fakeStore) eventCalls() int {
	n := 0
	for _, c := range s.calls {
		if c != "ResolveChat" {
			n++
		}
	}
	return n
}

func (s *fakeStore) Migrate(context.Context) error {
	s.calls = append(s.calls, "Migrate")
	return nil
}

func (s *fakeStore) ResolveChat(_ context.Context, externalID int64, _ string) (int64, bool, error) {
	s.calls = append(s.calls, "ResolveChat")
	if s.resolveErr != nil {
		return 0, false, s.resolveErr
	}
	id, ok := s.chats[externalID]
	return id, ok, nil
}

func (s *fakeStore) RegisterChat(_ context.Context, externalID int64, name string) (storage.Chat, error) {
	s.calls = append(s.calls, "RegisterChat")
	return storage.Chat{ChatID: externalID, Name: name}, nil
}

func (s *fakeStore) ListChats(context.Context) ([]storage.Chat, error) {
	s.calls = append(s.calls, "ListChats")
	return nil, nil
}

func (s *fakeStore) InsertEvent(_ context.Context, event storage.Event) error {
	s.calls = append(s.calls, "InsertEvent")
	if s.insertErr != nil {
		return s.insertErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeStore) UpdateEvent(_ context.Context, event storage.Event) (int64, error) {
	s.calls = append(s.calls, "UpdateEvent")
	if s.updateErr != nil {
		return 0, s.updateErr
	}
	return 1, nil
}

func (s *fakeStore) ListEvents(context.Context, int64, int, storage.DateFilter) ([]storage.EventSummary, error) {
	s.calls = append(s.calls, "ListEvents")
	return s.listed, s.listErr
}

func (s *fakeStore) GetEvent(_ context.Context, _ int64, _ *int64) (storage.Event, bool, error) {
	s.calls = append(s.calls, "GetEvent")
	if s.found == nil {
		return storage.Event{}, false, nil
	}
	return *s.found, true, nil
}
