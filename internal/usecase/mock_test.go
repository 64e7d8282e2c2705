//go:build !integration

package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"edumaster-order-bot/internal/domain"
	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/domain/ports/repository"
	"edumaster-order-bot/internal/usecase"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func testComposer() *usecase.Composer {
	return usecase.NewComposer(model.DefaultCatalog(), "Support Académique", 5)
}

// ---- Mock ChatTransport ----

type sentMessage struct {
	ChatID int64
	Text   string
	Rows   [][]adapter.InlineButton
}

type forwardedDoc struct {
	ChatID  int64
	FileRef string
	Caption string
}

type MockTransport struct {
	mu        sync.Mutex
	Sent      []sentMessage
	Forwarded []forwardedDoc

	SendMessageFunc func(ctx context.Context, chatID int64, text string) error
}

var _ adapter.ChatTransport = (*MockTransport)(nil)

func (m *MockTransport) SendMessage(ctx context.Context, chatID int64, text string) error {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, chatID, text); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text})
	return nil
}

func (m *MockTransport) SendButtons(_ context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, sentMessage{ChatID: chatID, Text: text, Rows: rows})
	return nil
}

func (m *MockTransport) ForwardDocument(_ context.Context, chatID int64, fileRef, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Forwarded = append(m.Forwarded, forwardedDoc{ChatID: chatID, FileRef: fileRef, Caption: caption})
	return nil
}

func (m *MockTransport) SentTo(chatID int64) []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentMessage
	for _, s := range m.Sent {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

// ---- Mock SessionStore ----

// MockSessionStore mirrors the in-memory store semantics without eviction,
// enough for driving the conversation flow in tests.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*model.Session
	maxFiles int
}

var _ repository.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[int64]*model.Session), maxFiles: 5}
}

func (m *MockSessionStore) Get(_ context.Context, userID int64) (*model.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

func (m *MockSessionStore) Create(_ context.Context, userID int64, step model.Step) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := model.NewSession(userID, step, time.Now())
	m.sessions[userID] = sess
	return sess.Clone()
}

func (m *MockSessionStore) Update(_ context.Context, userID int64, step model.Step, patch *model.OrderPatch) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		sess = model.NewSession(userID, model.StepMenu, time.Now())
		m.sessions[userID] = sess
	}
	if step != "" {
		sess.Step = step
	}
	sess.Data.Apply(patch)
	return sess.Clone()
}

func (m *MockSessionStore) AddFile(_ context.Context, userID int64, att model.Attachment) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if len(sess.Files) >= m.maxFiles {
		return len(sess.Files), domain.ErrTooManyFiles
	}
	sess.Files = append(sess.Files, att)
	return len(sess.Files), nil
}

func (m *MockSessionStore) Clear(_ context.Context, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

func (m *MockSessionStore) SweepExpired(context.Context) int { return 0 }

// ---- Mock NotifierUseCase ----

type orderNotification struct {
	User        adapter.ChatUser
	Sess        *model.Session
	OrderRef    string
	MethodLabel string
}

type supportNotification struct {
	User      adapter.ChatUser
	ThreadRef string
	Body      string
}

type MockNotifier struct {
	mu       sync.Mutex
	Orders   []orderNotification
	Supports []supportNotification
	Replies  []sentMessage

	ReplyErr error
}

var _ usecase.NotifierUseCase = (*MockNotifier)(nil)

func (m *MockNotifier) OrderPlaced(_ context.Context, user adapter.ChatUser, sess *model.Session, orderRef, methodLabel string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, orderNotification{User: user, Sess: sess, OrderRef: orderRef, MethodLabel: methodLabel})
}

func (m *MockNotifier) RelaySupport(_ context.Context, user adapter.ChatUser, threadRef, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Supports = append(m.Supports, supportNotification{User: user, ThreadRef: threadRef, Body: body})
}

func (m *MockNotifier) ReplyToUser(_ context.Context, userID int64, body string) error {
	if m.ReplyErr != nil {
		return m.ReplyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replies = append(m.Replies, sentMessage{ChatID: userID, Text: body})
	return nil
}
