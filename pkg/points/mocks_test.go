package points

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pointsbot/pkg/db"

	"github.com/stretchr/testify/require"
	"github.com/vmkteam/embedlog"
)

const testAdminID int64 = 1

var errSend = errors.New("send failed")

type sentMessage struct {
	ChatID int64
	Text   string
	Prompt *DecisionPrompt
	Ref    MessageRef
}

type editedMessage struct {
	Ref  MessageRef
	Text string
}

// recordingMessenger remembers every outbound action.
type recordingMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	edited  []editedMessage
	failFor map[int64]bool
}

func newRecordingMessenger() *recordingMessenger {
	return &recordingMessenger{failFor: make(map[int64]bool)}
}

func (r *recordingMessenger) SendMessage(_ context.Context, chatID int64, text string, prompt *DecisionPrompt) (MessageRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFor[chatID] {
		return MessageRef{}, errSend
	}

	r.nextID++
	ref := MessageRef{ChatID: chatID, MessageID: r.nextID}
	r.sent = append(r.sent, sentMessage{ChatID: chatID, Text: text, Prompt: prompt, Ref: ref})

	return ref, nil
}

func (r *recordingMessenger) EditMessage(_ context.Context, ref MessageRef, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.edited = append(r.edited, editedMessage{Ref: ref, Text: text})
	return nil
}

func (r *recordingMessenger) fail(chatID int64, fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor[chatID] = fail
}

// to returns messages sent to chatID.
func (r *recordingMessenger) to(chatID int64) []sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []sentMessage
	for _, m := range r.sent {
		if m.ChatID == chatID {
			res = append(res, m)
		}
	}
	return res
}

func (r *recordingMessenger) last(chatID int64) sentMessage {
	msgs := r.to(chatID)
	if len(msgs) == 0 {
		return sentMessage{}
	}
	return msgs[len(msgs)-1]
}

// lastPrompt returns the latest decision prompt sent to chatID.
func (r *recordingMessenger) lastPrompt(chatID int64) *DecisionPrompt {
	msgs := r.to(chatID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Prompt != nil {
			return msgs[i].Prompt
		}
	}
	return nil
}

func (r *recordingMessenger) edits() []editedMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]editedMessage(nil), r.edited...)
}

// flakyStore fails Save while failSave is set.
type flakyStore struct {
	*db.MemoryStore
	failSave atomic.Bool
	saves    atomic.Int32
}

func (s *flakyStore) Save(ctx context.Context, doc *db.Document) error {
	if s.failSave.Load() {
		return errors.New("disk full")
	}
	s.saves.Add(1)
	return s.MemoryStore.Save(ctx, doc)
}

type testEnv struct {
	m     *Manager
	msgr  *recordingMessenger
	store *flakyStore
	repo  *db.Repo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &flakyStore{MemoryStore: db.NewMemoryStore()}
	repo := db.NewRepo(store, embedlog.NewLogger(false, false))
	msgr := newRecordingMessenger()

	m, err := NewManager(repo, msgr, Config{AdminID: testAdminID, SessionTTL: time.Hour}, embedlog.NewLogger(false, false))
	require.NoError(t, err)

	var seq atomic.Int32
	m.newID = func() string {
		return "sub" + string(rune('a'+seq.Add(1)-1))
	}

	return &testEnv{m: m, msgr: msgr, store: store, repo: repo}
}

func (e *testEnv) text(t *testing.T, userID int64, text string) {
	t.Helper()
	handled, err := e.m.HandleText(context.Background(), TextMessage{UserID: userID, Username: "u" + string(rune('0'+userID%10)), Text: text})
	require.NoError(t, err)
	require.True(t, handled)
}

// submit runs a whole dialogue and returns the created submission id.
func (e *testEnv) submit(t *testing.T, userID int64, amount, timeSent, availed string) string {
	t.Helper()
	require.NoError(t, e.m.Begin(context.Background(), userID))
	e.text(t, userID, amount)
	e.text(t, userID, timeSent)
	e.text(t, userID, availed)

	prompt := e.msgr.lastPrompt(testAdminID)
	require.NotNil(t, prompt)
	return prompt.SubmissionID
}

func (e *testEnv) document(t *testing.T) *db.Document {
	t.Helper()
	var doc *db.Document
	require.NoError(t, e.repo.View(context.Background(), func(d *db.Document) error {
		doc = d
		return nil
	}))
	return doc
}
