package points

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"pointsbot/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntakeFullDialogue(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	const user int64 = 42

	require.NoError(t, e.m.Begin(ctx, user))
	assert.Equal(t, textEnterAmount, e.msgr.last(user).Text)

	e.text(t, user, "50")
	assert.Equal(t, textEnterTimeSent, e.msgr.last(user).Text)
	s, ok := e.m.Sessions().Get(user)
	require.True(t, ok)
	assert.Equal(t, StageAwaitingTimeSent, s.Stage)
	assert.Equal(t, "50", s.Amount)

	e.text(t, user, "14:00")
	assert.Equal(t, textEnterAvailed, e.msgr.last(user).Text)

	e.text(t, user, "Bo5 Normal")
	assert.Equal(t, textSubmitted, e.msgr.last(user).Text)

	_, ok = e.m.Sessions().Get(user)
	assert.False(t, ok, "session must be destroyed after submission")

	doc := e.document(t)
	require.Len(t, doc.Pending, 1)
	var sub *db.Submission
	for _, s := range doc.Pending {
		sub = s
	}
	assert.Equal(t, &db.Submission{
		ID:       sub.ID,
		UserID:   user,
		Username: "u2",
		Amount:   "50",
		TimeSent: "14:00",
		Availed:  "bo5 normal",
		Points:   3,
	}, sub)
	assert.Empty(t, doc.Points, "intake never touches the ledger")

	admin := e.msgr.to(testAdminID)
	require.Len(t, admin, 1)
	require.NotNil(t, admin[0].Prompt)
	assert.Equal(t, sub.ID, admin[0].Prompt.SubmissionID)
	assert.Contains(t, admin[0].Text, sub.ID)
	assert.Contains(t, admin[0].Text, "@u2")
	assert.Contains(t, admin[0].Text, "Points: 3")
}

func TestIntakeUnrecognizedDescriptorRetries(t *testing.T) {
	e := newTestEnv(t)
	const user int64 = 7

	require.NoError(t, e.m.Begin(context.Background(), user))
	e.text(t, user, "100")
	e.text(t, user, "yesterday")

	for _, in := range []string{"bo5", "bo5 normal ", "anything"} {
		e.text(t, user, in)
		assert.Equal(t, textNotRecognized, e.msgr.last(user).Text)

		s, ok := e.m.Sessions().Get(user)
		require.True(t, ok)
		assert.Equal(t, StageAwaitingAvailed, s.Stage)
	}
	assert.Empty(t, e.document(t).Pending)
	assert.Empty(t, e.msgr.to(testAdminID))

	e.text(t, user, "1 MONTH")
	doc := e.document(t)
	require.Len(t, doc.Pending, 1)
	for _, s := range doc.Pending {
		assert.EqualValues(t, 130, s.Points)
		assert.Equal(t, "1 month", s.Availed)
	}
}

func TestIntakeWithoutSessionIsNotHandled(t *testing.T) {
	e := newTestEnv(t)

	handled, err := e.m.HandleText(context.Background(), TextMessage{UserID: 5, Text: "hello"})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, e.msgr.to(5))
}

func TestIntakeBeginOverwritesSession(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	const user int64 = 9

	require.NoError(t, e.m.Begin(ctx, user))
	e.text(t, user, "10")
	e.text(t, user, "noon")

	require.NoError(t, e.m.Begin(ctx, user))
	s, ok := e.m.Sessions().Get(user)
	require.True(t, ok)
	assert.Equal(t, Session{Stage: StageAwaitingAmount, UpdatedAt: s.UpdatedAt}, s)

	e.text(t, user, "20")
	e.text(t, user, "night")
	e.text(t, user, "bo3 normal")

	doc := e.document(t)
	require.Len(t, doc.Pending, 1)
	for _, sub := range doc.Pending {
		assert.Equal(t, "20", sub.Amount)
		assert.Equal(t, "night", sub.TimeSent)
	}
}

func TestIntakeCancel(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	const user int64 = 11

	require.NoError(t, e.m.Cancel(ctx, user))
	assert.Equal(t, textNothingToAbort, e.msgr.last(user).Text)

	require.NoError(t, e.m.Begin(ctx, user))
	e.text(t, user, "10")
	require.NoError(t, e.m.Cancel(ctx, user))
	assert.Equal(t, textCancelled, e.msgr.last(user).Text)

	handled, err := e.m.HandleText(ctx, TextMessage{UserID: user, Text: "noon"})
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Zero(t, e.m.Sessions().Len())
}

func TestIntakeSaveFailureKeepsSession(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	const user int64 = 13

	require.NoError(t, e.m.Begin(ctx, user))
	e.text(t, user, "10")
	e.text(t, user, "noon")

	e.store.failSave.Store(true)
	handled, err := e.m.HandleText(ctx, TextMessage{UserID: user, Text: "bo7 normal"})
	require.Error(t, err)
	assert.True(t, handled)
	assert.Equal(t, textSubmitFailed, e.msgr.last(user).Text)
	assert.Empty(t, e.msgr.to(testAdminID), "admin must not hear about unsaved submissions")

	s, ok := e.m.Sessions().Get(user)
	require.True(t, ok)
	assert.Equal(t, StageAwaitingAvailed, s.Stage)

	e.store.failSave.Store(false)
	e.text(t, user, "bo7 normal")
	assert.Equal(t, textSubmitted, e.msgr.last(user).Text)
	assert.Len(t, e.document(t).Pending, 1)
}

func TestIntakeAdminNotifyFailureRollsBack(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	const user int64 = 17

	require.NoError(t, e.m.Begin(ctx, user))
	e.text(t, user, "10")
	e.text(t, user, "noon")

	e.msgr.fail(testAdminID, true)
	handled, err := e.m.HandleText(ctx, TextMessage{UserID: user, Text: "6 hours"})
	require.ErrorIs(t, err, errSend)
	assert.True(t, handled)
	assert.Equal(t, textSubmitFailed, e.msgr.last(user).Text)
	assert.Empty(t, e.document(t).Pending)

	_, ok := e.m.Sessions().Get(user)
	assert.True(t, ok)
}

func TestIntakeIDCollisionRegenerates(t *testing.T) {
	e := newTestEnv(t)
	ids := []string{"dup", "dup", "fresh"}
	e.m.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	first := e.submit(t, 1001, "1", "t", "bo3 special")
	second := e.submit(t, 1002, "2", "t", "bo3 special")

	assert.Equal(t, "dup", first)
	assert.Equal(t, "fresh", second)
	assert.Len(t, e.document(t).Pending, 2)
}

func TestIntakeSessionExpires(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	e.m.sessions.now = func() time.Time { return now }
	const user int64 = 19

	require.NoError(t, e.m.Begin(ctx, user))
	now = now.Add(30 * time.Minute)
	e.text(t, user, "10")

	now = now.Add(2 * time.Hour)
	handled, err := e.m.HandleText(ctx, TextMessage{UserID: user, Text: "noon"})
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestSessionSweep(t *testing.T) {
	sm := NewSessionManager(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	for _, id := range []int64{1, 2, 3} {
		sl := sm.lock(id)
		sl.session = &Session{Stage: StageAwaitingAmount, UpdatedAt: now}
		sm.unlock(id, sl)
	}
	require.Equal(t, 3, sm.Len())

	now = now.Add(30 * time.Second)
	sl := sm.lock(2)
	sl.session.UpdatedAt = now
	sm.unlock(2, sl)

	now = now.Add(45 * time.Second)
	assert.Equal(t, 2, sm.Sweep())
	assert.Equal(t, 1, sm.Len())

	_, ok := sm.Get(2)
	assert.True(t, ok)
}

func TestIntakeConcurrentUsersInterleaved(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	var seq int
	var mu sync.Mutex
	e.m.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id%d", seq)
	}

	const alice, bob int64 = 100, 200
	require.NoError(t, e.m.Begin(ctx, alice))
	require.NoError(t, e.m.Begin(ctx, bob))
	e.text(t, alice, "50")
	e.text(t, bob, "75")
	e.text(t, bob, "09:00")
	e.text(t, alice, "14:00")
	e.text(t, alice, "Bo5 Normal")
	e.text(t, bob, "bo7 special")

	doc := e.document(t)
	require.Len(t, doc.Pending, 2)
	byUser := make(map[int64]*db.Submission)
	for _, s := range doc.Pending {
		byUser[s.UserID] = s
	}

	assert.Equal(t, "50", byUser[alice].Amount)
	assert.Equal(t, "14:00", byUser[alice].TimeSent)
	assert.EqualValues(t, 3, byUser[alice].Points)
	assert.Equal(t, "75", byUser[bob].Amount)
	assert.Equal(t, "09:00", byUser[bob].TimeSent)
	assert.EqualValues(t, 3, byUser[bob].Points)
	assert.Len(t, e.msgr.to(testAdminID), 2)
}

func TestIntakeConcurrentUsersParallel(t *testing.T) {
	e := newTestEnv(t)
	var seq int
	var mu sync.Mutex
	e.m.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id%d", seq)
	}

	const users = 40
	var wg sync.WaitGroup
	for i := 1; i <= users; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			ctx := context.Background()
			assert.NoError(t, e.m.Begin(ctx, uid))
			for _, text := range []string{fmt.Sprint(uid), fmt.Sprintf("t%d", uid), "per game normal"} {
				handled, err := e.m.HandleText(ctx, TextMessage{UserID: uid, Text: text})
				assert.NoError(t, err)
				assert.True(t, handled)
			}
		}(int64(1000 + i))
	}
	wg.Wait()

	doc := e.document(t)
	require.Len(t, doc.Pending, users)
	for _, s := range doc.Pending {
		assert.Equal(t, fmt.Sprint(s.UserID), s.Amount)
		assert.Equal(t, fmt.Sprintf("t%d", s.UserID), s.TimeSent)
	}
	assert.Zero(t, e.m.Sessions().Len())
}

func TestNewManagerValidation(t *testing.T) {
	e := newTestEnv(t)

	_, err := NewManager(nil, e.msgr, Config{AdminID: 1}, e.m.log)
	require.Error(t, err)
	_, err = NewManager(e.repo, nil, Config{AdminID: 1}, e.m.log)
	require.Error(t, err)
	_, err = NewManager(e.repo, e.msgr, Config{}, e.m.log)
	require.Error(t, err)
}

func TestShortID(t *testing.T) {
	id := shortID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, shortID())
}
