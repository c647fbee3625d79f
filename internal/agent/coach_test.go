package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/moola-ai/coach/internal/errors"
	"github.com/moola-ai/coach/internal/intent"
	"github.com/moola-ai/coach/internal/model"
	"github.com/moola-ai/coach/internal/patterns"
	"github.com/moola-ai/coach/internal/prompt"
	"github.com/moola-ai/coach/internal/session"
)

// scriptedModel replays canned replies and records every request it saw.
type scriptedModel struct {
	replies  []string
	err      error
	requests []*model.Request
}

func (m *scriptedModel) Generate(_ context.Context, req *model.Request) (*model.Response, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	reply := m.replies[0]
	if len(m.replies) > 1 {
		m.replies = m.replies[1:]
	}
	return &model.Response{Text: reply, Model: "scripted"}, nil
}

func (m *scriptedModel) IsAvailable() bool { return m.err == nil }
func (m *scriptedModel) Name() string      { return "scripted" }

func newTestCoach(t *testing.T, mdl model.Model) (*Coach, session.Store) {
	t.Helper()

	lib, err := patterns.Load()
	require.NoError(t, err)

	store := session.NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	return New(&Config{
		Model:    mdl,
		Sessions: store,
		Library:  lib,
		Logger:   zerolog.Nop(),
	}), store
}

func TestProcessTagProducesAction(t *testing.T) {
	mdl := &scriptedModel{replies: []string{
		"Great, setting that up. [INTENT:medical_emergency|cost:5000|date:2026-09-01]",
	}}
	coach, _ := newTestCoach(t, mdl)

	resp, err := coach.Process(context.Background(), &Request{
		SessionID: "s1",
		Message:   "I need cover for surgery",
	})
	require.NoError(t, err)

	assert.Equal(t, "Great, setting that up.", resp.Message)
	assert.Equal(t, "medical_emergency", resp.Intent)
	require.NotNil(t, resp.Action)
	assert.Equal(t, intent.ActionOpenConfig, resp.Action.Type)
	assert.Equal(t, intent.ParamSet{"totalCost": 5000, "date": "2026-09-01"}, resp.Params)
	assert.Equal(t, 0.9, resp.Confidence)
}

func TestProcessTagOnlyReplyGetsAck(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"[INTENT:buy_vehicle|amount:15000]"}}
	coach, _ := newTestCoach(t, mdl)

	resp, err := coach.Process(context.Background(), &Request{SessionID: "s1", Message: "car fund"})
	require.NoError(t, err)
	assert.Equal(t, intent.FallbackAck, resp.Message)
	require.NotNil(t, resp.Action)
}

func TestProcessFallbackWhenModelForgetsTag(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"That sounds like a solid plan for a wedding."}}
	coach, _ := newTestCoach(t, mdl)

	resp, err := coach.Process(context.Background(), &Request{
		SessionID: "s1",
		Message:   "I want to save £20k for my wedding",
	})
	require.NoError(t, err)

	assert.Equal(t, "marriage", resp.Intent)
	require.NotNil(t, resp.Action)
	assert.Equal(t, intent.ParamSet{"totalBudget": 20000}, resp.Params)
	assert.Equal(t, 0.9, resp.Confidence)
}

func TestProcessFallbackSuppressedByQuestion(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"How much do you want to put towards the wedding?"}}
	coach, _ := newTestCoach(t, mdl)

	resp, err := coach.Process(context.Background(), &Request{
		SessionID: "s1",
		Message:   "I want to save £20k for my wedding",
	})
	require.NoError(t, err)

	assert.Nil(t, resp.Action)
	assert.Empty(t, resp.Intent)
	assert.Equal(t, 0.0, resp.Confidence)
}

func TestProcessUsesHistoryForSignals(t *testing.T) {
	mdl := &scriptedModel{replies: []string{
		"How much is the wedding likely to cost?",
		"Got it, I'll plan around that.",
	}}
	coach, _ := newTestCoach(t, mdl)
	ctx := context.Background()

	_, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "help me plan my wedding"})
	require.NoError(t, err)

	// The scenario keyword came two turns ago; the amount arrives now.
	resp, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "around £12,000"})
	require.NoError(t, err)

	assert.Equal(t, "marriage", resp.Intent)
	assert.Equal(t, intent.ParamSet{"totalBudget": 12000}, resp.Params)
}

func TestProcessSeedsSystemPromptOnce(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"Hello!", "Hello again!"}}
	coach, store := newTestCoach(t, mdl)
	ctx := context.Background()

	_, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "hi"})
	require.NoError(t, err)
	_, err = coach.Process(ctx, &Request{SessionID: "s1", Message: "hi again"})
	require.NoError(t, err)

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 5)
	assert.Equal(t, model.RoleSystem, history[0].Role)
	assert.Contains(t, history[0].Content, "UK financial planning assistant")
	for _, turn := range history[1:] {
		assert.NotEqual(t, model.RoleSystem, turn.Role)
	}

	// Second model call sees the stored system prompt, not a fresh one.
	require.Len(t, mdl.requests, 2)
	assert.Equal(t, model.RoleSystem, mdl.requests[1].Messages[0].Role)
	assert.Len(t, mdl.requests[1].Messages, 4)
}

func TestProcessInjectsTransientContext(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"Understood."}}
	coach, store := newTestCoach(t, mdl)
	ctx := context.Background()

	simCtx := &prompt.SimContext{
		Solvency: &prompt.Solvency{IsSolvent: false, MaxDeficit: 9000},
	}
	_, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "am I ok?", Context: simCtx})
	require.NoError(t, err)

	// The model saw the solvency alert...
	var sawAlert bool
	for _, msg := range mdl.requests[0].Messages {
		if msg.Role == model.RoleSystem && strings.Contains(msg.Content, "INSOLVENCY ALERT") {
			sawAlert = true
		}
	}
	assert.True(t, sawAlert)

	// ...but it was not persisted.
	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	for _, turn := range history {
		assert.NotContains(t, turn.Content, "INSOLVENCY ALERT")
	}
}

func TestProcessEmptyReplyNotPersisted(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"", "Hello!"}}
	coach, store := newTestCoach(t, mdl)
	ctx := context.Background()

	resp, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "hello"})
	require.NoError(t, err)
	assert.Empty(t, resp.Message)
	assert.Nil(t, resp.Action)

	// The user turn is kept, the blank assistant turn is not.
	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleSystem, history[0].Role)
	assert.Equal(t, model.RoleUser, history[1].Role)
	for _, turn := range history {
		assert.NotEmpty(t, turn.Content)
	}

	// The next turn carries on from the same log.
	_, err = coach.Process(ctx, &Request{SessionID: "s1", Message: "still there?"})
	require.NoError(t, err)
	history, err = store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "Hello!", history[3].Content)
}

func TestProcessModelFailureLeavesSessionUntouched(t *testing.T) {
	mdl := &scriptedModel{err: apperrors.Temporary(apperrors.CodeModelUnavailable, "model endpoint unreachable")}
	coach, store := newTestCoach(t, mdl)
	ctx := context.Background()

	resp, err := coach.Process(ctx, &Request{SessionID: "s1", Message: "hello"})
	require.NoError(t, err)

	assert.Contains(t, resp.Message, "I encountered an error:")
	assert.Contains(t, resp.Message, "model endpoint unreachable")
	assert.Nil(t, resp.Action)
	assert.Equal(t, 0.0, resp.Confidence)

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestProcessZeroTemperature(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"hi"}}
	coach, _ := newTestCoach(t, mdl)

	_, err := coach.Process(context.Background(), &Request{SessionID: "s1", Message: "hi"})
	require.NoError(t, err)
	assert.Zero(t, mdl.requests[0].Temperature)
}

func TestDeleteSession(t *testing.T) {
	mdl := &scriptedModel{replies: []string{"hi"}}
	coach, _ := newTestCoach(t, mdl)
	ctx := context.Background()

	_, err := coach.Process(ctx, &Request{SessionID: "gone", Message: "hi"})
	require.NoError(t, err)

	existed, err := coach.DeleteSession(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = coach.DeleteSession(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID("550e8400-e29b-41d4-a716-446655440000"))
	assert.True(t, ValidSessionID("abc_123"))
	assert.False(t, ValidSessionID(""))
	assert.False(t, ValidSessionID("../etc/passwd"))
	assert.False(t, ValidSessionID("has space"))
}
