// Package agent provides the Coach, the conversation orchestrator.
//
// One Process call runs the whole turn: load history, build prompts, call
// the model, run both extraction paths over the reply, decide on at most
// one action, and persist the turn. The model call is the only
// non-deterministic step; everything after it is pure extraction.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/moola-ai/coach/internal/errors"
	"github.com/moola-ai/coach/internal/intent"
	"github.com/moola-ai/coach/internal/model"
	"github.com/moola-ai/coach/internal/patterns"
	"github.com/moola-ai/coach/internal/prompt"
	"github.com/moola-ai/coach/internal/session"
	"github.com/moola-ai/coach/internal/stats"
)

// Request is one user turn handed to the coach.
type Request struct {
	SessionID string
	Message   string
	Mode      string // goals, health, events; empty uses the default
	Context   *prompt.SimContext
}

// Response is the result of one processed turn.
type Response struct {
	Message    string
	SessionID  string
	Intent     string
	Params     intent.ParamSet
	Action     *intent.Action
	Confidence float64
}

// Config configures the Coach.
type Config struct {
	Model       model.Model
	Sessions    session.Store
	Library     *patterns.Library
	DefaultMode string
	MaxTokens   int
	Logger      zerolog.Logger
}

// Coach orchestrates chat turns.
type Coach struct {
	model       model.Model
	sessions    session.Store
	lib         *patterns.Library
	builders    map[prompt.Mode]*prompt.Builder
	defaultMode prompt.Mode
	maxTokens   int
	log         zerolog.Logger
	stats       *stats.Collector
}

// New creates a Coach. Prompt builders are constructed once per persona;
// the knowledge bases they embed do not change at runtime.
func New(cfg *Config) *Coach {
	builders := make(map[prompt.Mode]*prompt.Builder, 3)
	for _, m := range []prompt.Mode{prompt.ModeGoals, prompt.ModeHealth, prompt.ModeEvents} {
		builders[m] = prompt.NewBuilder(m, cfg.Library)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &Coach{
		model:       cfg.Model,
		sessions:    cfg.Sessions,
		lib:         cfg.Library,
		builders:    builders,
		defaultMode: prompt.ParseMode(cfg.DefaultMode),
		maxTokens:   maxTokens,
		log:         cfg.Logger,
		stats:       stats.NewCollector(),
	}
}

// Stats returns a snapshot of the coach's runtime counters.
func (c *Coach) Stats() *stats.Stats {
	return c.stats.Snapshot()
}

// Process handles one user turn.
//
// The session log is only written after the model call succeeds, and only
// with the cleaned assistant message; a failed turn leaves the session
// exactly as it was.
func (c *Coach) Process(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	history, err := c.sessions.History(ctx, req.SessionID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeSessionLoadFailed,
			"load session history", apperrors.CategorySystem)
	}

	mode := c.defaultMode
	if req.Mode != "" {
		mode = prompt.ParseMode(req.Mode)
	}

	var profile *prompt.Profile
	if req.Context != nil {
		profile = req.Context.Profile
	}

	// A fresh session gets its system prompt as the first stored turn, so
	// the persona stays fixed for the session's lifetime.
	var newTurns []session.Turn
	if len(history) == 0 {
		system := c.builders[mode].BuildSystemPrompt(profile)
		newTurns = append(newTurns, session.Turn{Role: model.RoleSystem, Content: system})
	}

	messages := make([]model.Message, 0, len(history)+len(newTurns)+2)
	for _, t := range newTurns {
		messages = append(messages, model.Message{Role: t.Role, Content: t.Content})
	}
	for _, t := range history {
		messages = append(messages, model.Message{Role: t.Role, Content: t.Content})
	}

	// Simulation state is injected per request, not persisted: it changes
	// between turns and stale copies would mislead the model.
	if ctxPrompt := prompt.BuildContextPrompt(req.Context); ctxPrompt != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: ctxPrompt})
	}
	messages = append(messages, model.Message{Role: model.RoleUser, Content: req.Message})

	resp, err := c.model.Generate(ctx, &model.Request{
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("session", req.SessionID).Msg("model call failed")
		c.stats.Record(stats.Turn{Duration: time.Since(start), Failed: true})
		return &Response{
			Message:   "I encountered an error: " + apperrors.FormatUserMessage(err),
			SessionID: req.SessionID,
		}, nil
	}

	outcome := c.extract(req.Message, resp.Text, history)

	newTurns = append(newTurns, session.Turn{Role: model.RoleUser, Content: req.Message})
	// An empty reply with no action is dropped; the conversation never
	// shows a blank assistant turn.
	if outcome.CleanMessage != "" {
		newTurns = append(newTurns, session.Turn{Role: model.RoleAssistant, Content: outcome.CleanMessage})
	}
	if err := c.sessions.Append(ctx, req.SessionID, newTurns...); err != nil {
		// The reply already exists; losing the log entry is the lesser
		// failure, so report it and still answer.
		c.log.Error().Err(err).Str("session", req.SessionID).Msg("persist turn failed")
	}

	c.stats.Record(stats.Turn{
		Tokens:    resp.TokensUsed,
		Duration:  time.Since(start),
		TagAction: outcome.Source == intent.TagAction,
		Fallback:  outcome.Source == intent.FallbackAction,
	})

	c.log.Debug().
		Str("session", req.SessionID).
		Str("intent", outcome.ScenarioID).
		Int("source", int(outcome.Source)).
		Dur("elapsed", time.Since(start)).
		Msg("turn processed")

	return &Response{
		Message:    outcome.CleanMessage,
		SessionID:  req.SessionID,
		Intent:     outcome.ScenarioID,
		Params:     outcome.Params,
		Action:     outcome.Action,
		Confidence: outcome.Confidence(),
	}, nil
}

// extract runs both deterministic extraction paths over the model reply and
// resolves them to at most one action.
func (c *Coach) extract(userMessage, assistantText string, history []session.Turn) intent.Outcome {
	var priorUser []string
	for _, t := range history {
		if t.Role == model.RoleUser {
			priorUser = append(priorUser, t.Content)
		}
	}

	matched := ""
	if res, ok := c.lib.Match(userMessage, priorUser); ok {
		matched = res.ScenarioID
	}

	// Newest turn first: the amount extractor honors later corrections.
	newestFirst := []string{userMessage}
	for i := len(priorUser) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, priorUser[i])
	}
	amount, found := intent.ExtractAmount(newestFirst)

	return intent.Decide(intent.Signals{
		AssistantText:   assistantText,
		MatchedScenario: matched,
		Amount:          amount,
		AmountFound:     found,
	})
}

// DeleteSession removes a session's history. Reports whether it existed.
func (c *Coach) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	return c.sessions.Delete(ctx, sessionID)
}

// ModelAvailable reports whether the upstream model endpoint is usable.
func (c *Coach) ModelAvailable() bool {
	return c.model != nil && c.model.IsAvailable()
}

// ValidSessionID reports whether id is acceptable as a session identifier.
// Only the characters uuid and friends use are allowed, which also keeps
// ids safe to log.
func ValidSessionID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
