package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

// Service is the remote side of a review
type Service interface {
	Generate(ctx context.Context, req plan.GenerateRequest) (*plan.Plan, error)
	Submit(ctx context.Context, s dataset.Submission) (*dataset.SubmitResult, error)
}

// Publisher receives session events. *events.Bus satisfies it.
type Publisher interface {
	Emit(e events.Event)
}

// Config holds the dependencies and sampling settings of a Session
type Config struct {
	Service Service
	Events  Publisher
	Logger  *slog.Logger

	// Temperature and MaxTokens are sent with every generate request.
	// A zero MaxTokens selects the plan package defaults for both.
	Temperature float64
	MaxTokens   int
}

// Session is the review state machine. All methods are safe for concurrent
// use; network calls are made without holding the lock.
type Session struct {
	mu sync.Mutex

	service Service
	events  Publisher
	logger  *slog.Logger

	temperature float64
	maxTokens   int

	state     State
	prompt    string
	requested string
	plan      *plan.Plan
	store     feedback.Store
	history   []feedback.Store
	dataset   *dataset.Dataset
	filePath  string
	lastErr   error

	// generation counts accepted plans; seq counts issued requests
	generation     uint64
	seq            uint64
	latestGenerate uint64
	latestSubmit   uint64
	pending        map[Kind]bool
}

// New creates an idle Session
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		temperature = plan.DefaultTemperature
		maxTokens = plan.DefaultMaxTokens
	}

	return &Session{
		service:     cfg.Service,
		events:      cfg.Events,
		logger:      logger,
		temperature: temperature,
		maxTokens:   maxTokens,
		state:       StateIdle,
		store:       feedback.NewStore(),
		pending:     make(map[Kind]bool),
	}
}

// Generate requests a new plan for prompt and installs it. A prompt that
// fails the local check never reaches the service.
func (s *Session) Generate(ctx context.Context, prompt string) error {
	ticket, req, err := s.BeginGenerate(prompt)
	if err != nil {
		return err
	}
	p, err := s.service.Generate(ctx, req)
	return s.CompleteGenerate(ticket, p, err)
}

// BeginGenerate checks the prompt and issues a generate ticket. The caller
// performs the request and reports back through CompleteGenerate.
func (s *Session) BeginGenerate(prompt string) (Ticket, plan.GenerateRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := plan.CheckPrompt(prompt); err != nil {
		s.lastErr = err
		s.emit(events.NewEvent(events.PlanRejected, s.sessionID()).WithError(err))
		return Ticket{}, plan.GenerateRequest{}, err
	}

	req := plan.GenerateRequest{
		Prompt:      prompt,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	}
	if err := req.Validate(); err != nil {
		s.lastErr = err
		s.emit(events.NewEvent(events.PlanRejected, s.sessionID()).WithError(err))
		return Ticket{}, plan.GenerateRequest{}, err
	}

	s.seq++
	t := Ticket{Kind: KindGenerate, Seq: s.seq, Generation: s.generation}
	s.latestGenerate = t.Seq
	s.requested = prompt
	s.pending[KindGenerate] = true

	s.emit(events.NewEvent(events.PlanRequested, s.sessionID()).
		WithGeneration(t.Generation).
		WithPayload(map[string]any{"prompt_length": len(prompt)}))
	return t, req, nil
}

// CompleteGenerate applies the outcome of a generate request. Only the most
// recently issued generate request may change state; anything older returns
// ErrStaleResponse and is dropped. A failure records the error and leaves
// the plan and feedback untouched.
func (s *Session) CompleteGenerate(t Ticket, p *plan.Plan, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Kind != KindGenerate || t.Seq != s.latestGenerate {
		s.dropStale(t)
		return ErrStaleResponse
	}
	s.pending[KindGenerate] = false

	if callErr == nil {
		if p == nil {
			callErr = fmt.Errorf("service returned no plan")
		} else if err := p.Validate(); err != nil {
			callErr = fmt.Errorf("invalid plan: %w", err)
		}
	}
	if callErr != nil {
		s.lastErr = callErr
		s.emit(events.NewEvent(events.PlanGenerateFailed, s.sessionID()).WithError(callErr))
		return callErr
	}

	installed := p.Clone()
	if installed.Prompt == "" {
		installed.Prompt = s.requested
	}
	s.install(installed, map[string]any{"steps": len(installed.Steps)})
	return nil
}

// Restore installs a plan read back from a review file without calling the
// generation service. Any generate request still in flight is superseded.
func (s *Session) Restore(p *plan.Plan) error {
	if p == nil {
		return ErrNoPlan
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.latestGenerate = s.seq
	s.pending[KindGenerate] = false
	s.install(p.Clone(), map[string]any{"steps": len(p.Steps), "restored": true})
	return nil
}

// install makes p the current plan and starts a fresh feedback store.
func (s *Session) install(p *plan.Plan, payload map[string]any) {
	s.generation++
	s.plan = p
	s.prompt = p.Prompt
	s.store = s.store.Reset()
	s.history = nil
	s.dataset = nil
	s.filePath = ""
	s.lastErr = nil
	s.state = StatePlanReady
	// a submit in flight belongs to the previous plan
	s.pending[KindSubmit] = false

	s.logger.Debug("plan installed", "session", p.SessionID, "steps", len(p.Steps), "generation", s.generation)
	s.emit(events.NewEvent(events.PlanGenerated, p.SessionID).
		WithGeneration(s.generation).
		WithPayload(payload))
}

// Rate records a judgment for one step of the current plan. A positive
// rating always clears the reason.
func (s *Session) Rate(stepID string, rating feedback.Rating, reason *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStep(stepID); err != nil {
		return err
	}
	if rating != feedback.RatingPositive && rating != feedback.RatingNegative {
		return fmt.Errorf("%w: %q", feedback.ErrInvalidRating, rating)
	}

	s.push(s.store.Rate(stepID, rating, reason))
	s.emit(events.NewEvent(events.StepRated, s.sessionID()).
		WithStep(stepID).
		WithGeneration(s.generation).
		WithPayload(map[string]any{"rating": string(rating)}))
	return nil
}

// SetReason overwrites the reason of a negatively rated step.
func (s *Session) SetReason(stepID, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStep(stepID); err != nil {
		return err
	}
	next, ok := s.store.WithReason(stepID, reason)
	if !ok {
		return ErrNotNegative
	}
	if next.Equal(s.store) {
		return nil
	}

	s.push(next)
	s.emit(events.NewEvent(events.StepReasonEdited, s.sessionID()).
		WithStep(stepID).
		WithGeneration(s.generation))
	return nil
}

// Undo restores the feedback store as it was before the last change.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return ErrNothingToUndo
	}
	last := len(s.history) - 1
	s.store = s.history[last]
	s.history = s.history[:last]
	s.refreshState()

	s.emit(events.NewEvent(events.FeedbackUndone, s.sessionID()).WithGeneration(s.generation))
	return nil
}

// Submit validates the feedback and sends it. Validation failures return
// a single *feedback.ValidationError and nothing is sent.
func (s *Session) Submit(ctx context.Context) error {
	ticket, sub, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	result, err := s.service.Submit(ctx, sub)
	return s.CompleteSubmit(ticket, result, err)
}

// BeginSubmit runs the submit-time validation, assembles the submission and
// issues a submit ticket.
func (s *Session) BeginSubmit() (Ticket, dataset.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plan == nil {
		return Ticket{}, dataset.Submission{}, ErrNoPlan
	}

	if err := feedback.AsError(feedback.Validate(s.plan.Steps, s.store)); err != nil {
		s.lastErr = err
		s.emit(events.NewEvent(events.FeedbackRejected, s.sessionID()).
			WithGeneration(s.generation).
			WithError(err))
		return Ticket{}, dataset.Submission{}, err
	}

	records, err := feedback.Assemble(s.plan.Steps, s.store)
	if err != nil {
		s.lastErr = err
		return Ticket{}, dataset.Submission{}, err
	}

	metadata := make(map[string]any, len(s.plan.Metadata))
	for k, v := range s.plan.Metadata {
		metadata[k] = v
	}
	sub := dataset.Submission{
		SessionID: s.plan.SessionID,
		Prompt:    s.prompt,
		PlanText:  s.plan.PlanText,
		Feedback:  records,
		Metadata:  metadata,
	}

	s.seq++
	t := Ticket{Kind: KindSubmit, Seq: s.seq, Generation: s.generation}
	s.latestSubmit = t.Seq
	s.pending[KindSubmit] = true

	s.emit(events.NewEvent(events.SubmitStarted, s.sessionID()).WithGeneration(t.Generation))
	return t, sub, nil
}

// CompleteSubmit applies the outcome of a submit request. The response is
// dropped when a newer submit was issued or a new plan has been installed
// since the ticket was issued.
func (s *Session) CompleteSubmit(t Ticket, result *dataset.SubmitResult, callErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Kind != KindSubmit || t.Seq != s.latestSubmit || t.Generation != s.generation {
		s.dropStale(t)
		return ErrStaleResponse
	}
	s.pending[KindSubmit] = false

	if callErr == nil && (result == nil || result.Dataset == nil) {
		callErr = fmt.Errorf("service returned no dataset")
	}
	if callErr != nil {
		s.lastErr = callErr
		s.emit(events.NewEvent(events.SubmitFailed, s.sessionID()).
			WithGeneration(s.generation).
			WithError(callErr))
		return callErr
	}

	s.dataset = result.Dataset
	s.filePath = result.FilePath
	s.lastErr = nil
	s.state = StateSubmitted

	s.emit(events.NewEvent(events.FeedbackSubmitted, s.sessionID()).
		WithGeneration(s.generation).
		WithPayload(map[string]any{
			"file_path":     result.FilePath,
			"overall_score": result.Dataset.AggregatedMetrics.OverallScore,
		}))
	return nil
}

func (s *Session) checkStep(stepID string) error {
	if s.plan == nil {
		return ErrNoPlan
	}
	if _, ok := s.plan.Step(stepID); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStep, stepID)
	}
	return nil
}

// push installs a new store and keeps the old one for Undo.
func (s *Session) push(next feedback.Store) {
	s.history = append(s.history, s.store)
	s.store = next
	s.refreshState()
}

// refreshState derives plan_ready/all_rated from coverage. A later change
// to the feedback after submission moves the session back to rating; the
// received dataset stays visible until the next submit or plan.
func (s *Session) refreshState() {
	if s.plan == nil {
		s.state = StateIdle
		return
	}
	if feedback.ComputeProgress(s.plan.Steps, s.store).IsComplete() {
		s.state = StateAllRated
	} else {
		s.state = StatePlanReady
	}
}

func (s *Session) dropStale(t Ticket) {
	s.logger.Debug("dropping stale response", "kind", t.Kind, "seq", t.Seq, "generation", t.Generation)
	s.emit(events.NewEvent(events.ResponseStale, s.sessionID()).
		WithGeneration(t.Generation).
		WithPayload(map[string]any{"kind": string(t.Kind), "seq": t.Seq}))
}

func (s *Session) sessionID() string {
	if s.plan == nil {
		return ""
	}
	return s.plan.SessionID
}

func (s *Session) emit(e events.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}
