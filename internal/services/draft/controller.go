// Package draft runs draft board sessions: one poller per session feeding the
// reconciliation engine, with results pushed to subscribed presenters.
package draft

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/draftboard/internal/dependencies/clock"
	"github.com/mcoot/draftboard/internal/dependencies/random"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/services/rankings"
	"github.com/mcoot/draftboard/internal/services/reconcile"
	"github.com/mcoot/draftboard/internal/services/roster"
	"github.com/mcoot/draftboard/internal/sleeper"
	"github.com/mcoot/draftboard/internal/storage"
)

const (
	// SessionCodeLength is the length of generated session codes
	SessionCodeLength = 6

	DefaultPollInterval = 10 * time.Second
	DefaultFetchTimeout = 10 * time.Second
)

// Publisher receives every board change. Implementations must not block.
type Publisher interface {
	Publish(ctx context.Context, event model.Event)
}

// Config holds poller settings
type Config struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
	Favorites    []string
}

// DefaultConfig returns the default poller settings
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		FetchTimeout: DefaultFetchTimeout,
	}
}

// Controller manages draft board sessions and their refresh cycles
type Controller struct {
	storage   storage.Storage
	client    sleeper.Client
	roster    *roster.Service
	rankings  *rankings.Service
	clock     clock.Clock
	random    random.Random
	logger    *slog.Logger
	cfg       Config
	favorites reconcile.Favorites

	mu         sync.RWMutex
	sessions   map[model.SessionCode]*session
	publishers []Publisher
	baseCtx    context.Context // Parent of every poller; nil until Start
	stop       context.CancelFunc

	wg sync.WaitGroup
}

// NewController creates a new draft Controller. Pollers don't run until Start is called.
func NewController(
	storage storage.Storage,
	client sleeper.Client,
	rosterService *roster.Service,
	rankingsService *rankings.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	cfg Config,
) *Controller {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	return &Controller{
		storage:   storage,
		client:    client,
		roster:    rosterService,
		rankings:  rankingsService,
		clock:     clock,
		random:    random,
		logger:    logger.With(slog.String("component", "draft")),
		cfg:       cfg,
		favorites: reconcile.NewFavorites(cfg.Favorites),
		sessions:  make(map[model.SessionCode]*session),
	}
}

// Subscribe registers p to receive every future event
func (c *Controller) Subscribe(p Publisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishers = append(c.publishers, p)
}

// Favorites returns the configured favorites in sorted order
func (c *Controller) Favorites() []string {
	return c.favorites.Names()
}

// Start resumes stored sessions and starts a poller for every session.
// Pollers stop when ctx is cancelled or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	stored, err := c.storage.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("list stored sessions: %w", err)
	}

	c.mu.Lock()
	if c.baseCtx != nil {
		c.mu.Unlock()
		return errors.New("draft controller already started")
	}
	c.baseCtx, c.stop = context.WithCancel(ctx)

	for _, st := range stored {
		if _, exists := c.sessions[st.Code]; exists {
			continue
		}
		s := newSession(st)
		if snap, err := c.storage.GetSnapshot(ctx, st.DraftID); err == nil {
			s.snapshot = snap
		} else if !errors.Is(err, model.ErrSnapshotNotFound) {
			c.logger.Warn("failed to restore snapshot",
				slog.String("session", string(st.Code)),
				slog.String("draft_id", string(st.DraftID)),
				slog.Any("error", err))
		}
		c.sessions[st.Code] = s
		c.logger.Info("session resumed",
			slog.String("session", string(st.Code)),
			slog.String("draft_id", string(st.DraftID)),
			slog.Bool("has_snapshot", s.snapshot != nil))
	}

	for _, s := range c.sessions {
		c.startPollerLocked(s)
	}
	c.mu.Unlock()

	c.logger.Info("draft controller started",
		slog.Int("sessions", len(stored)),
		slog.Duration("poll_interval", c.cfg.PollInterval),
		slog.Duration("fetch_timeout", c.cfg.FetchTimeout))
	return nil
}

// Stop cancels every poller and in-flight fetch and waits for them to finish
func (c *Controller) Stop() {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
	c.wg.Wait()
	c.logger.Info("draft controller stopped")
}

// startPollerLocked starts polling the session's current draft. Caller must hold c.mu.
func (c *Controller) startPollerLocked(s *session) {
	if c.baseCtx == nil {
		return
	}

	s.mu.Lock()
	if s.stopPoller != nil {
		s.stopPoller()
	}
	ctx, cancel := context.WithCancel(c.baseCtx)
	s.stopPoller = cancel
	draftID := s.draftID
	s.mu.Unlock()

	c.wg.Add(2)
	go c.poll(ctx, s, draftID)
	go c.loadDraftInfo(ctx, s, draftID)
}

func stopPoller(s *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopPoller != nil {
		s.stopPoller()
		s.stopPoller = nil
	}
}

// poll fetches immediately and then on every tick until ctx is done.
// A tick never waits for the previous fetch.
func (c *Controller) poll(ctx context.Context, s *session, draftID model.DraftID) {
	defer c.wg.Done()

	logger := c.logger.With(
		slog.String("session", string(s.code)),
		slog.String("draft_id", string(draftID)))
	logger.Debug("poller started")

	ticker := c.clock.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	c.launchFetch(ctx, s, draftID)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("poller stopped")
			return
		case <-ticker.C():
			c.launchFetch(ctx, s, draftID)
		}
	}
}

func (c *Controller) launchFetch(ctx context.Context, s *session, draftID model.DraftID) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.fetch(ctx, s, draftID)
	}()
}

// loadDraftInfo fetches the draft's display name. Failure only costs the title.
func (c *Controller) loadDraftInfo(ctx context.Context, s *session, draftID model.DraftID) {
	defer c.wg.Done()

	fctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	info, err := c.client.Draft(fctx, draftID)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Debug("draft metadata unavailable",
				slog.String("session", string(s.code)),
				slog.String("draft_id", string(draftID)),
				slog.Any("error", err))
		}
		return
	}

	s.mu.Lock()
	if s.draftID == draftID {
		s.draftName = info.Name
	}
	s.mu.Unlock()
}

// fetch runs one Fetching cycle and applies the result if it is still current
func (c *Controller) fetch(ctx context.Context, s *session, draftID model.DraftID) outcome {
	gen, ok := s.begin(draftID)
	if !ok {
		return outcomeDraftChanged
	}

	logger := c.logger.With(
		slog.String("session", string(s.code)),
		slog.String("draft_id", string(draftID)),
		slog.Uint64("generation", gen))

	fctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	picks, err := c.client.DraftPicks(fctx, draftID)
	cancel()

	// A fetch cut short by shutdown or a draft change is not a refresh failure
	if err != nil && ctx.Err() != nil {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
		logger.Debug("fetch cancelled", slog.Any("error", err))
		return outcomeStale
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	result := s.complete(draftID, gen, picks, err, c.clock.Now())
	switch result {
	case outcomeStale, outcomeDraftChanged, outcomeClosed:
		logger.Info("discarding fetch result", slog.String("reason", result.String()))
		return result
	case outcomeFailed:
		var fe *sleeper.FetchError
		kind := "unknown"
		if errors.As(err, &fe) {
			kind = string(fe.Kind)
		}
		logger.Warn("refresh failed", slog.String("kind", kind), slog.Any("error", err))
	case outcomeApplied:
		logger.Info("refresh succeeded", slog.Int("picks", len(picks)))
		c.persistSnapshot(ctx, s)
	}

	c.persistSession(ctx, s)

	eventType := model.EventRefreshSucceeded
	if result == outcomeFailed {
		eventType = model.EventRefreshFailed
	}
	c.publish(ctx, eventType, s)
	return result
}

func (c *Controller) persistSnapshot(ctx context.Context, s *session) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap == nil {
		return
	}
	if err := c.storage.SaveSnapshot(context.WithoutCancel(ctx), snap); err != nil {
		c.logger.Error("failed to save snapshot",
			slog.String("session", string(s.code)),
			slog.Any("error", err))
	}
}

func (c *Controller) persistSession(ctx context.Context, s *session) {
	s.mu.RLock()
	m := s.model()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return
	}
	if err := c.storage.SaveSession(context.WithoutCancel(ctx), m); err != nil {
		c.logger.Error("failed to save session",
			slog.String("session", string(s.code)),
			slog.Any("error", err))
	}
}

func (c *Controller) publish(ctx context.Context, eventType model.EventType, s *session) {
	event := model.Event{
		Type:        eventType,
		Timestamp:   c.clock.Now(),
		SessionCode: s.code,
	}
	if eventType != model.EventSessionDeleted {
		event.Board = c.board(s, nil)
	}

	c.mu.RLock()
	publishers := append([]Publisher(nil), c.publishers...)
	c.mu.RUnlock()

	for _, p := range publishers {
		p.Publish(ctx, event)
	}
}

func (c *Controller) get(code model.SessionCode) (*session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[code]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return s, nil
}

// ParseDraftID trims and validates a user-supplied draft identifier
func ParseDraftID(raw string) (model.DraftID, error) {
	id := strings.TrimSpace(raw)
	if id == "" || strings.ContainsAny(id, "/?# \t") {
		return "", model.ErrInvalidDraftID
	}
	return model.DraftID(id), nil
}

// CreateSession creates a board for a draft and starts polling it
func (c *Controller) CreateSession(ctx context.Context, rawDraftID string, rawFilter string) (*model.Session, error) {
	draftID, err := ParseDraftID(rawDraftID)
	if err != nil {
		return nil, err
	}
	filter, err := model.ParsePosition(rawFilter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()

	// Generate unique session code
	var code model.SessionCode
	for {
		code = model.SessionCode(c.random.Code(SessionCodeLength))
		if code == "" {
			c.mu.Unlock()
			return nil, errors.New("failed to generate session code")
		}
		if _, exists := c.sessions[code]; exists {
			continue
		}
		_, err := c.storage.GetSession(ctx, code)
		if errors.Is(err, model.ErrSessionNotFound) {
			break
		}
		if err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}

	now := c.clock.Now()
	m := &model.Session{
		Code:      code,
		DraftID:   draftID,
		Filter:    filter,
		State:     model.RefreshStateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveSession(ctx, m); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	s := newSession(m)
	c.sessions[code] = s

	// The created event goes out before anything the new poller publishes
	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	c.startPollerLocked(s)
	c.mu.Unlock()

	c.logger.Info("session created",
		slog.String("session", string(code)),
		slog.String("draft_id", string(draftID)),
		slog.String("filter", string(filter)))

	c.publish(ctx, model.EventSessionCreated, s)
	return m, nil
}

// GetSession returns the current state of a session
func (c *Controller) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model(), nil
}

// ListSessions returns every session, sorted by code
func (c *Controller) ListSessions(ctx context.Context) []*model.Session {
	c.mu.RLock()
	sessions := make([]*session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.RUnlock()

	out := make([]*model.Session, 0, len(sessions))
	for _, s := range sessions {
		s.mu.RLock()
		out = append(out, s.model())
		s.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

// DeleteSession stops a session's poller and removes it
func (c *Controller) DeleteSession(ctx context.Context, code model.SessionCode) error {
	c.mu.Lock()
	s, ok := c.sessions[code]
	if !ok {
		c.mu.Unlock()
		return model.ErrSessionNotFound
	}
	delete(c.sessions, code)
	c.mu.Unlock()

	stopPoller(s)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	if err := c.storage.DeleteSession(ctx, code); err != nil {
		return err
	}

	c.logger.Info("session deleted", slog.String("session", string(code)))
	c.publish(ctx, model.EventSessionDeleted, s)
	return nil
}

// SetFilter changes the position filter. Only the availability list is recomputed; nothing is fetched.
func (c *Controller) SetFilter(ctx context.Context, code model.SessionCode, rawFilter string) (*model.Board, error) {
	filter, err := model.ParsePosition(rawFilter)
	if err != nil {
		return nil, err
	}
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	s.filter = filter
	s.updatedAt = c.clock.Now()
	s.mu.Unlock()

	c.persistSession(ctx, s)
	c.logger.Info("filter changed",
		slog.String("session", string(code)),
		slog.String("filter", string(filter)))

	c.publish(ctx, model.EventFilterChanged, s)
	return c.board(s, nil), nil
}

// ChangeDraft points a session at another draft. The old snapshot is dropped,
// results still in flight for the old draft are discarded, and polling restarts.
func (c *Controller) ChangeDraft(ctx context.Context, code model.SessionCode, rawDraftID string) (*model.Board, error) {
	draftID, err := ParseDraftID(rawDraftID)
	if err != nil {
		return nil, err
	}
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}

	s.publishMu.Lock()
	s.mu.Lock()
	if s.stopPoller != nil {
		s.stopPoller()
		s.stopPoller = nil
	}
	previous := s.draftID
	s.reset(draftID, c.clock.Now())
	s.mu.Unlock()

	c.persistSession(ctx, s)
	c.logger.Info("draft changed",
		slog.String("session", string(code)),
		slog.String("previous_draft_id", string(previous)),
		slog.String("draft_id", string(draftID)))

	c.publish(ctx, model.EventDraftChanged, s)
	board := c.board(s, nil)
	s.publishMu.Unlock()

	c.mu.Lock()
	if _, still := c.sessions[code]; still {
		c.startPollerLocked(s)
	}
	c.mu.Unlock()

	return board, nil
}

// Refresh fetches the session's draft now and returns the resulting board.
// A failed fetch is reported through Board.LastError, not as an error.
func (c *Controller) Refresh(ctx context.Context, code model.SessionCode) (*model.Board, error) {
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	draftID := s.draftID
	s.mu.RUnlock()

	c.logger.Debug("manual refresh", slog.String("session", string(code)))
	c.fetch(ctx, s, draftID)
	return c.board(s, nil), nil
}

// Board returns the reconciled board for a session using its own filter
func (c *Controller) Board(ctx context.Context, code model.SessionCode) (*model.Board, error) {
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}
	return c.board(s, nil), nil
}

// BoardWithFilter returns the board for a session as if its filter were filter.
// The session's stored filter is not changed.
func (c *Controller) BoardWithFilter(ctx context.Context, code model.SessionCode, rawFilter string) (*model.Board, error) {
	filter, err := model.ParsePosition(rawFilter)
	if err != nil {
		return nil, err
	}
	s, err := c.get(code)
	if err != nil {
		return nil, err
	}
	return c.board(s, &filter), nil
}

// board assembles the view of s. A nil filter means the session's filter.
func (c *Controller) board(s *session, filter *model.Position) *model.Board {
	s.mu.RLock()
	m := s.model()
	snap := s.snapshot
	draftName := s.draftName
	s.mu.RUnlock()

	f := m.Filter
	if filter != nil {
		f = *filter
	}

	// Only show a snapshot that belongs to the current draft
	if snap != nil && snap.DraftID != m.DraftID {
		snap = nil
	}

	idx := c.roster.Index()
	board := reconcile.Build(reconcile.Input{
		Snapshot:  snap,
		Rankings:  c.rankings.All(),
		Roster:    idx,
		Filter:    f,
		Favorites: c.favorites,
	})

	board.SessionCode = m.Code
	board.DraftID = m.DraftID
	board.DraftName = draftName
	board.State = m.State
	board.Generation = m.Generation
	board.LastRefreshAt = m.LastRefreshAt
	board.LastError = m.LastError
	board.RosterCount = idx.Len()
	return board
}
