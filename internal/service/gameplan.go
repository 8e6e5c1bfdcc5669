package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"jjplan/internal/domain"
	"jjplan/internal/loader"
	"jjplan/internal/metrics"
)

// Options tunes a GamePlanService
type Options struct {
	// PreviewDepth is the subgraph depth shown with a session's current
	// position; values below 1 mean 2
	PreviewDepth int
	// SessionTTL expires sessions idle for longer; 0 disables expiry
	SessionTTL time.Duration
}

// GamePlanService serves the position graph, the catalog, and navigation
// sessions over the active game plan
type GamePlanService struct {
	mu       sync.RWMutex
	plan     *loader.GamePlan
	sessions map[string]*session

	eventBus *EventBus
	logger   *zap.Logger
	opts     Options
	now      func() time.Time
}

// session state is guarded by mu. lastSeen is atomic so the sweeper can
// read it while holding only the service lock.
type session struct {
	mu       sync.Mutex
	id       string
	nav      *domain.Navigator
	tips     *domain.TipLedger
	lastSeen atomic.Int64 // unix nanoseconds
}

func (sess *session) touch(t time.Time) {
	sess.lastSeen.Store(t.UnixNano())
}

func (sess *session) idleSince(cutoff time.Time) bool {
	return sess.lastSeen.Load() < cutoff.UnixNano()
}

// NewGamePlanService creates a service over a loaded plan
func NewGamePlanService(plan *loader.GamePlan, eventBus *EventBus, logger *zap.Logger, opts Options) *GamePlanService {
	if opts.PreviewDepth < 1 {
		opts.PreviewDepth = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GamePlanService{
		plan:     plan,
		sessions: make(map[string]*session),
		eventBus: eventBus,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
	}
}

// Plan returns the active plan
func (s *GamePlanService) Plan() *loader.GamePlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan
}

// Reload swaps in a new plan. Existing sessions keep their stacks.
func (s *GamePlanService) Reload(plan *loader.GamePlan) {
	s.mu.Lock()
	old := s.plan
	s.plan = plan
	s.mu.Unlock()

	metrics.DatasetReloads.WithLabelValues("ok").Inc()
	s.logger.Info("dataset reloaded",
		zap.String("source", plan.Source),
		zap.String("version", plan.Version),
		zap.String("fingerprint", plan.Fingerprint),
		zap.Bool("changed", old == nil || old.Fingerprint != plan.Fingerprint),
	)

	s.eventBus.Publish(Event{
		Type: EventDatasetReloaded,
		Payload: map[string]string{
			"source":      plan.Source,
			"version":     plan.Version,
			"fingerprint": plan.Fingerprint,
		},
	})
}

// ReloadFromPath loads a dataset and swaps it in. On failure the active
// plan is kept.
func (s *GamePlanService) ReloadFromPath(path string) error {
	plan, err := loader.Load(path)
	if err != nil {
		metrics.DatasetReloads.WithLabelValues("error").Inc()
		s.logger.Warn("dataset reload failed, keeping active plan", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("reload %s: %w", path, err)
	}
	s.Reload(plan)
	return nil
}

// ListStartPositions returns the home screen entry points in order
func (s *GamePlanService) ListStartPositions() []domain.StartPosition {
	return append([]domain.StartPosition(nil), s.Plan().Starts...)
}

// Position looks up a single position
func (s *GamePlanService) Position(id string) (domain.Position, error) {
	return s.Plan().Graph.Position(id)
}

// OptionsFor returns the ordered options of a position
func (s *GamePlanService) OptionsFor(id string) ([]domain.Option, error) {
	return s.Plan().Graph.OptionsFor(id)
}

// Subgraph returns the view rooted at id. depth 0 uses the preview depth.
func (s *GamePlanService) Subgraph(id string, depth int) (*domain.Subgraph, error) {
	if depth == 0 {
		depth = s.opts.PreviewDepth
	}
	return s.Plan().Graph.SubgraphView(id, depth)
}

// Flow returns the whole position graph
func (s *GamePlanService) Flow() *domain.Subgraph {
	return s.Plan().Graph.Flow()
}

// CatalogFilteredByTier returns the catalog edges at or below the filter
func (s *GamePlanService) CatalogFilteredByTier(f domain.BeltFilter) []domain.SubmissionEdge {
	return s.Plan().Catalog.FilterByTier(f)
}

// CatalogFilteredByPosition returns the submissions reachable from a
// position within the filter
func (s *GamePlanService) CatalogFilteredByPosition(f domain.BeltFilter, position string) []string {
	return s.Plan().Catalog.FilterByPosition(f, position)
}

// SubmissionNames returns the distinct filtered submission names in
// canonical order
func (s *GamePlanService) SubmissionNames(f domain.BeltFilter) []string {
	return s.Plan().Catalog.SubmissionNames(f)
}

// SubmissionMap builds the aggregate catalog view highlighted for position
func (s *GamePlanService) SubmissionMap(f domain.BeltFilter, position string) *domain.SubmissionMap {
	plan := s.Plan()
	return plan.Catalog.Map(f, position, plan.Graph.Label)
}

// Roster returns the Tap List roster of the active plan
func (s *GamePlanService) Roster() []domain.RosterEntry {
	return append([]domain.RosterEntry(nil), s.Plan().Roster...)
}

// SessionView is everything the Game Plan screen renders for a session
type SessionView struct {
	ID         string                 `json:"id"`
	State      domain.NavState        `json:"state"`
	Stack      []string               `json:"stack"`
	Breadcrumb []domain.Crumb         `json:"breadcrumb"`
	Starts     []domain.StartPosition `json:"starts,omitempty"`
	Current    *domain.Position       `json:"current,omitempty"`
	NotFound   bool                   `json:"not_found,omitempty"`
	Options    []domain.Option        `json:"options,omitempty"`
	Preview    *domain.Subgraph       `json:"preview,omitempty"`
	Tip        *domain.Tip            `json:"tip,omitempty"`
	Finish     *domain.Option         `json:"finish,omitempty"`
}

// CreateSession starts a navigation session at Home
func (s *GamePlanService) CreateSession() SessionView {
	sess := &session{
		id:   uuid.NewString(),
		nav:  domain.NewNavigator(),
		tips: domain.NewTipLedger(),
	}
	sess.touch(s.now())
	plan := s.Plan()

	s.mu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	metrics.ActiveSessions.Set(float64(count))
	s.logger.Debug("session created", zap.String("session", sess.id))

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.view(plan, sess, nil, false)
}

// Session returns the current view of a session
func (s *GamePlanService) Session(id string) (SessionView, error) {
	return s.withSession(id, "", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		return nil, false, nil
	})
}

// SelectStart replaces the session's path with a start position
func (s *GamePlanService) SelectStart(id, position string) (SessionView, error) {
	return s.withSession(id, "start", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		if !plan.Graph.Has(position) {
			return nil, false, &domain.PositionNotFoundError{ID: position}
		}
		sess.nav.SelectStart(position)
		return nil, true, nil
	})
}

// Push descends into a position
func (s *GamePlanService) Push(id, position string) (SessionView, error) {
	return s.withSession(id, "push", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		if !plan.Graph.Has(position) {
			return nil, false, &domain.PositionNotFoundError{ID: position}
		}
		_, err := sess.nav.Push(position)
		return nil, err == nil, err
	})
}

// Pop goes back one level
func (s *GamePlanService) Pop(id string) (SessionView, error) {
	return s.withSession(id, "pop", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		sess.nav.Pop()
		return nil, false, nil
	})
}

// JumpTo truncates the path to a breadcrumb index; HomeIndex goes Home
func (s *GamePlanService) JumpTo(id string, index int) (SessionView, error) {
	return s.withSession(id, "jump", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		_, err := sess.nav.JumpTo(index)
		return nil, false, err
	})
}

// Choose follows the n-th option of the current position. A transition
// descends; a submission or takedown is returned as the finish.
func (s *GamePlanService) Choose(id string, option int) (SessionView, error) {
	return s.withSession(id, "choose", func(plan *loader.GamePlan, sess *session) (*domain.Option, bool, error) {
		opts, err := sess.nav.CurrentOptions(plan.Graph)
		if err != nil {
			return nil, false, err
		}
		if option < 0 || option >= len(opts) {
			return nil, false, fmt.Errorf("%w: %d of %d", ErrInvalidOption, option, len(opts))
		}
		out, err := sess.nav.Follow(opts[option])
		if err != nil {
			return nil, false, err
		}
		return out.Finish, out.Finish == nil, nil
	})
}

// EndSession discards a session
func (s *GamePlanService) EndSession(id string) error {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	metrics.ActiveSessions.Set(float64(count))
	return nil
}

// SessionCount returns the number of live sessions
func (s *GamePlanService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SweepSessions drops sessions idle since before now minus the TTL and
// returns how many were dropped
func (s *GamePlanService) SweepSessions(now time.Time) int {
	if s.opts.SessionTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-s.opts.SessionTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for id, sess := range s.sessions {
		if sess.idleSince(cutoff) {
			delete(s.sessions, id)
			dropped++
		}
	}
	if dropped > 0 {
		metrics.ActiveSessions.Set(float64(len(s.sessions)))
		s.logger.Debug("expired idle sessions", zap.Int("dropped", dropped))
	}
	return dropped
}

// RunSweeper sweeps idle sessions every interval until ctx is done
func (s *GamePlanService) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepSessions(s.now())
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *GamePlanService) lookup(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// withSession runs fn under the session's lock and renders the result.
// The plan is read once, before the session lock is taken, so one operation
// never sees two plans and sess.mu is never held while waiting on s.mu.
// fn reports the terminal move chosen, if any, and whether a position was
// entered going forward, which is when a tip may surface.
func (s *GamePlanService) withSession(id, op string, fn func(*loader.GamePlan, *session) (*domain.Option, bool, error)) (SessionView, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	plan := s.Plan()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	finish, entered, err := fn(plan, sess)
	if op != "" {
		metrics.NavigationOps.WithLabelValues(op, metrics.Result(err)).Inc()
	}
	if err != nil {
		return SessionView{}, err
	}
	sess.touch(s.now())

	return s.view(plan, sess, finish, entered), nil
}

// view renders a session against plan. Callers hold sess.mu.
func (s *GamePlanService) view(plan *loader.GamePlan, sess *session, finish *domain.Option, entered bool) SessionView {
	v := SessionView{
		ID:         sess.id,
		State:      sess.nav.State(),
		Stack:      sess.nav.Stack(),
		Breadcrumb: sess.nav.Breadcrumb(plan.Graph),
		Finish:     finish,
	}

	current, ok := sess.nav.Current()
	if !ok {
		v.Starts = append([]domain.StartPosition(nil), plan.Starts...)
		return v
	}

	pos, err := plan.Graph.Position(current)
	if err != nil {
		v.NotFound = true
		return v
	}
	v.Current = &pos
	v.Options, _ = plan.Graph.OptionsFor(current)
	v.Preview, _ = plan.Graph.SubgraphView(current, s.opts.PreviewDepth)

	if entered {
		if tip, ok := domain.NextTip(sess.tips, plan.Tips, current); ok {
			v.Tip = &tip
		}
	}
	return v
}
