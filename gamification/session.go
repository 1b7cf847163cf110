package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StateStore loads and saves the full state record of a user.
// Load returns ErrStateNotFound when no record exists.
type StateStore interface {
	Load(ctx context.Context, userID string) (State, error)
	Save(ctx context.Context, userID string, state State) error
}

// Options configures sessions. Zero values fall back to the defaults.
type Options struct {
	Catalog  *Catalog
	Location *time.Location
	Clock    func() time.Time
	Broker   *Broker
	Logger   *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Catalog == nil {
		o.Catalog = DefaultCatalog()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Broker == nil {
		o.Broker = NewBroker(0)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// AwardResult summarises a single award.
type AwardResult struct {
	PointsEarned  int      `json:"pointsEarned"`
	NewBadges     []string `json:"newBadges"`
	CurrentStreak int      `json:"currentStreak"`
}

// Summary is the read model shown by UI surfaces.
type Summary struct {
	State State `json:"state"`
	Level Level `json:"level"`
}

// Session holds one user's state in memory and is its only mutator.
//
// Awards are serialised by mu. Persistence happens after mu is released and
// is ordered by version under saveMu, so an older snapshot never overwrites
// a newer one. Two processes holding sessions for the same user can still
// lose each other's updates; the last save wins.
type Session struct {
	userID string
	store  StateStore
	opts   Options

	mu      sync.Mutex
	state   State
	version uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

// Open loads the user's record and returns a session over it. A missing or
// unreadable record yields the default state; load errors are logged, not returned.
func Open(ctx context.Context, store StateStore, userID string, opts Options) *Session {
	opts = opts.withDefaults()
	s := &Session{userID: userID, store: store, opts: opts, state: DefaultState()}

	st, err := store.Load(ctx, userID)
	switch {
	case err == nil:
		st.Normalize(opts.Catalog)
		s.state = st
	case errors.Is(err, ErrStateNotFound):
		opts.Logger.Debug("no stored gamification state, using defaults", zap.String("user_id", userID))
	default:
		opts.Logger.Warn("load gamification state failed, using defaults",
			zap.String("user_id", userID), zap.Error(err))
	}
	return s
}

func (s *Session) UserID() string {
	return s.userID
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Summary returns the current state with its derived level.
func (s *Session) Summary() Summary {
	st := s.Snapshot()
	return Summary{State: st, Level: LevelFor(st.Points)}
}

// Award applies action with the default multiplier of 1.
func (s *Session) Award(ctx context.Context, action Action) (AwardResult, error) {
	return s.AwardWithMultiplier(ctx, action, 1)
}

// AwardWithMultiplier credits action, scaling its base points by multiplier.
//
// Validation errors leave the state untouched. Otherwise the award is applied
// and published before the state is saved; if saving fails the result is
// still returned, together with a *PersistenceWarning.
func (s *Session) AwardWithMultiplier(ctx context.Context, action Action, multiplier float64) (AwardResult, error) {
	base, ok := BasePoints(action)
	if !ok {
		return AwardResult{}, &InvalidActionError{Action: string(action)}
	}
	if !validMultiplier(multiplier) {
		return AwardResult{}, fmt.Errorf("%w: %v", ErrInvalidMultiplier, multiplier)
	}
	today := DateIn(s.opts.Clock(), s.opts.Location)

	s.mu.Lock()
	res := s.apply(action, ScaledPoints(base, multiplier), today)
	s.version++
	version := s.version
	snap := s.state.Clone()
	s.opts.Broker.Publish(StateChanged{UserID: s.userID, State: snap.Clone(), At: s.opts.Clock()})
	s.mu.Unlock()

	s.opts.Logger.Debug("points awarded",
		zap.String("user_id", s.userID),
		zap.String("action", string(action)),
		zap.Int("points_earned", res.PointsEarned),
		zap.Strings("new_badges", res.NewBadges),
		zap.Int("current_streak", res.CurrentStreak))

	if err := s.persist(ctx, snap, version); err != nil {
		s.opts.Logger.Warn("persist gamification state failed",
			zap.String("user_id", s.userID), zap.Uint64("version", version), zap.Error(err))
		return res, &PersistenceWarning{UserID: s.userID, Err: err}
	}
	return res, nil
}

// apply mutates s.state; callers hold s.mu.
func (s *Session) apply(action Action, earned int, today Date) AwardResult {
	st := &s.state

	switch action {
	case ActionMoodCheckin:
		st.TotalCheckins++
		streak, isNewDay := ComputeStreak(st.LastCheckinDate, today, st.CurrentStreak)
		st.CurrentStreak = streak
		st.LongestStreak = max(st.LongestStreak, streak)
		if isNewDay {
			// a skewed clock must not move the last check-in date backwards
			d := today
			st.LastCheckinDate = &d
			earned = addPoints(earned, StreakBonus(streak))
		}
	case ActionJournalEntry:
		st.TotalJournals++
	}

	st.Points = addPoints(st.Points, earned)

	newBadges := EvaluateNewBadges(*st, s.opts.Catalog)
	st.UnlockedBadges = append(st.UnlockedBadges, newBadges...)

	return AwardResult{
		PointsEarned:  earned,
		NewBadges:     newBadges,
		CurrentStreak: st.CurrentStreak,
	}
}

func (s *Session) persist(ctx context.Context, snap State, version uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if version <= s.savedVersion {
		return nil
	}
	if err := s.store.Save(ctx, s.userID, snap); err != nil {
		return err
	}
	s.savedVersion = version
	return nil
}

// Flush saves the current state if it has changes not yet persisted.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	snap := s.state.Clone()
	version := s.version
	s.mu.Unlock()
	if err := s.persist(ctx, snap, version); err != nil {
		return fmt.Errorf("flush gamification state for %q: %w", s.userID, err)
	}
	return nil
}

// Dirty reports whether the in-memory state is ahead of the store.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	v := s.version
	s.mu.Unlock()
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return v > s.savedVersion
}
