package fasting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fastwell/backend/internal/telemetry/metrics"
	"github.com/fastwell/backend/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrNoActiveSession = errors.New("no active fasting session")
	ErrInvalidDuration = errors.New("invalid fast duration")
)

var milestoneThresholds = []int{25, 50, 75, 90}

const (
	defaultTickInterval  = time.Second
	statsCacheSizeBytes  = 1024 * 1024
	statsCacheTTLSeconds = 60
)

type sessionsRepo interface {
	Upsert(ctx context.Context, session Session) error
	ActiveSession(ctx context.Context, userID string) (*Session, error)
	History(ctx context.Context, userID string) ([]Session, error)
}

type sessionsCache interface {
	StoreActive(ctx context.Context, userID string, session *Session) error
	ActiveSession(ctx context.Context, userID string) (*Session, error)
	ClearActive(ctx context.Context, userID string) error
	StoreHistory(ctx context.Context, userID string, history []Session) error
	History(ctx context.Context, userID string) ([]Session, error)
}

type achievementsEvaluator interface {
	EvaluateOnCompletion(ctx context.Context, userID string, history []Session) ([]string, error)
}

type rewarder interface {
	Award(ctx context.Context, userID string, points int) (total int, err error)
}

// userState is the in-memory state machine for one user. All access
// goes through the manager mutex, including the ticker goroutine.
type userState struct {
	active         *Session
	history        []Session
	timeRemaining  int
	isPaused       bool
	pauseStartedAt time.Time
	lastMilestone  int
	timerDone      chan struct{}
	upsertDone     chan struct{}
	loaded         bool
}

// Manager runs the fasting session state machine: one active session
// per user, a 1Hz countdown while it runs, pause bookkeeping, and
// terminal transitions into history. The local cache is written
// synchronously on every transition, the remote store asynchronously.
type Manager struct {
	repo         sessionsRepo
	cache        sessionsCache
	signals      SignalSink
	achievements achievementsEvaluator
	rewards      rewarder
	metrics      *metrics.Manager

	statsCache   *freecache.Cache
	tickInterval time.Duration

	// NowFunc is the session clock, replaceable in tests.
	NowFunc func() time.Time

	mu    sync.Mutex
	users map[string]*userState
	wg    sync.WaitGroup
}

type NewManagerParams struct {
	Repo         sessionsRepo
	Cache        sessionsCache
	Signals      SignalSink
	Achievements achievementsEvaluator
	Rewards      rewarder
	Metrics      *metrics.Manager
	TickInterval time.Duration
}

func NewManager(params NewManagerParams) *Manager {
	tickInterval := params.TickInterval
	if tickInterval == 0 {
		tickInterval = defaultTickInterval
	}
	return &Manager{
		repo:         params.Repo,
		cache:        params.Cache,
		signals:      params.Signals,
		achievements: params.Achievements,
		rewards:      params.Rewards,
		metrics:      params.Metrics,
		statsCache:   freecache.NewCache(statsCacheSizeBytes),
		tickInterval: tickInterval,
		NowFunc:      time.Now,
		users:        make(map[string]*userState),
	}
}

type StopParams struct {
	Mood   string `json:"mood"`
	Energy int    `json:"energy"`
	Notes  string `json:"notes"`
}

// StartFast begins a new session for the user. A fast already running
// gets stopped first and lands in history as a manual stop. Zero
// duration falls back to the plan preset when the plan has one.
func (m *Manager) StartFast(ctx context.Context, userID, planType string, durationSeconds int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fasting.manager.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("fast.plan", planType))

	if durationSeconds <= 0 {
		preset, ok := DurationForPlan(planType)
		if !ok {
			return nil, ErrInvalidDuration
		}
		durationSeconds = preset
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.userStateLocked(ctx, userID)
	if st.active != nil {
		m.stopLocked(ctx, userID, st, StopParams{})
	}

	session := &Session{
		ID:              uuid.NewString(),
		UserID:          userID,
		PlanType:        planType,
		StartTime:       m.NowFunc(),
		DurationSeconds: durationSeconds,
	}

	st.active = session
	st.timeRemaining = durationSeconds
	st.isPaused = false
	st.lastMilestone = 0

	m.persistActiveLocked(ctx, userID, st)
	m.startTimerLocked(userID, st)

	m.metrics.CounterFastsStarted.Inc()
	m.metrics.GaugeActiveFasts.Inc()

	log.Debugf("fast started for user %s: plan %s, %d seconds", userID, planType, durationSeconds)

	return session, nil
}

// PauseFast toggles the pause state of the active session and returns
// the new state. Resuming folds the pause interval into the session's
// total paused time, so the countdown picks up where it froze.
func (m *Manager) PauseFast(ctx context.Context, userID string) (paused bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fasting.manager.pause")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.userStateLocked(ctx, userID)
	if st.active == nil {
		return false, ErrNoActiveSession
	}

	if st.isPaused {
		st.active.TotalPausedSeconds += int(m.NowFunc().Sub(st.pauseStartedAt).Seconds())
		st.isPaused = false
	} else {
		st.isPaused = true
		st.pauseStartedAt = m.NowFunc()
	}

	m.persistActiveLocked(ctx, userID, st)

	return st.isPaused, nil
}

// StopFast ends the active session early. The session keeps the time
// already fasted but does not count as completed.
func (m *Manager) StopFast(ctx context.Context, userID string, params StopParams) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "fasting.manager.stop")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.userStateLocked(ctx, userID)
	if st.active == nil {
		return nil, ErrNoActiveSession
	}

	return m.stopLocked(ctx, userID, st, params), nil
}

func (m *Manager) stopLocked(ctx context.Context, userID string, st *userState, params StopParams) *Session {
	if st.isPaused {
		st.active.TotalPausedSeconds += int(m.NowFunc().Sub(st.pauseStartedAt).Seconds())
		st.isPaused = false
	}

	session := st.active
	endTime := m.NowFunc()
	session.EndTime = &endTime
	session.Completed = false
	session.Mood = params.Mood
	session.Energy = params.Energy
	session.Notes = params.Notes

	m.finishLocked(ctx, userID, st, session)
	m.metrics.CounterFastsStopped.Inc()

	log.Debugf("fast stopped for user %s: session %s", userID, session.ID)

	return session
}

func (m *Manager) completeLocked(ctx context.Context, userID string, st *userState) {
	session := st.active
	endTime := m.NowFunc()
	session.EndTime = &endTime
	session.Completed = true

	m.finishLocked(ctx, userID, st, session)

	m.metrics.CounterFastsCompleted.Inc()
	m.metrics.HistFastDurationHours.Observe(session.DurationHours())

	m.signals.Push(ctx, userID, Signal{
		Type:    SignalCompleted,
		Message: fmt.Sprintf("Fast complete! You made it through %s.", FormatClock(session.DurationSeconds)),
	})

	if m.rewards != nil {
		points := PointsForPlan(session.PlanType)
		if _, err := m.rewards.Award(ctx, userID, points); err != nil {
			log.Errorf("award %d points to user %s: %s", points, userID, err)
		} else {
			m.signals.Push(ctx, userID, Signal{
				Type:    SignalReward,
				Message: fmt.Sprintf("You earned %d points!", points),
			})
		}
	}

	if m.achievements != nil {
		unlocked, err := m.achievements.EvaluateOnCompletion(ctx, userID, st.history)
		if err != nil {
			log.Errorf("evaluate achievements for user %s: %s", userID, err)
		}
		for _, title := range unlocked {
			m.signals.Push(ctx, userID, Signal{
				Type:    SignalAchievement,
				Message: fmt.Sprintf("Achievement unlocked: %s", title),
			})
		}
	}

	log.Debugf("fast completed for user %s: session %s", userID, session.ID)
}

// finishLocked moves the active session into history and persists the
// terminal state. Common tail of both manual stop and completion.
func (m *Manager) finishLocked(ctx context.Context, userID string, st *userState, session *Session) {
	m.stopTimerLocked(st)
	st.active = nil
	st.timeRemaining = 0
	st.history = append([]Session{*session}, st.history...)

	m.persistTerminalLocked(ctx, userID, st, session)
	m.statsCache.Del(statsCacheKey(userID))
	m.metrics.GaugeActiveFasts.Dec()
}

// SessionSnapshot is the live view of a user's fasting state, with the
// derived fields the client renders every second.
type SessionSnapshot struct {
	Session       *Session `json:"session,omitempty"`
	IsActive      bool     `json:"isActive"`
	IsPaused      bool     `json:"isPaused"`
	TimeRemaining int      `json:"timeRemaining"`
	Clock         string   `json:"clock"`
	Progress      float64  `json:"progress"`
	Phase         string   `json:"phase"`
}

func (m *Manager) CurrentSession(ctx context.Context, userID string) (*SessionSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.userStateLocked(ctx, userID)
	if st.active == nil {
		return &SessionSnapshot{Clock: FormatClock(0)}, nil
	}

	sessionCopy := *st.active
	elapsed := st.active.DurationSeconds - st.timeRemaining
	return &SessionSnapshot{
		Session:       &sessionCopy,
		IsActive:      true,
		IsPaused:      st.isPaused,
		TimeRemaining: st.timeRemaining,
		Clock:         FormatClock(st.timeRemaining),
		Progress:      Progress(st.active.DurationSeconds, st.timeRemaining),
		Phase:         PhaseForElapsed(time.Duration(elapsed) * time.Second),
	}, nil
}

// HistoryPage returns one page of finished sessions, newest first,
// together with the total count. Pages start at 1.
func (m *Manager) HistoryPage(ctx context.Context, userID string, page, size int) ([]Session, int, error) {
	if page < 1 || size < 1 {
		return nil, 0, fmt.Errorf("invalid page params [page %d, size %d]", page, size)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.userStateLocked(ctx, userID)
	total := len(st.history)

	from := (page - 1) * size
	if from >= total {
		return []Session{}, total, nil
	}
	to := from + size
	if to > total {
		to = total
	}

	pageSessions := make([]Session, to-from)
	copy(pageSessions, st.history[from:to])
	return pageSessions, total, nil
}

func (m *Manager) Stats(ctx context.Context, userID string) (*Stats, error) {
	cacheKey := statsCacheKey(userID)
	if cached, err := m.statsCache.Get(cacheKey); err == nil {
		var stats Stats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	m.mu.Lock()
	st := m.userStateLocked(ctx, userID)
	history := make([]Session, len(st.history))
	copy(history, st.history)
	m.mu.Unlock()

	stats := ComputeStats(history, m.NowFunc())

	if statsBytes, err := json.Marshal(stats); err == nil {
		if err := m.statsCache.Set(cacheKey, statsBytes, statsCacheTTLSeconds); err != nil {
			log.Tracef("set stats cache for user %s: %s", userID, err)
		}
	}

	return stats, nil
}

// Close stops all session timers and waits for in-flight persistence.
func (m *Manager) Close() {
	m.mu.Lock()
	for _, st := range m.users {
		m.stopTimerLocked(st)
	}
	m.mu.Unlock()
	m.wg.Wait()
}

func (m *Manager) userStateLocked(ctx context.Context, userID string) *userState {
	st, ok := m.users[userID]
	if !ok {
		st = &userState{}
		m.users[userID] = st
	}
	if !st.loaded {
		m.loadUserLocked(ctx, userID, st)
	}
	return st
}

// loadUserLocked reconciles a user's state from the remote store, with
// the local cache as fallback when the remote has nothing. An active
// session whose target already passed while the service was down gets
// settled as completed instead of resurrected.
func (m *Manager) loadUserLocked(ctx context.Context, userID string, st *userState) {
	st.loaded = true

	history, err := m.repo.History(ctx, userID)
	if err != nil {
		log.Errorf("load history for user %s: %s", userID, err)
	}

	active, err := m.repo.ActiveSession(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoActiveSession) {
		log.Errorf("load active session for user %s: %s", userID, err)
	}

	if len(history) == 0 && active == nil {
		if cachedHistory, cacheErr := m.cache.History(ctx, userID); cacheErr == nil && len(cachedHistory) > 0 {
			history = cachedHistory
		}
		if cachedActive, cacheErr := m.cache.ActiveSession(ctx, userID); cacheErr == nil && cachedActive != nil {
			active = cachedActive
		}
	}

	st.history = history

	if active == nil {
		return
	}

	elapsed := int(m.NowFunc().Sub(active.StartTime).Seconds())
	remaining := active.DurationSeconds - elapsed - active.TotalPausedSeconds
	if remaining > 0 {
		st.active = active
		st.timeRemaining = remaining
		st.isPaused = false
		st.lastMilestone = int(Progress(active.DurationSeconds, remaining))
		m.startTimerLocked(userID, st)
		m.metrics.GaugeActiveFasts.Inc()
		log.Debugf("resumed session %s for user %s, %d seconds remaining", active.ID, userID, remaining)
		return
	}

	// the fast ran out while nobody was watching
	endTime := active.StartTime.Add(time.Duration(active.DurationSeconds+active.TotalPausedSeconds) * time.Second)
	active.EndTime = &endTime
	active.Completed = true
	st.history = append([]Session{*active}, st.history...)
	m.persistTerminalLocked(ctx, userID, st, active)
	m.metrics.CounterFastsCompleted.Inc()
	log.Debugf("settled overdue session %s for user %s as completed", active.ID, userID)
}

// tick advances the countdown by one second. Ignored while paused or
// when no session runs. On reaching zero the session completes.
func (m *Manager) tick(ctx context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.users[userID]
	if !ok || st.active == nil || st.isPaused || st.timeRemaining <= 0 {
		return
	}

	st.timeRemaining--
	if st.timeRemaining <= 0 {
		m.completeLocked(ctx, userID, st)
		return
	}

	m.checkMilestonesLocked(ctx, userID, st)
}

// checkMilestonesLocked fires each milestone signal at most once per
// session, comparing the previous and current whole-percent progress.
func (m *Manager) checkMilestonesLocked(ctx context.Context, userID string, st *userState) {
	current := int(Progress(st.active.DurationSeconds, st.timeRemaining))
	for _, threshold := range milestoneThresholds {
		if st.lastMilestone < threshold && current >= threshold {
			m.signals.Push(ctx, userID, Signal{
				Type:    SignalMilestone,
				Message: milestoneMessages[threshold],
			})
		}
	}
	st.lastMilestone = current
}

func (m *Manager) startTimerLocked(userID string, st *userState) {
	done := make(chan struct{})
	st.timerDone = done

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				m.tick(context.Background(), userID)
			}
		}
	}()
}

func (m *Manager) stopTimerLocked(st *userState) {
	if st.timerDone != nil {
		close(st.timerDone)
		st.timerDone = nil
	}
}

func (m *Manager) persistActiveLocked(ctx context.Context, userID string, st *userState) {
	if userID == "" {
		return
	}
	session := *st.active
	if err := m.cache.StoreActive(ctx, userID, &session); err != nil {
		log.Errorf("cache active session %s: %s", session.ID, err)
	}
	m.upsertAsyncLocked(st, session)
}

func (m *Manager) persistTerminalLocked(ctx context.Context, userID string, st *userState, session *Session) {
	if userID == "" {
		return
	}
	if err := m.cache.ClearActive(ctx, userID); err != nil {
		log.Errorf("clear active session cache for user %s: %s", userID, err)
	}
	if err := m.cache.StoreHistory(ctx, userID, st.history); err != nil {
		log.Errorf("cache history for user %s: %s", userID, err)
	}
	m.upsertAsyncLocked(st, *session)
}

// upsertAsyncLocked writes the session to the remote store off the hot
// path. Writes for the same user are chained, each one waits for the
// previous to finish, so a slow active-session upsert can never land
// after the terminal one and resurrect a finished fast on reload.
// The upsert is idempotent, a lost write gets repaired by the next one.
func (m *Manager) upsertAsyncLocked(st *userState, session Session) {
	prev := st.upsertDone
	done := make(chan struct{})
	st.upsertDone = done

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(done)
		if prev != nil {
			<-prev
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.repo.Upsert(ctx, session); err != nil {
			log.Errorf("upsert session %s: %s", session.ID, err)
		}
	}()
}

func statsCacheKey(userID string) []byte {
	return []byte("stats||" + userID)
}
