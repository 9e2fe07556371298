package services

import (
	"context"
	"sort"
	"time"

	"survivor-pool-go/logging"
	"survivor-pool-go/models"
)

// Sweeper is the league-wide batch orchestrator. On a fixed interval it
// refreshes upstream state for the weeks currently in play, auto-picks for
// participants once a week enters its lock window, and settles weeks whose
// games have newly gone final. Every sub-operation is idempotent, so the
// sweeper never depends on being triggered exactly once; a run cut short by
// its deadline simply leaves the rest for the next tick.
type Sweeper struct {
	sync       *SyncService
	settlement *SettlementService
	autopick   *AutoPickService
	games      GameStore
	picks      PickStore
	season     int
	interval   time.Duration
	deadline   time.Duration
	lockWindow time.Duration
	lock       models.LockPolicy
	ticker     *time.Ticker
	stopChan   chan struct{}
	running    bool
	logger     *logging.Logger
}

// NewSweeper creates a new sweeper
func NewSweeper(sync *SyncService, settlement *SettlementService, autopick *AutoPickService,
	games GameStore, picks PickStore, season int, interval, deadline, lockWindow time.Duration) *Sweeper {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	if deadline == 0 {
		deadline = interval
	}
	if lockWindow == 0 {
		lockWindow = 3 * time.Hour
	}
	return &Sweeper{
		sync:       sync,
		settlement: settlement,
		autopick:   autopick,
		games:      games,
		picks:      picks,
		season:     season,
		interval:   interval,
		deadline:   deadline,
		lockWindow: lockWindow,
		stopChan:   make(chan struct{}),
		logger:     logging.WithPrefix("Sweeper"),
	}
}

// Start begins the background sweep loop
func (s *Sweeper) Start() {
	if s.running {
		s.logger.Warn("Already running")
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.interval)
	s.logger.Infof("Starting league sweep every %v (deadline %v)", s.interval, s.deadline)

	go s.RunSweep()
	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.RunSweep()
			case <-s.stopChan:
				s.logger.Info("Stopping sweep loop")
				return
			}
		}
	}()
}

// Stop halts the background sweep loop
func (s *Sweeper) Stop() {
	if !s.running {
		return
	}
	s.running = false
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopChan)
}

// IsRunning returns whether the sweeper loop is active
func (s *Sweeper) IsRunning() bool {
	return s.running
}

// RunSweep executes one bounded sweep pass
func (s *Sweeper) RunSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.deadline)
	defer cancel()

	started := time.Now()
	now := time.Now()

	games, err := s.games.FindBySeason(ctx, s.season)
	if err != nil {
		s.logger.Errorf("Sweep aborted, cannot load season games: %v", err)
		return
	}

	byWeek := make(map[int][]*models.Game)
	for _, game := range games {
		byWeek[game.Week] = append(byWeek[game.Week], game)
	}
	weeks := make([]int, 0, len(byWeek))
	for week := range byWeek {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	for _, week := range weeks {
		if ctx.Err() != nil {
			s.logger.Warnf("Sweep deadline reached at week %d; remaining work deferred to next tick", week)
			return
		}
		s.sweepWeek(ctx, week, byWeek[week], now)
	}

	s.logger.Infof("Sweep completed in %v across %d weeks", time.Since(started), len(weeks))
}

// sweepWeek syncs, auto-picks and settles a single week as its games demand
func (s *Sweeper) sweepWeek(ctx context.Context, week int, games []*models.Game, now time.Time) {
	if s.weekActive(games, now) {
		if _, err := s.sync.SyncWeek(ctx, s.season, week, false); err != nil {
			s.logger.Errorf("Week %d sync failed: %v", week, err)
		}
	}

	if s.inLockWindow(games, now) {
		result, err := s.autopick.SelectForLeague(ctx, s.season, week, now)
		if err != nil {
			s.logger.Errorf("Week %d league auto-pick failed: %v", week, err)
		} else if result.Picked > 0 {
			s.logger.Infof("Week %d: auto-picked for %d participants", week, result.Picked)
		}
	}

	if s.needsSettlement(ctx, week, games) {
		result, err := s.settlement.SettleWeek(ctx, s.season, week)
		if err != nil {
			s.logger.Errorf("Week %d settlement failed: %v", week, err)
		} else if result.Updated > 0 || len(result.Failures) > 0 {
			s.logger.Infof("Week %d settled: %d updated, %d failures", week, result.Updated, len(result.Failures))
		}
	}
}

// weekActive reports whether a week has games in progress or starting soon
// enough to be worth an upstream refresh
func (s *Sweeper) weekActive(games []*models.Game, now time.Time) bool {
	for _, game := range games {
		if game.IsInProgress() {
			return true
		}
		if game.State == models.GameStateScheduled {
			until := game.Start.Sub(now)
			if until > -6*time.Hour && until < 24*time.Hour {
				return true
			}
		}
	}
	return false
}

// inLockWindow reports whether the week's earliest open game starts within
// the lock window
func (s *Sweeper) inLockWindow(games []*models.Game, now time.Time) bool {
	for _, game := range games {
		if game.State != models.GameStateScheduled || !s.lock.IsOpen(game, now) {
			continue
		}
		if game.Start.Sub(now) <= s.lockWindow {
			return true
		}
	}
	return false
}

// needsSettlement reports whether the week has a final game with at least
// one pick still awaiting evaluation
func (s *Sweeper) needsSettlement(ctx context.Context, week int, games []*models.Game) bool {
	finals := make(map[int]bool)
	for _, game := range games {
		if game.IsFinal() {
			finals[game.ID] = true
		}
	}
	if len(finals) == 0 {
		return false
	}

	picks, err := s.picks.FindByWeek(ctx, s.season, week)
	if err != nil {
		s.logger.Errorf("Week %d: cannot load picks: %v", week, err)
		return false
	}
	for _, pick := range picks {
		if !pick.IsEvaluated() && finals[pick.GameID] {
			return true
		}
	}
	return false
}
