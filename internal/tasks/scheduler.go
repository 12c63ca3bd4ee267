package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/MaxConsolas/marzban-shop/internal/config"
	"github.com/MaxConsolas/marzban-shop/internal/constants"
)

// clockTimePattern accepts HH:MM between 00:00 and 23:59
var clockTimePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

const jobTimeout = 10 * time.Minute

// Scheduler owns the time-triggered jobs: proactive panel token refresh
// and the two notification scans. Each job carries an in-flight flag so
// successive firings of the same job never overlap.
type Scheduler struct {
	cron     *cron.Cron
	panel    PanelClient
	notifier *Notifier
	cfg      config.NotifyConfig
	logger   *logrus.Logger

	tokenBusy   atomic.Bool
	renewBusy   atomic.Bool
	expiredBusy atomic.Bool
}

// NewScheduler creates the scheduler; jobs are registered on Start
func NewScheduler(panel PanelClient, notifier *Notifier, cfg config.NotifyConfig, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		panel:    panel,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// ParseClockTime validates an HH:MM value and returns its components
func ParseClockTime(value string) (hour, minute int, ok bool) {
	match := clockTimePattern.FindStringSubmatch(value)
	if match == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(match[1])
	minute, _ = strconv.Atoi(match[2])
	return hour, minute, true
}

// Start registers the jobs and begins the cron loop. An invalid clock
// time disables that job with a logged warning rather than failing.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(constants.TokenRefreshSpec, s.guarded("token refresh", &s.tokenBusy, s.refreshToken)); err != nil {
		s.logger.Errorf("Failed to schedule token refresh: %v", err)
	}

	s.addDaily("renewal reminder", s.cfg.RenewTime, &s.renewBusy, s.notifier.NotifyRenewals)
	s.addDaily("expiry notice", s.cfg.ExpiredTime, &s.expiredBusy, s.notifier.NotifyExpired)

	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop halts the cron loop and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// addDaily registers a job at the configured HH:MM clock time
func (s *Scheduler) addDaily(name, clockTime string, busy *atomic.Bool, job func(context.Context)) {
	if clockTime == "" {
		return
	}
	hour, minute, ok := ParseClockTime(clockTime)
	if !ok {
		s.logger.Warnf("Invalid %s time %q, job disabled", name, clockTime)
		return
	}
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	if _, err := s.cron.AddFunc(spec, s.guarded(name, busy, job)); err != nil {
		s.logger.Errorf("Failed to schedule %s: %v", name, err)
		return
	}
	s.logger.Infof("Scheduled %s daily at %02d:%02d", name, hour, minute)
}

// guarded wraps a job with its in-flight flag and a bounded timeout
func (s *Scheduler) guarded(name string, busy *atomic.Bool, job func(context.Context)) func() {
	return func() {
		if !busy.CompareAndSwap(false, true) {
			s.logger.Warnf("Skipping %s: previous run still in flight", name)
			return
		}
		defer busy.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		job(ctx)
	}
}

// refreshToken re-authenticates the panel client ahead of token expiry
func (s *Scheduler) refreshToken(ctx context.Context) {
	if err := s.panel.Authenticate(ctx); err != nil {
		s.logger.Errorf("Scheduled token refresh failed: %v", err)
		return
	}
	s.logger.Debug("Panel token refreshed by scheduler")
}
