package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pennywise-app/gateguard/pkg/infra/prometheus"
)

// Sweeper reclaims stale window records on a fixed interval, independent of
// request traffic. Keys that stop sending requests are reclaimed anyway,
// which a request-triggered sweep cannot guarantee. Start it once at server
// start and Stop it at shutdown.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   *logrus.Logger
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

func NewSweeper(store Store, interval time.Duration, logger *logrus.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.started = true
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.sweepOnce()
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight sweep to finish. Calling
// it before Start, or more than once, is harmless.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	if !s.started {
		return
	}
	<-s.done
}

func (s *Sweeper) sweepOnce() {
	removed, err := s.store.Sweep(context.Background())
	if err != nil {
		s.logger.WithError(err).Warn("rate limit sweep failed")
		return
	}
	if removed > 0 {
		prometheus.SweepRemovedTotal.Add(float64(removed))
		s.logger.WithField("removed", removed).Debug("swept stale rate limit records")
	}
	if sized, ok := s.store.(interface{ Len() int }); ok {
		prometheus.RateLimitRecords.Set(float64(sized.Len()))
	}
}
