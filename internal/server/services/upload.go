package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/common"
	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"github.com/dmitrijs2005/orgdrive/internal/server/auth"
	"github.com/dmitrijs2005/orgdrive/internal/server/metrics"
	"github.com/dmitrijs2005/orgdrive/internal/server/storage"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user limiter is kept. A bucket
// refills completely within a minute, so dropping it later loses nothing.
const limiterIdleTTL = 3 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UploadService hands out presigned upload tickets, throttled per user.
type UploadService struct {
	store     storage.ObjectStore
	perMinute int
	limiters  map[string]*userLimiter
	limiterMu sync.Mutex
	lastSweep time.Time
	now       func() time.Time
	logger    logging.Logger
	metrics   *metrics.Metrics
}

func NewUploadService(store storage.ObjectStore, uploadsPerMinute int, logger logging.Logger, m *metrics.Metrics) *UploadService {
	return &UploadService{
		store:     store,
		perMinute: uploadsPerMinute,
		limiters:  make(map[string]*userLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
		logger:    logger.With("module", "uploads"),
		metrics:   m,
	}
}

// allow takes one upload from key's budget. Limiters idle for longer than
// limiterIdleTTL are dropped on the way.
func (s *UploadService) allow(key string) bool {
	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) > limiterIdleTTL {
		for k, l := range s.limiters {
			if now.Sub(l.lastSeen) > limiterIdleTTL {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	l, ok := s.limiters[key]
	if !ok {
		l = &userLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.perMinute)), s.perMinute)}
		s.limiters[key] = l
	}
	l.lastSeen = now

	return l.limiter.AllowN(now, 1)
}

func (s *UploadService) GenerateUploadURL(ctx context.Context, id auth.Identity) (*storage.UploadTicket, error) {
	if !id.Authenticated {
		return nil, common.ErrAuthenticationRequired
	}

	if !s.allow(id.TokenIdentifier) {
		s.metrics.RateLimited("upload")
		return nil, common.ErrRateLimited
	}

	ticket, err := s.store.GenerateUploadURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("error generating upload url: %w", err)
	}

	s.metrics.UploadURLIssued()
	s.logger.Debug(ctx, "upload url issued", "object_id", ticket.ObjectID)

	return ticket, nil
}
