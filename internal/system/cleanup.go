package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/world"
)

// CleanupSystem retires every animal queued for removal during the tick.
// Running last keeps ids stable for all earlier phases.
type CleanupSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewCleanupSystem(ws *world.State, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: ws, log: log}
}

func (s *CleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *CleanupSystem) Update(time.Duration) {
	if n := s.world.FlushRemovals(); n > 0 && s.log != nil {
		s.log.Debug("retired animals", zap.Int("count", n))
	}
}
