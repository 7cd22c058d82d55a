package handler

import (
	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/scripting"
	"github.com/wildgrove/server/internal/world"
)

// Deps carries the shared dependencies every handler needs. One instance
// is built at boot and passed by pointer.
type Deps struct {
	World   *world.State
	Bus     *event.Bus
	Scripts *scripting.Engine // nil disables scripted reactions
	Cfg     *config.Config
	Log     *zap.Logger
}
