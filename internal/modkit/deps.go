package modkit

import (
	"reviewnexus/internal/modkit/repokit"
	"reviewnexus/internal/platform/config"
	"reviewnexus/internal/platform/logger"
)

// Deps holds core dependencies passed to modules.
// This is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}
