package http

import (
	"context"

	"salescrm_backend/internal/events"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"
)

// RouterConfig narrows the app config to what the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker answers the readiness endpoint, backed by a pool ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything the router needs, wired by the composition root in
// cmd/api.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Modules are mounted in order at router build time.
	Modules []Module
}
