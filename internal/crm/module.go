// Package crm provides the client lifecycle and assignment bounded context.
// This file defines the module that encapsulates all CRM setup and route
// registration.
package crm

import (
	"context"

	"salescrm_backend/internal/crm/domain"
	"salescrm_backend/internal/crm/handler"
	"salescrm_backend/internal/crm/repository"
	"salescrm_backend/internal/crm/service"
	"salescrm_backend/internal/events"
	apphttp "salescrm_backend/internal/http"
	"salescrm_backend/internal/store"
	"salescrm_backend/platform/config"
	"salescrm_backend/platform/logger"
	"salescrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the CRM bounded context module implementing http.Module. It owns
// the entity caches and their write-behind queues; everything else reads and
// mutates through the service.
type Module struct {
	handler *handler.Handler
	service *service.Service
	log     *logger.Logger

	clients    *store.Store[domain.Client]
	reps       *store.Store[domain.Representative]
	activities *store.Store[domain.Activity]
	targets    *store.Store[domain.MonthlyTarget]

	clientsRepo    *repository.Clients
	repsRepo       *repository.Reps
	activitiesRepo *repository.Activities
	targetsRepo    *repository.Targets

	clientsQueue    *store.WriteBehind[domain.Client]
	repsQueue       *store.WriteBehind[domain.Representative]
	activitiesQueue *store.WriteBehind[domain.Activity]
	targetsQueue    *store.WriteBehind[domain.MonthlyTarget]
}

// NewModule creates and initializes the CRM module with all its dependencies.
// The brand catalog is read once at startup; brand prices are snapshotted
// into deals at transition time, so a stale catalog never rewrites history.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.StoreConfig, reminders service.ReminderScheduler, log *logger.Logger) (*Module, error) {
	clientsRepo := repository.NewClients(pool)
	repsRepo := repository.NewReps(pool)
	activitiesRepo := repository.NewActivities(pool)
	targetsRepo := repository.NewTargets(pool)

	opts := store.Options{
		MaxAttempts:   cfg.GetSyncMaxAttempts(),
		BaseBackoff:   cfg.GetSyncBaseBackoff(),
		RatePerSecond: cfg.GetSyncRatePerSecond(),
	}

	clientsQueue := store.NewWriteBehind[domain.Client]("client", clientsRepo, eventBus, log, opts)
	repsQueue := store.NewWriteBehind[domain.Representative]("representative", repsRepo, eventBus, log, opts)
	activitiesQueue := store.NewWriteBehind[domain.Activity]("activity", activitiesRepo, eventBus, log, opts)
	targetsQueue := store.NewWriteBehind[domain.MonthlyTarget]("target", targetsRepo, eventBus, log, opts)

	m := &Module{
		log:            log,
		clientsRepo:    clientsRepo,
		repsRepo:       repsRepo,
		activitiesRepo: activitiesRepo,
		targetsRepo:    targetsRepo,

		clientsQueue:    clientsQueue,
		repsQueue:       repsQueue,
		activitiesQueue: activitiesQueue,
		targetsQueue:    targetsQueue,

		clients: store.New[domain.Client](func(a, b domain.Client) bool {
			return a.CreatedAt.After(b.CreatedAt)
		}, clientsQueue),
		reps: store.New[domain.Representative](func(a, b domain.Representative) bool {
			return a.Name < b.Name
		}, repsQueue),
		activities: store.New[domain.Activity](func(a, b domain.Activity) bool {
			return a.Timestamp.After(b.Timestamp)
		}, activitiesQueue),
		targets: store.New[domain.MonthlyTarget](func(a, b domain.MonthlyTarget) bool {
			if a.Year != b.Year {
				return a.Year > b.Year
			}
			return a.Month > b.Month
		}, targetsQueue),
	}

	brands, err := repository.NewCatalog(pool).ListBrands(ctx)
	if err != nil {
		return nil, err
	}

	m.service = service.New(service.Stores{
		Clients:    m.clients,
		Reps:       m.reps,
		Activities: m.activities,
		Targets:    m.targets,
	}, brands, eventBus, reminders, log)
	m.handler = handler.New(m.service, val)

	return m, nil
}

// Warmup loads all entity caches from the authoritative store. Must complete
// before the module serves requests.
func (m *Module) Warmup(ctx context.Context) error {
	clients, err := m.clientsRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	reps, err := m.repsRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	activities, err := m.activitiesRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	targets, err := m.targetsRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	m.clients.Load(clients)
	m.reps.Load(reps)
	m.activities.Load(activities)
	m.targets.Load(targets)

	m.log.Info("entity caches warmed",
		"clients", m.clients.Len(),
		"reps", m.reps.Len(),
		"activities", m.activities.Len(),
		"targets", m.targets.Len(),
	)
	return nil
}

// Start launches the write-behind drain goroutines.
func (m *Module) Start(ctx context.Context) {
	m.clientsQueue.Start(ctx)
	m.repsQueue.Start(ctx)
	m.activitiesQueue.Start(ctx)
	m.targetsQueue.Start(ctx)
}

// Close flushes and stops the write-behind queues.
func (m *Module) Close() {
	m.clientsQueue.Close()
	m.repsQueue.Close()
	m.activitiesQueue.Close()
	m.targetsQueue.Close()
}

// Reconcile replaces each cache with the authoritative remote state and logs
// divergence. Pending queued writes flush first in normal operation because
// the caller runs this between drain cycles; ops still in flight simply
// reapply on the next interval.
func (m *Module) Reconcile(ctx context.Context) {
	reports := make([]store.ReconcileReport, 0, 4)

	if r, err := store.Reconcile[domain.Client](ctx, "client", m.clients, m.clientsRepo); err != nil {
		m.log.Error("reconciliation failed", "entityType", "client", "error", err)
	} else {
		reports = append(reports, r)
	}
	if r, err := store.Reconcile[domain.Representative](ctx, "representative", m.reps, m.repsRepo); err != nil {
		m.log.Error("reconciliation failed", "entityType", "representative", "error", err)
	} else {
		reports = append(reports, r)
	}
	if r, err := store.Reconcile[domain.Activity](ctx, "activity", m.activities, m.activitiesRepo); err != nil {
		m.log.Error("reconciliation failed", "entityType", "activity", "error", err)
	} else {
		reports = append(reports, r)
	}
	if r, err := store.Reconcile[domain.MonthlyTarget](ctx, "target", m.targets, m.targetsRepo); err != nil {
		m.log.Error("reconciliation failed", "entityType", "target", "error", err)
	} else {
		reports = append(reports, r)
	}

	for _, r := range reports {
		if r.Diverged > 0 {
			m.log.Warn("cache diverged from remote store",
				"entityType", r.EntityType, "diverged", r.Diverged, "remote", r.Remote, "cached", r.Cached)
		}
	}
}

// Service returns the CRM application service for cross-module use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "crm"
}

// RegisterRoutes mounts CRM routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterClientRoutes(ctx.Protected.Group("/clients"))
	m.handler.RegisterTeamRoutes(ctx.Protected)
	m.handler.RegisterDashboardRoutes(ctx.Protected)
	m.handler.RegisterAssignmentRoutes(ctx.Admin.Group("/assignments"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
