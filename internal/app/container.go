// Package app wires every bounded context's repositories, handlers, and
// background pipelines into a single Container, the composition root for
// both the server and CLI binaries.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	accountApp "github.com/nitro-scheduler/nitro/internal/account/application"
	accountCache "github.com/nitro-scheduler/nitro/internal/account/infrastructure/cache"
	accountPersistence "github.com/nitro-scheduler/nitro/internal/account/infrastructure/persistence"
	bookingApp "github.com/nitro-scheduler/nitro/internal/booking/application"
	bookingPersistence "github.com/nitro-scheduler/nitro/internal/booking/infrastructure/persistence"
	calendarApp "github.com/nitro-scheduler/nitro/internal/calendar/application"
	calendarPersistence "github.com/nitro-scheduler/nitro/internal/calendar/infrastructure/persistence"
	identityApp "github.com/nitro-scheduler/nitro/internal/identity/application"
	identityPersistence "github.com/nitro-scheduler/nitro/internal/identity/infrastructure/persistence"
	"github.com/nitro-scheduler/nitro/internal/provider"
	"github.com/nitro-scheduler/nitro/internal/provider/pluginhost"
	reminderApp "github.com/nitro-scheduler/nitro/internal/reminder/application"
	reminderPersistence "github.com/nitro-scheduler/nitro/internal/reminder/infrastructure/persistence"
	schedulingApp "github.com/nitro-scheduler/nitro/internal/scheduling/application"
	schedulingPersistence "github.com/nitro-scheduler/nitro/internal/scheduling/infrastructure/persistence"
	sharedApplication "github.com/nitro-scheduler/nitro/internal/shared/application"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database"
	_ "github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database/postgres" // registers the postgres driver
	_ "github.com/nitro-scheduler/nitro/internal/shared/infrastructure/database/sqlite"   // registers the sqlite driver
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/eventbus"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/migrations"
	"github.com/nitro-scheduler/nitro/internal/shared/infrastructure/outbox"
	"github.com/nitro-scheduler/nitro/internal/webhook"
	"github.com/nitro-scheduler/nitro/pkg/config"
)

// Container holds every wired dependency the HTTP adapter and background
// workers need. Fields are exported plain values, not an interface, since
// this is an application's composition root, not a library surface.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Conn database.Connection

	RedisClient *redis.Client

	UnitOfWork sharedApplication.UnitOfWork

	OutboxRepo      outbox.Repository
	OutboxProcessor *outbox.Processor
	EventPublisher  eventbus.Publisher

	// EventBus is whichever transport is active: an in-process bus when no
	// RabbitMQ URL is configured, or a RabbitMQ consumer otherwise. Both
	// satisfy Run(ctx) error, so cmd/server can launch it uniformly.
	EventBus EventBusRunner

	// inProcessBus and rabbitRegistry are non-nil for exactly one of the
	// two EventBus transports; registerConsumer dispatches to whichever is
	// active.
	inProcessBus   *eventbus.InProcessEventBus
	rabbitRegistry *eventbus.ConsumerRegistry

	PluginHosts      []*pluginhost.Host
	ProviderRegistry *provider.Registry

	// Account
	AccountRepo            *accountPersistence.AccountRepository
	AccountIntegrationRepo *accountPersistence.AccountIntegrationRepository
	APIKeyCache            *accountCache.APIKeyCache
	BootstrapHandler       *accountApp.BootstrapHandler
	PublicKeyHandler       *accountApp.PublicKeyHandler
	APIKeyResolver         *accountApp.APIKeyResolver
	BearerResolver         *accountApp.BearerResolver
	WebhookResolver        *accountApp.WebhookResolver
	AdapterResolver        *accountApp.AdapterResolver

	// Identity
	UserRepo            *identityPersistence.UserRepository
	UserIntegrationRepo *identityPersistence.UserIntegrationRepository
	UserHandler         *identityApp.UserHandler

	// Calendar
	CalendarRepo            *calendarPersistence.CalendarRepository
	CalendarEventRepo       *calendarPersistence.CalendarEventRepository
	EventGroupRepo          *calendarPersistence.EventGroupRepository
	SyncedCalendarRepo      *calendarPersistence.SyncedCalendarRepository
	SyncedCalendarEventRepo *calendarPersistence.SyncedCalendarEventRepository

	CreateCalendarHandler     *calendarApp.CreateCalendarHandler
	DeleteCalendarHandler     *calendarApp.DeleteCalendarHandler
	CreateEventHandler        *calendarApp.CreateEventHandler
	RescheduleEventHandler    *calendarApp.RescheduleEventHandler
	DeleteEventHandler        *calendarApp.DeleteEventHandler
	DeleteManyEventsHandler   *calendarApp.DeleteManyEventsHandler
	ListEventsInWindowHandler *calendarApp.ListEventsInWindowHandler
	GetEventInstancesHandler  *calendarApp.GetEventInstancesHandler
	SearchEventsHandler       *calendarApp.SearchEventsHandler

	OutboundSyncSubscriber *calendarApp.OutboundSyncSubscriber
	OutboundSyncConsumer   *calendarApp.OutboundSyncConsumer

	// Scheduling
	ScheduleRepo    *schedulingPersistence.ScheduleRepository
	ScheduleHandler *schedulingApp.ScheduleHandler
	FreeBusyHandler *schedulingApp.FreeBusyHandler

	// Booking
	ServiceRepo           *bookingPersistence.ServiceRepository
	ServiceResourceRepo   *bookingPersistence.ServiceResourceRepository
	BusyCalendarLinkRepo  *bookingPersistence.BusyCalendarLinkRepository
	ServiceEventCountRepo *bookingPersistence.ServiceEventCountRepository
	ReservationCounter    *bookingPersistence.ReservationCounter
	CreateBookingHandler  *bookingApp.CreateBookingHandler
	CancelBookingHandler  *bookingApp.CancelBookingHandler
	GetSlotsHandler       *bookingApp.GetSlotsHandler
	ServiceHandler        *bookingApp.ServiceHandler

	// Reminders
	ReminderRepo             *reminderPersistence.ReminderRepository
	EventReminderVersionRepo *reminderPersistence.EventReminderVersionRepository
	ExpansionJobRepo         *reminderPersistence.ExpansionJobRepository
	ExpansionStage           *reminderApp.ExpansionStage
	DispatcherStage          *reminderApp.DispatcherStage
	ReminderEventConsumer    *reminderApp.EventConsumer

	// Webhook delivery (the reminder.Notifier implementation)
	WebhookSender *webhook.Sender
}

// EventBusRunner is the minimal surface cmd/server needs to start the active
// event transport as a long-running background task, regardless of whether
// it is the in-process bus or the RabbitMQ consumer.
type EventBusRunner interface {
	Run(ctx context.Context) error
}

// inProcessBusRunner adapts InProcessEventBus.Start to EventBusRunner.
type inProcessBusRunner struct{ bus *eventbus.InProcessEventBus }

func (r inProcessBusRunner) Run(ctx context.Context) error { return r.bus.Start(ctx) }

// rabbitConsumerRunner adapts RabbitMQConsumer.Start to EventBusRunner.
type rabbitConsumerRunner struct{ consumer *eventbus.RabbitMQConsumer }

func (r rabbitConsumerRunner) Run(ctx context.Context) error { return r.consumer.Start(ctx) }

// NewContainer connects to the database, runs migrations (unless skipped),
// and wires every repository, handler, and background pipeline.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	c.Conn = conn
	logger.Info("connected to database", "driver", conn.Driver())

	if !cfg.SkipMigrations {
		if err := runMigrations(ctx, conn, logger); err != nil {
			conn.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, api-key cache falls back to in-process", "error", err)
		} else {
			c.RedisClient = client
			logger.Info("connected to redis")
		}
	}

	c.UnitOfWork = database.NewUnitOfWork(conn)

	if err := wireOutbox(c, cfg, logger); err != nil {
		conn.Close()
		return nil, err
	}

	wireProviders(c, cfg, logger)
	wireRepositories(c, conn)
	wireAccount(c)
	wireIdentity(c)
	wireCalendar(c, logger)
	wireScheduling(c)
	wireBooking(c)
	wireReminders(c, logger)

	return c, nil
}

func runMigrations(ctx context.Context, conn database.Connection, logger *slog.Logger) error {
	switch conn.Driver() {
	case database.DriverSQLite:
		sqliteConn, ok := conn.(interface{ DB() *sql.DB })
		if !ok {
			return fmt.Errorf("sqlite connection missing DB() accessor")
		}
		logger.Info("running sqlite migrations")
		return migrations.RunSQLiteMigrations(ctx, sqliteConn.DB())
	case database.DriverPostgres:
		pgConn, ok := conn.(interface{ Pool() *pgxpool.Pool })
		if !ok {
			return fmt.Errorf("postgres connection missing Pool() accessor")
		}
		logger.Info("running postgres migrations")
		return migrations.RunPostgresMigrations(ctx, pgConn.Pool())
	default:
		return fmt.Errorf("no migration runner for driver %q", conn.Driver())
	}
}

func wireOutbox(c *Container, cfg *config.Config, logger *slog.Logger) error {
	switch c.Conn.Driver() {
	case database.DriverSQLite:
		c.OutboxRepo = outbox.NewSQLiteRepository(c.Conn)
	case database.DriverPostgres:
		c.OutboxRepo = outbox.NewPostgresRepository(c.Conn)
	default:
		return fmt.Errorf("no outbox repository for driver %q", c.Conn.Driver())
	}

	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			return fmt.Errorf("connecting publisher to rabbitmq: %w", err)
		}
		c.EventPublisher = publisher

		registry := eventbus.NewConsumerRegistry(logger)
		consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
			URL: cfg.RabbitMQURL,
		}, registry)
		if err != nil {
			return fmt.Errorf("connecting consumer to rabbitmq: %w", err)
		}
		c.EventBus = rabbitConsumerRunner{consumer: consumer}
		c.rabbitRegistry = registry
	} else {
		bus := eventbus.NewInProcessEventBus(logger)
		c.EventPublisher = eventbus.NewInProcessPublisher(bus, logger)
		c.EventBus = inProcessBusRunner{bus: bus}
		c.inProcessBus = bus
	}

	defaults := outbox.DefaultProcessorConfig()
	processorConfig := outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: defaults.RetryBackoffBase,
		RetryBackoffMax:  defaults.RetryBackoffMax,
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorConfig, logger)
	return nil
}

func wireProviders(c *Container, cfg *config.Config, logger *slog.Logger) {
	c.ProviderRegistry = provider.NewRegistry()
	pluginLogger := hclog.New(&hclog.LoggerOptions{Name: "provider-plugin", Level: hclog.Info})
	for _, path := range cfg.ProviderPluginPaths {
		adapter, host, err := pluginhost.Launch(path, pluginLogger)
		if err != nil {
			logger.Warn("failed to launch provider plugin", "path", path, "error", err)
			continue
		}
		name := pluginProviderName(path)
		c.ProviderRegistry.Register(name, adapter)
		c.PluginHosts = append(c.PluginHosts, host)
		logger.Info("registered provider plugin", "provider", name, "path", path)
	}
}

func wireRepositories(c *Container, conn database.Connection) {
	c.AccountRepo = accountPersistence.NewAccountRepository(conn)
	c.AccountIntegrationRepo = accountPersistence.NewAccountIntegrationRepository(conn)

	c.UserRepo = identityPersistence.NewUserRepository(conn)
	c.UserIntegrationRepo = identityPersistence.NewUserIntegrationRepository(conn)

	c.CalendarRepo = calendarPersistence.NewCalendarRepository(conn)
	c.CalendarEventRepo = calendarPersistence.NewCalendarEventRepository(conn)
	c.EventGroupRepo = calendarPersistence.NewEventGroupRepository(conn)
	c.SyncedCalendarRepo = calendarPersistence.NewSyncedCalendarRepository(conn)
	c.SyncedCalendarEventRepo = calendarPersistence.NewSyncedCalendarEventRepository(conn)

	c.ScheduleRepo = schedulingPersistence.NewScheduleRepository(conn)

	c.ServiceRepo = bookingPersistence.NewServiceRepository(conn)
	c.ServiceResourceRepo = bookingPersistence.NewServiceResourceRepository(conn)
	c.BusyCalendarLinkRepo = bookingPersistence.NewBusyCalendarLinkRepository(conn)
	c.ServiceEventCountRepo = bookingPersistence.NewServiceEventCountRepository(conn)
	c.ReservationCounter = bookingPersistence.NewReservationCounter(conn)

	c.ReminderRepo = reminderPersistence.NewReminderRepository(conn)
	c.EventReminderVersionRepo = reminderPersistence.NewEventReminderVersionRepository(conn)
	c.ExpansionJobRepo = reminderPersistence.NewExpansionJobRepository(conn)
}

func wireAccount(c *Container) {
	c.APIKeyCache = accountCache.NewAPIKeyCache(c.RedisClient)
	c.BootstrapHandler = accountApp.NewBootstrapHandler(c.AccountRepo, c.Config.CreateAccountSecretCode)
	c.PublicKeyHandler = accountApp.NewPublicKeyHandler(c.AccountRepo)
	c.APIKeyResolver = accountApp.NewAPIKeyResolver(c.AccountRepo, c.APIKeyCache)
	c.BearerResolver = accountApp.NewBearerResolver(c.AccountRepo)
	c.WebhookResolver = accountApp.NewWebhookResolver(c.AccountRepo)
	c.AdapterResolver = accountApp.NewAdapterResolver(c.UserRepo, c.UserIntegrationRepo, c.AccountIntegrationRepo, c.ProviderRegistry)
}

func wireIdentity(c *Container) {
	c.UserHandler = identityApp.NewUserHandler(c.UserRepo)
}

func wireCalendar(c *Container, logger *slog.Logger) {
	c.CreateCalendarHandler = calendarApp.NewCreateCalendarHandler(c.CalendarRepo, c.UnitOfWork)
	c.DeleteCalendarHandler = calendarApp.NewDeleteCalendarHandler(c.CalendarRepo, c.UnitOfWork)
	c.CreateEventHandler = calendarApp.NewCreateEventHandler(c.CalendarEventRepo, c.CalendarRepo, c.OutboxRepo, c.UnitOfWork)
	c.RescheduleEventHandler = calendarApp.NewRescheduleEventHandler(c.CalendarEventRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteEventHandler = calendarApp.NewDeleteEventHandler(c.CalendarEventRepo, c.OutboxRepo, c.UnitOfWork)
	c.DeleteManyEventsHandler = calendarApp.NewDeleteManyEventsHandler(c.CalendarEventRepo, c.UnitOfWork)

	c.ListEventsInWindowHandler = calendarApp.NewListEventsInWindowHandler(c.CalendarEventRepo, c.CalendarRepo)
	c.GetEventInstancesHandler = calendarApp.NewGetEventInstancesHandler(c.CalendarEventRepo, c.CalendarRepo)
	c.SearchEventsHandler = calendarApp.NewSearchEventsHandler(c.CalendarEventRepo, c.Config.MaxEventsReturnedBySearch)

	c.OutboundSyncSubscriber = calendarApp.NewOutboundSyncSubscriber(c.SyncedCalendarRepo, c.SyncedCalendarEventRepo, c.AdapterResolver, logger)
	c.OutboundSyncConsumer = calendarApp.NewOutboundSyncConsumer(c.OutboundSyncSubscriber, c.CalendarEventRepo)

	c.registerConsumer(c.OutboundSyncConsumer)
}

func wireScheduling(c *Container) {
	c.ScheduleHandler = schedulingApp.NewScheduleHandler(c.ScheduleRepo)
	c.FreeBusyHandler = schedulingApp.NewFreeBusyHandler(c.CalendarEventRepo, c.CalendarRepo)
}

func wireBooking(c *Container) {
	c.CreateBookingHandler = bookingApp.NewCreateBookingHandler(c.ServiceRepo, c.ServiceResourceRepo, c.ServiceEventCountRepo, c.ReservationCounter, c.CalendarEventRepo, c.OutboxRepo, c.UnitOfWork)
	c.CancelBookingHandler = bookingApp.NewCancelBookingHandler(c.ServiceRepo, c.ReservationCounter, c.CalendarEventRepo, c.UnitOfWork)
	c.GetSlotsHandler = bookingApp.NewGetSlotsHandler(c.ServiceRepo, c.ServiceResourceRepo, c.BusyCalendarLinkRepo, c.ScheduleRepo, c.CalendarEventRepo, c.CalendarRepo, c.SyncedCalendarEventRepo)
	c.ServiceHandler = bookingApp.NewServiceHandler(c.ServiceRepo, c.ServiceResourceRepo, c.BusyCalendarLinkRepo)
}

func wireReminders(c *Container, logger *slog.Logger) {
	c.WebhookSender = webhook.NewSender(c.WebhookResolver, logger)
	c.ExpansionStage = reminderApp.NewExpansionStage(c.ExpansionJobRepo, c.EventReminderVersionRepo, c.ReminderRepo, c.CalendarEventRepo, c.CalendarRepo)
	c.DispatcherStage = reminderApp.NewDispatcherStage(c.ReminderRepo, c.EventReminderVersionRepo, c.CalendarEventRepo, c.WebhookSender)
	c.ReminderEventConsumer = reminderApp.NewEventConsumer(c.ExpansionJobRepo, c.EventReminderVersionRepo, c.ReminderRepo, c.CalendarEventRepo)

	c.registerConsumer(c.ReminderEventConsumer)
}

// registerConsumer registers a consumer with whichever event transport is
// active: the in-process bus directly, or the RabbitMQ consumer's registry.
func (c *Container) registerConsumer(consumer eventbus.EventConsumer) {
	if c.inProcessBus != nil {
		c.inProcessBus.RegisterConsumer(consumer)
		return
	}
	if c.rabbitRegistry != nil {
		c.rabbitRegistry.Register(consumer)
	}
}

func pluginProviderName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Close releases every resource the container opened, in reverse-dependency
// order: background processors first, then transports, then the database.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	for _, host := range c.PluginHosts {
		host.Close()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing redis connection", "error", err)
		}
	}
	if c.Conn != nil {
		if err := c.Conn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		}
	}
}
