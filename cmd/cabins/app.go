package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	availabilityapp "cabinrent/internal/app/handlers/availability"
	cabinsapp "cabinrent/internal/app/handlers/cabins"
	pricingapp "cabinrent/internal/app/handlers/pricing"
	reservationsapp "cabinrent/internal/app/handlers/reservations"
	"cabinrent/internal/app/middleware"
	appoutbox "cabinrent/internal/app/outbox"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/app/queries"
	authsvc "cabinrent/internal/app/services/auth"
	"cabinrent/internal/app/uow"
	domainpricing "cabinrent/internal/domain/pricing"
	domainuser "cabinrent/internal/domain/user"
	"cabinrent/internal/infra/config"
	mongodb "cabinrent/internal/infra/db/mongo"
	"cabinrent/internal/infra/db/postgres"
	"cabinrent/internal/infra/holidays"
	ginserver "cabinrent/internal/infra/http/gin"
	"cabinrent/internal/infra/obs"
	infraoutbox "cabinrent/internal/infra/outbox"
	"cabinrent/internal/infra/security"
	"cabinrent/internal/infra/storage/memory"
	redisstore "cabinrent/internal/infra/storage/redis"
	"cabinrent/internal/infra/storage/s3"
)

// backend is everything a storage driver contributes to the service.
type backend struct {
	factory     uow.UoWFactory
	users       domainuser.Repository
	outbox      appoutbox.Outbox
	relay       infraoutbox.Store
	idempotency middleware.IdempotencyStore
	checks      map[string]obs.Check
	closers     []func(context.Context) error
}

func (b *backend) close(ctx context.Context) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i](ctx)
	}
}

type application struct {
	logger   *slog.Logger
	backend  *backend
	engine   *domainpricing.Engine
	auth     *authsvc.Service
	commands commands.Bus
	queries  queries.Bus
	handlers ginserver.Handlers
	health   obs.HealthHandlers
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			be.close(context.Background())
		}
	}()

	if cfg.RedisAddr != "" {
		client := redisstore.NewClient(redisstore.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		store := redisstore.NewIdempotencyStore(client, cfg.IdempotencyTTL)
		be.idempotency = store
		be.checks["redis"] = store.Ping
		be.closers = append(be.closers, func(context.Context) error { return client.Close() })
	}

	var images policies.ImageStorage = memory.NewImageStore("")
	if cfg.S3Endpoint != "" {
		store, err := s3.NewImageStore(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			UseSSL:         cfg.S3UseSSL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("image store: %w", err)
		}
		images = store
		be.checks["s3"] = store.Ping
	}

	tokens, err := newTokenIssuer(cfg, logger)
	if err != nil {
		return nil, err
	}
	auth := &authsvc.Service{
		Users:     be.users,
		Passwords: security.BcryptHasher{},
		Tokens:    tokens,
		Logger:    logger,
	}
	authorizer, err := security.NewCasbinAuthorizer(nil)
	if err != nil {
		return nil, err
	}

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	reservationHandler := &reservationsapp.Handler{
		UoWFactory: be.factory,
		Pricing:    engine,
		Outbox:     be.outbox,
		Encoder:    encoder,
		Logger:     logger,
		MaxNights:  cfg.MaxStayNights,
	}
	commands.Register(commandBus, reservationHandler.Create())
	commands.Register(commandBus, reservationHandler.Confirm())
	commands.Register(commandBus, reservationHandler.Cancel())
	commands.Register(commandBus, reservationHandler.Reschedule())
	commands.Register(commandBus, reservationHandler.Delete())
	cabinHandler := &cabinsapp.Handler{
		UoWFactory: be.factory,
		Outbox:     be.outbox,
		Encoder:    encoder,
		Images:     images,
	}
	commands.Register(commandBus, cabinHandler.Create())
	commands.Register(commandBus, cabinHandler.Update())
	commands.Register(commandBus, cabinHandler.UploadImage())
	commands.Register(commandBus, cabinHandler.RemoveImage())

	queryBus := queries.NewInMemoryBus()
	queries.Register[availabilityapp.FindAvailableCabinsQuery, dto.CabinCollection](queryBus, &availabilityapp.FindAvailableCabinsHandler{UoWFactory: be.factory, MaxNights: cfg.MaxWindowNights})
	queries.Register[availabilityapp.GetCabinCalendarQuery, dto.CabinCalendar](queryBus, &availabilityapp.GetCabinCalendarHandler{UoWFactory: be.factory, Pricing: engine, MaxNights: cfg.MaxWindowNights})
	queries.Register[pricingapp.QuoteQuery, dto.PriceQuote](queryBus, &pricingapp.QuoteHandler{Engine: engine, Logger: logger, MaxNights: cfg.MaxWindowNights})
	queries.Register[pricingapp.DayInfoQuery, dto.DayInfo](queryBus, &pricingapp.DayInfoHandler{Engine: engine})
	queries.Register[pricingapp.ListHolidaysQuery, dto.HolidayCollection](queryBus, &pricingapp.ListHolidaysHandler{Engine: engine})
	queries.Register[cabinsapp.ListCabinsQuery, dto.CabinCollection](queryBus, &cabinsapp.ListCabinsHandler{UoWFactory: be.factory})
	queries.Register[cabinsapp.GetCabinQuery, dto.Cabin](queryBus, &cabinsapp.GetCabinHandler{UoWFactory: be.factory})
	queries.Register[reservationsapp.ListReservationsQuery, dto.ReservationCollection](queryBus, &reservationsapp.ListReservationsHandler{UoWFactory: be.factory})
	queries.Register[reservationsapp.GetReservationQuery, dto.Reservation](queryBus, &reservationsapp.GetReservationHandler{UoWFactory: be.factory})

	validator := middleware.NewStructValidator()
	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Authorization(authorizer),
		middleware.Validation(validator),
		middleware.Idempotency(be.idempotency, nil),
		middleware.Transaction(be.factory, nil),
		middleware.OutboxFlush(be.outbox),
	)
	queryPipeline := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryAuthorization(authorizer),
		middleware.QueryValidation(validator),
	)

	app := &application{
		logger:   logger,
		backend:  be,
		engine:   engine,
		auth:     auth,
		commands: commandPipeline,
		queries:  queryPipeline,
		health:   obs.HealthHandlers{Checks: be.checks, Timeout: 2 * time.Second},
	}
	app.handlers = ginserver.Handlers{
		Availability:   ginserver.AvailabilityHandler{Queries: queryPipeline, Logger: logger},
		Pricing:        ginserver.PricingHandler{Queries: queryPipeline, Logger: logger},
		Cabins:         ginserver.CabinHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		Reservations:   ginserver.ReservationHandler{Commands: commandPipeline, Queries: queryPipeline, Logger: logger},
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Resolver: auth, Logger: logger}.Handle,
	}
	ok = true
	return app, nil
}

func (a *application) Close(ctx context.Context) {
	a.backend.close(ctx)
}

func newEngine(cfg config.Config) (*domainpricing.Engine, error) {
	calendar, err := holidays.Load(cfg.HolidaysFile)
	if err != nil {
		return nil, fmt.Errorf("holidays: %w", err)
	}
	return domainpricing.NewEngine(calendar, domainpricing.Tariffs{
		Weekday: cfg.TariffWeekday,
		Weekend: cfg.TariffWeekend,
		Holiday: cfg.TariffHoliday,
	})
}

// newTokenIssuer falls back to a random per-process secret so a dev instance
// can still log in; such tokens die with the process.
func newTokenIssuer(cfg config.Config, logger *slog.Logger) (*security.JWTIssuer, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
		logger.Warn("JWT_SECRET not set, using an ephemeral signing key")
	}
	return security.NewJWTIssuer(secret, cfg.JWTTTL)
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo connect: %w", err)
		}
		if err := client.EnsureIndexes(ctx); err != nil {
			_ = client.Close(context.Background())
			return nil, fmt.Errorf("mongo indexes: %w", err)
		}
		idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL)
		if err != nil {
			_ = client.Close(context.Background())
			return nil, fmt.Errorf("mongo idempotency: %w", err)
		}
		box := mongodb.NewOutboxStore(client.DB)
		logger.Info("storage ready", "driver", cfg.StorageDriver, "database", cfg.MongoDB)
		return &backend{
			factory:     mongodb.NewFactory(client.DB),
			users:       mongodb.NewUserRepository(client.DB),
			outbox:      box,
			relay:       box,
			idempotency: idem,
			checks:      map[string]obs.Check{"mongo": client.Ping},
			closers:     []func(context.Context) error{client.Close},
		}, nil
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		box := postgres.NewOutboxStore(pool)
		logger.Info("storage ready", "driver", cfg.StorageDriver)
		return &backend{
			factory:     postgres.NewFactory(pool),
			users:       postgres.NewUserRepository(pool),
			outbox:      box,
			relay:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			checks:      map[string]obs.Check{"postgres": pool.Ping},
			closers: []func(context.Context) error{func(context.Context) error {
				pool.Close()
				return nil
			}},
		}, nil
	default:
		box := memory.NewOutbox()
		logger.Info("storage ready", "driver", config.DriverMemory)
		return &backend{
			factory: memory.Factory{
				CabinsRepo:       memory.NewCabinRepository(),
				ReservationsRepo: memory.NewReservationRepository(),
				Outbox:           box,
			},
			users:       memory.NewUserRepository(),
			outbox:      box,
			relay:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			checks:      map[string]obs.Check{},
		}, nil
	}
}
