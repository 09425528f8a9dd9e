package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Bodega-api/internal/application/approval"
	"github.com/jhoicas/Bodega-api/internal/application/assembly"
	"github.com/jhoicas/Bodega-api/internal/application/auth"
	"github.com/jhoicas/Bodega-api/internal/application/inventory"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/purchasing"
	"github.com/jhoicas/Bodega-api/internal/application/reporting"
	"github.com/jhoicas/Bodega-api/internal/application/sales"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/application/usecase"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/cache"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/events"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Bodega-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Bodega-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Bodega-api/internal/interfaces/http"
	"github.com/jhoicas/Bodega-api/pkg/config"
	"github.com/jhoicas/Bodega-api/pkg/logger"
)

// storage lo que ofrecen ambos backends.
type storage struct {
	store   ports.Store
	reports repository.ReportRepository
	audit   repository.AuditLogRepository
	close   func()
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			migrateFirst, _ := cmd.Flags().GetBool("migrate")
			return serve(cmd.Context(), cfg, migrateFirst)
		},
	}
	cmd.Flags().Bool("migrate", false, "Aplica migraciones pendientes antes de arrancar (solo postgres)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, migrateFirst bool) error {
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET es obligatorio")
	}

	st, err := openStorage(ctx, cfg, migrateFirst, log)
	if err != nil {
		return err
	}
	defer st.close()

	var reportCache ports.ReportCache
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("conexión a Redis: %w", err)
		}
		defer client.Close()
		reportCache = cache.NewRedisCache(client, cfg.Redis.TTL)
	}

	var publisher ports.EventPublisher = ports.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.Kafka, log)
		defer func() {
			if err := kafka.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar productor Kafka")
			}
		}()
		publisher = kafka
	}

	policy := shared.ApprovalPolicy{
		AdjustmentQuantity: cfg.Approval.AdjustmentQuantity,
		AdjustmentValue:    cfg.Approval.AdjustmentValue,
		TransferQuantity:   cfg.Approval.TransferQuantity,
		PurchaseOrderTotal: cfg.Approval.PurchaseOrderTotal,
	}
	ledger := inventory.NewLedger()

	app := httpRouter.NewApp(httpRouter.AppConfig{Name: cfg.App.Name, Log: log})
	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC: auth.NewAuthUseCase(st.store, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		CompanyUC:     usecase.NewCompanyUseCase(st.store),
		UserUC:        usecase.NewUserUseCase(st.store),
		WarehouseUC:   usecase.NewWarehouseUseCase(st.store),
		ProductUC:     usecase.NewProductUseCase(st.store),
		InventoryUC:   inventory.NewUseCase(st.store, ledger, policy, publisher, log),
		Replenishment: inventory.NewReplenishmentUseCase(st.reports),
		SalesUC:       sales.NewUseCase(st.store, ledger, infrapdf.NewPackingSlipGenerator(), publisher, log),
		PurchasingUC:  purchasing.NewUseCase(st.store, ledger, policy, publisher, log),
		AssemblyUC:    assembly.NewUseCase(st.store, ledger, publisher, log),
		ApprovalUC:    approval.NewUseCase(st.store, ledger, publisher, log),
		ReportingUC:   reporting.NewUseCase(st.reports, st.audit),
		DashboardUC:   reporting.NewDashboardUseCase(st.reports, reportCache, cfg.Redis.TTL, log),
		JWTSecret:     cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}

func openStorage(ctx context.Context, cfg *config.Config, migrateFirst bool, log *logger.Logger) (*storage, error) {
	if cfg.App.Storage == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &storage{
			store:   store,
			reports: store.Reports(),
			audit:   store.Repos().AuditLogs,
			close:   func() {},
		}, nil
	}

	if migrateFirst {
		if err := postgres.Migrate(cfg.DB.ConnectionString(), "up", 0, log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	store := postgres.NewStore(pool)
	return &storage{
		store:   store,
		reports: store.Reports(),
		audit:   store.Repos().AuditLogs,
		close:   pool.Close,
	}, nil
}
