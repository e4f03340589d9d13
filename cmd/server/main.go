package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tiendaweb/internal/config"
	"tiendaweb/internal/handler"
	"tiendaweb/internal/infra"
	"tiendaweb/internal/repository"
	"tiendaweb/internal/router"
	"tiendaweb/internal/service"
	"tiendaweb/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error cargando configuración")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("error conectando a la base de datos")
	}
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("error conectando a redis")
	}

	// Repositories
	usuarioRepo := repository.NewUsuarioRepository(db)
	categoriaRepo := repository.NewCategoriaRepository(db)
	productoRepo := repository.NewProductoRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	movimientoRepo := repository.NewMovimientoStockRepository(db)

	// Async invoice pipeline
	pdfGen := infra.NewFacturaPDF(cfg.PDFStoragePath)
	mailer := infra.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	breaker := infra.NewCircuitBreaker(5, 30*time.Second)

	pool := worker.NewPool(rdb, cfg.WorkerPoolSize)
	facturaWorker := worker.NewFacturaWorker(pool, ventaRepo, clienteRepo, pdfGen)
	emailWorker := worker.NewEmailWorker(mailer, breaker)
	pool.Register(worker.QueueFactura, facturaWorker.Handle)
	pool.Register(worker.QueueEmail, emailWorker.Handle)

	// Services
	authService := service.NewAuthService(usuarioRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	categoriaService := service.NewCategoriaService(categoriaRepo)
	productoService := service.NewProductoService(productoRepo, categoriaRepo, rdb)
	clienteService := service.NewClienteService(clienteRepo)
	inventarioService := service.NewInventarioService(productoRepo, movimientoRepo)
	ventaService := service.NewVentaService(ventaRepo, productoRepo, clienteRepo,
		inventarioService, facturaWorker, cfg.PrefijoFactura, cfg.PermitirStockNegativo)

	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(db, rdb),
		Auth:       handler.NewAuthHandler(authService),
		Usuarios:   handler.NewUsuarioHandler(authService),
		Categorias: handler.NewCategoriaHandler(categoriaService),
		Productos:  handler.NewProductoHandler(productoService),
		Clientes:   handler.NewClienteHandler(clienteService),
		Ventas:     handler.NewVentaHandler(ventaService),
		Inventario: handler.NewInventarioHandler(inventarioService),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	pool.Start(ctx)

	engine := router.New(cfg.Env, handlers, authService, rdb)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("servidor iniciado")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("error del servidor HTTP")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado forzado")
	}
	log.Info().Msg("servidor detenido")
}
