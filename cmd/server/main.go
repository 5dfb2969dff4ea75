package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignatzorin/proposal-backend/internal/app"
	"github.com/ignatzorin/proposal-backend/internal/config"
	"github.com/ignatzorin/proposal-backend/internal/goroutine"
	"github.com/ignatzorin/proposal-backend/internal/logger"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if cfg.Env == "development" {
		logger.SetTextFormatter()
	}

	container, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("main: ошибка инициализации: %v", err)
	}
	defer safeClose(container)

	// Вебсокеты.
	go container.Hub.Run()
	defer container.Hub.Stop()

	engine, err := container.Router()
	if err != nil {
		log.Fatalf("main: ошибка сборки роутера: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s (хранилище: %s)", cfg.HTTPPort, cfg.StorageDriver)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	// Дожидаемся фоновых отправок, начатых до остановки.
	goroutine.DefaultRecoveryHandler.Wait()
	log.Printf("main: сервер остановлен")
}

// safeClose закрывает соединения с хранилищем.
func safeClose(c *app.Container) {
	if err := c.Close(); err != nil {
		log.Printf("main: ошибка закрытия хранилища: %v", err)
	}
}
