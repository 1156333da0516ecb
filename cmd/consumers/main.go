package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mercadito/cmd/consumers/jobs"
	"mercadito/internal/config"
	"mercadito/internal/consumers"
	"mercadito/internal/logger"
)

func main() {
	log.Println("Starting consumers service...")

	// Загружаем конфигурацию
	cfg := config.Load()

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Отдельный NATS client ID для консьюмеров
	cfg.NATS.ClientID = "mercadito-consumers"

	// Создаем и запускаем консьюмеры
	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	// Фоновая задача: освобождение брошенных резерваций
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	expirationJob := jobs.NewReservationExpirationJob(consumerService.Repositories().Reservations)
	expirationJob.Start(jobCtx)

	log.Println("Consumers service started successfully")

	// Ждем сигнал для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumers service...")

	cancelJobs()
	expirationJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Consumers service stopped")
}
