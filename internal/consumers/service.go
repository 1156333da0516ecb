package consumers

import (
	"context"
	"log/slog"

	"mercadito/internal/config"
	"mercadito/internal/database"
	"mercadito/internal/mail"
	"mercadito/internal/messaging"
	"mercadito/internal/models"
	"mercadito/internal/repository"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.NewRepositories(db)
	mailer := mail.NewMailer(cfg.Mail)
	handlers := NewHandlers(mailer, cfg.BaseURL)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

// Repositories exposes the repository layer for the background jobs that
// run alongside the subscribers.
func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	if _, err := cs.nats.SubscribeQueue(models.EventOrderPaid, "notifications", cs.handlers.HandleOrderPaid); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.EventReservationConfirmed, "notifications", cs.handlers.HandleReservationConfirmed); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.EventEbookPurchased, "notifications", cs.handlers.HandleEbookPurchased); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.EventPaymentRejected, "notifications", cs.handlers.HandlePaymentRejected); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
