package jobs

import (
	"context"
	"log/slog"
	"time"

	"mercadito/internal/repository"
)

const ReservationExpirationTimeout = 24 * time.Hour

// ReservationExpirationJob releases seats held by reservations whose payment
// was never started. Reservations with a transaction id are left alone: the
// provider webhook settles those.
type ReservationExpirationJob struct {
	reservationRepo *repository.ReservationRepository
	ticker          *time.Ticker
	done            chan bool
}

func NewReservationExpirationJob(reservationRepo *repository.ReservationRepository) *ReservationExpirationJob {
	return &ReservationExpirationJob{
		reservationRepo: reservationRepo,
		done:            make(chan bool),
	}
}

// Start begins the background job that sweeps stale reservations every 10 minutes
func (j *ReservationExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting reservation expiration job",
		"check_interval", "10m", "timeout", ReservationExpirationTimeout)

	j.ticker = time.NewTicker(10 * time.Minute)

	// Run initial check immediately
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Reservation expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *ReservationExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *ReservationExpirationJob) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-ReservationExpirationTimeout)

	released, err := j.reservationRepo.ExpireStalePending(ctx, cutoff)
	if err != nil {
		slog.Error("Failed to expire stale reservations", "error", err)
		return
	}

	if released > 0 {
		slog.Info("Released stale reservations", "count", released)
	}
}
