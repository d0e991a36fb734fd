package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zvrva/tourbooking/api"
	"github.com/zvrva/tourbooking/config"
	"github.com/zvrva/tourbooking/internal/service/activities"
	"github.com/zvrva/tourbooking/internal/service/availability"
	"github.com/zvrva/tourbooking/internal/service/booking"
)

// Run starts the HTTP server and blocks until the context is canceled
// or the server fails.
func Run(ctx context.Context, cfg *config.Config, activitySvc activities.ActivityUseCase, availabilitySvc availability.AvailabilityUseCase, bookingSvc booking.BookingUseCase) error {
	router := api.NewRouter(
		api.NewActivityHandler(activitySvc, availabilitySvc),
		api.NewBookingHandler(bookingSvc),
	)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
