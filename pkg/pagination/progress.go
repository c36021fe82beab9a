package pagination

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StartProgress logs the elapsed time every interval until stop is called or
// ctx is done. stop cancels the reporter and waits for it to exit; it is safe
// to call more than once.
func StartProgress(ctx context.Context, interval time.Duration, logger zerolog.Logger) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	start := time.Now()

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info().
					Dur("elapsed", time.Since(start)).
					Msg("Fetch in progress")
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
