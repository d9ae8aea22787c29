package sweep

import (
	"context"
	"time"

	"courtly/pkg/logger"
)

// JobProcessor runs the sweeper on a fixed interval.
type JobProcessor struct {
	sweeper  *Sweeper
	interval time.Duration
	log      *logger.Logger
	done     chan struct{}
}

// NewJobProcessor creates a new job processor
func NewJobProcessor(sweeper *Sweeper, interval time.Duration, log *logger.Logger) *JobProcessor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &JobProcessor{
		sweeper:  sweeper,
		interval: interval,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Start starts the background sweep loop
func (jp *JobProcessor) Start(ctx context.Context) {
	go jp.loop(ctx)
	jp.log.Info("sweep job started")
}

// Stop stops the background sweep loop
func (jp *JobProcessor) Stop() {
	close(jp.done)
	jp.log.Info("sweep job stopped")
}

func (jp *JobProcessor) loop(ctx context.Context) {
	ticker := time.NewTicker(jp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := jp.sweeper.Run(ctx); err != nil {
				jp.log.ErrorWithContext(ctx, "sweep pass failed", err, nil)
			}
		case <-jp.done:
			return
		case <-ctx.Done():
			return
		}
	}
}
