package usecase

import (
	"context"

	"OddsEngine/internal/domain/models"
	domrepo "OddsEngine/internal/domain/repository"
	mid "OddsEngine/internal/middleware"
)

// LiveCollector reads ticks from the live feed and pushes them through the
// pipeline into the processor.
type LiveCollector struct {
	stream  domrepo.LiveStream
	proc    *TickProcessor
	metrics domrepo.Metrics
	pipe    *mid.TickPipeline
}

// NewLiveCollector creates a LiveCollector; the pipeline is optional.
func NewLiveCollector(stream domrepo.LiveStream, proc *TickProcessor, metrics domrepo.Metrics, pipe *mid.TickPipeline) *LiveCollector {
	return &LiveCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected reports whether the feed connection is up.
func (c *LiveCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// Start connects, subscribes, and consumes in the background until the
// context ends.
func (c *LiveCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *LiveCollector) consume(ctx context.Context, tickCh <-chan *models.LiveStats, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-tickCh:
			if t == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, t)
			} else {
				_ = c.proc.Process(ctx, t)
			}
		}
	}
}

// Processor returns the underlying TickProcessor for lifecycle management.
func (c *LiveCollector) Processor() *TickProcessor { return c.proc }

// Shutdown stops the pipeline and closes the feed.
func (c *LiveCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
