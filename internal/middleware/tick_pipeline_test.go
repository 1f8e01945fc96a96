package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"OddsEngine/internal/domain/models"
)

type recordingProc struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (p *recordingProc) Process(_ context.Context, _ *models.LiveStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return errors.New("downstream down")
	}
	return nil
}

func (p *recordingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type noopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNoopMetrics() *noopMetrics { return &noopMetrics{errors: make(map[string]int)} }

func (m *noopMetrics) RecordPrediction(string)        {}
func (m *noopMetrics) RecordValueBet(string)          {}
func (m *noopMetrics) RecordOpportunity(_, _ string)  {}
func (m *noopMetrics) RecordBankroll(float64)         {}
func (m *noopMetrics) RecordLatency(string, float64)  {}
func (m *noopMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *noopMetrics) errCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func pipelineTick(minute int) *models.LiveStats {
	return &models.LiveStats{
		FixtureID: "fx-1",
		Minute:    minute,
		Timestamp: time.Now(),
	}
}

func TestPipelineForwardsValidTick(t *testing.T) {
	proc := &recordingProc{}
	p := NewTickPipeline(proc, newNoopMetrics())

	if err := p.Process(context.Background(), pipelineTick(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 downstream call, got %d", proc.count())
	}
}

func TestPipelineRejectsInvalidTick(t *testing.T) {
	proc := &recordingProc{}
	m := newNoopMetrics()
	p := NewTickPipeline(proc, m)

	tick := pipelineTick(30)
	tick.FixtureID = ""
	if err := p.Process(context.Background(), tick); err == nil {
		t.Fatalf("expected validation error")
	}
	if proc.count() != 0 {
		t.Fatalf("invalid tick must not reach downstream")
	}
	if m.errCount("pipeline_validate") != 1 {
		t.Fatalf("expected pipeline_validate error recorded")
	}
}

func TestPipelineThrottlesPerFixture(t *testing.T) {
	proc := &recordingProc{}
	m := newNoopMetrics()
	p := NewTickPipeline(proc, m, WithMaxRPS(1))

	ctx := context.Background()
	if err := p.Process(ctx, pipelineTick(30)); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// Immediate second tick for the same fixture is over the per-second
	// budget and drops without error.
	if err := p.Process(ctx, pipelineTick(31)); err != nil {
		t.Fatalf("throttled tick must not error: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("expected 1 downstream call, got %d", proc.count())
	}
	if m.errCount("pipeline_throttle") != 1 {
		t.Fatalf("expected throttle recorded")
	}

	// A different fixture has its own budget.
	other := pipelineTick(30)
	other.FixtureID = "fx-2"
	if err := p.Process(ctx, other); err != nil {
		t.Fatalf("other fixture: %v", err)
	}
	if proc.count() != 2 {
		t.Fatalf("expected 2 downstream calls, got %d", proc.count())
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordingProc{fail: true}
	m := newNoopMetrics()
	p := NewTickPipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), pipelineTick(30)); err == nil {
		t.Fatalf("expected downstream error")
	}
	if m.errCount("pipeline_process") != 1 {
		t.Fatalf("expected pipeline_process error recorded")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected tick buffered, got %d", len(p.bufCh))
	}

	// Recovery: background flush drains the buffer once downstream heals.
	proc.mu.Lock()
	proc.fail = false
	proc.mu.Unlock()

	p.Start(context.Background())
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(p.bufCh) == 0 && proc.count() >= 2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("buffered tick not flushed, buffer=%d calls=%d", len(p.bufCh), proc.count())
}
