package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"OddsEngine/internal/domain/models"
	"OddsEngine/internal/engine/live"
	"OddsEngine/internal/repository"
)

type capturePublisher struct {
	ops  []*models.LiveOpportunity
	fail bool
}

func (p *capturePublisher) Publish(_ context.Context, o *models.LiveOpportunity) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.ops = append(p.ops, o)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestProcessor(t *testing.T, pub *capturePublisher, metrics *stubMetrics) *TickProcessor {
	t.Helper()
	scanner := live.NewScanner(live.DefaultConfig(), repository.NewMemoryDedupStore(), testLogger(t))
	return NewTickProcessor(scanner, pub, nil, metrics, testLogger(t))
}

func liveTick() *models.LiveStats {
	return &models.LiveStats{
		FixtureID: "fx-live",
		Minute:    35,
		Home:      models.TeamLiveStats{ShotsOnTarget: 7, ShotsTotal: 12, Possession: 0.61, Corners: 5},
		Away:      models.TeamLiveStats{ShotsOnTarget: 1, ShotsTotal: 2, Possession: 0.39, Corners: 1},
		Timestamp: time.Now(),
	}
}

func TestProcessPublishesOpportunities(t *testing.T) {
	pub := &capturePublisher{}
	metrics := newStubMetrics()
	proc := newTestProcessor(t, pub, metrics)

	if err := proc.Process(context.Background(), liveTick()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(pub.ops) == 0 {
		t.Fatal("expected published opportunities for a dominant tick")
	}
	if metrics.opportunities != len(pub.ops) {
		t.Fatalf("recorded %d opportunities, published %d", metrics.opportunities, len(pub.ops))
	}
}

func TestProcessSurfacesPublishFailure(t *testing.T) {
	pub := &capturePublisher{fail: true}
	metrics := newStubMetrics()
	proc := newTestProcessor(t, pub, metrics)

	if err := proc.Process(context.Background(), liveTick()); err == nil {
		t.Fatal("publish failure should bubble up for retry")
	}
	if metrics.errors["publish"] == 0 {
		t.Fatal("publish error not recorded")
	}
}

func TestKafkaHandlerDecodesTick(t *testing.T) {
	pub := &capturePublisher{}
	metrics := newStubMetrics()
	h := NewKafkaTicksHandler("live.ticks", newTestProcessor(t, pub, metrics), metrics)

	if h.Topic() != "live.ticks" {
		t.Fatalf("topic = %s, want live.ticks", h.Topic())
	}

	b, err := json.Marshal(liveTick())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := h.Handle(context.Background(), b); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pub.ops) == 0 {
		t.Fatal("expected opportunities from a decoded tick")
	}
}

func TestKafkaHandlerRejectsGarbage(t *testing.T) {
	metrics := newStubMetrics()
	h := NewKafkaTicksHandler("live.ticks", newTestProcessor(t, &capturePublisher{}, metrics), metrics)

	if err := h.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("garbage payload should be rejected")
	}
	if metrics.errors["consumer_unmarshal"] == 0 {
		t.Fatal("unmarshal error not recorded")
	}
}
