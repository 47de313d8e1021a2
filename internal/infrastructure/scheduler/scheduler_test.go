package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/ports"
)

type stubReconcile struct {
	limits []int
}

func (s *stubReconcile) Drain(_ context.Context, limit int) (*ports.DrainResult, error) {
	s.limits = append(s.limits, limit)
	return &ports.DrainResult{Processed: 1, Succeeded: 1}, nil
}

type stubQueue struct{ lenCalls int }

func (q *stubQueue) Push(context.Context, ports.ReconcileJob) error   { return nil }
func (q *stubQueue) Pop(context.Context) (*ports.ReconcileJob, error) { return nil, nil }

func (q *stubQueue) Len(context.Context) (int64, error) {
	q.lenCalls++
	return 0, nil
}

func TestScheduler_Defaults(t *testing.T) {
	s := New(&stubReconcile{}, &stubQueue{}, Config{}, zerolog.Nop())
	if s.cfg.Schedule != defaultSchedule || s.cfg.BatchSize != defaultBatchSize {
		t.Fatalf("unexpected defaults: %+v", s.cfg)
	}
}

func TestScheduler_RunReconcileUsesBatchSize(t *testing.T) {
	rec := &stubReconcile{}
	q := &stubQueue{}
	s := New(rec, q, Config{BatchSize: 7}, zerolog.Nop())

	s.RunReconcile()

	if len(rec.limits) != 1 || rec.limits[0] != 7 {
		t.Fatalf("expected one drain with limit 7, got %v", rec.limits)
	}
	if q.lenCalls != 1 {
		t.Fatalf("expected queue length refresh, got %d", q.lenCalls)
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(&stubReconcile{}, &stubQueue{}, Config{Schedule: "not a schedule"}, zerolog.Nop())
	if err := s.Start(); err == nil {
		t.Fatal("expected schedule parse error")
	}
}
