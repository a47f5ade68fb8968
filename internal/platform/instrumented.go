package platform

import (
	"context"
	"errors"
	"time"

	"github.com/ent0n29/videotask/internal/observability"
	"github.com/ent0n29/videotask/internal/reliability"
)

type instrumented struct {
	next    Platform
	metrics *observability.Metrics
}

// Instrument records latency and a result class for every call on p.
func Instrument(p Platform, metrics *observability.Metrics) Platform {
	if metrics == nil {
		return p
	}
	return &instrumented{next: p, metrics: metrics}
}

func (p *instrumented) Mode() string { return p.next.Mode() }

func (p *instrumented) CreateRoom(ctx context.Context, req RoomRequest) (Room, error) {
	start := time.Now()
	room, err := p.next.CreateRoom(ctx, req)
	p.observe(OpCreateRoom, start, err)
	return room, err
}

func (p *instrumented) CreateTask(ctx context.Context, req TaskRequest) (Task, error) {
	start := time.Now()
	task, err := p.next.CreateTask(ctx, req)
	p.observe(OpCreateTask, start, err)
	return task, err
}

func (p *instrumented) FetchWorkspace(ctx context.Context) (Workspace, error) {
	start := time.Now()
	ws, err := p.next.FetchWorkspace(ctx)
	p.observe(OpFetchWorkspace, start, err)
	return ws, err
}

func (p *instrumented) observe(op string, start time.Time, err error) {
	status := 0
	var pe *Error
	if errors.As(err, &pe) {
		status = pe.Status
	}
	class := reliability.Classify(status, err)
	p.metrics.ObservePlatformCall(op, string(class), time.Since(start))
}
