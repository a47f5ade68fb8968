package platform

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockPlatform is an in-process platform for local runs and tests. It keeps
// every created room and task so callers can inspect them.
type MockPlatform struct {
	mu       sync.RWMutex
	rooms    []Room
	tasks    []Task
	names    map[string]struct{}
	failures map[string]error
}

func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		names:    make(map[string]struct{}),
		failures: make(map[string]error),
	}
}

func (p *MockPlatform) Mode() string { return "mock" }

// FailNext makes the next call of op return err.
func (p *MockPlatform) FailNext(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[op] = err
}

func (p *MockPlatform) takeFailure(op string) error {
	err, ok := p.failures[op]
	if !ok {
		return nil
	}
	delete(p.failures, op)
	return err
}

func (p *MockPlatform) CreateRoom(ctx context.Context, req RoomRequest) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, &Error{Op: OpCreateRoom, Err: err}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(OpCreateRoom); err != nil {
		return Room{}, err
	}

	name := strings.TrimSpace(req.UniqueName)
	if name == "" {
		return Room{}, &Error{Op: OpCreateRoom, Status: 400, Code: 53120, Message: "Unique name is required"}
	}
	// Unique names are unique among in-progress rooms, as on the real platform.
	if _, taken := p.names[name]; taken {
		return Room{}, &Error{Op: OpCreateRoom, Status: 400, Code: 53113, Message: "Room exists"}
	}
	p.names[name] = struct{}{}

	now := time.Now().UTC()
	room := Room{
		Sid:         "RM" + hexID(),
		UniqueName:  name,
		Status:      "in-progress",
		Type:        req.Type,
		AccountSid:  "ACmock",
		DateCreated: &now,
	}
	room.URL = fmt.Sprintf("https://video.invalid/v1/Rooms/%s", room.Sid)
	p.rooms = append(p.rooms, room)
	return room, nil
}

func (p *MockPlatform) CreateTask(ctx context.Context, req TaskRequest) (Task, error) {
	if err := ctx.Err(); err != nil {
		return Task{}, &Error{Op: OpCreateTask, Err: err}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(OpCreateTask); err != nil {
		return Task{}, err
	}
	if strings.TrimSpace(req.Attributes) == "" {
		return Task{}, &Error{Op: OpCreateTask, Status: 400, Code: 20001, Message: "Attributes are required"}
	}

	task := Task{
		Sid:              "WT" + hexID(),
		AssignmentStatus: "pending",
		Attributes:       req.Attributes,
		WorkflowSid:      req.WorkflowSid,
		TaskChannel:      req.TaskChannel,
		Timeout:          int(req.Timeout.Seconds()),
	}
	p.tasks = append(p.tasks, task)
	return task, nil
}

func (p *MockPlatform) FetchWorkspace(ctx context.Context) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, &Error{Op: OpFetchWorkspace, Err: err}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.takeFailure(OpFetchWorkspace); err != nil {
		return Workspace{}, err
	}
	return Workspace{Sid: "WSmock", FriendlyName: "Mock Workspace"}, nil
}

func (p *MockPlatform) Rooms() []Room {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Room(nil), p.rooms...)
}

func (p *MockPlatform) Tasks() []Task {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Task(nil), p.tasks...)
}

func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
