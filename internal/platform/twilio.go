package platform

import (
	"context"
	"errors"
	"strings"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	taskrouter "github.com/twilio/twilio-go/rest/taskrouter/v1"
	video "github.com/twilio/twilio-go/rest/video/v1"
)

// TwilioPlatform talks to Twilio Programmable Video and TaskRouter.
// The SDK calls take no context; callWithContext stops waiting on ctx and the
// abandoned request ends at the SDK's own HTTP timeout.
type TwilioPlatform struct {
	client       *twilio.RestClient
	workspaceSID string
}

func NewTwilioPlatform(accountSID, authToken, workspaceSID string) *TwilioPlatform {
	return &TwilioPlatform{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: strings.TrimSpace(accountSID),
			Password: strings.TrimSpace(authToken),
		}),
		workspaceSID: strings.TrimSpace(workspaceSID),
	}
}

func (p *TwilioPlatform) Mode() string { return "twilio" }

func (p *TwilioPlatform) CreateRoom(ctx context.Context, req RoomRequest) (Room, error) {
	params := &video.CreateRoomParams{}
	params.SetUniqueName(req.UniqueName)
	params.SetType(req.Type)

	resp, err := callWithContext(ctx, OpCreateRoom, func() (*video.VideoV1Room, error) {
		return p.client.VideoV1.CreateRoom(params)
	})
	if err != nil {
		return Room{}, err
	}
	room := roomFromTwilio(resp)
	if room.Type == "" {
		room.Type = req.Type
	}
	return room, nil
}

func (p *TwilioPlatform) CreateTask(ctx context.Context, req TaskRequest) (Task, error) {
	params := &taskrouter.CreateTaskParams{}
	params.SetWorkflowSid(req.WorkflowSid)
	params.SetAttributes(req.Attributes)
	params.SetTaskChannel(req.TaskChannel)
	params.SetTimeout(int(req.Timeout.Seconds()))

	resp, err := callWithContext(ctx, OpCreateTask, func() (*taskrouter.TaskrouterV1Task, error) {
		return p.client.TaskrouterV1.CreateTask(p.workspaceSID, params)
	})
	if err != nil {
		return Task{}, err
	}
	task := taskFromTwilio(resp)
	task.WorkflowSid = req.WorkflowSid
	task.TaskChannel = req.TaskChannel
	task.Timeout = int(req.Timeout.Seconds())
	return task, nil
}

func (p *TwilioPlatform) FetchWorkspace(ctx context.Context) (Workspace, error) {
	if p.workspaceSID == "" {
		return Workspace{}, &Error{Op: OpFetchWorkspace, Message: "workspace sid is not configured"}
	}
	resp, err := callWithContext(ctx, OpFetchWorkspace, func() (*taskrouter.TaskrouterV1Workspace, error) {
		return p.client.TaskrouterV1.FetchWorkspace(p.workspaceSID)
	})
	if err != nil {
		return Workspace{}, err
	}
	return Workspace{
		Sid:          deref(resp.Sid),
		FriendlyName: deref(resp.FriendlyName),
	}, nil
}

func roomFromTwilio(r *video.VideoV1Room) Room {
	if r == nil {
		return Room{}
	}
	return Room{
		Sid:         deref(r.Sid),
		UniqueName:  deref(r.UniqueName),
		Status:      deref(r.Status),
		Type:        deref(r.Type),
		URL:         deref(r.Url),
		AccountSid:  deref(r.AccountSid),
		DateCreated: r.DateCreated,
	}
}

func taskFromTwilio(t *taskrouter.TaskrouterV1Task) Task {
	if t == nil {
		return Task{}
	}
	return Task{
		Sid:              deref(t.Sid),
		AssignmentStatus: deref(t.AssignmentStatus),
		Attributes:       deref(t.Attributes),
	}
}

// callWithContext runs fn and returns early when ctx is done first.
func callWithContext[T any](ctx context.Context, op string, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, &Error{Op: op, Err: err}
	}
	type result struct {
		v   T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v: v, err: err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return zero, wrapTwilioError(op, r.err)
		}
		return r.v, nil
	case <-ctx.Done():
		return zero, &Error{Op: op, Err: ctx.Err()}
	}
}

func wrapTwilioError(op string, err error) error {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &Error{
			Op:      op,
			Status:  restErr.Status,
			Code:    restErr.Code,
			Message: restErr.Message,
			Err:     err,
		}
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
