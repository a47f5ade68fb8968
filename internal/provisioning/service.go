package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ent0n29/videotask/internal/observability"
	"github.com/ent0n29/videotask/internal/platform"
	"github.com/ent0n29/videotask/internal/policy"
)

// ErrMissingService is returned when the request names no service.
var ErrMissingService = errors.New("service is required")

// Request is a customer's ask for a video service.
type Request struct {
	Service      string `json:"service"`
	CustomerName string `json:"customerName,omitempty"`
}

// Result is what the customer needs to join the call.
type Result struct {
	TaskSid string        `json:"taskSid"`
	Token   string        `json:"token"`
	Room    platform.Room `json:"room"`

	CustomerIdentity string `json:"-"`
}

// Minter signs a credential for one identity and one room.
type Minter interface {
	Mint(identity, roomName string) (string, error)
}

type Config struct {
	WorkflowSID         string
	TaskChannel         string
	TaskTimeout         time.Duration
	DefaultCustomerName string
	// ValidateBeforeRoom rejects bad requests before any room exists.
	// When false a rejected request still leaves its room behind.
	ValidateBeforeRoom bool
}

// Service provisions a room, a task and a customer credential per request.
type Service struct {
	cfg      Config
	platform platform.Platform
	minter   Minter
	ids      *IDGenerator
	metrics  *observability.Metrics
	now      func() time.Time
}

func New(cfg Config, p platform.Platform, minter Minter, ids *IDGenerator, metrics *observability.Metrics) *Service {
	if strings.TrimSpace(cfg.TaskChannel) == "" {
		cfg.TaskChannel = channelVideo
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 300 * time.Second
	}
	if ids == nil {
		ids = NewIDGenerator()
	}
	return &Service{
		cfg:      cfg,
		platform: p,
		minter:   minter,
		ids:      ids,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (s *Service) Provision(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	result, err := s.provision(ctx, req)

	outcome := "ok"
	switch {
	case errors.Is(err, ErrMissingService):
		outcome = "invalid"
	case err != nil:
		outcome = "failed"
	}
	s.metrics.ObserveProvision(outcome, s.now().Sub(start))
	return result, err
}

func (s *Service) provision(ctx context.Context, req Request) (Result, error) {
	service := strings.TrimSpace(req.Service)
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		customerName = s.cfg.DefaultCustomerName
	}

	if s.cfg.ValidateBeforeRoom && service == "" {
		return Result{}, ErrMissingService
	}

	room, err := s.platform.CreateRoom(ctx, platform.RoomRequest{
		UniqueName: s.ids.Next("room_"),
		Type:       platform.RoomTypeGroup,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create room: %w", err)
	}
	log.Printf("provision: room created name=%s sid=%s", room.UniqueName, room.Sid)

	if service == "" {
		s.metrics.ObserveOrphanedRoom()
		log.Printf("provision: missing service, room %s left unused", room.UniqueName)
		return Result{}, ErrMissingService
	}

	customerIdentity := s.ids.Next("customer_")
	attrs := BuildAttributes(
		service,
		customerName,
		customerIdentity,
		room.UniqueName,
		s.ids.Next("video-"),
		s.now(),
	)
	encoded, err := attrs.Encode()
	if err != nil {
		return Result{}, err
	}
	log.Printf("provision: task attributes service=%q customer=%q identity=%s room=%s",
		service, policy.RedactForLog(customerName), customerIdentity, room.UniqueName)

	task, err := s.platform.CreateTask(ctx, platform.TaskRequest{
		WorkflowSid: s.cfg.WorkflowSID,
		Attributes:  encoded,
		TaskChannel: s.cfg.TaskChannel,
		Timeout:     s.cfg.TaskTimeout,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create task: %w", err)
	}

	mintStart := s.now()
	token, err := s.minter.Mint(customerIdentity, room.UniqueName)
	if err != nil {
		return Result{}, fmt.Errorf("mint access token: %w", err)
	}
	s.metrics.ObserveStage("token_mint", s.now().Sub(mintStart))

	log.Printf("provision: task created sid=%s room=%s", task.Sid, room.UniqueName)
	return Result{
		TaskSid:          task.Sid,
		Token:            token,
		Room:             room,
		CustomerIdentity: customerIdentity,
	}, nil
}
