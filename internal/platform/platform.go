package platform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Operation names, shared with metrics labels.
const (
	OpCreateRoom     = "room_create"
	OpCreateTask     = "task_create"
	OpFetchWorkspace = "workspace_fetch"
)

// RoomTypeGroup is the multi-party room type used for customer calls.
const RoomTypeGroup = "group"

// Room is the platform's descriptor for a created video room.
type Room struct {
	Sid         string     `json:"sid"`
	UniqueName  string     `json:"uniqueName"`
	Status      string     `json:"status,omitempty"`
	Type        string     `json:"type,omitempty"`
	URL         string     `json:"url,omitempty"`
	AccountSid  string     `json:"accountSid,omitempty"`
	DateCreated *time.Time `json:"dateCreated,omitempty"`
}

type RoomRequest struct {
	UniqueName string
	Type       string
}

// Task is a routable work item as stored by the platform.
type Task struct {
	Sid              string `json:"sid"`
	AssignmentStatus string `json:"assignmentStatus,omitempty"`
	Attributes       string `json:"attributes,omitempty"`
	WorkflowSid      string `json:"workflowSid,omitempty"`
	TaskChannel      string `json:"taskChannel,omitempty"`
	Timeout          int    `json:"timeout,omitempty"`
}

type TaskRequest struct {
	WorkflowSid string
	Attributes  string
	TaskChannel string
	Timeout     time.Duration
}

type Workspace struct {
	Sid          string `json:"sid"`
	FriendlyName string `json:"friendlyName"`
}

// Platform is the slice of the contact-center platform this service uses.
type Platform interface {
	CreateRoom(ctx context.Context, req RoomRequest) (Room, error)
	CreateTask(ctx context.Context, req TaskRequest) (Task, error)
	FetchWorkspace(ctx context.Context) (Workspace, error)
	Mode() string
}

// Error is a failed platform call. Status is the upstream HTTP status, or 0
// when no response was received.
type Error struct {
	Op      string
	Status  int
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Details returns the upstream message of a platform failure, or err's text
// for any other error.
func Details(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) && strings.TrimSpace(pe.Message) != "" {
		return pe.Message
	}
	return err.Error()
}

// Config controls platform construction.
type Config struct {
	Mode         string
	AccountSID   string
	AuthToken    string
	WorkspaceSID string
}

func New(cfg Config) (Platform, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.AccountSID) != "" && strings.TrimSpace(cfg.AuthToken) != "" {
			return NewTwilioPlatform(cfg.AccountSID, cfg.AuthToken, cfg.WorkspaceSID), nil
		}
		log.Printf("platform: no account credentials, using mock platform")
		return NewMockPlatform(), nil
	case "twilio":
		if strings.TrimSpace(cfg.AccountSID) == "" || strings.TrimSpace(cfg.AuthToken) == "" {
			return nil, errors.New("twilio account sid and auth token are required for twilio mode")
		}
		return NewTwilioPlatform(cfg.AccountSID, cfg.AuthToken, cfg.WorkspaceSID), nil
	case "mock":
		return NewMockPlatform(), nil
	default:
		return nil, fmt.Errorf("unsupported platform mode %q", cfg.Mode)
	}
}
