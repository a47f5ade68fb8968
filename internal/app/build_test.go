package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ent0n29/videotask/internal/config"
	"github.com/ent0n29/videotask/internal/platform"
)

// testSeq keeps metric namespaces unique across tests in this package.
var testSeq atomic.Int64

func testConfig(name string) config.Config {
	return config.Config{
		BindAddr:                 ":0",
		MetricsNamespace:         fmt.Sprintf("test_app_%s_%d_%d", name, time.Now().UnixNano(), testSeq.Add(1)),
		PlatformMode:             "mock",
		PlatformPreflightTimeout: time.Second,
		TaskChannel:              "video",
		TaskTimeout:              300 * time.Second,
		TokenTTL:                 time.Hour,
		DefaultCustomerName:      "Nom client",
	}
}

func TestBuildMockPlatform(t *testing.T) {
	res, err := Build(testConfig("build"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if res.Platform.Mode() != "mock" {
		t.Fatalf("Mode() = %q, want mock", res.Platform.Mode())
	}
	if res.Minter.Configured() {
		t.Fatalf("Minter.Configured() = true without signing material")
	}
	if err := res.Preflight(context.Background()); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
}

func TestBuildRejectsUnknownMode(t *testing.T) {
	cfg := testConfig("badmode")
	cfg.PlatformMode = "pager"
	if _, err := Build(cfg); err == nil {
		t.Fatalf("Build() expected error for unknown platform mode")
	}
}

type failingWorkspace struct {
	platform.Platform
}

func (failingWorkspace) FetchWorkspace(context.Context) (platform.Workspace, error) {
	return platform.Workspace{}, errors.New("authenticate: 20003")
}

func TestPreflightFailureIsReported(t *testing.T) {
	res, err := Build(testConfig("preflight"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	res.Platform = failingWorkspace{Platform: res.Platform}
	if err := res.Preflight(context.Background()); err == nil {
		t.Fatalf("Preflight() expected error")
	}
}
