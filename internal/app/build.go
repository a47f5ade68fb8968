package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ent0n29/videotask/internal/config"
	"github.com/ent0n29/videotask/internal/credential"
	"github.com/ent0n29/videotask/internal/httpapi"
	"github.com/ent0n29/videotask/internal/observability"
	"github.com/ent0n29/videotask/internal/platform"
	"github.com/ent0n29/videotask/internal/policy"
	"github.com/ent0n29/videotask/internal/provisioning"
)

type BuildResult struct {
	Config      config.Config
	API         *httpapi.Server
	Platform    platform.Platform
	Provisioner *provisioning.Service
	Minter      *credential.Minter
	Metrics     *observability.Metrics
}

func Build(cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	log.Printf("platform credentials: account=%s workspace=%s workflow=%s api_key=%s",
		policy.MaskTail(cfg.TwilioAccountSID),
		policy.MaskTail(cfg.TwilioWorkspaceSID),
		policy.MaskTail(cfg.TwilioWorkflowSID),
		policy.MaskTail(cfg.TwilioAPIKey),
	)

	p, err := platform.New(platform.Config{
		Mode:         cfg.PlatformMode,
		AccountSID:   cfg.TwilioAccountSID,
		AuthToken:    cfg.TwilioAuthToken,
		WorkspaceSID: cfg.TwilioWorkspaceSID,
	})
	if err != nil {
		return nil, fmt.Errorf("platform init failed: %w", err)
	}
	log.Printf("platform mode: %s", p.Mode())
	p = platform.Instrument(p, metrics)

	minter := credential.NewMinter(credential.SigningConfig{
		AccountSID: cfg.TwilioAccountSID,
		APIKey:     cfg.TwilioAPIKey,
		APISecret:  cfg.TwilioAPISecret,
		TTL:        cfg.TokenTTL,
	})
	if !minter.Configured() {
		// Requests will fail at the signing step until this is fixed.
		log.Printf("access token signing material missing: set TWILIO_ACCOUNT_SID, TWILIO_API_KEY and TWILIO_API_SECRET")
	}

	svc := provisioning.New(provisioning.Config{
		WorkflowSID:         cfg.TwilioWorkflowSID,
		TaskChannel:         cfg.TaskChannel,
		TaskTimeout:         cfg.TaskTimeout,
		DefaultCustomerName: cfg.DefaultCustomerName,
		ValidateBeforeRoom:  cfg.ValidateBeforeRoom,
	}, p, minter, provisioning.NewIDGenerator(), metrics)

	api := httpapi.New(cfg, svc, metrics, p.Mode())

	return &BuildResult{
		Config:      cfg,
		API:         api,
		Platform:    p,
		Provisioner: svc,
		Minter:      minter,
		Metrics:     metrics,
	}, nil
}

// Preflight looks up the configured workspace once. The result is only
// logged and reported on /readyz; failure never stops the server.
func (b *BuildResult) Preflight(ctx context.Context) error {
	timeout := b.Config.PlatformPreflightTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ws, err := b.Platform.FetchWorkspace(ctx)
	b.API.SetPreflight(ws.FriendlyName, err)
	if err != nil {
		log.Printf("failed to connect to platform workspace %s: %v", policy.MaskTail(b.Config.TwilioWorkspaceSID), err)
		log.Printf("server running on %s but platform connection failed", b.Config.BindAddr)
		return err
	}
	log.Printf("connected to platform workspace: %s", ws.FriendlyName)
	return nil
}
