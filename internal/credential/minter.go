package credential

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twilio/twilio-go/client/jwt"
)

var (
	// ErrSigningConfig means the account SID or API key pair is missing.
	ErrSigningConfig = errors.New("access token signing material is not configured")
	// ErrInvalidGrant means the identity or room is empty.
	ErrInvalidGrant = errors.New("access token requires an identity and a room")
)

// SigningConfig holds the API key pair used to sign access tokens. It is
// distinct from the account auth token.
type SigningConfig struct {
	AccountSID string
	APIKey     string
	APISecret  string
	TTL        time.Duration
}

// Minter signs single-room video access tokens.
type Minter struct {
	cfg SigningConfig
}

func NewMinter(cfg SigningConfig) *Minter {
	cfg.AccountSID = strings.TrimSpace(cfg.AccountSID)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.APISecret = strings.TrimSpace(cfg.APISecret)
	if cfg.TTL <= 0 {
		cfg.TTL = time.Hour
	}
	return &Minter{cfg: cfg}
}

// Configured reports whether all signing material is present.
func (m *Minter) Configured() bool {
	return m.cfg.AccountSID != "" && m.cfg.APIKey != "" && m.cfg.APISecret != ""
}

// Mint returns a signed token letting identity join roomName and nothing else.
func (m *Minter) Mint(identity, roomName string) (string, error) {
	if !m.Configured() {
		return "", ErrSigningConfig
	}
	identity = strings.TrimSpace(identity)
	roomName = strings.TrimSpace(roomName)
	if identity == "" || roomName == "" {
		return "", ErrInvalidGrant
	}

	// The SDK raises Ttl to at least an hour; ValidUntil sets exp exactly.
	token := jwt.CreateAccessToken(jwt.AccessTokenParams{
		AccountSid:    m.cfg.AccountSID,
		SigningKeySid: m.cfg.APIKey,
		Secret:        m.cfg.APISecret,
		Identity:      identity,
		ValidUntil:    float64(time.Now().Add(m.cfg.TTL).Unix()),
	})
	token.AddGrant(&jwt.VideoGrant{Room: roomName})

	signed, err := token.ToJwt()
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
