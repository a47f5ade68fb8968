package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, grants map[string]any) string {
	t.Helper()
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"iss":    "SK0000",
		"sub":    "AC0000",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"grants": grants,
	})
	s, err := tok.SignedString([]byte("probe-test"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestTokenGrant(t *testing.T) {
	token := signedToken(t, map[string]any{
		"identity": "customer_1700000000001",
		"video":    map[string]any{"room": "room_1700000000000"},
	})
	got, err := tokenGrant(token)
	if err != nil {
		t.Fatalf("tokenGrant() error = %v", err)
	}
	if got.Identity != "customer_1700000000001" || got.Room != "room_1700000000000" {
		t.Fatalf("tokenGrant() = %+v", got)
	}
}

func TestTokenGrantIncomplete(t *testing.T) {
	token := signedToken(t, map[string]any{"identity": "customer_1"})
	if _, err := tokenGrant(token); err == nil {
		t.Fatalf("tokenGrant() expected error without video grant")
	}
	if _, err := tokenGrant("not-a-jwt"); err == nil {
		t.Fatalf("tokenGrant() expected error for garbage")
	}
}

func outcomeFor(task, room, identity string) outcome {
	var o outcome
	o.resp.TaskSid = task
	o.resp.Room.UniqueName = room
	o.grant = grantInfo{Identity: identity, Room: room}
	return o
}

func TestCheckOutcomes(t *testing.T) {
	okA := outcomeFor("WT"+strings.Repeat("a", 32), "room_1", "customer_2")
	okB := outcomeFor("WT"+strings.Repeat("b", 32), "room_3", "customer_4")
	if problems := checkOutcomes([]outcome{okA, okB}); len(problems) != 0 {
		t.Fatalf("checkOutcomes() = %v, want none", problems)
	}

	dup := outcomeFor("WT"+strings.Repeat("c", 32), "room_1", "customer_5")
	if problems := checkOutcomes([]outcome{okA, dup}); len(problems) != 1 || !strings.Contains(problems[0], "duplicate room") {
		t.Fatalf("checkOutcomes() = %v, want duplicate room", problems)
	}

	mismatch := okB
	mismatch.grant.Room = "room_9"
	if problems := checkOutcomes([]outcome{mismatch}); len(problems) != 1 {
		t.Fatalf("checkOutcomes() = %v, want token room mismatch", problems)
	}

	failed := outcome{err: errors.New("HTTP 500")}
	if problems := checkOutcomes([]outcome{failed}); len(problems) != 1 {
		t.Fatalf("checkOutcomes() = %v, want one failure", problems)
	}
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"--base-url", "http://localhost:3001/", "-n", "3", "-c", "10"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if cfg.baseURL != "http://localhost:3001" {
		t.Fatalf("baseURL = %q", cfg.baseURL)
	}
	if cfg.concurrency != 3 {
		t.Fatalf("concurrency = %d, want clamp to 3", cfg.concurrency)
	}
	if _, err := parseFlags([]string{"-n", "0"}); err == nil {
		t.Fatalf("parseFlags() expected error for zero requests")
	}
}
