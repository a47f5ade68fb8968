package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/pflag"

	"github.com/ent0n29/videotask/internal/observability"
)

type options struct {
	baseURL      string
	requests     int
	concurrency  int
	service      string
	customerName string
	timeout      time.Duration
	verbose      bool
}

type createRequest struct {
	Service      string `json:"service"`
	CustomerName string `json:"customerName,omitempty"`
}

type createResponse struct {
	TaskSid string `json:"taskSid"`
	Token   string `json:"token"`
	Room    struct {
		Sid        string `json:"sid"`
		UniqueName string `json:"uniqueName"`
	} `json:"room"`
}

type grantInfo struct {
	Identity string
	Room     string
}

type outcome struct {
	resp    createResponse
	grant   grantInfo
	latency time.Duration
	err     error
}

var (
	taskSidPattern  = regexp.MustCompile(`^WT[0-9a-f]{32}$`)
	roomNamePattern = regexp.MustCompile(`^room_\d+$`)
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "provisionprobe: %v\n", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "provisionprobe: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var cfg options
	fs := pflag.NewFlagSet("provisionprobe", pflag.ContinueOnError)
	fs.StringVar(&cfg.baseURL, "base-url", "http://127.0.0.1:3001", "video task gateway base URL")
	fs.IntVarP(&cfg.requests, "requests", "n", 5, "number of provisioning requests")
	fs.IntVarP(&cfg.concurrency, "concurrency", "c", 1, "requests in flight at once")
	fs.StringVar(&cfg.service, "service", "Support", "service label sent with each request")
	fs.StringVar(&cfg.customerName, "customer-name", "", "optional customer display name")
	fs.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "per-request timeout")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", true, "print each request")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg.baseURL = strings.TrimRight(strings.TrimSpace(cfg.baseURL), "/")
	if cfg.baseURL == "" {
		return options{}, fmt.Errorf("base-url is required")
	}
	if cfg.requests <= 0 {
		return options{}, fmt.Errorf("requests must be > 0")
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}
	if cfg.concurrency > cfg.requests {
		cfg.concurrency = cfg.requests
	}
	if cfg.timeout < time.Second {
		cfg.timeout = time.Second
	}
	return cfg, nil
}

func run(cfg options) error {
	client := &http.Client{Timeout: cfg.timeout}
	ctx := context.Background()

	results := make([]outcome, cfg.requests)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < cfg.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = provisionOnce(ctx, client, cfg)
				if cfg.verbose {
					printOutcome(i+1, cfg.requests, results[i])
				}
			}
		}()
	}
	for i := 0; i < cfg.requests; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	window := observability.NewStageWindow(cfg.requests)
	for _, o := range results {
		if o.err == nil {
			window.Observe("provision_total", float64(o.latency)/float64(time.Millisecond))
		}
	}
	problems := checkOutcomes(results)
	for _, p := range problems {
		window.ObserveIndicator(p)
	}

	summary, _ := json.MarshalIndent(window.Snapshot(), "", "  ")
	fmt.Printf("provisionprobe: summary\n%s\n", summary)
	if len(problems) > 0 {
		return fmt.Errorf("%d check(s) failed: %s", len(problems), strings.Join(problems, "; "))
	}
	return nil
}

func provisionOnce(ctx context.Context, client *http.Client, cfg options) outcome {
	payload, err := json.Marshal(createRequest{Service: cfg.service, CustomerName: cfg.customerName})
	if err != nil {
		return outcome{err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/create-video-task", bytes.NewReader(payload))
	if err != nil {
		return outcome{err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := client.Do(req)
	if err != nil {
		return outcome{err: err}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	latency := time.Since(start)
	if err != nil {
		return outcome{err: err}
	}
	if res.StatusCode != http.StatusOK {
		return outcome{err: fmt.Errorf("HTTP %d: %s", res.StatusCode, strings.TrimSpace(string(body)))}
	}

	var out createResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return outcome{err: fmt.Errorf("decode response: %w", err)}
	}
	grant, err := tokenGrant(out.Token)
	if err != nil {
		return outcome{resp: out, err: err}
	}
	return outcome{resp: out, grant: grant, latency: latency}
}

// tokenGrant reads identity and room from an access token without
// verifying it; the probe does not hold the signing secret.
func tokenGrant(token string) (grantInfo, error) {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(token, claims); err != nil {
		return grantInfo{}, fmt.Errorf("parse token: %w", err)
	}
	grants, ok := claims["grants"].(map[string]any)
	if !ok {
		return grantInfo{}, fmt.Errorf("token has no grants")
	}
	var info grantInfo
	info.Identity, _ = grants["identity"].(string)
	if video, ok := grants["video"].(map[string]any); ok {
		info.Room, _ = video["room"].(string)
	}
	if info.Identity == "" || info.Room == "" {
		return grantInfo{}, fmt.Errorf("token grant incomplete: identity=%q room=%q", info.Identity, info.Room)
	}
	return info, nil
}

// checkOutcomes returns one line per violated expectation.
func checkOutcomes(results []outcome) []string {
	var problems []string
	rooms := make(map[string]bool, len(results))
	tasks := make(map[string]bool, len(results))
	identities := make(map[string]bool, len(results))

	for i, o := range results {
		n := i + 1
		if o.err != nil {
			problems = append(problems, fmt.Sprintf("request %d: %v", n, o.err))
			continue
		}
		if !taskSidPattern.MatchString(o.resp.TaskSid) {
			problems = append(problems, fmt.Sprintf("request %d: taskSid %q has unexpected format", n, o.resp.TaskSid))
		}
		if !roomNamePattern.MatchString(o.resp.Room.UniqueName) {
			problems = append(problems, fmt.Sprintf("request %d: room %q has unexpected format", n, o.resp.Room.UniqueName))
		}
		if o.grant.Room != o.resp.Room.UniqueName {
			problems = append(problems, fmt.Sprintf("request %d: token room %q != room %q", n, o.grant.Room, o.resp.Room.UniqueName))
		}
		if rooms[o.resp.Room.UniqueName] {
			problems = append(problems, fmt.Sprintf("request %d: duplicate room %s", n, o.resp.Room.UniqueName))
		}
		if tasks[o.resp.TaskSid] {
			problems = append(problems, fmt.Sprintf("request %d: duplicate task %s", n, o.resp.TaskSid))
		}
		if identities[o.grant.Identity] {
			problems = append(problems, fmt.Sprintf("request %d: duplicate identity %s", n, o.grant.Identity))
		}
		rooms[o.resp.Room.UniqueName] = true
		tasks[o.resp.TaskSid] = true
		identities[o.grant.Identity] = true
	}
	return problems
}

func printOutcome(n, total int, o outcome) {
	if o.err != nil {
		fmt.Printf("provisionprobe: %d/%d error=%v\n", n, total, o.err)
		return
	}
	fmt.Printf("provisionprobe: %d/%d task=%s room=%s identity=%s latency=%s\n",
		n, total, o.resp.TaskSid, o.resp.Room.UniqueName, o.grant.Identity, o.latency.Round(time.Millisecond))
}
