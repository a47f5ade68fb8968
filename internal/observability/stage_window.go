package observability

import (
	"math"
	"slices"
	"sort"
	"sync"
	"time"
)

// StageTargetsP95 are the p95 budgets, in milliseconds, reported next to
// each provisioning stage.
var StageTargetsP95 = map[string]float64{
	"room_create":     800,
	"task_create":     800,
	"token_mint":      5,
	"provision_total": 2000,
}

type StageStats struct {
	Stage       string  `json:"stage"`
	Samples     int     `json:"samples"`
	AvgMS       float64 `json:"avg_ms"`
	P50MS       float64 `json:"p50_ms"`
	P95MS       float64 `json:"p95_ms"`
	MaxMS       float64 `json:"max_ms"`
	TargetP95MS float64 `json:"target_p95_ms,omitempty"`
}

type StageIndicator struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type StageSnapshot struct {
	GeneratedAt time.Time        `json:"generated_at"`
	WindowSize  int              `json:"window_size"`
	Stages      []StageStats     `json:"stages"`
	Indicators  []StageIndicator `json:"indicators,omitempty"`
}

// StageWindow keeps the last size samples of each stage plus plain counters.
type StageWindow struct {
	mu         sync.Mutex
	size       int
	samples    map[string][]float64
	indicators map[string]int
}

func NewStageWindow(size int) *StageWindow {
	if size <= 0 {
		size = 256
	}
	return &StageWindow{
		size:       size,
		samples:    make(map[string][]float64),
		indicators: make(map[string]int),
	}
}

func (w *StageWindow) Observe(stage string, ms float64) {
	if w == nil || stage == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	s := append(w.samples[stage], ms)
	if len(s) > w.size {
		s = s[len(s)-w.size:]
	}
	w.samples[stage] = s
}

func (w *StageWindow) ObserveIndicator(name string) {
	if w == nil || name == "" {
		return
	}
	w.mu.Lock()
	w.indicators[name]++
	w.mu.Unlock()
}

func (w *StageWindow) Snapshot() StageSnapshot {
	snap := StageSnapshot{GeneratedAt: time.Now().UTC(), Stages: []StageStats{}}
	if w == nil {
		return snap
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	snap.WindowSize = w.size
	for stage, values := range w.samples {
		snap.Stages = append(snap.Stages, summarize(stage, values))
	}
	sort.Slice(snap.Stages, func(i, j int) bool { return snap.Stages[i].Stage < snap.Stages[j].Stage })

	for name, count := range w.indicators {
		snap.Indicators = append(snap.Indicators, StageIndicator{Name: name, Count: count})
	}
	sort.Slice(snap.Indicators, func(i, j int) bool { return snap.Indicators[i].Name < snap.Indicators[j].Name })
	return snap
}

func summarize(stage string, values []float64) StageStats {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return StageStats{
		Stage:       stage,
		Samples:     len(sorted),
		AvgMS:       round2(sum / float64(len(sorted))),
		P50MS:       round2(nearestRank(sorted, 0.50)),
		P95MS:       round2(nearestRank(sorted, 0.95)),
		MaxMS:       round2(sorted[len(sorted)-1]),
		TargetP95MS: StageTargetsP95[stage],
	}
}

// nearestRank expects sorted to be non-empty and ascending.
func nearestRank(sorted []float64, q float64) float64 {
	rank := int(math.Ceil(q * float64(len(sorted))))
	return sorted[min(max(rank, 1), len(sorted))-1]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
