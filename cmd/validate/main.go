// Command validate re-scores an attempt-request fixture and checks the model's
// structural properties on every request: probabilities stay in [0, 1],
// scoring is deterministic, indoor venues ignore weather, rain saturates at
// 50% and temperature is clamped to [0, 100]. With -scored it also compares
// against previously generated results to catch table regressions.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -requests data/mock/attempt_requests.json \
//	  -scored data/mock/attempt_requests_scored.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	requestsPath := flag.String("requests", "", "path to the attempt-request JSON fixture")
	scoredPath := flag.String("scored", "", "optional path to previously scored results")
	modelPath := flag.String("model", "", "YAML model tables replacing the built-in ones")
	flag.Parse()

	if *requestsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(os.Stdout, *requestsPath, *scoredPath, *modelPath))
}

func run(w io.Writer, requestsPath, scoredPath, modelPath string) int {
	// Set a fixed clock matching genmock.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2015, time.November, 22, 18, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== Field Goal Model Validation ===")
	fmt.Fprintln(w)

	model, err := domain.LoadModel(modelPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load model: %v\n", err)
		return 1
	}

	requests, err := loadJSON[domain.AttemptRequest](requestsPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load requests: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateRange(model, requests),
		validateDeterminism(model, requests),
		validateDomeInvariance(model, requests),
		validateRainCap(model, requests),
		validateTemperatureClamp(model, requests),
	}

	if scoredPath != "" {
		scored, err := loadJSON[domain.ScoredAttempt](scoredPath)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load scored results: %v\n", err)
			return 1
		}
		phases = append(phases, validateRegression(model, requests, scored))
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Requests: %d\n", len(requests))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ── Validation phases ──

func validateRange(m *domain.Model, requests []domain.AttemptRequest) *phase {
	p := &phase{name: "Probability range"}
	for _, req := range requests {
		s, err := domain.ScoreRequest(m, req)
		if err != nil {
			p.errorf("%s: %v", req.ID, err)
			continue
		}
		if s.Probability < 0 || s.Probability > 1 || math.IsNaN(s.Probability) {
			p.errorf("%s: probability %v outside [0, 1]", req.ID, s.Probability)
		}
	}
	return p
}

func validateDeterminism(m *domain.Model, requests []domain.AttemptRequest) *phase {
	p := &phase{name: "Determinism"}
	for _, req := range requests {
		first, err1 := domain.ScoreRequest(m, req)
		second, err2 := domain.ScoreRequest(m, req)
		if err1 != nil || err2 != nil {
			continue
		}
		if first.Probability != second.Probability || first.LinearPredictor != second.LinearPredictor {
			p.errorf("%s: %v then %v", req.ID, first.Probability, second.Probability)
		}
	}
	return p
}

func validateDomeInvariance(m *domain.Model, requests []domain.AttemptRequest) *phase {
	p := &phase{name: "Indoor venues ignore weather"}
	for _, req := range requests {
		base, ok := resolved(m, req)
		if !ok || !*base.Resolved.IsDome {
			continue
		}
		weather := domain.Attempt{
			Temp:         domain.Ptr(-20.0),
			Wind:         domain.Ptr(40.0),
			ChanceOfRain: domain.Ptr(100.0),
		}
		checkEqual(p, m, req.ID, base, weather)
	}
	return p
}

func validateRainCap(m *domain.Model, requests []domain.AttemptRequest) *phase {
	p := &phase{name: "Rain saturates at 50%"}
	for _, req := range requests {
		base, ok := resolved(m, req)
		if !ok || *base.Resolved.IsDome {
			continue
		}
		at50, ok := probability(p, m, req.ID, base.Resolved, domain.Attempt{ChanceOfRain: domain.Ptr(50.0)})
		if !ok {
			continue
		}
		for _, rain := range []float64{60, 100, 250} {
			got, ok := probability(p, m, req.ID, base.Resolved, domain.Attempt{ChanceOfRain: domain.Ptr(rain)})
			if ok && got != at50 {
				p.errorf("%s: rain %v scored %v, want %v", req.ID, rain, got, at50)
			}
		}
	}
	return p
}

func validateTemperatureClamp(m *domain.Model, requests []domain.AttemptRequest) *phase {
	p := &phase{name: "Temperature clamped to [0, 100]"}
	for _, req := range requests {
		base, ok := resolved(m, req)
		if !ok || *base.Resolved.IsDome {
			continue
		}
		for _, pair := range [][2]float64{{0, -30}, {100, 120}} {
			want, ok1 := probability(p, m, req.ID, base.Resolved, domain.Attempt{Temp: domain.Ptr(pair[0])})
			got, ok2 := probability(p, m, req.ID, base.Resolved, domain.Attempt{Temp: domain.Ptr(pair[1])})
			if ok1 && ok2 && got != want {
				p.errorf("%s: temp %v scored %v, want %v (temp %v)", req.ID, pair[1], got, want, pair[0])
			}
		}
	}
	return p
}

func validateRegression(m *domain.Model, requests []domain.AttemptRequest, scored []domain.ScoredAttempt) *phase {
	p := &phase{name: "Matches scored fixture"}
	if len(scored) != len(requests) {
		p.errorf("scored fixture has %d results, requests fixture has %d", len(scored), len(requests))
	}

	byID := make(map[string]domain.ScoredAttempt, len(scored))
	for _, s := range scored {
		byID[s.ID] = s
	}
	for _, req := range requests {
		want, ok := byID[req.ID]
		if !ok {
			p.errorf("%s: missing from scored fixture", req.ID)
			continue
		}
		got, err := domain.ScoreRequest(m, req)
		if err != nil {
			p.errorf("%s: %v", req.ID, err)
			continue
		}
		if got.Probability != want.Probability {
			p.errorf("%s: probability %v, fixture has %v", req.ID, got.Probability, want.Probability)
		}
		if !floatEq(got.LinearPredictor, want.LinearPredictor) {
			p.errorf("%s: linear predictor %v, fixture has %v", req.ID, got.LinearPredictor, want.LinearPredictor)
		}
	}
	return p
}

// ── Helpers ──

// resolved scores req and reports whether it succeeded. Failures are left to
// validateRange.
func resolved(m *domain.Model, req domain.AttemptRequest) (domain.ScoredAttempt, bool) {
	s, err := domain.ScoreRequest(m, req)
	if err != nil {
		return domain.ScoredAttempt{}, false
	}
	return s, true
}

// checkEqual compares base's probability with its resolved inputs plus change.
func checkEqual(p *phase, m *domain.Model, id string, base domain.ScoredAttempt, change domain.Attempt) {
	got, ok := probability(p, m, id, base.Resolved, change)
	if ok && got != base.Probability {
		p.errorf("%s: %v after weather change, want %v", id, got, base.Probability)
	}
}

// probability re-scores a resolved attempt with change applied. Resolving is
// idempotent, so the team lookups yield the same venue and kicker.
func probability(p *phase, m *domain.Model, id string, a, change domain.Attempt) (float64, bool) {
	v, err := m.Probability(a, change)
	if err != nil {
		p.errorf("%s: %v", id, err)
		return 0, false
	}
	return v, true
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
