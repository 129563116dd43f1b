// Command genmock generates deterministic attempt-request fixtures for the
// pipeline and integration tests, plus the scored results the current model
// produces for them. Every team appears as both home and offense.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/attempt_requests.json \
//	  -scored-out data/mock/attempt_requests_scored.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/jonboulle/clockwork"
)

// fixtureTime is the scored_at stamp of every generated result.
var fixtureTime = time.Date(2015, time.November, 22, 18, 0, 0, 0, time.UTC)

var (
	distances = []float64{55, 60, 63, 67, 70, 75, 80, 83}
	temps     = []float64{-5, 18, 35, 52, 68, 85, 104}
	winds     = []float64{0, 3, 8, 14, 22}
	rains     = []float64{0, 10, 40, 75, 100}
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the attempt-request fixture")
	scoredOut := flag.String("scored-out", "", "optional output path for the scored results")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	model, err := domain.DefaultModel()
	if err != nil {
		return err
	}

	// Set a fixed clock for reproducible scored_at timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	requests := generateRequests(model.Teams())
	log.Printf("generated %d requests", len(requests))

	if err := writeJSON(*out, requests); err != nil {
		return fmt.Errorf("writing request fixture: %w", err)
	}
	log.Printf("wrote request fixture: %s", *out)

	if *scoredOut == "" {
		return nil
	}

	scored := make([]domain.ScoredAttempt, 0, len(requests))
	for _, req := range requests {
		s, err := domain.ScoreRequest(model, req)
		if err != nil {
			return err
		}
		scored = append(scored, s)
	}
	if err := writeJSON(*scoredOut, scored); err != nil {
		return fmt.Errorf("writing scored fixture: %w", err)
	}
	log.Printf("wrote scored fixture: %s", *scoredOut)

	printStats(scored)
	return nil
}

// generateRequests pairs each home team with the team n/2 places after it as
// offense and cycles the weather and distance grids. A second set sends
// explicit venue flags with an override, the way a what-if query does.
func generateRequests(teams []domain.Team) []domain.AttemptRequest {
	n := len(teams)
	requests := make([]domain.AttemptRequest, 0, 2*n)

	for i, home := range teams {
		offense := teams[(i+n/2)%n]
		requests = append(requests, domain.AttemptRequest{
			ID: fmt.Sprintf("fg-%s-%s-%02d", home.Code, offense.Code, i),
			Attempt: domain.Attempt{
				Temp:         domain.Ptr(temps[i%len(temps)]),
				Wind:         domain.Ptr(winds[i%len(winds)]),
				YFOG:         domain.Ptr(distances[i%len(distances)]),
				ChanceOfRain: domain.Ptr(rains[i%len(rains)]),
				Home:         domain.Ptr(home.Code),
				Offense:      domain.Ptr(offense.Code),
			},
		})
	}

	for i, team := range teams {
		requests = append(requests, domain.AttemptRequest{
			ID: fmt.Sprintf("fg-%s-whatif-%02d", team.Code, i),
			Attempt: domain.Attempt{
				KickerCode:   domain.Ptr(team.KickerCode),
				Temp:         domain.Ptr(temps[(i+3)%len(temps)]),
				Wind:         domain.Ptr(winds[(i+2)%len(winds)]),
				YFOG:         domain.Ptr(distances[(i+5)%len(distances)]),
				ChanceOfRain: domain.Ptr(rains[(i+1)%len(rains)]),
				IsDome:       domain.Ptr(team.Indoor()),
				IsTurf:       domain.Ptr(team.Turf()),
			},
			Overrides: &domain.Attempt{
				YFOG: domain.Ptr(distances[(i+5)%len(distances)] - 5),
			},
		})
	}

	return requests
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(scored []domain.ScoredAttempt) {
	if len(scored) == 0 {
		return
	}
	lo, hi := scored[0], scored[0]
	var sum float64
	indoor := 0
	for _, s := range scored {
		sum += s.Probability
		if s.Probability < lo.Probability {
			lo = s
		}
		if s.Probability > hi.Probability {
			hi = s
		}
		if s.Resolved.IsDome != nil && *s.Resolved.IsDome {
			indoor++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d (indoor %d)\n", len(scored), indoor)
	fmt.Printf("Mean probability: %.5f\n", sum/float64(len(scored)))
	fmt.Printf("Lowest: %s %.5f\n", lo.ID, lo.Probability)
	fmt.Printf("Highest: %s %.5f\n", hi.ID, hi.Probability)
}
