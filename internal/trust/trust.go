// Package trust assigns placeholder confidence values to submitted records.
// The scores carry no real signal; they only drive the GREEN/ORANGE/RED
// display tiers.
package trust

import (
	"math"
	"math/rand"
	"sync"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

const (
	GreenThreshold  = 80
	OrangeThreshold = 60
)

// StatusFor maps a trust score onto its display tier.
func StatusFor(score int) models.TrustStatus {
	switch {
	case score >= GreenThreshold:
		return models.TrustGreen
	case score >= OrangeThreshold:
		return models.TrustOrange
	default:
		return models.TrustRed
	}
}

type Scorer interface {
	Score(r models.Record) int
}

type Verifier interface {
	Verify(a models.AidDistribution) bool
}

// RandomScorer implements both Scorer and Verifier from one random source.
type RandomScorer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomScorer(seed int64) *RandomScorer {
	return &RandomScorer{rnd: rand.New(rand.NewSource(seed))}
}

// uniform returns a value in [0, n).
func (s *RandomScorer) uniform(n float64) float64 {
	return s.rnd.Float64() * n
}

// Score returns round(70 + U(0,15) + U(0,10) + U(0,5)) for disaster surveys
// and round(60 + U(0,40)) for agriculture surveys. Other kinds score 0.
func (s *RandomScorer) Score(r models.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Kind() {
	case models.KindDisaster:
		heuristic := s.uniform(15)
		consistency := s.uniform(10)
		peer := s.uniform(5)
		return int(math.Round(70 + heuristic + consistency + peer))
	case models.KindAgriculture:
		return int(math.Round(60 + s.uniform(40)))
	default:
		return 0
	}
}

// Verify marks roughly 70% of distributions as verified.
func (s *RandomScorer) Verify(models.AidDistribution) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() > 0.3
}

// Fixed is a deterministic Scorer and Verifier.
type Fixed struct {
	Value    int
	Verified bool
}

func (f Fixed) Score(models.Record) int             { return f.Value }
func (f Fixed) Verify(models.AidDistribution) bool { return f.Verified }
