// Package aggregate derives the HQ dashboard views from a record snapshot.
// Every function is a pure linear scan over its input; nothing is cached.
package aggregate

import (
	"math"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

type Casualties struct {
	PeopleAffected int `json:"peopleAffected"`
	Injured        int `json:"injured"`
	Critical       int `json:"critical"`
	Dead           int `json:"dead"`
	Trapped        int `json:"trapped"`
}

type TrustBreakdown struct {
	Green  int `json:"green"`
	Orange int `json:"orange"`
	Red    int `json:"red"`
}

type AidSummary struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
}

// LocationBreakdown sums peopleAffected per location status. Surveys with an
// unrecognized status count toward no bucket.
type LocationBreakdown struct {
	Field     int `json:"inField"`
	Shelter   int `json:"inShelter"`
	Hospital  int `json:"inHospital"`
	Evacuated int `json:"evacuated"`
}

func (l LocationBreakdown) Total() int {
	return l.Field + l.Shelter + l.Hospital + l.Evacuated
}

type AgricultureSummary struct {
	Surveys          int `json:"surveys"`
	AvgDamagePercent int `json:"avgDamagePercent"`
	AvgTrustScore    int `json:"avgTrustScore"`
}

type Stats struct {
	DisasterSurveys int                `json:"disasterSurveys"`
	Casualties      Casualties         `json:"casualties"`
	Trust           TrustBreakdown     `json:"trust"`
	AvgTrustScore   int                `json:"avgTrustScore"`
	Aid             AidSummary         `json:"aid"`
	Locations       LocationBreakdown  `json:"locations"`
	Agriculture     AgricultureSummary `json:"agriculture"`
}

// Summarize computes every dashboard statistic from the given collections.
func Summarize(disasters []models.DisasterSurvey, agriculture []models.AgricultureSurvey, aid []models.AidDistribution) Stats {
	return Stats{
		DisasterSurveys: len(disasters),
		Casualties:      SumCasualties(disasters),
		Trust:           CountTrust(disasters),
		AvgTrustScore:   AverageTrustScore(disasters),
		Aid:             SummarizeAid(aid),
		Locations:       PartitionByLocation(disasters),
		Agriculture:     SummarizeAgriculture(agriculture),
	}
}

func SumCasualties(disasters []models.DisasterSurvey) Casualties {
	var c Casualties
	for _, s := range disasters {
		c.PeopleAffected = addCount(c.PeopleAffected, s.PeopleAffected)
		c.Injured = addCount(c.Injured, s.Injured)
		c.Critical = addCount(c.Critical, s.Critical)
		c.Dead = addCount(c.Dead, s.Dead)
		c.Trapped = addCount(c.Trapped, s.Trapped)
	}
	return c
}

func CountTrust(disasters []models.DisasterSurvey) TrustBreakdown {
	var t TrustBreakdown
	for _, s := range disasters {
		switch s.TrustStatus {
		case models.TrustGreen:
			t.Green++
		case models.TrustOrange:
			t.Orange++
		case models.TrustRed:
			t.Red++
		}
	}
	return t
}

// AverageTrustScore is the rounded mean score, or 0 for no surveys.
func AverageTrustScore(disasters []models.DisasterSurvey) int {
	if len(disasters) == 0 {
		return 0
	}
	total := 0
	for _, s := range disasters {
		total += s.TrustScore
	}
	return roundDiv(total, len(disasters))
}

func SummarizeAid(aid []models.AidDistribution) AidSummary {
	sum := AidSummary{Total: len(aid)}
	for _, a := range aid {
		if a.Verified {
			sum.Verified++
		}
	}
	sum.Pending = sum.Total - sum.Verified
	return sum
}

func PartitionByLocation(disasters []models.DisasterSurvey) LocationBreakdown {
	var l LocationBreakdown
	for _, s := range disasters {
		switch s.LocationStatus {
		case models.LocationField:
			l.Field = addCount(l.Field, s.PeopleAffected)
		case models.LocationShelter:
			l.Shelter = addCount(l.Shelter, s.PeopleAffected)
		case models.LocationHospital:
			l.Hospital = addCount(l.Hospital, s.PeopleAffected)
		case models.LocationEvacuated:
			l.Evacuated = addCount(l.Evacuated, s.PeopleAffected)
		}
	}
	return l
}

func SummarizeAgriculture(surveys []models.AgricultureSurvey) AgricultureSummary {
	sum := AgricultureSummary{Surveys: len(surveys)}
	if len(surveys) == 0 {
		return sum
	}
	damage, score := 0, 0
	for _, s := range surveys {
		damage += s.DamagePercent
		score += s.TrustScore
	}
	sum.AvgDamagePercent = roundDiv(damage, len(surveys))
	sum.AvgTrustScore = roundDiv(score, len(surveys))
	return sum
}

// addCount adds a clamped count to total, saturating at math.MaxInt.
func addCount(total, n int) int {
	n = models.ClampCount(n)
	if total > math.MaxInt-n {
		return math.MaxInt
	}
	return total + n
}

// roundDiv rounds half away from zero.
func roundDiv(total, n int) int {
	return int(math.Round(float64(total) / float64(n)))
}
