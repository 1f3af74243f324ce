// Package report renders the HQ dashboard as downloadable XLSX and PDF files.
package report

import (
	"time"

	"github.com/mr1hm/go-field-mesh/internal/aggregate"
	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/store"
)

// Dashboard is everything an export shows, computed once from a snapshot.
type Dashboard struct {
	GeneratedAt time.Time
	Stats       aggregate.Stats
	Queue       []aggregate.Ranked
	Aid         []models.AidDistribution
}

func Build(snap *store.Snapshot, now time.Time) Dashboard {
	return Dashboard{
		GeneratedAt: now,
		Stats:       aggregate.Summarize(snap.Disasters, snap.Agriculture, snap.Aid),
		Queue:       aggregate.RescuePriority(snap.Disasters, aggregate.RescueQueueSize),
		Aid:         aggregate.Recent(snap.Aid, len(snap.Aid)),
	}
}

type summaryLine struct {
	label string
	value int
}

func summaryLines(s aggregate.Stats) []summaryLine {
	return []summaryLine{
		{"Disaster surveys", s.DisasterSurveys},
		{"People affected", s.Casualties.PeopleAffected},
		{"Injured", s.Casualties.Injured},
		{"Critical", s.Casualties.Critical},
		{"Dead", s.Casualties.Dead},
		{"Trapped", s.Casualties.Trapped},
		{"Trust GREEN", s.Trust.Green},
		{"Trust ORANGE", s.Trust.Orange},
		{"Trust RED", s.Trust.Red},
		{"Average trust score", s.AvgTrustScore},
		{"In field", s.Locations.Field},
		{"In shelter", s.Locations.Shelter},
		{"In hospital", s.Locations.Hospital},
		{"Evacuated", s.Locations.Evacuated},
		{"Aid distributions", s.Aid.Total},
		{"Aid verified", s.Aid.Verified},
		{"Aid pending", s.Aid.Pending},
		{"Agriculture surveys", s.Agriculture.Surveys},
		{"Average crop damage %", s.Agriculture.AvgDamagePercent},
	}
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func verifiedLabel(v bool) string {
	if v {
		return "Verified"
	}
	return "Pending"
}
