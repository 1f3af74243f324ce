package aggregate

import (
	"cmp"
	"slices"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

// RescueQueueSize is how many surveys the HQ rescue queue shows.
const RescueQueueSize = 10

type Ranked struct {
	Rank     int                   `json:"rank"`
	Priority int                   `json:"priority"`
	Survey   models.DisasterSurvey `json:"survey"`
}

// RescuePriority ranks disaster surveys by critical*10 + trapped*8 + injured*2,
// highest first, and returns at most limit entries. Limits outside
// 1..RescueQueueSize use RescueQueueSize. Equal priorities order by earlier
// timestamp, then by ID.
func RescuePriority(disasters []models.DisasterSurvey, limit int) []Ranked {
	if limit <= 0 || limit > RescueQueueSize {
		limit = RescueQueueSize
	}

	ranked := make([]Ranked, len(disasters))
	for i, s := range disasters {
		ranked[i] = Ranked{Priority: s.Priority(), Survey: s}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := a.Survey.Timestamp.Compare(b.Survey.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.Survey.SurveyID, b.Survey.SurveyID)
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
