// Package seed holds the built-in demo dataset used until a device has
// persisted data of its own.
package seed

import (
	_ "embed"
	"fmt"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

//go:embed seed.yaml
var raw []byte

type Dataset struct {
	Locations   []string                   `yaml:"locations"`
	Disasters   []models.DisasterSurvey    `yaml:"disasterSurveys"`
	Agriculture []models.AgricultureSurvey `yaml:"agricultureSurveys"`
	Aid         []models.AidDistribution   `yaml:"aidDistributions"`
	Hospitals   []models.HospitalStatus    `yaml:"hospitalStatus"`
}

// Load decodes the embedded dataset and stamps every record with now.
func Load(now time.Time) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("error decoding seed dataset: %w", err)
	}

	for i := range ds.Disasters {
		ds.Disasters[i].Timestamp = now
	}
	for i := range ds.Agriculture {
		ds.Agriculture[i].Timestamp = now
	}
	for i := range ds.Aid {
		ds.Aid[i].Timestamp = now
	}
	for i := range ds.Hospitals {
		ds.Hospitals[i].LastUpdated = now
	}
	return &ds, nil
}

// IsKnownLocation reports whether code is one of the demo location codes.
func (d *Dataset) IsKnownLocation(code string) bool {
	return slices.Contains(d.Locations, code)
}
