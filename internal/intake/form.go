package intake

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mr1hm/go-field-mesh/internal/models"
)

var ErrInvalidField = errors.New("invalid field")

// FormInt is a numeric form field. It decodes from a JSON number or string;
// anything without a leading integer decodes to 0.
type FormInt int

func (f *FormInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			*f = 0
			return nil
		}
	}
	*f = FormInt(ParseInt(s))
	return nil
}

// ParseInt reads an optional sign and the leading decimal digits of s,
// ignoring surrounding whitespace and any trailing text. "12abc" is 12,
// "3.7" is 3 and input without leading digits is 0.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// count clamps a form count to 0..models.MaxCount.
func count(f FormInt) int {
	return models.ClampCount(int(f))
}

type DisasterForm struct {
	DigiPin        string           `json:"digiPin"`
	GPS            *models.GeoPoint `json:"gps,omitempty"`
	PeopleAffected FormInt          `json:"peopleAffected"`
	Injured        FormInt          `json:"injured"`
	Critical       FormInt          `json:"critical"`
	Dead           FormInt          `json:"dead"`
	Trapped        FormInt          `json:"trapped"`
	DisasterType   string           `json:"disasterType"`
	AreaCondition  string           `json:"areaCondition"`
	LocationStatus string           `json:"locationStatus"`
	PhotoEvidence  string           `json:"photoEvidence,omitempty"`
}

// survey converts the form into a record without identity or trust fields.
// An empty disaster type means Flood and an empty location status means
// Field, matching the form defaults.
func (f DisasterForm) survey() (models.DisasterSurvey, error) {
	dt := models.DisasterFlood
	if strings.TrimSpace(f.DisasterType) != "" {
		parsed, ok := models.ParseDisasterType(f.DisasterType)
		if !ok {
			return models.DisasterSurvey{}, fmt.Errorf("%w: disasterType %q", ErrInvalidField, f.DisasterType)
		}
		dt = parsed
	}

	ls := models.LocationField
	if strings.TrimSpace(f.LocationStatus) != "" {
		parsed, ok := models.ParseLocationStatus(f.LocationStatus)
		if !ok {
			return models.DisasterSurvey{}, fmt.Errorf("%w: locationStatus %q", ErrInvalidField, f.LocationStatus)
		}
		ls = parsed
	}

	return models.DisasterSurvey{
		DigiPin:        strings.TrimSpace(f.DigiPin),
		GPS:            f.GPS,
		PeopleAffected: count(f.PeopleAffected),
		Injured:        count(f.Injured),
		Critical:       count(f.Critical),
		Dead:           count(f.Dead),
		Trapped:        count(f.Trapped),
		DisasterType:   dt,
		AreaCondition:  f.AreaCondition,
		LocationStatus: ls,
		PhotoEvidence:  f.PhotoEvidence,
	}, nil
}

type AgricultureForm struct {
	DigiPin       string           `json:"digiPin"`
	GPS           *models.GeoPoint `json:"gps,omitempty"`
	Crop          string           `json:"crop"`
	DamageCause   string           `json:"damageCause"`
	DamagePercent FormInt          `json:"damagePercent"`
}

// survey keeps damagePercent as entered; it is not range checked.
func (f AgricultureForm) survey() models.AgricultureSurvey {
	return models.AgricultureSurvey{
		DigiPin:       strings.TrimSpace(f.DigiPin),
		GPS:           f.GPS,
		Crop:          f.Crop,
		DamageCause:   f.DamageCause,
		DamagePercent: int(f.DamagePercent),
	}
}

type AidForm struct {
	DigiPin  string  `json:"digiPin"`
	AidType  string  `json:"aidType"`
	Quantity FormInt `json:"quantity"`
}

func (f AidForm) distribution() models.AidDistribution {
	return models.AidDistribution{
		DigiPin:  strings.TrimSpace(f.DigiPin),
		AidType:  f.AidType,
		Quantity: count(f.Quantity),
	}
}
