package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type Kind string

const (
	KindDisaster    Kind = "disaster"
	KindAgriculture Kind = "agriculture"
	KindAid         Kind = "aid"
)

// Kinds lists every record kind in storage order.
var Kinds = []Kind{KindDisaster, KindAgriculture, KindAid}

// StorageKey is the key the collection for k is persisted under.
func (k Kind) StorageKey() string {
	switch k {
	case KindDisaster:
		return "disasterSurveys"
	case KindAgriculture:
		return "agricultureSurveys"
	case KindAid:
		return "aidDistributions"
	default:
		return ""
	}
}

// IDPrefix is prepended to the millisecond counter when issuing identifiers.
func (k Kind) IDPrefix() string {
	switch k {
	case KindDisaster:
		return "DS"
	case KindAgriculture:
		return "AG"
	case KindAid:
		return "AID"
	default:
		return ""
	}
}

// Record is implemented by every submitted record type.
type Record interface {
	Kind() Kind
	ID() string
	Location() string
}

type TrustStatus string

const (
	TrustGreen  TrustStatus = "GREEN"
	TrustOrange TrustStatus = "ORANGE"
	TrustRed    TrustStatus = "RED"
)

type DisasterType string

const (
	DisasterFlood            DisasterType = "Flood"
	DisasterEarthquake       DisasterType = "Earthquake"
	DisasterCyclone          DisasterType = "Cyclone"
	DisasterLandslide        DisasterType = "Landslide"
	DisasterFire             DisasterType = "Fire"
	DisasterBuildingCollapse DisasterType = "Building Collapse"
	DisasterOther            DisasterType = "Other"
)

var DisasterTypes = []DisasterType{
	DisasterFlood, DisasterEarthquake, DisasterCyclone, DisasterLandslide,
	DisasterFire, DisasterBuildingCollapse, DisasterOther,
}

type LocationStatus string

const (
	LocationField     LocationStatus = "Field"
	LocationShelter   LocationStatus = "Shelter"
	LocationHospital  LocationStatus = "Hospital"
	LocationEvacuated LocationStatus = "Evacuated"
)

var LocationStatuses = []LocationStatus{LocationField, LocationShelter, LocationHospital, LocationEvacuated}

type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

type DisasterSurvey struct {
	SurveyID       string         `json:"surveyId" yaml:"surveyId"`
	DigiPin        string         `json:"digiPin" yaml:"digiPin"` // demo location code
	GPS            *GeoPoint      `json:"gps,omitempty" yaml:"gps,omitempty"`
	PeopleAffected int            `json:"peopleAffected" yaml:"peopleAffected"`
	Injured        int            `json:"injured" yaml:"injured"`
	Critical       int            `json:"critical" yaml:"critical"`
	Dead           int            `json:"dead" yaml:"dead"`
	Trapped        int            `json:"trapped" yaml:"trapped"`
	DisasterType   DisasterType   `json:"disasterType" yaml:"disasterType"`
	AreaCondition  string         `json:"areaCondition" yaml:"areaCondition"`
	LocationStatus LocationStatus `json:"locationStatus" yaml:"locationStatus"`
	PhotoEvidence  string         `json:"photoEvidence,omitempty" yaml:"photoEvidence,omitempty"` // opaque reference from the capture device
	TrustScore     int            `json:"trustScore" yaml:"trustScore"`
	TrustStatus    TrustStatus    `json:"trustStatus" yaml:"trustStatus"`
	Timestamp      time.Time      `json:"timestamp" yaml:"-"`
	OfficerName    string         `json:"officerName,omitempty" yaml:"officerName,omitempty"`
}

func (s DisasterSurvey) Kind() Kind { return KindDisaster }
func (s DisasterSurvey) ID() string { return s.SurveyID }
func (s DisasterSurvey) Location() string { return s.DigiPin }

// MaxCount bounds every casualty count so weighted sums cannot overflow int.
const MaxCount = 1_000_000_000

// ClampCount limits n to 0..MaxCount.
func ClampCount(n int) int {
	return min(max(n, 0), MaxCount)
}

// Priority is the rescue triage weight: critical outranks trapped outranks injured.
func (s DisasterSurvey) Priority() int {
	return ClampCount(s.Critical)*10 + ClampCount(s.Trapped)*8 + ClampCount(s.Injured)*2
}

type AgricultureSurvey struct {
	SurveyID      string      `json:"surveyId" yaml:"surveyId"`
	DigiPin       string      `json:"digiPin" yaml:"digiPin"`
	GPS           *GeoPoint   `json:"gps,omitempty" yaml:"gps,omitempty"`
	Crop          string      `json:"crop" yaml:"crop"`
	DamageCause   string      `json:"damageCause" yaml:"damageCause"`
	DamagePercent int         `json:"damagePercent" yaml:"damagePercent"`
	TrustScore    int         `json:"trustScore" yaml:"trustScore"`
	TrustStatus   TrustStatus `json:"trustStatus" yaml:"trustStatus"`
	Timestamp     time.Time   `json:"timestamp" yaml:"-"`
	OfficerName   string      `json:"officerName,omitempty" yaml:"officerName,omitempty"`
}

func (s AgricultureSurvey) Kind() Kind { return KindAgriculture }
func (s AgricultureSurvey) ID() string { return s.SurveyID }
func (s AgricultureSurvey) Location() string { return s.DigiPin }

type AidDistribution struct {
	AidID       string    `json:"aidId" yaml:"aidId"`
	DigiPin     string    `json:"digiPin" yaml:"digiPin"`
	AidType     string    `json:"aidType" yaml:"aidType"`
	Quantity    int       `json:"quantity" yaml:"quantity"`
	Verified    bool      `json:"verified" yaml:"verified"`
	Timestamp   time.Time `json:"timestamp" yaml:"-"`
	OfficerName string    `json:"officerName,omitempty" yaml:"officerName,omitempty"`
}

func (a AidDistribution) Kind() Kind { return KindAid }
func (a AidDistribution) ID() string { return a.AidID }
func (a AidDistribution) Location() string { return a.DigiPin }

type HospitalStatus struct {
	DigiPin       string    `json:"digiPin" yaml:"digiPin"`
	Critical      int       `json:"critical" yaml:"critical"`
	Stable        int       `json:"stable" yaml:"stable"`
	Dead          int       `json:"dead" yaml:"dead"`
	BedsAvailable int       `json:"bedsAvailable" yaml:"bedsAvailable"`
	LastUpdated   time.Time `json:"lastUpdated" yaml:"-"`
}

// Casers are stateful, so one is built per call.
func normalize(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.Join(strings.Fields(s), " ")))
}

// ParseDisasterType accepts any casing and spacing of a known disaster type.
func ParseDisasterType(s string) (DisasterType, bool) {
	n := DisasterType(normalize(s))
	for _, t := range DisasterTypes {
		if t == n {
			return t, true
		}
	}
	return "", false
}

func ParseLocationStatus(s string) (LocationStatus, bool) {
	n := LocationStatus(normalize(s))
	for _, l := range LocationStatuses {
		if l == n {
			return l, true
		}
	}
	return "", false
}
