package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-field-mesh/internal/aggregate"
	"github.com/mr1hm/go-field-mesh/internal/auth"
	"github.com/mr1hm/go-field-mesh/internal/feed"
	"github.com/mr1hm/go-field-mesh/internal/intake"
	"github.com/mr1hm/go-field-mesh/internal/models"
	"github.com/mr1hm/go-field-mesh/internal/seed"
	"github.com/mr1hm/go-field-mesh/internal/storage"
	"github.com/mr1hm/go-field-mesh/internal/store"
	"github.com/mr1hm/go-field-mesh/internal/trust"
)

const (
	fieldPIN = "112233"
	hqPIN    = "223344"
)

type testEnv struct {
	router      *gin.Engine
	store       *store.Store
	intake      *intake.Manager
	broadcaster *feed.Broadcaster
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ds, err := seed.Load(time.Now().Add(-time.Hour))
	require.NoError(t, err)

	kv := storage.NewMemoryKV()
	st := store.New(kv, ds)
	session := auth.NewSession(kv, fieldPIN, hqPIN)
	broadcaster := feed.NewBroadcaster()
	manager := intake.NewManager(st, trust.Fixed{Value: 90, Verified: true}, trust.Fixed{Verified: true}, session, 10,
		intake.WithPublisher(broadcaster),
		intake.WithLocationCheck(ds.IsKnownLocation),
	)

	ctx, cancel := context.WithCancel(context.Background())
	manager.Start(ctx)
	t.Cleanup(func() {
		manager.Stop()
		cancel()
		broadcaster.Close()
	})

	router := gin.New()
	handler := NewHandler(st, manager, session, auth.NewTokens("test-secret", time.Hour), broadcaster, ds.Hospitals)
	handler.RegisterRoutes(router)

	return &testEnv{router: router, store: st, intake: manager, broadcaster: broadcaster}
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, pin string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", "", gin.H{"pin": pin})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		body   any
		status int
		role   models.Role
	}{
		{"field pin", gin.H{"pin": fieldPIN}, http.StatusOK, models.RoleField},
		{"hq pin", gin.H{"pin": hqPIN}, http.StatusOK, models.RoleHQ},
		{"wrong pin", gin.H{"pin": "000000"}, http.StatusUnauthorized, ""},
		{"missing pin", gin.H{}, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/auth/login", "", tt.body)
			require.Equal(t, tt.status, w.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			if tt.status == http.StatusOK {
				assert.Equal(t, string(tt.role), resp["role"])
				assert.NotEmpty(t, resp["token"])
			} else {
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestLogin_InvalidPINMessage(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{"pin": "999999"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid PIN")
}

func TestLogin_RegistersOfficer(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/login", "", gin.H{
		"pin":     fieldPIN,
		"officer": gin.H{"name": "Ravi", "role": "Surveyor"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token   string         `json:"token"`
		Officer models.Officer `json:"officer"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Ravi", resp.Officer.Name)
	assert.True(t, strings.HasPrefix(resp.Officer.DeviceID, "DEV-"))

	w = env.do(http.MethodPost, "/api/field/aid", resp.Token, gin.H{"aidType": "Water", "quantity": 5})
	require.Equal(t, http.StatusCreated, w.Code)
	var aid models.AidDistribution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &aid))
	assert.Equal(t, "Ravi", aid.OfficerName)
}

func TestLogout(t *testing.T) {
	env := setupTestEnv(t)
	env.login(t, hqPIN)

	w := env.do(http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleGate(t *testing.T) {
	env := setupTestEnv(t)
	fieldToken := env.login(t, fieldPIN)
	hqToken := env.login(t, hqPIN)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/hq/stats", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/hq/stats", "not-a-token", nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/api/hq/stats", fieldToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/field/aid", hqToken, gin.H{}).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/hq/stats", hqToken, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/field/recent", fieldToken, nil).Code)
}

func TestSubmitDisaster(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, fieldPIN)

	w := env.do(http.MethodPost, "/api/field/disaster", token, gin.H{
		"digiPin":        "DP-HACK-A1-003",
		"peopleAffected": "25",
		"critical":       "9",
		"trapped":        8,
		"injured":        "12 people",
		"disasterType":   "Landslide",
		"locationStatus": "Field",
		"gps":            gin.H{"lat": 19.11, "lng": 73.01},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var survey models.DisasterSurvey
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &survey))
	assert.True(t, strings.HasPrefix(survey.SurveyID, "DS-"))
	assert.Equal(t, 25, survey.PeopleAffected)
	assert.Equal(t, 12, survey.Injured)
	assert.Equal(t, models.DisasterLandslide, survey.DisasterType)
	assert.Equal(t, models.TrustGreen, survey.TrustStatus)

	assert.Len(t, env.store.Snapshot().Disasters, 4)
}

func TestSubmitDisaster_InvalidEnum(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, fieldPIN)

	w := env.do(http.MethodPost, "/api/field/disaster", token, gin.H{"disasterType": "Meteor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.store.Snapshot().Disasters, 3)
}

func TestSubmitAgriculture(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, fieldPIN)

	w := env.do(http.MethodPost, "/api/field/agriculture", token, gin.H{
		"digiPin": "DP-HACK-C3-020", "crop": "Sugarcane", "damageCause": "Hail", "damagePercent": "45",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var survey models.AgricultureSurvey
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &survey))
	assert.True(t, strings.HasPrefix(survey.SurveyID, "AG-"))
	assert.Equal(t, 45, survey.DamagePercent)
}

func TestSubmit_MalformedBody(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, fieldPIN)

	req := httptest.NewRequest(http.MethodPost, "/api/field/aid", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStats(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats aggregate.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.DisasterSurveys)
	assert.Equal(t, 68, stats.Casualties.PeopleAffected)
	assert.Equal(t, aggregate.TrustBreakdown{Green: 1, Orange: 1, Red: 1}, stats.Trust)
	assert.Equal(t, 74, stats.AvgTrustScore)
	assert.Equal(t, stats.Casualties.PeopleAffected, stats.Locations.Total())
}

func TestPriority(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/priority", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ranked []aggregate.Ranked
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	require.Len(t, ranked, 3)
	assert.Equal(t, "DS-004", ranked[0].Survey.SurveyID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 138, ranked[0].Priority)

	w = env.do(http.MethodGet, "/api/hq/priority?limit=1", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ranked))
	assert.Len(t, ranked, 1)
}

func TestRecent(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/recent", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Disasters []models.DisasterSurvey  `json:"disasterSurveys"`
		Aid       []models.AidDistribution `json:"aidDistributions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Disasters, 3)
	assert.Equal(t, "DS-004", resp.Disasters[0].SurveyID)
	assert.Len(t, resp.Aid, 3)
}

func TestMap_ReturnsGeoJSON(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/map", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/geo+json", w.Header().Get("Content-Type"))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)
	assert.InDelta(t, 73.0150, fc.Features[0].Geometry.Coordinates[0], 1e-9)
}

func TestHospitals(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/hospitals", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var hospitals []models.HospitalStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hospitals))
	assert.Len(t, hospitals, 2)
}

func TestExports(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	w := env.do(http.MethodGet, "/api/hq/export.xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")

	w = env.do(http.MethodGet, "/api/hq/export.pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestStream_DeliversSubmissions(t *testing.T) {
	env := setupTestEnv(t)
	token := env.login(t, hqPIN)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/hq/stream", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool {
		return env.broadcaster.SubscriberCount() == 1
	}, time.Second, 10*time.Millisecond)

	aid, err := env.intake.SubmitAid(context.Background(), intake.AidForm{AidType: "Water", Quantity: 4})
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event:record", strings.TrimSpace(line))

	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	data, ok := strings.CutPrefix(strings.TrimSpace(line), "data:")
	require.True(t, ok)

	var event struct {
		Kind models.Kind `json:"kind"`
		ID   string      `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, models.KindAid, event.Kind)
	assert.Equal(t, aid.AidID, event.ID)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRateLimitMiddleware_RetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(1))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
