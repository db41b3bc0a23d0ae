package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkvision/parking-backend-go/internal/config"
	"github.com/parkvision/parking-backend-go/internal/database"
	"github.com/parkvision/parking-backend-go/internal/occupancy"
)

// The database handle is a process-wide singleton, so every router test
// shares one temp database initialized here.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	dir, err := os.MkdirTemp("", "parking-api-test")
	if err != nil {
		panic(err)
	}
	if err := database.Init(database.Config{Path: filepath.Join(dir, "test.db")}); err != nil {
		panic(err)
	}
	if err := database.NewMigrationManager(database.GetDB()).Migrate(); err != nil {
		panic(err)
	}

	code := m.Run()
	database.Close()
	os.RemoveAll(dir)
	os.Exit(code)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:      ":0",
		RateLimit: 10000,
		Engine:    occupancy.DefaultConfig(),
	}
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRouterSmoke(t *testing.T) {
	router := SetupRouter(testConfig())

	w := doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// Create a camera and a slot, then look the slot up by point.
	w = doJSON(router, http.MethodPost, "/api/cameras", `{"name":"gate camera"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var camera struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &camera))
	require.NotEmpty(t, camera.ID)

	slotBody := `{"camera_id":"` + camera.ID + `","name":"A1","polygon":"{\"type\":\"Polygon\",\"coordinates\":[[[0,0],[0.4,0],[0.4,0.4],[0,0.4],[0,0]]]}"}`
	w = doJSON(router, http.MethodPost, "/api/parking-slots", slotBody)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/api/cameras/"+camera.ID+"/parking-slots", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A1")

	w = doJSON(router, http.MethodGet, "/api/cameras/"+camera.ID+"/slot-at-point?x=0.2&y=0.2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":true`)

	w = doJSON(router, http.MethodGet, "/api/cameras/"+camera.ID+"/slot-at-point?x=0.9&y=0.9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"found":false`)
}

func TestRouterValidationErrors(t *testing.T) {
	router := SetupRouter(testConfig())

	w := doJSON(router, http.MethodPost, "/api/cameras", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/videos/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodPost, "/api/parking-slots",
		`{"camera_id":"does-not-exist","name":"A1","polygon":"{}"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/cameras/x/slot-at-point?x=abc&y=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouterAuthGuardsMutations(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "router-test-secret"
	router := SetupRouter(cfg)

	w := doJSON(router, http.MethodPost, "/api/cameras", `{"name":"locked"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open.
	w = doJSON(router, http.MethodGet, "/api/cameras", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
