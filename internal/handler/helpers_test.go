package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/aivt-api/internal/dto"
	"github.com/noah-isme/aivt-api/internal/handler"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

type testApp struct {
	app      *fiber.App
	registry service.CaseRegistry
	dir      string
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "aivt_data.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := zerolog.New(io.Discard)
	store := repository.NewCaseStore(db, dbPath)
	registry := service.NewCaseRegistry(store, nil, log)
	cases := service.NewCaseService(registry, nil, dto.NewValidator(), log)
	exports := service.NewExportService(registry, store, log)

	app := fiber.New()
	api := app.Group("/api")
	handler.NewCaseHandler(cases, log).Register(api.Group("/cases"))
	handler.NewReportHandler(cases, exports, filepath.Join(dir, "aivt_data.txt"), filepath.Join(dir, "aivt_data_backup.db"), log).Register(api.Group("/reports"))
	handler.NewSeedHandler(service.NewSeedService(registry, true, log), log).Register(api.Group("/seed"))

	return testApp{app: app, registry: registry, dir: dir}
}

func (a testApp) do(t *testing.T, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(raw)
}

func casePath(id int, suffix ...string) string {
	return fmt.Sprintf("/api/cases/%d", id) + strings.Join(suffix, "")
}

func cheatingPayload() map[string]interface{} {
	return map[string]interface{}{
		"kind": "cheating",
		"student": map[string]interface{}{
			"enrollment_number": "20230002",
			"full_name":         "Mary Davis",
			"email":             "mary.davis@university.edu",
			"department":        "Mathematics",
		},
		"incident_date":          "2024-03-20",
		"reporting_faculty":      "Prof. Wilson",
		"gravity_level":          4,
		"incident_description":   "Student used unauthorized notes during exam",
		"supporting_evidence":    "Security camera footage",
		"cheating_method":        "Hidden notes under desk",
		"unauthorized_materials": "Cheat sheets, smartphone",
	}
}
