package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aivt-api/internal/handler"
	"github.com/noah-isme/aivt-api/internal/repository"
	"github.com/noah-isme/aivt-api/internal/service"
)

type mockSeedService struct {
	err      error
	inserted int
	calls    int
}

func (m *mockSeedService) SeedSampleCases(context.Context) (int, error) {
	m.calls++
	return m.inserted, m.err
}

func TestSeedHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		message    string
	}{
		{name: "disabled", err: service.ErrSeedDisabled, statusCode: fiber.StatusForbidden, message: "seeding disabled"},
		{name: "already seeded", err: service.ErrAlreadySeeded, statusCode: fiber.StatusConflict, message: "case data already present"},
		{name: "persistence", err: repository.ErrPersistenceFailure, statusCode: fiber.StatusInternalServerError, message: "change applied but could not be saved"},
		{name: "generic", err: errors.New("boom"), statusCode: fiber.StatusInternalServerError, message: "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockSeedService{err: tc.err}
			app := fiber.New()
			handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/seed"))

			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/seed/samples", nil))
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.Equal(t, tc.message, response.Message)
			require.Equal(t, 1, svc.calls)
		})
	}
}

func TestSeedHandler_Success(t *testing.T) {
	svc := &mockSeedService{inserted: 3}
	app := fiber.New()
	handler.NewSeedHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/seed"))

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/seed/samples", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Data struct {
			Inserted int `json:"inserted"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, 3, response.Data.Inserted)
}

func TestSeedHandler_SecondSeedConflicts(t *testing.T) {
	app := newTestApp(t)

	require.Equal(t, fiber.StatusCreated, app.do(t, http.MethodPost, "/api/seed/samples", nil).StatusCode)

	resp := app.do(t, http.MethodPost, "/api/seed/samples", nil)
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	require.Equal(t, 3, app.registry.TotalCases())
	require.Len(t, app.registry.SearchByStudent("20230001"), 1)
}
