package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorHandlerWritesEnvelope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
		wantLevel  zapcore.Level
	}{
		{
			name:       "request error with details",
			err:        NewError(http.StatusBadRequest, CodeValidation, "Geçersiz istek").WithDetails(map[string]string{"title": "Başlık zorunludur"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
			wantMsg:    "Geçersiz istek",
			wantLevel:  zapcore.WarnLevel,
		},
		{
			name:       "fiber error",
			err:        fiber.NewError(http.StatusNotFound, "Cannot GET /nope"),
			wantStatus: http.StatusNotFound,
			wantCode:   CodeNotFound,
			wantMsg:    "Cannot GET /nope",
			wantLevel:  zapcore.WarnLevel,
		},
		{
			name:       "unexpected error is not leaked",
			err:        errors.New("db exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
			wantMsg:    genericMessage,
			wantLevel:  zapcore.ErrorLevel,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zapcore.DebugLevel)
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.New(core))})
			app.Get("/fail", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}

			body, _ := io.ReadAll(resp.Body)
			var env struct {
				Success bool            `json:"success"`
				Message string          `json:"message"`
				Code    string          `json:"code"`
				Details json.RawMessage `json:"details"`
			}
			if err := json.Unmarshal(body, &env); err != nil {
				t.Fatalf("json.Unmarshal() error = %v, body=%s", err, body)
			}
			if env.Success {
				t.Fatal("success = true, want false")
			}
			if env.Code != tt.wantCode || env.Message != tt.wantMsg {
				t.Fatalf("envelope = %s/%q, want %s/%q", env.Code, env.Message, tt.wantCode, tt.wantMsg)
			}

			entries := logs.All()
			if len(entries) != 1 || entries[0].Level != tt.wantLevel {
				t.Fatalf("log entries = %+v, want one at %s", entries, tt.wantLevel)
			}
		})
	}
}

func TestOKWritesSuccessEnvelope(t *testing.T) {
	t.Parallel()

	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error {
		return OK(c, http.StatusCreated, map[string]int{"id": 7})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if string(body) != `{"success":true,"data":{"id":7}}` {
		t.Fatalf("body = %s", body)
	}
}
