// Package api exposes the typed backend endpoints on top of apiclient and
// unwraps the backend response envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/session"
	"go.uber.org/zap"
)

// SessionStore persists the signed-in user.
type SessionStore interface {
	Save(ctx context.Context, s session.Session) error
	Clear(ctx context.Context) error
}

// SearchRecorder remembers search queries.
type SearchRecorder interface {
	Add(ctx context.Context, query string) error
}

type Service struct {
	client   *apiclient.Client
	sessions SessionStore
	recent   SearchRecorder
	logger   *zap.Logger
}

type Option func(*Service)

func WithSessionStore(sessions SessionStore) Option {
	return func(s *Service) { s.sessions = sessions }
}

func WithSearchRecorder(recent SearchRecorder) Option {
	return func(s *Service) { s.recent = recent }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(client *apiclient.Client, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is required")
	}

	s := &Service{
		client: client,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// envelope is the backend response wrapper. Success is a pointer so bare,
// unwrapped bodies can be told apart from an explicit failure.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Error   json.RawMessage `json:"error"`
	Details json.RawMessage `json:"details"`
}

// call performs spec and decodes the envelope payload into T.
func call[T any](ctx context.Context, s *Service, spec apiclient.RequestSpec) (T, error) {
	var out T

	var raw json.RawMessage
	if err := s.client.Do(ctx, spec, &raw); err != nil {
		return out, err
	}
	if err := unwrap(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

// exec performs spec and discards any payload.
func exec(ctx context.Context, s *Service, spec apiclient.RequestSpec) error {
	_, err := call[json.RawMessage](ctx, s, spec)
	return err
}

func unwrap(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}

	// Bare arrays and scalars are never wrapped.
	if trimmed[0] != '{' {
		return decodePayload(trimmed, out)
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return invalidResponse(err)
	}

	if env.Success != nil && !*env.Success {
		return envelopeError(env)
	}

	if env.Success == nil && len(env.Data) == 0 {
		return decodePayload(trimmed, out)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return decodePayload(env.Data, out)
}

func decodePayload(raw []byte, out any) error {
	if rawOut, ok := out.(*json.RawMessage); ok {
		*rawOut = append((*rawOut)[:0], raw...)
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return invalidResponse(err)
	}
	return nil
}

func envelopeError(env envelope) *apiclient.APIError {
	apiErr := &apiclient.APIError{
		Message: apiclient.GenericMessage,
		Status:  http.StatusOK,
		Code:    apiclient.CodeUnknown,
	}

	if msg := strings.TrimSpace(env.Message); msg != "" {
		apiErr.Message = msg
	} else {
		var errMsg string
		if json.Unmarshal(env.Error, &errMsg) == nil && strings.TrimSpace(errMsg) != "" {
			apiErr.Message = strings.TrimSpace(errMsg)
		}
	}
	if code := strings.TrimSpace(env.Code); code != "" {
		apiErr.Code = code
	}
	if len(env.Details) > 0 && string(env.Details) != "null" {
		apiErr.Details = env.Details
	}
	return apiErr
}

func invalidResponse(err error) *apiclient.APIError {
	return &apiclient.APIError{
		Message: apiclient.GenericMessage,
		Status:  http.StatusOK,
		Code:    apiclient.CodeInvalidResponse,
		Cause:   err,
	}
}

func idPath(format string, id int) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: invalid id %d", domain.ErrValidation, id)
	}
	return fmt.Sprintf(format, id), nil
}
