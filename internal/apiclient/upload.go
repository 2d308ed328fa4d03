package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ustamapp/ustamapp-client/internal/observability"
)

// UploadSpec describes a multipart file upload.
type UploadSpec struct {
	Endpoint     string
	FieldName    string
	FileName     string
	Reader       io.Reader
	Fields       map[string]string
	RequiresAuth bool
	Timeout      time.Duration
}

// Upload posts a multipart body. It is never retried since the reader is
// consumed by the first attempt. Every failure other than 401 carries
// CodeUpload and the original status.
func (c *Client) Upload(ctx context.Context, spec UploadSpec, out any) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("api client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.TrimSpace(spec.Endpoint)
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if spec.Reader == nil {
		return fmt.Errorf("upload reader is required")
	}

	fieldName := strings.TrimSpace(spec.FieldName)
	if fieldName == "" {
		fieldName = "file"
	}
	fileName := strings.TrimSpace(spec.FileName)
	if fileName == "" {
		fileName = "upload"
	}

	ctx, _ = observability.EnsureRequestID(ctx)

	status, body, err := c.execute(ctx, call{
		method:       http.MethodPost,
		endpoint:     endpoint,
		timeout:      spec.Timeout,
		requiresAuth: spec.RequiresAuth,
		attempt:      1,
		prepare: func(req *resty.Request) {
			req.SetHeader("Accept", "application/json")
			req.SetFileReader(fieldName, fileName, spec.Reader)
			if len(spec.Fields) > 0 {
				req.SetFormData(spec.Fields)
			}
		},
	})
	if err == nil {
		err = decodeBody(status, body, out)
	}
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code == CodeUnauthorized {
		return err
	}

	upload := *apiErr
	upload.Code = CodeUpload
	if upload.Message == "" || upload.Message == GenericMessage {
		upload.Message = msgUpload
	}
	return &upload
}
