package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"pos-account-service/internal/config"
	"pos-account-service/internal/logger"
)

// Dispatcher delivers a verification code to an email address and reports
// the outcome as an HTTP-style status code. Implementations must not leak
// transport errors to callers; every failure maps to a status the caller
// can branch on.
type Dispatcher interface {
	Send(ctx context.Context, code, email string) int
}

type codePayload struct {
	UserCode string `json:"userCode"`
	Email    string `json:"email"`
}

// HTTPDispatcher posts codes to the external mail dispatch API.
type HTTPDispatcher struct {
	url    string
	client *http.Client
}

func NewHTTPDispatcher(cfg *config.MailConfig) *HTTPDispatcher {
	return &HTTPDispatcher{
		url: cfg.URL,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send posts {"userCode": code, "email": email} to the mail API. A
// transport timeout maps to 408, any other transport failure to 400,
// otherwise the provider's own status code is returned.
func (d *HTTPDispatcher) Send(ctx context.Context, code, email string) int {
	body, err := json.Marshal(codePayload{UserCode: code, Email: email})
	if err != nil {
		return http.StatusBadRequest
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return http.StatusBadRequest
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			logger.Warn("Mail dispatch timed out",
				zap.String("email", email),
			)
			return http.StatusRequestTimeout
		}
		logger.Warn("Mail dispatch failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return http.StatusBadRequest
	}
	defer resp.Body.Close()

	return resp.StatusCode
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
