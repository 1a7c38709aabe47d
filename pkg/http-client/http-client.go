package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/panel-framework/panel-backend/pkg/apihelpers"
)

const DEFAULT_TIMEOUT = 30 * time.Second

// ErrNetworkTimeout marks calls that did not complete within the configured
// timeout. Callers surface these as retryable.
var ErrNetworkTimeout = errors.New("request timed out")

// APIError is a non-2xx response from a backend, with the error code and
// message recovered from the response body when present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend rejected request (%d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Message)
}

type ClientConfig struct {
	RootURL              string
	APIKey               string
	MTLSCertificatePaths *apihelpers.CertificatePaths
	Timeout              time.Duration
}

// errorBody is the error shape shared by the marketplace backends. Some
// variants populate message only, some a list of coded errors.
type errorBody struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	Errors  []struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"errors,omitempty"`
}

// RunHTTPcall performs a JSON request against the configured backend and
// decodes the response into a generic map. Non-2xx responses are returned as
// *APIError, timeouts as ErrNetworkTimeout.
func (cConfig ClientConfig) RunHTTPcall(ctx context.Context, method string, pathname string, payload interface{}) (map[string]interface{}, error) {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewBuffer(jsonData)
	}

	transport, err := getTransportWithMTLSConfig(cConfig.MTLSCertificatePaths)
	if err != nil {
		slog.Error("Error creating transport with mTLS config", slog.String("error", err.Error()))
		return nil, err
	}

	timeout := cConfig.Timeout
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	client := &http.Client{
		Timeout: timeout,
	}
	if transport != nil {
		client.Transport = transport
	}

	url := cConfig.RootURL + pathname
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		slog.Error("unexpected error in preparing http request", slog.String("error", err.Error()))
		return nil, err
	}
	if cConfig.APIKey != "" {
		req.Header.Set("Api-Key", cConfig.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			slog.Warn("http call timed out", slog.String("url", url))
			return nil, ErrNetworkTimeout
		}
		slog.Error("unexpected error in http call", slog.String("error", err.Error()))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp)
	}

	var res map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		slog.Error("Error decoding response", slog.String("error", err.Error()))
		return nil, err
	}
	return res, nil
}

func parseAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    resp.Status,
	}

	var parsed errorBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return apiErr
	}
	if parsed.Message != "" {
		apiErr.Message = parsed.Message
	}
	apiErr.Code = parsed.Code
	if len(parsed.Errors) > 0 {
		if parsed.Errors[0].Message != "" {
			apiErr.Message = parsed.Errors[0].Message
		}
		if apiErr.Code == "" {
			apiErr.Code = parsed.Errors[0].Code
		}
	}
	return apiErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

func getTransportWithMTLSConfig(mTLSCertificatePaths *apihelpers.CertificatePaths) (*http.Transport, error) {
	if mTLSCertificatePaths == nil {
		return nil, nil
	}

	tlsConfig, err := apihelpers.LoadTLSConfig(*mTLSCertificatePaths)
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		TLSClientConfig: tlsConfig,
	}, nil
}
