package quickbooks

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotConfigured means no realm or access token could be resolved
	ErrNotConfigured = errors.New("quickbooks is not connected")
	// ErrReconnectRequired means the access token is expired or was rejected
	ErrReconnectRequired = errors.New("quickbooks authorization expired, reconnect required")
	// ErrUpstreamUnavailable wraps transport failures talking to QuickBooks
	ErrUpstreamUnavailable = errors.New("quickbooks is unavailable")
	// ErrInvalidResponse is returned when a response cannot be decoded or narrowed
	ErrInvalidResponse = errors.New("invalid quickbooks response")
)

// UpstreamError is a non-2xx response from the QuickBooks API
type UpstreamError struct {
	Op         string
	StatusCode int
	// Message is the first fault message QuickBooks returned, when present
	Message string
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("quickbooks %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("quickbooks %s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is lets a rejected token match ErrReconnectRequired
func (e *UpstreamError) Is(target error) bool {
	return target == ErrReconnectRequired && e.StatusCode == http.StatusUnauthorized
}

// IsAuthError reports whether err means QuickBooks must be (re)connected
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrReconnectRequired)
}

type faultResponse struct {
	Fault struct {
		Error []struct {
			Message string `json:"Message"`
			Detail  string `json:"Detail"`
			Code    string `json:"code"`
		} `json:"Error"`
		Type string `json:"type"`
	} `json:"Fault"`
}

func (f *faultResponse) message() string {
	if len(f.Fault.Error) == 0 {
		return ""
	}
	first := f.Fault.Error[0]
	if first.Detail != "" && first.Detail != first.Message {
		return first.Message + ": " + first.Detail
	}
	return first.Message
}
