// Package lazerapi is the HTTP client for the lazer backend: the detection
// submission and report endpoints plus session management.
package lazerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/pshebel/lazer/internal/draft"
)

// ErrRetriable marks transport failures and non-2xx responses where the
// caller should leave local state alone and try the same step again.
var ErrRetriable = errors.New("request failed, retry")

// RejectedError carries the server's message from a 400-class response.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	return "report rejected: " + e.Message
}

// Client talks to the lazer backend. Authenticated calls carry the cached
// session key as "Authorization: Session: <key>".
type Client struct {
	BaseURL    string
	SessionKey string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL, sessionKey string) *Client {
	return &Client{
		BaseURL:    baseURL,
		SessionKey: sessionKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Session is the backend's login response.
type Session struct {
	SessionKey string `json:"session_key"`
	ExpiryDate string `json:"expiry_date"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	Donor      bool   `json:"donor"`
}

// Login authenticates and returns the session to cache.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/lazer/api/login/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: %s", serverError(resp))
	}

	var session Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &session, nil
}

// CheckLogin verifies the cached session key is still valid.
func (c *Client) CheckLogin(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/lazer/api/check-login/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to check login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session invalid: %s", serverError(resp))
	}
	return nil
}

// Logout invalidates the session server-side.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/lazer/api/logout/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	defer resp.Body.Close()
	return nil
}

// Banner is the configurable notice shown at the top of the app.
type Banner struct {
	Content string `json:"content"`
	Color   string `json:"color"`
	Active  bool   `json:"is_active"`
}

// Banner fetches the currently configured banner, if any.
func (c *Client) Banner(ctx context.Context) (*Banner, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/lazer/api/banner/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch banner: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("banner fetch returned status %d", resp.StatusCode)
	}

	var banner Banner
	if err := json.NewDecoder(resp.Body).Decode(&banner); err != nil {
		return nil, fmt.Errorf("failed to decode banner: %w", err)
	}
	return &banner, nil
}

// DetectionRequest is the payload for a detection submission.
type DetectionRequest struct {
	Latitude     float64
	Longitude    float64
	CapturedAt   time.Time
	ImageDataURL string
}

// Submit uploads a capture to the detection service and returns the
// candidate vehicles, addresses and the server-issued submission id.
func (c *Client) Submit(ctx context.Context, dr DetectionRequest) (*draft.Detection, error) {
	fields := map[string]string{
		"latitude":  strconv.FormatFloat(dr.Latitude, 'f', -1, 64),
		"longitude": strconv.FormatFloat(dr.Longitude, 'f', -1, 64),
		"datetime":  dr.CapturedAt.Format(time.RFC3339),
		"image":     dr.ImageDataURL,
	}

	resp, err := c.postForm(ctx, "/lazer/api/submit/", fields)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: detection returned status %d", ErrRetriable, resp.StatusCode)
	}

	var detection draft.Detection
	if err := json.NewDecoder(resp.Body).Decode(&detection); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}
	return &detection, nil
}

// Report is the finalized, human-reviewed violation report.
type Report struct {
	SubmissionID          string
	DateObserved          string // MM/DD/YYYY
	TimeObserved          string // hh:mm AM/PM
	Make                  string
	Model                 string
	BodyStyle             string
	VehicleColor          string
	ViolationObserved     string
	OccurrenceFrequency   string
	BlockNumber           string
	StreetName            string
	ZipCode               string
	AdditionalInformation string
}

// Report files the finalized report. A 400-class response surfaces the
// server's message as a RejectedError; anything else non-2xx is retriable.
func (c *Client) Report(ctx context.Context, r Report) error {
	fields := map[string]string{
		"submission_id":          r.SubmissionID,
		"date_observed":          r.DateObserved,
		"time_observed":          r.TimeObserved,
		"make":                   r.Make,
		"model":                  r.Model,
		"body_style":             r.BodyStyle,
		"vehicle_color":          r.VehicleColor,
		"violation_observed":     r.ViolationObserved,
		"occurrence_frequency":   r.OccurrenceFrequency,
		"block_number":           r.BlockNumber,
		"street_name":            r.StreetName,
		"zip_code":               r.ZipCode,
		"additional_information": r.AdditionalInformation,
	}

	resp, err := c.postForm(ctx, "/lazer/api/report/", fields)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &RejectedError{Message: serverError(resp)}
	default:
		return fmt.Errorf("%w: report returned status %d", ErrRetriable, resp.StatusCode)
	}
}

// postForm sends a multipart form to path with the session header set.
func (c *Client) postForm(ctx context.Context, path string, fields map[string]string) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetriable, err)
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.SessionKey != "" {
		req.Header.Set("Authorization", "Session: "+c.SessionKey)
	}
}

// serverError pulls the "error" message out of a JSON error body, falling
// back to the raw body.
func serverError(resp *http.Response) string {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.Status
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if len(data) > 0 {
		return string(data)
	}
	return resp.Status
}
