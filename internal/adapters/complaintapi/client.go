// Package complaintapi is the HTTP client for the external complaint backend.
// All portal writes and admin reads go through it; the portal itself stores
// no complaint data.
package complaintapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"complaintdesk/internal/domain/category"
	"complaintdesk/internal/domain/complaint"
	"complaintdesk/internal/domain/session"
)

// APIError is a non-2xx backend response. Detail carries the backend's
// human-readable message when one was supplied; callers surface it verbatim.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Client talks to the complaint backend. The zero value is not usable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client.
// PRE: baseURL is the backend origin without a trailing slash (e.g. "https://api.example.edu")
// POST: returns a ready client; a nil httpClient gets a 15s-timeout default
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// AuthResult is the backend's response to a successful login or signup.
type AuthResult struct {
	Token string
	Admin session.AdminProfile
}

// SubmitResult is the backend's response to a successful complaint submission.
type SubmitResult struct {
	Message     string
	ComplaintID string
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"admin"`
}

// Login exchanges credentials for a session token in the category's admin realm.
// POST: returns token + admin profile, or APIError carrying the backend detail
func (c *Client) Login(ctx context.Context, cat category.Category, email, password string) (AuthResult, error) {
	return c.auth(ctx, fmt.Sprintf("/api/auth/%s/login", cat.AdminRealm()), authRequest{Email: email, Password: password})
}

// Signup registers a new admin in the category's admin realm.
func (c *Client) Signup(ctx context.Context, cat category.Category, email, password, name string) (AuthResult, error) {
	return c.auth(ctx, fmt.Sprintf("/api/auth/%s/signup", cat.AdminRealm()), authRequest{Email: email, Password: password, Name: name})
}

func (c *Client) auth(ctx context.Context, path string, req authRequest) (AuthResult, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, "", req, &resp); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{
		Token: resp.Token,
		Admin: session.AdminProfile{ID: resp.Admin.ID, Name: resp.Admin.Name, Email: resp.Admin.Email},
	}, nil
}

type labComplaintRequest struct {
	Name        string  `json:"name"`
	RollNumber  string  `json:"roll_number"`
	Stream      string  `json:"stream"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	LabNumber   string  `json:"lab_number"`
	Complaint   string  `json:"complaint"`
	PhotoBase64 *string `json:"photo_base64"`
}

type iccComplaintRequest struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Stream     string `json:"stream"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Complaint  string `json:"complaint"`
}

type submitResponse struct {
	Message     string `json:"message"`
	ComplaintID string `json:"complaint_id"`
}

// SubmitComplaint sends a validated draft to the category's complaint
// endpoint. photoBase64 applies to Lab drafts only; nil marshals as an
// explicit JSON null, matching the backend contract.
// PRE: d passed Validate(); photoBase64, if set, is a complete data URL
// POST: exactly one POST is issued; any 2xx counts as success
func (c *Client) SubmitComplaint(ctx context.Context, d complaint.Draft, photoBase64 *string) (SubmitResult, error) {
	var (
		path string
		body any
	)
	switch d.Category {
	case category.Lab:
		path = "/api/lab-complaints"
		body = labComplaintRequest{
			Name:        d.Name,
			RollNumber:  d.RollNumber,
			Stream:      d.Stream,
			Phone:       d.Phone,
			Email:       d.Email,
			LabNumber:   d.LabNumber,
			Complaint:   d.Complaint,
			PhotoBase64: photoBase64,
		}
	case category.ICC:
		path = "/api/icc-complaints"
		body = iccComplaintRequest{
			Name:       d.Name,
			RollNumber: d.RollNumber,
			Stream:     d.Stream,
			Phone:      d.Phone,
			Email:      d.Email,
			Complaint:  d.Complaint,
		}
	default:
		return SubmitResult{}, fmt.Errorf("unknown category: %q", d.Category)
	}

	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{Message: resp.Message, ComplaintID: resp.ComplaintID}, nil
}

type complaintRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	RollNumber  string `json:"roll_number"`
	Stream      string `json:"stream"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Complaint   string `json:"complaint"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	LabNumber   string `json:"lab_number"`
	PhotoBase64 string `json:"photo_base64"`
}

// ListComplaints fetches the category's complaints for the admin dashboard,
// newest first as ordered by the backend.
// PRE: token is the stored session token for this category
// POST: a 401 surfaces as *APIError with StatusCode 401 so the caller can
// discard the stale session
func (c *Client) ListComplaints(ctx context.Context, cat category.Category, token string) ([]complaint.Complaint, error) {
	var records []complaintRecord
	path := fmt.Sprintf("/api/%s-complaints", cat)
	if err := c.do(ctx, http.MethodGet, path, token, nil, &records); err != nil {
		return nil, err
	}

	out := make([]complaint.Complaint, 0, len(records))
	for _, rec := range records {
		createdAt, _ := time.Parse(time.RFC3339, rec.CreatedAt)
		out = append(out, complaint.Complaint{
			ID:          rec.ID,
			Name:        rec.Name,
			RollNumber:  rec.RollNumber,
			Stream:      rec.Stream,
			Phone:       rec.Phone,
			Email:       rec.Email,
			Complaint:   rec.Complaint,
			Status:      rec.Status,
			CreatedAt:   createdAt,
			LabNumber:   rec.LabNumber,
			PhotoBase64: rec.PhotoBase64,
		})
	}
	return out, nil
}

// UpdateStatus changes one complaint's status. The backend notifies the
// student by email as part of this call.
// PRE: status is one of complaint.Statuses
func (c *Client) UpdateStatus(ctx context.Context, cat category.Category, token, complaintID, status string) error {
	path := fmt.Sprintf("/api/%s-complaints/%s/status", cat, complaintID)
	return c.do(ctx, http.MethodPatch, path, token, map[string]string{"status": status}, nil)
}

// do performs one backend round trip: marshal, send, interpret. Any 2xx is
// success; everything else becomes an *APIError with the backend's detail
// when one was provided.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: extractDetail(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parse backend response: %w", err)
		}
	}
	return nil
}

// extractDetail pulls the backend's "detail" message out of an error body.
// Non-string details (e.g. structured validation errors) are ignored, which
// leaves callers on their generic fallback message.
func extractDetail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Detail
}
