package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"todosome/internal/domain/models"
)

// TokenSource supplies current session token, empty means anonymous
type TokenSource interface {
	Token() string
}

// BearerTransport adds Authorization header taken from Source
type BearerTransport struct {
	Source TokenSource
	Base   http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	token := ""
	if t.Source != nil {
		token = t.Source.Token()
	}
	if token == "" || req.Header.Get("Authorization") != "" {
		return base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(r)
}

// APIError is a failed response of the server
type APIError struct {
	Status  int
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// IsKind reports whether err is an APIError of given kind
func IsKind(err error, kind string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// API is a thin typed client of the REST API
type API struct {
	baseURL string
	http    *http.Client
}

// NewAPI creates API client, baseURL includes base path, e.g. http://localhost:5000/api
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &API{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is a body of successful login
type LoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token"`
}

// TaskInput is a body of task create/update, nil fields are omitted
type TaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

func (a *API) do(ctx context.Context, method string, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err = json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *API) Signup(ctx context.Context, email string, password string) error {
	return a.do(ctx, http.MethodPost, "/auth/signup", credentials{Email: email, Password: password}, nil)
}

func (a *API) Verify(ctx context.Context, token string) error {
	return a.do(ctx, http.MethodPost, "/auth/verify/"+url.PathEscape(token), nil, nil)
}

func (a *API) Login(ctx context.Context, email string, password string) (LoginResponse, error) {
	var res LoginResponse
	err := a.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, &res)
	return res, err
}

func (a *API) Profile(ctx context.Context) (models.Profile, error) {
	var res models.Profile
	err := a.do(ctx, http.MethodGet, "/auth/profile", nil, &res)
	return res, err
}

func (a *API) ListTasks(ctx context.Context) ([]models.Task, error) {
	var res []models.Task
	err := a.do(ctx, http.MethodGet, "/tasks", nil, &res)
	return res, err
}

func (a *API) CreateTask(ctx context.Context, title string, description string) (models.Task, error) {
	var res models.Task
	err := a.do(ctx, http.MethodPost, "/tasks", TaskInput{Title: &title, Description: &description}, &res)
	return res, err
}

func (a *API) UpdateTask(ctx context.Context, id string, in TaskInput) (models.Task, error) {
	var res models.Task
	err := a.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), in, &res)
	return res, err
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil)
}
