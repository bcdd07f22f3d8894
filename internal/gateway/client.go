package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// HTTPDoer describes the HTTP client used by the gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialSource supplies the bearer token attached to authenticated calls.
// An empty string means no credential is available.
type CredentialSource interface {
	Credential() string
}

// Client performs authenticated HTTP calls against the minuteminds backend.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	creds      CredentialSource
	onAuthFail func()
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCredentialSource injects the session credential provider.
func WithCredentialSource(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

// WithAuthFailureHook registers a callback invoked when an authenticated call
// is rejected with a 401. The session manager uses it to force logout.
func WithAuthFailureHook(hook func()) Option {
	return func(c *Client) { c.onAuthFail = hook }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "gateway")
		}
	}
}

// New creates a gateway client for the given base URL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("gateway base url required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Login exchanges email and password for a credential and principal.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	var out Credentials
	err := c.postJSON(ctx, "login", "/login", map[string]string{"email": email, "password": password}, &out, false)
	return out, err
}

// Register creates a new account. It does not authenticate the session.
func (c *Client) Register(ctx context.Context, name, email, password string) (Profile, error) {
	var out Profile
	err := c.postJSON(ctx, "register", "/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out, false)
	return out, err
}

// Verify checks a stored credential. A rejected credential resolves to
// Valid=false without error; only transport failures return one.
func (c *Client) Verify(ctx context.Context, credential string) (Verification, error) {
	body, err := json.Marshal(map[string]string{"token": credential})
	if err != nil {
		return Verification{}, services.Wrap(services.ErrTransport, "gateway", "verify", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/verify-token", bytes.NewReader(body))
	if err != nil {
		return Verification{}, services.Wrap(services.ErrTransport, "gateway", "verify", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Verification{}, services.Wrap(services.ErrTransport, "gateway", "verify", "", err)
	}
	defer resp.Body.Close()

	var out Verification
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode == http.StatusUnauthorized {
			return Verification{Valid: false}, nil
		}
		return Verification{}, services.Wrap(services.ErrTransport, "gateway", "verify", "decode response", err)
	}
	return out, nil
}

// Transcribe uploads an audio payload and returns the transcription result.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader, denoise bool) (TranscribeResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return TranscribeResult{}, services.Wrap(services.ErrTransport, "gateway", "transcribe", "build upload", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return TranscribeResult{}, services.Wrap(services.ErrTransport, "gateway", "transcribe", "read audio", err)
	}
	if err := writer.WriteField("denoise", strconv.FormatBool(denoise)); err != nil {
		return TranscribeResult{}, services.Wrap(services.ErrTransport, "gateway", "transcribe", "build upload", err)
	}
	if err := writer.Close(); err != nil {
		return TranscribeResult{}, services.Wrap(services.ErrTransport, "gateway", "transcribe", "build upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &body)
	if err != nil {
		return TranscribeResult{}, services.Wrap(services.ErrTransport, "gateway", "transcribe", "build request", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out TranscribeResult
	if err := c.do(req, "transcribe", &out, true); err != nil {
		return TranscribeResult{}, err
	}
	return out, nil
}

// Summarize requests a summary for the given document.
func (c *Client) Summarize(ctx context.Context, documentID string) (SummarizeResult, error) {
	var out SummarizeResult
	err := c.postJSON(ctx, "summarize", "/transcriptions/"+url.PathEscape(documentID)+"/summarize", struct{}{}, &out, true)
	return out, err
}

// ExtractItems requests decision and action-item extraction for the document.
func (c *Client) ExtractItems(ctx context.Context, documentID string) ([]KeyItem, error) {
	var out struct {
		KeyItems []KeyItem `json:"key_items"`
	}
	err := c.postJSON(ctx, "extract items", "/transcriptions/"+url.PathEscape(documentID)+"/extract-items", struct{}{}, &out, true)
	return out.KeyItems, err
}

// PersistItems replaces the stored key-item list for the document.
func (c *Client) PersistItems(ctx context.Context, documentID string, items []KeyItem) error {
	if items == nil {
		items = []KeyItem{}
	}
	var out struct {
		Message string `json:"message"`
	}
	return c.postJSON(ctx, "persist items", "/transcriptions/"+url.PathEscape(documentID)+"/key-items", map[string]any{"key_items": items}, &out, true)
}

// Translate translates text into the target language.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	var out struct {
		TranslatedText string `json:"translatedText"`
	}
	err := c.postJSON(ctx, "translate", "/translate", map[string]string{"text": text, "target": target}, &out, true)
	return out.TranslatedText, err
}

// ExportDocument fetches the rendered minutes for the document in the given format.
func (c *Client) ExportDocument(ctx context.Context, documentID, format string) ([]byte, error) {
	endpoint := c.baseURL + "/transcriptions/" + url.PathEscape(documentID) + "/export?format=" + url.QueryEscape(format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "export", "build request", err)
	}
	payload, err := c.doRaw(req, "export", true)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("export payload fetched",
		logging.String(logging.FieldDocumentID, documentID),
		logging.String("format", format),
		logging.Int("bytes", len(payload)))
	return payload, nil
}

// Search returns documents matching the query with their matching segments.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := c.baseURL + "/transcriptions/search?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "search", "build request", err)
	}
	var out struct {
		Results []SearchResult `json:"results"`
	}
	if err := c.do(req, "search", &out, true); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ListDocuments returns the caller's transcription history.
func (c *Client) ListDocuments(ctx context.Context) ([]DocumentSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcriptions", nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "list documents", "build request", err)
	}
	var out struct {
		Transcriptions []DocumentSummary `json:"transcriptions"`
	}
	if err := c.do(req, "list documents", &out, true); err != nil {
		return nil, err
	}
	return out.Transcriptions, nil
}

// AdminUsers lists all accounts. Requires an admin principal server-side.
func (c *Client) AdminUsers(ctx context.Context) ([]AdminUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/users", nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "admin users", "build request", err)
	}
	var out struct {
		Users []AdminUser `json:"users"`
	}
	if err := c.do(req, "admin users", &out, true); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// AdminDeleteUser removes an account.
func (c *Client) AdminDeleteUser(ctx context.Context, userID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/admin/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return services.Wrap(services.ErrTransport, "gateway", "admin delete user", "build request", err)
	}
	var out struct {
		Message string `json:"message"`
	}
	return c.do(req, "admin delete user", &out, true)
}

// AdminLogs fetches audit log entries, optionally filtered by action.
func (c *Client) AdminLogs(ctx context.Context, limit int, action string) ([]LogEntry, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if strings.TrimSpace(action) != "" {
		params.Set("action", strings.TrimSpace(action))
	}
	endpoint := c.baseURL + "/admin/logs"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", "admin logs", "build request", err)
	}
	var out struct {
		Logs []LogEntry `json:"logs"`
	}
	if err := c.do(req, "admin logs", &out, true); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// AdminAnalytics fetches aggregate usage metrics.
func (c *Client) AdminAnalytics(ctx context.Context) (Analytics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/admin/analytics", nil)
	if err != nil {
		return Analytics{}, services.Wrap(services.ErrTransport, "gateway", "admin analytics", "build request", err)
	}
	var out Analytics
	if err := c.do(req, "admin analytics", &out, true); err != nil {
		return Analytics{}, err
	}
	return out, nil
}

// Ping checks backend availability.
func (c *Client) Ping(ctx context.Context) (ServiceInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return ServiceInfo{}, services.Wrap(services.ErrTransport, "gateway", "ping", "build request", err)
	}
	var out ServiceInfo
	if err := c.do(req, "ping", &out, false); err != nil {
		return ServiceInfo{}, err
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload any, out any, authenticated bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return services.Wrap(services.ErrTransport, "gateway", operation, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransport, "gateway", operation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, operation, out, authenticated)
}

// do executes the request, classifies failures, and decodes the success payload.
func (c *Client) do(req *http.Request, operation string, out any, authenticated bool) error {
	resp, err := c.send(req, operation, authenticated)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransport, "gateway", operation, "decode response", err)
	}
	return nil
}

// doRaw executes the request like do but hands back the response body verbatim.
func (c *Client) doRaw(req *http.Request, operation string, authenticated bool) ([]byte, error) {
	resp, err := c.send(req, operation, authenticated)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", operation, "read payload", err)
	}
	return payload, nil
}

// send runs the request and classifies error responses. A 401 on an
// authenticated call fires the auth failure hook before the error is
// returned. Callers own the response body on success.
func (c *Client) send(req *http.Request, operation string, authenticated bool) (*http.Response, error) {
	if authenticated {
		c.attachCredential(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, "gateway", operation, "", err)
	}

	c.logger.Debug("gateway call completed",
		logging.String("operation", operation),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", time.Since(start)))

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		if authenticated && resp.StatusCode == http.StatusUnauthorized && c.onAuthFail != nil {
			c.onAuthFail()
		}
		return nil, c.classifyFailure(operation, resp)
	}
	return resp, nil
}

func (c *Client) attachCredential(req *http.Request) {
	if c.creds == nil {
		return
	}
	if token := strings.TrimSpace(c.creds.Credential()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// classifyFailure maps an error response to the taxonomy: 401 is an auth
// failure, anything else with a decodable payload is a remote error carrying
// the payload's message.
func (c *Client) classifyFailure(operation string, resp *http.Response) error {
	marker := services.ErrRemote
	if resp.StatusCode == http.StatusUnauthorized {
		marker = services.ErrAuth
	}

	var payload struct {
		Error string `json:"error"`
	}
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr == nil {
		_ = json.Unmarshal(data, &payload)
	}

	detail := fmt.Sprintf("status %d", resp.StatusCode)
	if strings.TrimSpace(payload.Error) != "" {
		return services.Wrap(marker, "gateway", operation, detail, &services.RemoteMessageError{Message: payload.Error})
	}
	return services.Wrap(marker, "gateway", operation, detail, nil)
}
