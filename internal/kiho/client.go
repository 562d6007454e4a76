package kiho

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/andy/kihopunch/internal/domain"
	"github.com/andy/kihopunch/internal/logging"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Client talks to the punch endpoint. Every call is a single request.
type Client struct {
	client    *http.Client
	url       string
	apiKey    string
	userAgent string
	logger    *log.Logger
	dump      bool
	newID     func() string
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client    *http.Client
	URL       string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	Logger    *log.Logger

	// DumpHTTP logs full requests and responses at debug level
	DumpHTTP bool
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:    cfg.Client,
		url:       cfg.URL,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		logger:    cfg.Logger,
		dump:      cfg.DumpHTTP,
		newID:     uuid.NewString,
	}

	if c.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.client = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}

	return c
}

// ListQuery selects punches for ListPunches
type ListQuery struct {
	Count int
	Type  *domain.PunchType // nil means every type
}

// Values encodes the query parameters. The API wants the newest first.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	v.Set("orderBy", "timestamp DESC")
	v.Set("pageSize", strconv.Itoa(q.Count))
	if q.Type != nil {
		v.Set("type", string(*q.Type))
	}
	return v
}

type listResponse struct {
	Result []domain.Punch `json:"result"`
}

type punchResponse struct {
	Result *domain.Punch `json:"result"`
}

// ListPunches fetches the latest punches, newest first.
func (c *Client) ListPunches(ctx context.Context, q ListQuery) ([]domain.Punch, error) {
	endpoint := c.url + "?" + q.Values().Encode()

	var resp listResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: missing result array", ErrMalformedResponse)
	}
	return resp.Result, nil
}

// CreatePunch posts a new punch and returns the created punch line.
func (c *Client) CreatePunch(ctx context.Context, req *domain.NewPunchRequest) (*domain.Punch, error) {
	var resp punchResponse
	if err := c.do(ctx, http.MethodPost, c.url, req, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("%w: missing result object", ErrMalformedResponse)
	}
	return resp.Result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	requestID := c.newID()
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	// GET requests are rejected when Content-Type is set
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.dump {
		if dump, err := httputil.DumpRequestOut(req, true); err == nil {
			c.logger.Debug("punch API request", "dump", string(redactAuth(dump, c.apiKey)))
		}
	}

	c.logger.Info("starting HTTP request", "method", method, "request_id", requestID)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to %s punch API: %w", method, err)
	}
	defer resp.Body.Close()
	c.logger.Info("HTTP response", "status", resp.Status)

	if c.dump {
		if dump, err := httputil.DumpResponse(resp, true); err == nil {
			c.logger.Debug("punch API response", "dump", string(dump))
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp, method, endpoint, requestID, data)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func parseError(resp *http.Response, method, endpoint, requestID string, body []byte) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Method:     method,
		Endpoint:   endpoint,
		RequestID:  requestID,
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Message != "" {
			apiErr.Message = errResp.Message
		} else if errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	return apiErr
}

func redactAuth(dump []byte, apiKey string) []byte {
	if apiKey == "" {
		return dump
	}
	return bytes.ReplaceAll(dump, []byte(apiKey), []byte("********"))
}
