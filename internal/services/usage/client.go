package usage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/j-veylop/billing-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
	"github.com/j-veylop/billing-dashboard-tui/internal/version"
)

const usagePath = "/api/usage/user/"

// APIError is a non-2xx response from the usage backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError extracts detail[0].msg from a FastAPI style error body, or a
// plain string detail, falling back to the status code.
func newAPIError(status int, body []byte) *APIError {
	msg := ""
	if gjson.ValidBytes(body) {
		detail := gjson.GetBytes(body, "detail")
		switch {
		case detail.IsArray():
			msg = detail.Get("0.msg").String()
		case detail.Type == gjson.String:
			msg = detail.String()
		}
	}
	if strings.TrimSpace(msg) == "" {
		msg = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{Status: status, Message: msg}
}

// Client fetches usage records from the billing backend.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client for baseURL. A zero timeout leaves the
// transport without a deadline.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.AppName+"/"+version.GetVersion()).
		SetRetryCount(0)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}

	return &Client{http: c, baseURL: baseURL}
}

// NewClientWithHTTP creates a client on top of an existing http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	return &Client{http: c, baseURL: baseURL}
}

// Name implements Source.
func (c *Client) Name() string { return SourceAPI }

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Fetch issues GET {base}/api/usage/user/{userID}.
func (c *Client) Fetch(ctx context.Context, userID string) ([]models.UsageRecord, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}

	resp, err := c.http.R().
		SetContext(ctx).
		Get(usagePath + url.PathEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, newAPIError(resp.StatusCode(), resp.Body())
	}

	records, err := aggregator.DecodeRecords(resp.Body())
	if err != nil {
		return nil, fmt.Errorf("failed to decode usage response: %w", err)
	}
	return records, nil
}
