package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/httputil"
)

// maxStartBody bounds how much of a start response is inspected.
const maxStartBody = 64 * 1024

// startStatusInProgress is answered by the panel, with a 2xx code, when a
// job is already running.
const startStatusInProgress = "in_progress"

// Client talks to the panel backend. It implements deploy.StatusClient and
// deploy.StartClient.
type Client struct {
	client     *http.Client
	base       url.URL
	statusPath string
	deployPath string
}

func NewClient(config *Config, transport http.RoundTripper) (*Client, error) {
	base, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid panel URL: %w", err)
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.GetHTTPTimeout(),
		},
		base:       *base,
		statusPath: config.GetStatusPath(),
		deployPath: config.GetDeployPath(),
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method string, p string) (*http.Request, error) {
	url := c.base
	url.Path = path.Join("/", url.Path, p)

	r, err := http.NewRequestWithContext(ctx, method, url.String(), nil)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/json")
	return r, nil
}

func (c *Client) FetchStatus(ctx context.Context) (deploy.JobStatus, error) {
	var status deploy.JobStatus

	r, err := c.newRequest(ctx, http.MethodGet, c.statusPath)
	if err != nil {
		return status, &deploy.TransportError{Op: "fetch status", Err: err}
	}

	resp, err := c.client.Do(r)
	if err != nil {
		return status, &deploy.TransportError{Op: "fetch status", Err: err}
	}
	defer resp.Body.Close()

	if err := httputil.CheckStatus(resp); err != nil {
		return status, &deploy.TransportError{Op: "fetch status", Err: err}
	}

	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return deploy.JobStatus{}, &deploy.TransportError{
			Op:  "fetch status",
			Err: fmt.Errorf("invalid status response: %w", err),
		}
	}
	return status, nil
}

func (c *Client) RequestStart(ctx context.Context) error {
	r, err := c.newRequest(ctx, http.MethodPost, c.deployPath)
	if err != nil {
		return &deploy.TransportError{Op: "request start", Err: err}
	}

	resp, err := c.client.Do(r)
	if err != nil {
		return &deploy.TransportError{Op: "request start", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return deploy.ErrAlreadyRunning
	}
	if err := httputil.CheckStatus(resp); err != nil {
		return &deploy.TransportError{Op: "request start", Err: err}
	}

	// The acknowledgement body is informal; only a recognised in-progress
	// marker changes the outcome.
	var ack struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxStartBody))
	if json.Unmarshal(data, &ack) == nil && ack.Status == startStatusInProgress {
		return deploy.ErrAlreadyRunning
	}
	return nil
}
