package panel

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/oursky/slurm-deploy-controller/pkg/utils/ratelimit"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// NewTransport wraps base with rate limiting, bearer authentication and
// response revalidation for status requests.
func NewTransport(config *Config, base http.RoundTripper) (http.RoundTripper, error) {
	transport := http.RoundTripper(ratelimit.NewTransport(
		base,
		rate.Limit(config.GetRPS()),
		config.GetBurst(),
	))

	source, err := NewTokenSource(config)
	if err != nil {
		return nil, err
	}
	if source != nil {
		transport = &oauth2.Transport{Base: transport, Source: source}
	}

	return NewCachedTransport(transport), nil
}

// NewTokenSource returns the credential provider for panel requests, or nil
// when the panel is not protected.
func NewTokenSource(config *Config) (oauth2.TokenSource, error) {
	switch {
	case config.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token}), nil

	case config.TokenPath != "":
		source := fileTokenSource{path: config.TokenPath}
		if _, err := source.Token(); err != nil {
			return nil, err
		}
		return source, nil
	}
	return nil, nil
}

// fileTokenSource re-reads the token on every request, so a rotated token
// file is picked up without a restart.
type fileTokenSource struct {
	path string
}

func (s fileTokenSource) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load panel token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, fmt.Errorf("panel token file is empty: %s", s.path)
	}
	return &oauth2.Token{AccessToken: token}, nil
}

type cachedTransport struct {
	rt http.RoundTripper
}

func NewCachedTransport(rt http.RoundTripper) http.RoundTripper {
	return &httpcache.Transport{
		Cache:     httpcache.NewMemoryCache(),
		Transport: &cachedTransport{rt: rt},
	}
}

func (t *cachedTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.rt.RoundTrip(r)
	if err != nil {
		return resp, err
	}
	// status is always revalidated against the panel
	resp.Header.Del("Cache-Control")
	resp.Header.Del("Expires")
	return resp, err
}
