// Package geoip resolves an approximate location for a client IP. It is
// purely diagnostic: lookups are time-bounded and every failure degrades
// to an empty location rather than an error on the login path.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultEndpoint = "https://ipapi.co/%s/json/"

// Resolver looks up approximate network locations, caching per IP.
type Resolver struct {
	client   *http.Client
	endpoint string

	mu    sync.RWMutex
	cache map[string]string
}

// payload is the subset of the ipapi.co response we report.
type payload struct {
	IP          string `json:"ip"`
	City        string `json:"city"`
	Region      string `json:"region"`
	CountryName string `json:"country_name"`
}

// NewResolver creates a Resolver. endpoint must contain one %s verb for
// the IP; empty selects the default provider. timeout bounds each lookup.
func NewResolver(endpoint string, timeout time.Duration) *Resolver {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	return &Resolver{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		cache:    make(map[string]string),
	}
}

// Lookup returns a human-readable location line for ip, or "" when the
// IP is empty, private, or the provider cannot be reached in time.
func (r *Resolver) Lookup(ctx context.Context, ip string) string {
	if ip == "" {
		return ""
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsLoopback() || parsed.IsPrivate() {
		return ""
	}

	r.mu.RLock()
	loc, ok := r.cache[ip]
	r.mu.RUnlock()
	if ok {
		return loc
	}

	loc = r.fetch(ctx, ip)

	// Only successful lookups are cached; a transient provider failure
	// must not pin an empty location for the rest of the process.
	if loc != "" {
		r.mu.Lock()
		r.cache[ip] = loc
		r.mu.Unlock()
	}

	return loc
}

func (r *Resolver) fetch(ctx context.Context, ip string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(r.endpoint, ip), nil)
	if err != nil {
		return ""
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, v := range []string{p.City, p.Region, p.CountryName} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return ""
	}

	return fmt.Sprintf("%s (IP: %s)", strings.Join(parts, " "), ip)
}
