package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const maxMailResponseBytes = 8 << 20

// ErrBreakerOpen is returned while the mail API circuit breaker is open.
var ErrBreakerOpen = errors.New("mail API circuit breaker is open")

// HTTPFetcherConfig configures HTTPMailFetcher.
type HTTPFetcherConfig struct {
	BaseURL string

	// Token is a static bearer token. It is ignored when client
	// credentials are configured.
	Token string

	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// MaxFailures consecutive failures open the breaker for OpenTimeout.
	MaxFailures uint32
	OpenTimeout time.Duration
}

// HTTPMailFetcher reads emails from a JSON mail API at GET {BaseURL}/emails.
// The response is either an array of email records or an object with an
// "emails" array.
type HTTPMailFetcher struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]inbox.Email]
	logger  *slog.Logger
}

// NewHTTPMailFetcher creates a fetcher authenticated with OAuth2 client
// credentials, a static bearer token, or nothing.
func NewHTTPMailFetcher(cfg HTTPFetcherConfig, logger *slog.Logger) (*HTTPMailFetcher, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("mail API URL is required")
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	f := &HTTPMailFetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  newAPIClient(cfg),
		logger:  observability.OrDefault(logger),
	}

	f.breaker = gobreaker.NewCircuitBreaker[[]inbox.Email](gobreaker.Settings{
		Name:        "mail-api",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			f.logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return f, nil
}

func newAPIClient(cfg HTTPFetcherConfig) *http.Client {
	ctx := context.Background()
	switch {
	case cfg.ClientID != "" && cfg.TokenURL != "":
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		return cc.Client(ctx)
	case cfg.Token != "":
		return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	default:
		return &http.Client{}
	}
}

// FetchEmails implements MailFetcher.
func (f *HTTPMailFetcher) FetchEmails(ctx context.Context) ([]inbox.Email, error) {
	emails, err := f.breaker.Execute(func() ([]inbox.Email, error) {
		return f.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrBreakerOpen
		}
		return nil, err
	}
	return emails, nil
}

func (f *HTTPMailFetcher) fetch(ctx context.Context) ([]inbox.Email, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/emails", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build mail API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mail API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMailResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read mail API response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mail API returned status %d", resp.StatusCode)
	}

	emails, err := decodeEmails(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mail API response: %w", err)
	}

	f.logger.DebugContext(ctx, "fetched emails from mail API", "count", len(emails))
	return emails, nil
}

func decodeEmails(body []byte) ([]inbox.Email, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Emails []inbox.Email `json:"emails"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, err
		}
		if envelope.Emails == nil {
			envelope.Emails = []inbox.Email{}
		}
		return envelope.Emails, nil
	}

	emails := []inbox.Email{}
	if err := json.Unmarshal(body, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}
