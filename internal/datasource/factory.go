package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// New selects the data source described by cfg. A live source is always
// wrapped with the fixture fallback; repo is required for it.
func New(ctx context.Context, cfg *config.Config, repo task.Repository, metrics observability.Metrics, logger *slog.Logger) (DataSource, error) {
	fixture := NewFixtureDataSource(cfg.UserID)
	if !cfg.UsesLiveData() {
		return fixture, nil
	}
	if repo == nil {
		return nil, fmt.Errorf("live data source needs a task repository")
	}

	mail, err := newMailFetcher(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	live := NewLiveDataSource(mail, repo, cfg.UserID, cfg.FetchTimeout)
	return WithFallback(live, fixture, metrics, logger), nil
}

func newMailFetcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (MailFetcher, error) {
	switch cfg.MailProvider {
	case config.MailProviderGmail:
		srv, err := NewGmailService(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile)
		if err != nil {
			return nil, err
		}
		return NewGmailFetcher(srv, cfg.GmailQuery, cfg.GmailMaxResults, logger), nil
	default:
		f, err := NewHTTPMailFetcher(HTTPFetcherConfig{
			BaseURL:      cfg.MailAPIURL,
			Token:        cfg.MailAPIToken,
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			TokenURL:     cfg.OAuthTokenURL,
			Scopes:       splitScopes(cfg.OAuthScopes),
			MaxFailures:  uint32(cfg.BreakerMaxFailures),
			OpenTimeout:  cfg.BreakerTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}

func splitScopes(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}
