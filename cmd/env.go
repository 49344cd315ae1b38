package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sequoia-invest/adviser-tools/internal/catalog"
	"github.com/sequoia-invest/adviser-tools/internal/model"
	"github.com/sequoia-invest/adviser-tools/internal/projection"
	"github.com/sequoia-invest/adviser-tools/internal/scorer"
	"github.com/sequoia-invest/adviser-tools/internal/store"
	"github.com/sequoia-invest/adviser-tools/pkg/salesforce"
)

// defaultSQLiteDSN is used when store.database_url is empty.
const defaultSQLiteDSN = "adviser.db"

// rejectedErrors are counted as rejected input rather than failures.
var rejectedErrors = []error{
	scorer.ErrIncompleteAnswers,
	scorer.ErrUnknownQuestion,
	scorer.ErrInvalidScore,
	scorer.ErrAnswerMode,
	scorer.ErrUnknownOption,
	projection.ErrUnknownApproach,
}

func initCatalog() (*catalog.Catalog, error) {
	return catalog.Load(cfg.Catalog.Path)
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = defaultSQLiteDSN
		}
		st, err := store.NewSQLite(dsn)
		if err != nil {
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns:       cfg.Store.MaxConns,
			MinConns:       cfg.Store.MinConns,
			ConnectRetries: cfg.Store.ConnectRetries,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSalesforce returns nil when no Salesforce credentials are configured.
func initSalesforce() (salesforce.Client, error) {
	if !cfg.Salesforce.Enabled() {
		return nil, nil
	}
	return salesforce.Connect(salesforce.JWTCredentials{
		LoginURL: cfg.Salesforce.LoginURL,
		Username: cfg.Salesforce.Username,
		ClientID: cfg.Salesforce.ClientID,
		KeyPath:  cfg.Salesforce.KeyPath,
	}, salesforce.WithRateLimit(cfg.Salesforce.RateLimit))
}

func newRiskScorer(cat *catalog.Catalog) *scorer.RiskScorer {
	return scorer.NewRiskScorer(cat.RiskQuestions(), cat.RiskProfiles())
}

func newMatchScorer(cat *catalog.Catalog) (*scorer.MatchScorer, error) {
	if err := scorer.ValidateMatchConfig(cfg.Match); err != nil {
		return nil, err
	}
	return scorer.NewMatchScorer(cat.MatchQuestions(), cat.Portfolios(), cfg.Match), nil
}

// saveAssessment opens the store, saves a and closes the store again.
func saveAssessment(ctx context.Context, build func() (*model.Assessment, error)) (string, error) {
	if err := cfg.Validate("store"); err != nil {
		return "", err
	}
	a, err := build()
	if err != nil {
		return "", err
	}
	st, err := initStore(ctx)
	if err != nil {
		return "", err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return "", eris.Wrap(err, "migrate store")
	}
	if err := st.SaveAssessment(ctx, a); err != nil {
		return "", eris.Wrap(err, "save assessment")
	}
	return a.ID, nil
}
