package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sequoia-invest/adviser-tools/internal/enquiry"
	"github.com/sequoia-invest/adviser-tools/internal/httpapi"
	"github.com/sequoia-invest/adviser-tools/internal/monitoring"
)

// shutdownTimeout bounds how long in-flight requests get to finish.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculators, catalog and enquiry form over HTTP",
	RunE:  runServe,
}

func init() {
	f := serveCmd.Flags()
	f.Int("port", 0, "server port (default from config)")
	f.Duration("report-interval", time.Hour, "how often to log an activity snapshot (0 disables)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	if err := cfg.Validate("serve"); err != nil {
		return err
	}
	reportEvery, _ := cmd.Flags().GetDuration("report-interval")

	cat, err := initCatalog()
	if err != nil {
		return err
	}
	ms, err := newMatchScorer(cat)
	if err != nil {
		return err
	}

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return eris.Wrap(err, "serve: migrate")
	}

	var opts []enquiry.Option
	sf, err := initSalesforce()
	if err != nil {
		return err
	}
	if sf != nil {
		opts = append(opts, enquiry.WithSalesforce(sf, cfg.Salesforce.LeadSource))
	} else {
		zap.L().Info("serve: salesforce not configured, enquiries are stored only")
	}

	stats := monitoring.NewCollector(st)
	api, err := httpapi.New(cfg.Server, httpapi.Deps{
		Catalog:    cat,
		Risk:       newRiskScorer(cat),
		Match:      ms,
		Projection: cfg.Projection,
		Store:      st,
		Enquiries:  enquiry.NewService(st, opts...),
		Stats:      stats,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("serve: listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "serve: listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("serve: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return eris.Wrap(err, "serve: shutdown")
		}
		return nil
	})
	if reportEvery > 0 {
		g.Go(func() error {
			monitoring.NewReporter(stats, reportEvery, 24).Run(gctx)
			return nil
		})
	}

	return g.Wait()
}
