package cmd

import (
	"github.com/alex-robert-fr/ForecastPro/cmd/forecastpro/config"
	"github.com/alex-robert-fr/ForecastPro/internal/balance"
	"github.com/alex-robert-fr/ForecastPro/internal/importer"
	"github.com/alex-robert-fr/ForecastPro/internal/report"
	"github.com/alex-robert-fr/ForecastPro/internal/statement"
	"github.com/alex-robert-fr/ForecastPro/internal/store"
	"github.com/alex-robert-fr/ForecastPro/internal/tink"
	"github.com/alex-robert-fr/ForecastPro/internal/txhash"
	"github.com/alex-robert-fr/ForecastPro/pkg/logger"
)

// app is the composition root: it wires every component through explicit
// constructors so the dependency graph is visible in one place.
type app struct {
	cfg        *config.Config
	log        logger.Logger
	store      store.Store
	calculator *balance.Calculator
	reconciler *importer.Reconciler
	normalizer *tink.Normalizer
	reports    *report.Generator
}

// newApp loads the configuration and builds the application. The caller
// must Close it to release the database.
func newApp() (*app, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return nil, err
	}
	logger.SetGlobal(log)

	s, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	reportCfg, err := cfg.ReportConfig()
	if err != nil {
		s.Close()
		return nil, err
	}
	reports, err := report.NewGenerator(reportCfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	hasher := txhash.NewGenerator()
	calculator := balance.NewCalculator(s.Accounts(), s.Transactions(), log)
	normalizer := tink.NewNormalizer(hasher, log)

	return &app{
		cfg:        cfg,
		log:        log,
		store:      s,
		calculator: calculator,
		normalizer: normalizer,
		reconciler: importer.NewReconciler(
			s,
			calculator,
			hasher,
			statement.NewTokenizer(nil),
			statement.NewInterpreter(hasher, log),
			normalizer,
			log,
		),
		reports: reports,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// tinkClient builds the bank API client. Credentials are validated here so
// commands that never talk to the bank work without them.
func (a *app) tinkClient() (*tink.Client, error) {
	return tink.NewClient(a.cfg.TinkConfig(), nil, a.log)
}
