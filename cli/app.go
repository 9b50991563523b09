// ABOUTME: Shared construction of logger, database, library and sessions
// ABOUTME: Every command builds its dependencies from the loaded configuration
package cli

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/harperreed/salesflow/agent"
	"github.com/harperreed/salesflow/charm"
	"github.com/harperreed/salesflow/db"
	"github.com/harperreed/salesflow/gateway"
	"github.com/harperreed/salesflow/session"
)

const settingSeeded = "seeded"

// newLogger builds a production zap logger. Logs go to stderr so stdio
// transports stay clean.
func newLogger(debug bool, level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		zcfg.Level = lvl
	}
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zcfg.Build()
}

// openDatabase opens the CRM database and seeds it on first use.
func openDatabase() (*sql.DB, error) {
	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := seedOnce(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return database, nil
}

// seedOnce loads the demo data the first time a database is opened. A
// database the user has reset stays empty.
func seedOnce(database *sql.DB) error {
	_, done, err := db.GetSetting(database, settingSeeded)
	if err != nil || done {
		return err
	}
	seeded, err := db.SeedIfEmpty(database)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("seeded demo data", zap.String("path", cfg.DBPath))
	}
	return db.SetSetting(database, settingSeeded, "true")
}

// openLibrary opens the tour content library: charm cloud KV, or a local
// badger store when offline.
func openLibrary() (*charm.Client, error) {
	if cfg.Charm.Offline {
		c, _, err := charm.OpenLocal(cfg.Charm.Dir)
		return c, err
	}
	charmCfg, err := charm.LoadConfig()
	if err != nil {
		return nil, err
	}
	return charm.NewClient(charmCfg)
}

func newGateway() *gateway.Client {
	return gateway.NewClient(gateway.Config{
		RelayURL:  cfg.Gateway.RelayURL,
		Model:     cfg.Gateway.Model,
		MaxTokens: cfg.Gateway.MaxTokens,
		Timeout:   cfg.Gateway.Timeout,
	}, logger)
}

func dispatchOptions() agent.Options {
	return agent.Options{
		Pace:         cfg.Agent.Pace,
		HighlightTTL: cfg.Agent.HighlightTTL,
		Logger:       logger,
	}
}

// newCRMSession restores the CRM from the database and persists every
// change back to it.
func newCRMSession(database *sql.DB, gw session.Completer) (*session.CRMSession, error) {
	state, err := db.LoadCRMState(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load CRM state: %w", err)
	}
	return session.NewCRMSession(state, session.CRMConfig{
		Gateway:      gw,
		Decoder:      agent.Decoder{Strict: cfg.Agent.Strict},
		Dispatch:     dispatchOptions(),
		Persister:    session.SQLPersister{DB: database},
		HistoryLimit: cfg.Agent.HistoryLimit,
		Logger:       logger,
	}), nil
}
