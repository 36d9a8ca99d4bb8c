// Package cli implements the ygodle commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/ygodle/internal/cards"
	"github.com/robalobadob/ygodle/internal/config"
	"github.com/robalobadob/ygodle/internal/database"
	"github.com/robalobadob/ygodle/internal/game"
)

var (
	dbPath   string
	portFlag string
	cfg      config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "ygodle",
	Short: "Daily Yu-Gi-Oh! card guessing game server",
	Long:  "Serves the daily monsters, spells and traps games and manages the card of the day.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			c.Database.Path = dbPath
		}
		if portFlag != "" {
			c.Port = portFlag
		}
		cfg = c
		setupLogging(cfg)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (default: $DB_PATH or ./data/ygodle.db)")
}

// setupLogging configures the global zerolog logger.
func setupLogging(c config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if strings.EqualFold(c.LogFormat, "console") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openDB opens and migrates the configured database.
func openDB(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func loadCatalog() (*cards.Catalog, error) {
	c, err := cards.Load(cfg.CardsFile)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("source", orDefault(cfg.CardsFile, "embedded")).
		Int("monsters", c.Count(game.ModeMonsters)).
		Int("spells", c.Count(game.ModeSpells)).
		Int("traps", c.Count(game.ModeTraps)).
		Msg("card catalog loaded")
	return c, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
