package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cedrichaddad/flash-lob/internal/feed"
	"github.com/cedrichaddad/flash-lob/internal/fixture"
	"github.com/cedrichaddad/flash-lob/internal/obs"
)

func newFixturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Manage PostgreSQL-backed command fixtures for replay",
	}

	cmd.AddCommand(newFixturesResetCmd())
	cmd.AddCommand(newFixturesSeedCmd())

	return cmd
}

func openDB() (*sql.DB, error) {
	connStr := viper.GetString("postgres_dsn")
	if connStr == "" {
		connStr = "sslmode=disable"
	}
	return sql.Open("postgres", connStr)
}

func newFixturesResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the fixture schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := obs.NewDevelopmentLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			return fixture.ResetSchema(db, log)
		},
	}
}

func newFixturesSeedCmd() *cobra.Command {
	var (
		count int
		seed  int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic command stream and store it as a fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := obs.NewDevelopmentLogger()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			gen := feed.New(feed.DefaultConfig(), seed)
			commands := gen.GenerateBatch(count)

			if err := fixture.StoreCommands(db, log, commands); err != nil {
				return err
			}

			fmt.Printf("stored %d commands\n", len(commands))
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 10000, "number of commands to generate")
	cmd.Flags().Int64Var(&seed, "seed", 1, "PRNG seed")

	return cmd
}
