package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	accountmigrations "github.com/ghuser/crochestock/migrations/account"
	itemmigrations "github.com/ghuser/crochestock/migrations/item"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/migrator"
)

var allSets = []migrator.Set{
	{Name: "item", FS: itemmigrations.FS, VersionTable: itemmigrations.VersionTable},
	{Name: "account", FS: accountmigrations.FS, VersionTable: accountmigrations.VersionTable},
}

var (
	dbURL    string
	setNames []string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the crochestock PostgreSQL schema",
	Long: `Apply, roll back and inspect the goose migrations of each bounded context.

The database URL comes from --db, falling back to DATABASE_URL.`,
	SilenceUsage: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrator.Migrator, sets []migrator.Set) error {
			if err := m.Up(cmd.Context(), sets...); err != nil {
				return err
			}
			cmd.Println("migrations applied")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration of one set",
	Long: `Roll back the latest applied migration of exactly one set.

Example:
  migrate down --set account`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if len(setNames) != 1 {
			return fmt.Errorf("down needs exactly one --set")
		}
		return withMigrator(func(m *migrator.Migrator, sets []migrator.Set) error {
			return m.Down(cmd.Context(), sets[0])
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and latest versions per set",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrator.Migrator, sets []migrator.Set) error {
			statuses, err := m.Status(cmd.Context(), sets...)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SET\tCURRENT\tLATEST\tSTATE") //nolint:errcheck
			for _, s := range statuses {
				state := "up to date"
				if s.Pending() {
					state = "pending"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, //nolint:errcheck
					strconv.FormatInt(s.Current, 10), strconv.FormatInt(s.Latest, 10), state)
			}
			return w.Flush()
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringSliceVar(&setNames, "set", nil, "migration sets to act on (item, account); all when omitted")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func withMigrator(fn func(*migrator.Migrator, []migrator.Set) error) error {
	sets, err := migrator.Select(allSets, setNames...)
	if err != nil {
		return err
	}

	url := dbURL
	if url == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		url = cfg.DatabaseURL
	}
	if url == "" {
		return fmt.Errorf("--db or DATABASE_URL is required")
	}

	m, err := migrator.Open(url)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck
	return fn(m, sets)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
