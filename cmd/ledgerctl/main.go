package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/muhasebehub/muhasebe.go/db"
	"github.com/muhasebehub/muhasebe.go/db/migrations"
	"github.com/muhasebehub/muhasebe.go/lib/logging"
	"github.com/muhasebehub/muhasebe.go/lib/service"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
)

var svc *service.LedgerService

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administration commands for the muhasebe ledger",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c := &service.Config{}
		_ = godotenv.Load(".env")
		if err := envconfig.Process("", c); err != nil {
			return fmt.Errorf("loading environment variables: %w", err)
		}
		dbConn, err := db.Open(c)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		svc = &service.LedgerService{
			Config: c,
			DB:     dbConn,
			Logger: logging.Logger(c.LogFilePath, c.LogLevel),
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if svc == nil {
			return nil
		}
		return svc.DB.Close()
	},
	SilenceUsage: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		migrator := migrate.NewMigrator(svc.DB, migrations.Migrations)
		if err := migrator.Init(ctx); err != nil {
			return err
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if group.IsZero() {
			fmt.Println("database is up to date")
			return nil
		}
		fmt.Printf("migrated to %s\n", group)
		return nil
	},
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user; a missing login or password is generated",
	RunE: func(cmd *cobra.Command, args []string) error {
		login, _ := cmd.Flags().GetString("login")
		password, _ := cmd.Flags().GetString("password")
		superuser, _ := cmd.Flags().GetBool("superuser")
		user, err := svc.CreateUser(cmd.Context(), login, password, superuser)
		if err != nil {
			return err
		}
		fmt.Printf("id=%d login=%s password=%s superuser=%t\n", user.ID, user.Login, user.Password, user.Superuser)
		return nil
	},
}

var purgeDeletedCmd = &cobra.Command{
	Use:       "purge-deleted <kind>",
	Short:     "Purge every soft deleted record of a kind",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: service.DeletableKinds,
	RunE: func(cmd *cobra.Command, args []string) error {
		purged, skipped, err := svc.PurgeAll(cmd.Context(), args[0], 0)
		if err != nil {
			return err
		}
		fmt.Printf("purged %d %s\n", purged, args[0])
		if len(skipped) > 0 {
			fmt.Printf("skipped %v: still referenced\n", skipped)
		}
		return nil
	},
}

var statementCmd = &cobra.Command{
	Use:   "statement <account id>",
	Short: "Write the XLSX statement of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("account id %q: %w", args[0], err)
		}
		from, err := dateFlag(cmd, "from")
		if err != nil {
			return err
		}
		to, err := dateFlag(cmd, "to")
		if err != nil {
			return err
		}
		if !to.IsZero() {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		xlsx, err := svc.StatementXLSX(cmd.Context(), id, from, to)
		if err != nil {
			return err
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = fmt.Sprintf("statement-%d.xlsx", id)
		}
		if err := os.WriteFile(out, xlsx, 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	},
}

func dateFlag(cmd *cobra.Command, name string) (time.Time, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %w", name, err)
	}
	return t, nil
}

func init() {
	createUserCmd.Flags().String("login", "", "login, generated when empty")
	createUserCmd.Flags().String("password", "", "password, generated when empty")
	createUserCmd.Flags().Bool("superuser", false, "grant superuser rights")

	statementCmd.Flags().String("from", "", "first day, 2006-01-02")
	statementCmd.Flags().String("to", "", "last day, 2006-01-02")
	statementCmd.Flags().StringP("out", "o", "", "output file")

	rootCmd.AddCommand(migrateCmd, createUserCmd, purgeDeletedCmd, statementCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
