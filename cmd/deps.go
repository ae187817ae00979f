package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/softswan/softswan/internal/progression"
	"github.com/softswan/softswan/internal/store"
	"github.com/softswan/softswan/internal/xp"
)

// deps holds what the database-backed commands share.
type deps struct {
	dbPath string
	store  *store.Store
	table  *progression.Table
	xp     *xp.Service
}

// openDeps opens the store and builds the XP service. Callers must Close.
func openDeps(cmd *cobra.Command, opts ...xp.Option) (*deps, error) {
	table, err := loadTable(cmd)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("opened database", zap.String("path", dbPath))

	opts = append([]xp.Option{xp.WithLogger(logger)}, opts...)
	svc := xp.NewService(table, s.XPRepo(), s.CertificateRepo(), opts...)

	return &deps{dbPath: dbPath, store: s, table: table, xp: svc}, nil
}

func (d *deps) Close() error {
	return d.store.Close()
}

// userFlag reads --user, falling back to SOFTSWAN_USER.
func userFlag(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	return os.Getenv("SOFTSWAN_USER")
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("user", "u", "", "Learner name (defaults to SOFTSWAN_USER)")
}
