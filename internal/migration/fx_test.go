package migration

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestRunAutoMigratesSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open(db.SQLiteDSN(filepath.Join(t.TempDir(), "migrate.db"))), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(conn, db.Config{Type: db.TypeSQLite}, zap.NewNop()))

	for _, table := range []string{"profiles", "social_accounts", "rate_cards"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}
	assert.True(t, conn.Migrator().HasIndex(&socialaccountdomain.Account{}, "ux_social_accounts_subject_platform"))

	// idempotent
	require.NoError(t, Run(conn, db.Config{Type: db.TypeSQLite}, zap.NewNop()))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	files, err := fs.Glob(embeddedMigrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	ups, downs := 0, 0
	for _, f := range files {
		switch {
		case strings.HasSuffix(f, ".up.sql"):
			ups++
		case strings.HasSuffix(f, ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
