// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db"
)

func Open(t testing.TB) *gorm.DB {
	t.Helper()
	return OpenConns(t, 1)[0]
}

// OpenConns returns n independent handles on one migrated database. Each
// handle holds its own sqlite connection, so transactions started on
// different handles really do contend inside the database.
func OpenConns(t testing.TB, n int) []*gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		filepath.Join(t.TempDir(), "storefront.db"))

	handles := make([]*gorm.DB, 0, n)
	for i := 0; i < n; i++ {
		gdb, err := db.Open(context.Background(), dsn)
		require.NoError(t, err)
		t.Cleanup(func() {
			if sqlDB, err := gdb.DB(); err == nil {
				_ = sqlDB.Close()
			}
		})
		if i == 0 {
			require.NoError(t, db.Migrate(context.Background(), gdb))
		}
		handles = append(handles, gdb)
	}
	return handles
}
