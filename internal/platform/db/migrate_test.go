package db

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	version    uint
	versionErr error
}

func (f *fakeMigrate) Up() error   { return f.upErr }
func (f *fakeMigrate) Down() error { return nil }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, false, f.versionErr
}
func (f *fakeMigrate) Close() (error, error) { return nil, nil }

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost/cms", MigrateURL("postgres://u:p@localhost/cms"))
	assert.Equal(t, "pgx5://u:p@localhost/cms", MigrateURL("postgresql://u:p@localhost/cms"))
	assert.Equal(t, "pgx5://x", MigrateURL("pgx5://x"))
}

func TestMigratorUpIgnoresNoChange(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
	require.NoError(t, m.Up())

	m = &Migrator{m: &fakeMigrate{upErr: errors.New("syntax error")}}
	assert.Error(t, m.Up())
}

func TestMigratorVersionNilIsZero(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Positive(t, ups)
	assert.Equal(t, ups, downs)
}
