package main

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	pgdb "github.com/ogurasousui/orgchart/internal/platform/db/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMigrator は適用済みバージョンだけを持つ migrator です。
type fakeMigrator struct {
	version uint
	dirty   bool
	calls   []string
	fail    error
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	if f.version == pgdb.SchemaVersion {
		return migrate.ErrNoChange
	}
	f.version = pgdb.SchemaVersion
	return f.fail
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	f.version = 0
	return f.fail
}

func (f *fakeMigrator) Drop() error {
	f.calls = append(f.calls, "drop")
	f.version = 0
	return nil
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.version = uint(int(f.version) + n)
	return f.fail
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	if f.version == 0 {
		return 0, false, migrate.ErrNilVersion
	}
	return f.version, f.dirty, nil
}

func TestRunMigration_ReportsVersion(t *testing.T) {
	t.Parallel()

	m := &fakeMigrator{}
	state, err := runMigration(m, []string{"up"})
	require.NoError(t, err)
	assert.Equal(t, pgdb.SchemaState{Version: pgdb.SchemaVersion}, state)
	assert.True(t, state.Current())

	// 2 回目は ErrNoChange になるが成功扱いです。
	state, err = runMigration(m, []string{"up"})
	require.NoError(t, err)
	assert.True(t, state.Current())

	state, err = runMigration(m, []string{"steps", "-1"})
	require.NoError(t, err)
	assert.Equal(t, pgdb.SchemaVersion-1, state.Version)
	assert.False(t, state.Current())

	state, err = runMigration(m, []string{"down"})
	require.NoError(t, err)
	assert.Equal(t, pgdb.SchemaState{}, state)

	assert.Equal(t, []string{"up", "up", "steps", "down"}, m.calls)
}

func TestRunMigration_Version(t *testing.T) {
	t.Parallel()

	m := &fakeMigrator{version: 1, dirty: true}
	state, err := runMigration(m, []string{"version"})
	require.NoError(t, err)
	assert.Equal(t, pgdb.SchemaState{Version: 1, Dirty: true}, state)
	assert.Empty(t, m.calls)
}

func TestRunMigration_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := runMigration(&fakeMigrator{fail: boom}, []string{"up"})
	assert.ErrorIs(t, err, boom)

	_, err = runMigration(&fakeMigrator{}, []string{"steps"})
	assert.Error(t, err)

	_, err = runMigration(&fakeMigrator{}, []string{"steps", "x"})
	assert.Error(t, err)

	_, err = runMigration(&fakeMigrator{}, []string{"sideways"})
	assert.Error(t, err)
}

func TestEffectiveConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "assets/local.yaml", effectiveConfigPath(""))
	assert.Equal(t, "custom.yaml", effectiveConfigPath("custom.yaml"))

	t.Setenv("CONFIG_PATH", "env.yaml")
	assert.Equal(t, "env.yaml", effectiveConfigPath(""))
}
