package packages

import (
	"testing"

	"github.com/bastiangx/wordbridge/internal/logger"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/bastiangx/wordbridge/pkg/engine/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pkgA = memengine.DictionaryPackage("A", 1, map[string]int{"alpha": 1})
	pkgB = memengine.DictionaryPackage("B", 2, map[string]int{"beta": 1})
	pkgC = memengine.DictionaryPackage("C", 3, map[string]int{"gamma": 1})
)

func newEngine(t *testing.T, opts ...memengine.Option) *memengine.Engine {
	t.Helper()
	opts = append([]memengine.Option{memengine.WithLogger(logger.Discard())}, opts...)
	e := memengine.New(opts...)
	require.True(t, e.Create(engine.Config{LockingEnabled: true}).IsSuccess())
	return e
}

func TestInstallNew(t *testing.T) {
	testCases := []struct {
		failing       string
		wantErr       bool
		wantAttempts  []string
		wantInstalled []string
		description   string
	}{
		{
			wantAttempts:  []string{"A", "C"},
			wantInstalled: []string{"B", "A", "C"},
			description:   "installs missing packages in engine order",
		},
		{
			failing:       "A",
			wantErr:       true,
			wantAttempts:  []string{"A"},
			wantInstalled: []string{"B"},
			description:   "first failure aborts the run",
		},
		{
			failing:       "C",
			wantErr:       true,
			wantAttempts:  []string{"A", "C"},
			wantInstalled: []string{"B", "A"},
			description:   "packages before the failure stay installed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			e := newEngine(t, memengine.WithPackages(pkgA, pkgB, pkgC), memengine.WithInstalled(pkgB))
			if tc.failing != "" {
				e.FailPackageInstall(tc.failing)
			}

			err := New(e, logger.Discard()).InstallNew()
			if tc.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.failing)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantAttempts, e.InstallAttempts())
			assert.Equal(t, tc.wantInstalled, e.InstalledNames())
			assert.Zero(t, e.Outstanding())
		})
	}
}

func TestInstallNewIsIdempotent(t *testing.T) {
	e := newEngine(t, memengine.WithPackages(pkgA, pkgB))
	s := New(e, logger.Discard())

	require.NoError(t, s.InstallNew())
	require.NoError(t, s.InstallNew())
	assert.Equal(t, []string{"A", "B"}, e.InstallAttempts())
	assert.Equal(t, []string{"A", "B"}, e.InstalledNames())
}

func TestInstallNewWithoutAvailable(t *testing.T) {
	testCases := []struct {
		engine      *memengine.Engine
		description string
	}{
		{newEngine(t), "no package files"},
		{func() *memengine.Engine {
			e := newEngine(t, memengine.WithPackages(pkgA))
			e.FailCommand(engine.CmdPackageGetAvailable)
			return e
		}(), "available fetch fails"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			require.NoError(t, New(tc.engine, logger.Discard()).InstallNew())
			assert.Zero(t, tc.engine.CallCount(engine.CmdPackageGetInstalled))
			assert.Empty(t, tc.engine.InstallAttempts())
			assert.Zero(t, tc.engine.Outstanding())
		})
	}
}

func TestInstallNewInstalledFetchFails(t *testing.T) {
	e := newEngine(t, memengine.WithPackages(pkgA))
	e.FailCommand(engine.CmdPackageGetInstalled)

	err := New(e, logger.Discard()).InstallNew()
	var ce *engine.CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, engine.CmdPackageGetInstalled, ce.Command)
	assert.Empty(t, e.InstallAttempts())
	assert.Zero(t, e.Outstanding())
}

func TestInstallNewComparesWholeNames(t *testing.T) {
	e := newEngine(t,
		memengine.WithPackages(memengine.DictionaryPackage("enggb", 1, nil), memengine.DictionaryPackage("enggb2", 2, nil)),
		memengine.WithInstalled(memengine.DictionaryPackage("enggb", 1, nil)),
	)
	require.NoError(t, New(e, logger.Discard()).InstallNew())
	assert.Equal(t, []string{"enggb2"}, e.InstallAttempts())
}

func TestUninstallAll(t *testing.T) {
	e := newEngine(t, memengine.WithInstalled(pkgA, pkgB, pkgC))
	s := New(e, logger.Discard())

	require.NoError(t, s.UninstallAll())
	assert.Empty(t, e.InstalledNames())
	assert.Equal(t, 3, e.CallCount(engine.CmdPackageUninstall))
	assert.Zero(t, e.Outstanding())

	// Nothing installed is not an error.
	require.NoError(t, s.UninstallAll())
	assert.Equal(t, 3, e.CallCount(engine.CmdPackageUninstall))
}

func TestUninstallAllAborts(t *testing.T) {
	e := newEngine(t, memengine.WithInstalled(pkgA, pkgB, pkgC))
	e.SetHook(engine.CmdPackageUninstall, func(arg1, _ any) engine.Result {
		if arg1 == engine.PackageID(2) {
			return engine.ResultError
		}
		return engine.ResultSuccess
	})

	err := New(e, logger.Discard()).UninstallAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"B"`)
	assert.Equal(t, []string{"B", "C"}, e.InstalledNames())
	assert.Equal(t, 2, e.CallCount(engine.CmdPackageUninstall))
	assert.Zero(t, e.Outstanding())
}

func TestUninstallAllListFails(t *testing.T) {
	e := newEngine(t, memengine.WithInstalled(pkgA))
	e.FailCommand(engine.CmdPackageGetInstalled)

	require.Error(t, New(e, logger.Discard()).UninstallAll())
	assert.Zero(t, e.CallCount(engine.CmdPackageUninstall))
	assert.Equal(t, []string{"A"}, e.InstalledNames())
}

func TestListings(t *testing.T) {
	withOther := memengine.PackageSpec{
		Name: "core",
		Components: []memengine.ComponentSpec{
			{ID: 1, Type: "engine", Version: 1},
			{ID: 9, Type: "resource", Version: 1},
		},
	}
	e := newEngine(t, memengine.WithPackages(pkgA, withOther), memengine.WithInstalled(withOther))
	s := New(e, logger.Discard())

	available, err := s.Available()
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "A", available[0].Name)

	installed, err := s.Installed()
	require.NoError(t, err)
	require.Len(t, installed, 1)
	assert.Equal(t, "core", installed[0].Name)

	all, err := s.Components(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	loaded, err := s.Components(true)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, engine.ComponentEngine, loaded[0].Type)

	assert.Zero(t, e.Outstanding())
}
