package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine counts calls to every capability.
type stubEngine struct {
	created, destroyed, runs, releases int
}

func (s *stubEngine) Create(Config) Result {
	s.created++
	return ResultSuccess
}

func (s *stubEngine) Destroy() { s.destroyed++ }

func (s *stubEngine) RunCommand(Command, any, any) Result {
	s.runs++
	return ResultSuccess
}

func (s *stubEngine) ReleaseAllocation(Allocation) Result {
	s.releases++
	return ResultSuccess
}

func TestBind(t *testing.T) {
	stub := &stubEngine{}
	eng, err := Bind(&SymbolTable{Symbols: Exports(stub)})
	require.NoError(t, err)

	assert.True(t, eng.Create(Config{LockingEnabled: true}).IsSuccess())
	eng.RunCommand(CmdInputReset, nil, nil)
	eng.ReleaseAllocation(&PackageList{})
	eng.Destroy()

	assert.Equal(t, stubEngine{created: 1, destroyed: 1, runs: 1, releases: 1}, *stub)
}

func TestBindMissingCapability(t *testing.T) {
	testCases := []struct {
		symbol      string
		replacement any
		description string
	}{
		{SymbolCreate, nil, "Create absent"},
		{SymbolDestroy, nil, "Destroy absent"},
		{SymbolRunCommand, nil, "RunCommand absent"},
		{SymbolReleaseAllocation, nil, "ReleaseAllocation absent"},
		{SymbolCreate, func() {}, "Create with the wrong shape"},
		{SymbolRunCommand, "not a function", "RunCommand not a function"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			symbols := Exports(&stubEngine{})
			if tc.replacement == nil {
				delete(symbols, tc.symbol)
			} else {
				symbols[tc.symbol] = tc.replacement
			}

			eng, err := Bind(&SymbolTable{Symbols: symbols})
			assert.Nil(t, eng)
			require.ErrorIs(t, err, ErrMissingCapability)
			assert.Contains(t, err.Error(), tc.symbol)
		})
	}
}

func TestSymbolTableClose(t *testing.T) {
	closed := 0
	table := &SymbolTable{OnClose: func() error {
		closed++
		return nil
	}}
	require.NoError(t, table.Close())
	assert.Equal(t, 1, closed)

	assert.NoError(t, (&SymbolTable{}).Close())
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(CmdInputReset, ResultSuccess))

	err := Check(CmdPackageInstall, ResultAlreadyExists)
	require.Error(t, err)

	var re *CommandError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, CmdPackageInstall, re.Command)
	assert.Equal(t, ResultAlreadyExists, re.Result)
	assert.Equal(t, "engine command PACKAGE_INSTALL failed: already exists", err.Error())
}

func TestNames(t *testing.T) {
	testCases := []struct {
		got         string
		want        string
		description string
	}{
		{ResultNotCreated.String(), "not created", "known result"},
		{Result(99).String(), "result(99)", "unknown result"},
		{CmdSuggestionsGet.String(), "SUGGS_GETSUGGESTIONS", "known command"},
		{Command(999).String(), "CMD_999", "unknown command"},
		{ComponentDictionary.String(), "dictionary", "component type"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.got, tc.description)
	}
}

func TestAlloc(t *testing.T) {
	var list DictionaryList
	assert.False(t, list.Held())

	var alloc Allocation = &list
	alloc.Allocation().ID = 7
	assert.True(t, list.Held())
}
