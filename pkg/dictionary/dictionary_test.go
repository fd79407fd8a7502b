package dictionary

import (
	"strings"
	"testing"

	"github.com/bastiangx/wordbridge/internal/logger"
	"github.com/bastiangx/wordbridge/pkg/engine"
	"github.com/bastiangx/wordbridge/pkg/engine/memengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	active   bool
	priority int
}

func TestAssign(t *testing.T) {
	known := []string{"enggb", "frefr", "lavlv"}

	testCases := []struct {
		csv         string
		want        []state
		description string
	}{
		{
			csv:         "lavlv,enggb",
			want:        []state{{true, 1}, {false, 2}, {true, 0}},
			description: "list order becomes priority",
		},
		{
			csv:         "enggb,enggb,frefr",
			want:        []state{{true, 0}, {true, 1}, {false, 2}},
			description: "repeated names count once",
		},
		{
			csv:         "",
			want:        []state{{false, 2}, {false, 2}, {false, 2}},
			description: "empty list deactivates everything",
		},
		{
			csv:         "ENGGB",
			want:        []state{{false, 2}, {false, 2}, {false, 2}},
			description: "matching is case-sensitive",
		},
		{
			csv:         "dedede,frefr",
			want:        []state{{false, 2}, {true, 0}, {false, 2}},
			description: "unknown names are dropped",
		},
		{
			csv:         ",,frefr,,,enggb,",
			want:        []state{{true, 1}, {true, 0}, {false, 2}},
			description: "separator runs collapse",
		},
		{
			csv:         " enggb",
			want:        []state{{false, 2}, {false, 2}, {false, 2}},
			description: "names are not trimmed",
		},
		{
			csv:         strings.Repeat("zz,", MaxDictionaries) + "enggb",
			want:        []state{{false, 2}, {false, 2}, {false, 2}},
			description: "names past the cap are ignored",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			states := Assign(known, tc.csv)
			require.Len(t, states, len(known))

			got := make([]state, len(states))
			for i, st := range states {
				assert.Equal(t, engine.DictStateActive|engine.DictStatePriority, st.FieldMask)
				got[i] = state{st.Active, st.Priority}
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAssignNoDictionaries(t *testing.T) {
	assert.Empty(t, Assign(nil, "enggb"))
}

func newEngine(t *testing.T) *memengine.Engine {
	t.Helper()
	e := memengine.New(
		memengine.WithLogger(logger.Discard()),
		memengine.WithInstalled(
			memengine.DictionaryPackage("enggb", 257, map[string]int{"hello": 1}),
			memengine.DictionaryPackage("frefr", 513, map[string]int{"bonjour": 1}),
			memengine.DictionaryPackage("lavlv", 769, map[string]int{"sveiki": 1}),
		),
	)
	require.True(t, e.Create(engine.Config{LockingEnabled: true}).IsSuccess())
	return e
}

func TestSetActiveList(t *testing.T) {
	e := newEngine(t)
	var sent []engine.DictState
	e.SetHook(engine.CmdDictionarySetStates, func(arg1, _ any) engine.Result {
		sent = append([]engine.DictState(nil), arg1.([]engine.DictState)...)
		return engine.ResultSuccess
	})

	require.NoError(t, New(e, logger.Discard()).SetActiveList("lavlv,enggb"))
	assert.Equal(t, 1, e.CallCount(engine.CmdDictionarySetStates))
	assert.Zero(t, e.Outstanding())

	require.Len(t, sent, 3)
	assert.Equal(t, engine.ComponentID(257), sent[0].ComponentID)
	assert.True(t, sent[0].Loaded)

	states := e.DictionaryStates()
	assert.Equal(t, state{true, 1}, state{states["enggb"].Active, states["enggb"].Priority})
	assert.Equal(t, state{false, 2}, state{states["frefr"].Active, states["frefr"].Priority})
	assert.Equal(t, state{true, 0}, state{states["lavlv"].Active, states["lavlv"].Priority})
}

func TestSetActiveListFailures(t *testing.T) {
	testCases := []struct {
		failing      engine.Command
		wantSetCalls int
		description  string
	}{
		{engine.CmdDictionaryGetList, 0, "list failure aborts before setting"},
		{engine.CmdDictionarySetStates, 1, "set failure still releases the list"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			e := newEngine(t)
			e.FailCommand(tc.failing)

			err := New(e, logger.Discard()).SetActiveList("frefr")
			var ce *engine.CommandError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tc.failing, ce.Command)
			assert.Equal(t, tc.wantSetCalls, e.CallCount(engine.CmdDictionarySetStates))
			assert.Zero(t, e.Outstanding())

			// States are untouched.
			assert.True(t, e.DictionaryStates()["enggb"].Active)
		})
	}
}

func TestList(t *testing.T) {
	e := memengine.New(
		memengine.WithLogger(logger.Discard()),
		memengine.WithInstalled(
			memengine.PackageSpec{Name: "enggb", Components: []memengine.ComponentSpec{{
				ID: 257, Type: "dictionary", Version: 3,
				Dictionary: &memengine.DictionarySpec{FileName: "enggb", DisplayName: "English (UK)", Language: "en-GB-x-dict"},
			}}},
			memengine.PackageSpec{Name: "frefr", Components: []memengine.ComponentSpec{{
				ID: 513, Type: "dictionary", Version: 1,
				Dictionary: &memengine.DictionarySpec{FileName: "frefr", DisplayName: "Français", Language: "fr-FR-x-dict"},
			}}},
		),
	)
	require.True(t, e.Create(engine.Config{}).IsSuccess())
	a := New(e, logger.Discard())

	all, err := a.List(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, engine.Dictionary{
		FileName:    "enggb",
		DisplayName: "English (UK)",
		Language:    "en-GB-x-dict",
		Version:     3,
		ComponentID: 257,
		Loaded:      true,
		Active:      true,
		Priority:    0,
	}, all[0])

	french, err := a.List(&engine.LanguageMatch{Mode: engine.LangFiltering, Patterns: []string{"fr-*"}})
	require.NoError(t, err)
	require.Len(t, french, 1)
	assert.Equal(t, "frefr", french[0].FileName)
	assert.Zero(t, e.Outstanding())
}
