package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/wordbridge/internal/logger"
	"github.com/bastiangx/wordbridge/pkg/dispatch"
	"github.com/bastiangx/wordbridge/pkg/engine/memengine"
	"github.com/bastiangx/wordbridge/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	testCases := []struct {
		line        string
		want        protocol.Request
		local       string
		wantErr     bool
		description string
	}{
		{line: "hel", want: protocol.InsertString("hel", true), description: "plain text"},
		{line: " spaced ", want: protocol.InsertString(" spaced ", true), description: "text is not trimmed"},
		{line: ":reset", want: protocol.Reset(true), description: "reset"},
		{line: ":back", want: protocol.Remove(1, 0, true), description: "back defaults to one"},
		{line: ":back 3", want: protocol.Remove(3, 0, true), description: "back n"},
		{line: ":del 2", want: protocol.Remove(0, 2, true), description: "del n"},
		{line: ":left", want: protocol.Move(1, 0, true), description: "left"},
		{line: ":right 4", want: protocol.Move(0, 4, true), description: "right n"},
		{line: ":cursor 0", want: protocol.SetCursor(0, true), description: "cursor"},
		{line: ":pick 2", want: protocol.InsertSuggestion(1, true), description: "pick is one-based"},
		{line: ":suggest", want: protocol.GetSuggestions(), description: "suggest"},
		{line: ":learn off", want: protocol.ConfigureLearning(false), description: "learn off"},
		{line: ":install", want: protocol.InstallPackages(), description: "install"},
		{line: ":uninstall", want: protocol.UninstallPackages(), description: "uninstall"},
		{line: ":dicts enggb,frefr", want: protocol.SetActiveDictionaries("enggb,frefr"), description: "set dictionaries"},
		{line: ":raw 10 17", want: protocol.Request{Meta: []int{10, 17}, Data: []string{}}, description: "raw meta"},
		{line: ":raw 11 0 | two words", want: protocol.Request{Meta: []int{11, 0}, Data: []string{"two words"}}, description: "raw data"},
		{line: ":dicts", local: "dicts", description: "list dictionaries"},
		{line: ":packages", local: "packages", description: "packages"},
		{line: ":help", local: "help", description: "help"},
		{line: ":quit", local: "quit", description: "quit"},
		{line: ":", wantErr: true, description: "empty command"},
		{line: ":cursor", wantErr: true, description: "cursor without position"},
		{line: ":back x", wantErr: true, description: "bad count"},
		{line: ":back -1", wantErr: true, description: "negative count"},
		{line: ":learn maybe", wantErr: true, description: "bad learning flag"},
		{line: ":raw ten", wantErr: true, description: "bad raw meta"},
		{line: ":frobnicate", wantErr: true, description: "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			req, local, err := parseLine(tc.line, true)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.local, local)
			if tc.local == "" {
				assert.Equal(t, tc.want, req)
			}
		})
	}
}

func TestParseLineWithoutChain(t *testing.T) {
	req, _, err := parseLine("hel", false)
	require.NoError(t, err)
	assert.False(t, req.Chained())
}

func newHandler(t *testing.T, input string, chain, showPackages bool) (*InputHandler, *bytes.Buffer) {
	t.Helper()
	e := memengine.New(
		memengine.WithLogger(logger.Discard()),
		memengine.WithInstalled(
			memengine.DictionaryPackage("enggb", 257, map[string]int{"hello": 120, "help": 90}),
		),
	)
	d := dispatch.New(e.Loader(), dispatch.Options{}, logger.Discard())
	require.NoError(t, d.Create(""))
	t.Cleanup(d.Destroy)

	var out bytes.Buffer
	return NewInputHandler(d, chain, showPackages).WithIO(strings.NewReader(input), &out), &out
}

func TestSession(t *testing.T) {
	h, out := newHandler(t, "hel\n:pick 2\n:pick 9\n:bogus\n:dicts\n:quit\nignored\n", true, true)
	require.NoError(t, h.Start())

	got := out.String()
	assert.Contains(t, got, "enggb  (1 components)")
	assert.Contains(t, got, "hel|")
	assert.Contains(t, got, " 1. hello")
	assert.Contains(t, got, " 2. help")
	assert.Contains(t, got, "help|")
	assert.Contains(t, got, "ERROR_INSERT_SUGGESTION (214)")
	assert.Contains(t, got, `unknown command "bogus"`)
	assert.Contains(t, got, "active")
	assert.NotContains(t, got, "ignored")
	assert.Equal(t, 3, h.requestCount)
}

func TestUnchainedSession(t *testing.T) {
	h, out := newHandler(t, "hel\n:suggest\n:reset", false, false)
	require.NoError(t, h.Start())

	got := out.String()
	assert.Contains(t, got, "ok")
	assert.Contains(t, got, " 1. hello")
	assert.NotContains(t, got, "components")
	assert.Equal(t, 3, h.requestCount, "the last line is read without a newline")
}

func TestEmptySuggestions(t *testing.T) {
	h, out := newHandler(t, "xyz\n:help\n", true, false)
	require.NoError(t, h.Start())

	got := out.String()
	assert.Contains(t, got, "no suggestions")
	assert.Contains(t, got, ":pick <i>")
}
