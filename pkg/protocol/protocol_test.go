package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestBuilders(t *testing.T) {
	testCases := []struct {
		req         Request
		wantMeta    []int
		wantData    []string
		description string
	}{
		{Reset(false), []int{10, 0}, []string{}, "reset"},
		{Reset(true), []int{10, 17}, []string{}, "reset chained"},
		{InsertString("hel", true), []int{11, 17}, []string{"hel"}, "insert string"},
		{Move(2, 5, false), []int{12, 0, 2, 5}, []string{}, "move"},
		{Left(3), []int{12, 17, 3, 0}, []string{}, "left"},
		{Right(1), []int{12, 17, 0, 1}, []string{}, "right"},
		{Remove(1, 2, false), []int{13, 0, 1, 2}, []string{}, "remove"},
		{Backspace(1), []int{13, 17, 1, 0}, []string{}, "backspace"},
		{Delete(4), []int{13, 17, 0, 4}, []string{}, "delete"},
		{InsertSuggestion(2, true), []int{14, 17, 2}, []string{}, "insert suggestion"},
		{ConfigureLearning(true), []int{15, 1}, []string{}, "learning on"},
		{ConfigureLearning(false), []int{15, 0}, []string{}, "learning off"},
		{SetCursor(7, false), []int{16, 0, 7}, []string{}, "set cursor"},
		{GetSuggestions(), []int{17}, []string{}, "get suggestions"},
		{InstallPackages(), []int{18}, []string{}, "install"},
		{UninstallPackages(), []int{19}, []string{}, "uninstall"},
		{SetActiveDictionaries("enggb,frefr"), []int{20}, []string{"enggb,frefr"}, "dictionaries"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.wantMeta, tc.req.Meta)
			assert.Equal(t, tc.wantData, tc.req.Data)
		})
	}
}

func TestRequestAccessors(t *testing.T) {
	assert.Equal(t, RequestCode(0), Request{}.Code())
	assert.Equal(t, RequestInsertString, InsertString("x", false).Code())

	assert.True(t, Reset(true).Chained())
	assert.False(t, Reset(false).Chained())
	assert.False(t, GetSuggestions().Chained())
	assert.False(t, Request{Meta: []int{10, 18}}.Chained())

	v, ok := Move(2, 5, false).MetaAt(3)
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	_, ok = Move(2, 5, false).MetaAt(4)
	assert.False(t, ok)
	_, ok = Reset(false).MetaAt(-1)
	assert.False(t, ok)
}

func TestSuggestionData(t *testing.T) {
	testCases := []struct {
		data        []string
		prefix      string
		suffix      string
		suggestions []string
		description string
	}{
		{nil, "", "", nil, "no data"},
		{[]string{"he"}, "he", "", nil, "prefix only"},
		{[]string{"he", "lo"}, "he", "lo", []string{}, "no suggestions"},
		{[]string{"hel", "", "hello", "help"}, "hel", "", []string{"hello", "help"}, "suggestions"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			prefix, suffix, suggestions := SuggestionData(tc.data)
			assert.Equal(t, tc.prefix, prefix)
			assert.Equal(t, tc.suffix, suffix)
			assert.Equal(t, tc.suggestions, suggestions)
		})
	}
}

func TestCodeNames(t *testing.T) {
	assert.Equal(t, "SET_ACTIVE_DICTIONARIES", RequestSetActiveDictionaries.String())
	assert.Equal(t, "REQUEST_42", RequestCode(42).String())
	assert.Equal(t, "ERROR_GET_SUGGESTIONS", ResponseErrorGetSuggestions.String())
	assert.Equal(t, "RESPONSE_1", ResponseCode(1).String())
	assert.True(t, ResponseOK.OK())
	assert.False(t, ResponseErrorBufferOverflow.OK())

	// Every request code has a distinct failure code 200 above it.
	for code := range RequestNames {
		_, ok := ResponseNames[ResponseCode(code)+200]
		assert.True(t, ok, code.String())
	}
}

func TestWireFormat(t *testing.T) {
	raw, err := msgpack.Marshal(InsertString("hel", true))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, msgpack.Unmarshal(raw, &generic))
	assert.ElementsMatch(t, []string{"id", "m", "d"}, keys(generic))

	raw, err = msgpack.Marshal(Response{ID: "r", Code: ResponseErrorReset, Data: []string{}})
	require.NoError(t, err)
	generic = nil
	require.NoError(t, msgpack.Unmarshal(raw, &generic))
	assert.ElementsMatch(t, []string{"id", "c", "d"}, keys(generic))
	assert.EqualValues(t, 210, generic["c"])
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
