package dispatch

import (
	"fmt"
	"testing"

	"github.com/bastiangx/wordbridge/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var typedWords = [][]string{
	{"h", "e", "l"},
	{"h", "e", "l", "m"},
	{"w", "o", "r", "l", "d"},
	{"i", "n", "t", "e", "r", "n", "a", "t", "i", "o", "n", "a", "l"},
}

// typeWords types every word one character at a time with chained fetches, commits
// a suggestion when one is offered, and erases the word again.
func typeWords(t *testing.T, d *Dispatcher) {
	t.Helper()
	for _, word := range typedWords {
		var last protocol.Response
		for _, ch := range word {
			last = d.Dispatch(protocol.InsertString(ch, true))
			require.Equal(t, protocol.ResponseOK, last.Code)
		}
		if _, _, suggestions := protocol.SuggestionData(last.Data); len(suggestions) > 0 {
			require.Equal(t, protocol.ResponseOK, d.Dispatch(protocol.InsertSuggestion(0, true)).Code)
		}
		d.Dispatch(protocol.Left(1))
		d.Dispatch(protocol.Right(1))
		require.Equal(t, protocol.ResponseOK, d.Dispatch(protocol.Reset(true)).Code)
	}
}

func TestNoAllocationLeaks(t *testing.T) {
	for _, cycles := range []int{1, 10, 100} {
		t.Run(fmt.Sprintf("cycles_%d", cycles), func(t *testing.T) {
			if cycles > 10 && testing.Short() {
				t.Skip("skipping long allocation test in short mode")
			}
			d, e := newEnglish(t)
			for c := 0; c < cycles; c++ {
				typeWords(t, d)
				d.Dispatch(protocol.SetActiveDictionaries("enggb"))
				d.Dispatch(protocol.InstallPackages())
			}

			// Only the latest suggestion reply is held.
			assert.LessOrEqual(t, e.Outstanding(), 1)
			d.Destroy()
			assert.Zero(t, e.Outstanding())
			assert.Zero(t, e.ModulesOpen())
		})
	}
}
