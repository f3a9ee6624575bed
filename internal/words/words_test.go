// internal/words/words_test.go
package words

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleDrawsFromTable(t *testing.T) {
	table := []Pair{
		{MainWord: "Phare", ImpostorWord: "Côte"},
		{MainWord: "Voile", ImpostorWord: "Mât"},
	}
	d := NewDictionaryFromPairs(table)

	for i := 0; i < 50; i++ {
		assert.Contains(t, table, d.Sample())
	}
}

func TestDefaultDictionary(t *testing.T) {
	d := NewDictionary()
	require.NotEmpty(t, d.pairs)
	for _, p := range d.pairs {
		assert.NotEmpty(t, p.MainWord)
		assert.NotEmpty(t, p.ImpostorWord)
		assert.NotEqual(t, p.MainWord, p.ImpostorWord)
	}
}
