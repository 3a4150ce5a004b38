package contract_test

import (
	"testing"

	"github.com/sagarpatil/nutriscope/internal/contract"
	"github.com/stretchr/testify/assert"
)

func TestExtract_ObjectFromProse(t *testing.T) {
	raw := "Sure! Here is the result:\n```json\n{\"a\": 1}\n```\nHope that helps."

	got, found := contract.Extract(raw, contract.KindObject)

	assert.True(t, found)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtract_ArrayFromProse(t *testing.T) {
	raw := "The analysis follows.\n[{\"a\": 1}, {\"b\": 2}]\nDone."

	got, found := contract.Extract(raw, contract.KindArray)

	assert.True(t, found)
	assert.Equal(t, `[{"a": 1}, {"b": 2}]`, got)
}

func TestExtract_BarePayload(t *testing.T) {
	got, found := contract.Extract(`{"a": 1}`, contract.KindObject)

	assert.True(t, found)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtract_NoOpener(t *testing.T) {
	_, found := contract.Extract("I could not produce any JSON, sorry.", contract.KindObject)

	assert.False(t, found)
}

func TestExtract_TruncatedKeepsTail(t *testing.T) {
	// No closer at all: the slice runs to end of input so the repairer can
	// balance it.
	raw := "Result:\n[{\"a\": 1"

	got, found := contract.Extract(raw, contract.KindArray)

	assert.True(t, found)
	assert.Equal(t, `[{"a": 1`, got)
}

func TestExtract_WrongKindIgnoresOtherBrackets(t *testing.T) {
	// Looking for an object inside an array-shaped reply still slices from
	// the first brace to the last closing brace.
	raw := `[{"a": 1}, {"b": 2}]`

	got, found := contract.Extract(raw, contract.KindObject)

	assert.True(t, found)
	assert.Equal(t, `{"a": 1}, {"b": 2}`, got)
}
