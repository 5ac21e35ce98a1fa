package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringOrNil(t *testing.T) {
	assert.Nil(t, StringOrNil(""))
	assert.Nil(t, StringOrNil("  \t"))

	got := StringOrNil("  Rosario ")
	require.NotNil(t, got)
	assert.Equal(t, "Rosario", *got)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ana@example.com", Normalize(" Ana@Example.COM "))
	assert.Equal(t, "padel", Normalize("Padel"))
}
