package jsontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

func TestExtensions(t *testing.T) {
	assert.Equal(t, []string{"json"}, New().Extensions())
}

func TestNormalise_Reindents(t *testing.T) {
	got, err := New().Normalise(context.Background(), []byte(`{"b":1,"a":[true,null]}`), "data.json")

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}", got)
}

func TestNormalise_BOMAndWhitespace(t *testing.T) {
	got, err := New().Normalise(context.Background(), []byte("\xef\xbb\xbf  {\"k\":\"v\"}\n"), "data.json")

	require.NoError(t, err)
	assert.Equal(t, "{\n  \"k\": \"v\"\n}", got)
}

func TestNormalise_Invalid(t *testing.T) {
	_, err := New().Normalise(context.Background(), []byte(`{"k":`), "broken.json")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "broken.json")
}
