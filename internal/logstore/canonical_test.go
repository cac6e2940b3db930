package logstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_Idempotent(t *testing.T) {
	once, err := Canonicalize("/data/table", "a/f1.parquet")
	require.NoError(t, err)

	twice, err := Canonicalize("/data/table", once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestCanonicalize_EscapedPathCollision(t *testing.T) {
	escaped, err := Canonicalize("/data/table", "col=foo%20bar/part.parquet")
	require.NoError(t, err)

	raw, err := Canonicalize("/data/table", "col=foo bar/part.parquet")
	require.NoError(t, err)

	assert.Equal(t, escaped, raw)
}

func TestCanonicalize_RelativeResolvesAgainstRoot(t *testing.T) {
	got, err := Canonicalize("/data/table", "part-0001.parquet")
	require.NoError(t, err)
	assert.Equal(t, "file:///data/table/part-0001.parquet", got)
}

func TestCanonicalize_AbsoluteQualifiedInPlace(t *testing.T) {
	got, err := Canonicalize("/data/table", "s3://bucket/other/part-0001.parquet")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/other/part-0001.parquet", got)
}

func TestCanonicalize_S3Root(t *testing.T) {
	got, err := Canonicalize("s3://bucket/prefix", "part-0001.parquet")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/prefix/part-0001.parquet", got)
}
