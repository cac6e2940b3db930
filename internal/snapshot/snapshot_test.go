package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablelog/internal/actions"
)

func TestSnapshot_SchemaLazilyParsedAndMemoized(t *testing.T) {
	snap := New(State{
		Version: 0,
		Metadata: actions.MetadataAction{
			SchemaString: `{"type":"struct","fields":[{"name":"a","type":"integer","nullable":true,"metadata":{}}]}`,
		},
		ActiveFiles: map[string]actions.AddFileAction{},
	})

	st, err := snap.Schema()
	require.NoError(t, err)
	require.Len(t, st.Fields, 1)
	assert.Equal(t, "a", st.Fields[0].Name)

	st2, err := snap.Schema()
	require.NoError(t, err)
	assert.Equal(t, st, st2)
}

func TestSnapshot_GetAllFilesStableSortedOrder(t *testing.T) {
	snap := New(State{
		Version: 3,
		ActiveFiles: map[string]actions.AddFileAction{
			"file:///t/b": {Path: "file:///t/b", Size: 2},
			"file:///t/a": {Path: "file:///t/a", Size: 1},
		},
		SizeInBytes: 3,
	})

	files := snap.GetAllFiles()
	require.Len(t, files, 2)
	assert.Equal(t, "file:///t/a", files[0].Path)
	assert.Equal(t, "file:///t/b", files[1].Path)
	assert.Equal(t, int64(2), snap.GetNumOfFiles())
	assert.Equal(t, int64(3), snap.GetSizeInBytes())
}

func TestSnapshot_VersionNegativeMeansNoLog(t *testing.T) {
	snap := New(State{Version: -1, ActiveFiles: map[string]actions.AddFileAction{}})
	assert.Error(t, requireTable(snap))
}
