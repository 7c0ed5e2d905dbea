package redisvec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchReply(t *testing.T) {
	reply := []interface{}{
		int64(2),
		"wfdoc:acme/api:platform:14:1700000000",
		[]interface{}{"payload", `{"repo":"acme/api","team":"platform","score":71,"sop":"## Goals"}`, "distance", "0.05"},
		"wfdoc:acme/web:frontend:30:1700000001",
		[]interface{}{"distance", "1.4", "payload", []byte(`{"repo":"acme/web","score":40}`)},
	}

	docs, err := parseSearchReply(reply)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "wfdoc:acme/api:platform:14:1700000000", docs[0].key)
	assert.InDelta(t, 0.95, docs[0].similarity, 1e-9)
	require.NotNil(t, docs[0].payload)
	assert.Equal(t, 71, docs[0].payload.Score)
	assert.Equal(t, "## Goals", docs[0].payload.SOP)

	assert.Zero(t, docs[1].similarity)
	assert.Equal(t, "acme/web", docs[1].payload.Repo)
}

func TestParseSearchReply_Empty(t *testing.T) {
	docs, err := parseSearchReply([]interface{}{int64(0)})

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestParseSearchReply_BadPayloadIsSkipped(t *testing.T) {
	docs, err := parseSearchReply([]interface{}{
		int64(1), "wfdoc:x", []interface{}{"payload", "{not json", "distance", "0.1"},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].payload)
	assert.Error(t, docs[0].decodeErr)
}

func TestParseSearchReply_Malformed(t *testing.T) {
	_, err := parseSearchReply("OK")
	assert.Error(t, err)

	_, err = parseSearchReply([]interface{}{int64(1), "wfdoc:x", "oops"})
	assert.Error(t, err)

	_, err = parseSearchReply([]interface{}{int64(1), "wfdoc:x", []interface{}{"distance", "far"}})
	assert.Error(t, err)
}

func TestCommandArgs(t *testing.T) {
	create := createIndexArgs(DefaultIndex, 128)
	assert.Equal(t, []interface{}{"FT.CREATE", "idx_workflows", "ON", "HASH", "PREFIX", 1, "wfdoc:"}, create[:7])
	assert.Contains(t, create, "COSINE")
	assert.Contains(t, create, 128)

	search := searchArgs(DefaultIndex, []float32{1, 0}, 5)
	assert.Equal(t, "*=>[KNN 5 @embedding $B AS distance]", search[2])
	assert.Equal(t, []interface{}{"DIALECT", 2}, search[len(search)-2:])
}
