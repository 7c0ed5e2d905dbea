package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark47B/opspilot/internal/domain/entity"
)

type fakeGenerator struct {
	text      string
	err       error
	gotSystem string
	gotUser   string
}

func (f *fakeGenerator) GenerateText(_ context.Context, system, user string) (string, error) {
	f.gotSystem, f.gotUser = system, user
	return f.text, f.err
}

func TestParseReasoning_PlainJSON(t *testing.T) {
	out, err := parseReasoning(`{"bottlenecks":["a","b",3],"sop":"## Goals\nship","summary":"ok"}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "3"}, out.Bottlenecks)
	assert.Equal(t, "## Goals\nship", out.SOP)
	assert.Equal(t, "ok", out.Summary)
}

func TestParseReasoning_EmbeddedObject(t *testing.T) {
	text := "Sure! Here it is:\n```json\n{\"bottlenecks\":[\"x}\"],\"sop\":\"use {braces}\"}\n```\nthanks"

	out, err := parseReasoning(text)

	require.NoError(t, err)
	assert.Equal(t, []string{"x}"}, out.Bottlenecks)
	assert.Equal(t, "use {braces}", out.SOP)
}

func TestParseReasoning_SOPObjectIsFlattened(t *testing.T) {
	out, err := parseReasoning(`{"bottlenecks":[],"sop":{"slas":{"review":"24h"},"goals":"faster reviews"}}`)

	require.NoError(t, err)
	assert.Equal(t, "GOALS: faster reviews\n\nSLAS:\n  - review: 24h", out.SOP)
}

func TestParseReasoning_Errors(t *testing.T) {
	for _, text := range []string{
		"no json here",
		`{"bottlenecks":"not a list","sop":"x"}`,
		`{"sop":42}`,
		`{"sop":"x","summary":["no"]}`,
		`{"unterminated": `,
	} {
		_, err := parseReasoning(text)
		assert.Error(t, err, text)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	p, err := buildUserPrompt(entity.WorkflowMetrics{ReopenRate: 0.18, WindowDays: 14}, nil)
	require.NoError(t, err)
	assert.Contains(t, p, `"reopen_rate": 0.18`)
	assert.Contains(t, p, "No RAG context available.")

	docs := []string{"d1", "d2", "d3", "d4", "d5", "d6"}
	p, err = buildUserPrompt(entity.WorkflowMetrics{}, docs)
	require.NoError(t, err)
	assert.Contains(t, p, "d1\n---\nd2")
	assert.Contains(t, p, "d5")
	assert.NotContains(t, p, "d6")
}

func TestClient_Generate(t *testing.T) {
	gen := &fakeGenerator{text: `{"bottlenecks":["slow reviews"],"sop":"## Goals","summary":"s"}`}
	c := newClient(gen, nil)

	out, err := c.Generate(context.Background(), entity.WorkflowMetrics{WindowDays: 7}, []string{"prior sop"})

	require.NoError(t, err)
	assert.Equal(t, []string{"slow reviews"}, out.Bottlenecks)
	assert.True(t, strings.Contains(gen.gotSystem, "RACI"))
	assert.Contains(t, gen.gotUser, "prior sop")
}

func TestClient_GenerateError(t *testing.T) {
	boom := errors.New("quota exceeded")
	c := newClient(&fakeGenerator{err: boom}, nil)

	_, err := c.Generate(context.Background(), entity.WorkflowMetrics{}, nil)

	assert.ErrorIs(t, err, boom)
}
