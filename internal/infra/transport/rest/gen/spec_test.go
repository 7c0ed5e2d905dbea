package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSwagger(t *testing.T) {
	swagger, err := GetSwagger()
	require.NoError(t, err)

	for _, path := range []string{
		"/healthz",
		"/analyze-workflow",
		"/clear-cache",
		"/api/reports",
		"/api/reports/{id}",
		"/api/dashboard/summary",
		"/api/dashboard/trends",
	} {
		assert.NotNil(t, swagger.Paths.Find(path), path)
	}

	req := swagger.Components.Schemas["AnalyzeWorkflowRequest"].Value
	require.NotNil(t, req)
	window := req.Properties["window_days"].Value
	assert.Equal(t, 1.0, *window.Min)
	assert.Equal(t, 90.0, *window.Max)
}
