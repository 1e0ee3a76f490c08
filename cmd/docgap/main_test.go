package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docgap/internal/app"
)

func TestServices_FromApp(t *testing.T) {
	dir := t.TempDir()
	a, err := app.New(context.Background(), app.Options{
		ConfigDir: dir,
		EnvFiles:  []string{},
		Lookup:    func(string) (string, bool) { return "", false },
		SkipPing:  true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	s := services(a)

	assert.NotNil(t, s.Analysis)
	assert.NotNil(t, s.Articles)
	assert.NotNil(t, s.Drafting)
	assert.NotNil(t, s.Export)
	assert.NotNil(t, s.Settings)
	assert.NotNil(t, s.Notes)
	assert.NotNil(t, s.Close)
	assert.Equal(t, a.Settings.Server, s.Server)
	if a.Cache == nil {
		assert.Nil(t, s.Cache)
	}
}
