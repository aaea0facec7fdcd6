package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	assert.NotNil(t, tmpl.Lookup("home-page.html"))
	assert.NotNil(t, tmpl.Lookup("result-page.html"))
}

func TestStatic(t *testing.T) {
	_, err := fs.Stat(Static(), "processing.html")
	assert.NoError(t, err)
}
