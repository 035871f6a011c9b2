// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

func TestCreateDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	e := NewFileExporter(types.ExportConfig{Dir: dir, PublicURL: "http://localhost:8000/"})
	e.Now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	doc, err := e.CreateDocument(context.Background(), "Quantum Computing: 2026 Review", "# Report\n\nBody")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(doc.ID, "quantum-computing-2026-review-"), doc.ID)
	assert.Equal(t, "http://localhost:8000/documents/"+doc.ID+".md", doc.URL)

	body, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, "# Report\n\nBody", string(body))

	raw, err := os.ReadFile(filepath.Join(dir, doc.ID+".yaml"))
	require.NoError(t, err)
	var meta metadata
	require.NoError(t, yaml.Unmarshal(raw, &meta))
	assert.Equal(t, "Quantum Computing: 2026 Review", meta.Title)
	assert.Equal(t, doc.ID+".md", meta.File)
	assert.Equal(t, 14, meta.Chars)
}

func TestCreateDocumentUniqueNames(t *testing.T) {
	e := NewFileExporter(types.ExportConfig{Dir: t.TempDir()})
	a, err := e.CreateDocument(context.Background(), "Same", "a")
	require.NoError(t, err)
	b, err := e.CreateDocument(context.Background(), "Same", "b")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestCreateDocumentNotConfigured(t *testing.T) {
	e := NewFileExporter(types.ExportConfig{})
	assert.False(t, e.Configured())
	_, err := e.CreateDocument(context.Background(), "t", "m")
	assert.Error(t, err)

	var nilExporter *FileExporter
	assert.False(t, nilExporter.Configured())
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello, World!", "hello-world"},
		{"  --Leading and trailing--  ", "leading-and-trailing"},
		{"Ünïcödé Títle", "ünïcödé-títle"},
		{"!!!", "report"},
		{strings.Repeat("a", 80), strings.Repeat("a", 60)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slug(tt.in), tt.in)
	}
}
