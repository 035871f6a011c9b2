// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export publishes finished reports as shareable documents. The
// FileExporter writes each report as Markdown under a directory that the API
// serves, alongside a YAML metadata sidecar.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

// RoutePrefix is the URL path under which exported documents are served.
const RoutePrefix = "/documents/"

// Document describes one exported report.
type Document struct {
	ID   string `json:"id" yaml:"id"`
	URL  string `json:"url" yaml:"url"`
	Path string `json:"-" yaml:"-"`
}

// metadata is the sidecar written next to each document.
type metadata struct {
	ID        string    `yaml:"id"`
	Title     string    `yaml:"title"`
	File      string    `yaml:"file"`
	CreatedAt time.Time `yaml:"created_at"`
	Chars     int       `yaml:"chars"`
}

// FileExporter writes documents to Dir and links them under PublicURL.
type FileExporter struct {
	Dir       string
	PublicURL string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewFileExporter returns an exporter for cfg. An empty Dir yields an
// unconfigured exporter whose CreateDocument always fails.
func NewFileExporter(cfg types.ExportConfig) *FileExporter {
	return &FileExporter{Dir: cfg.Dir, PublicURL: strings.TrimRight(cfg.PublicURL, "/")}
}

// Configured reports whether export is enabled.
func (e *FileExporter) Configured() bool {
	return e != nil && e.Dir != ""
}

// CreateDocument writes markdown to a new file named after the title and
// returns its public URL.
func (e *FileExporter) CreateDocument(_ context.Context, title, markdown string) (*Document, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("document export is not configured")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}

	id := slug(title) + "-" + uuid.NewString()[:8]
	file := id + ".md"
	path := filepath.Join(e.Dir, file)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}

	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	meta, err := yaml.Marshal(metadata{
		ID:        id,
		Title:     title,
		File:      file,
		CreatedAt: now().UTC(),
		Chars:     len([]rune(markdown)),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding document metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, id+".yaml"), meta, 0o644); err != nil {
		return nil, fmt.Errorf("writing document metadata: %w", err)
	}

	return &Document{ID: id, URL: e.PublicURL + RoutePrefix + file, Path: path}, nil
}

// slug lowercases title and joins its letters and digits with hyphens,
// keeping at most 60 characters.
func slug(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	s := b.String()
	if r := []rune(s); len(r) > 60 {
		s = strings.TrimRight(string(r[:60]), "-")
	}
	if s == "" {
		return "report"
	}
	return s
}
