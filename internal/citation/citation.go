// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package citation derives source citations from filtered search results and
// renders them for reference managers.
package citation

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/pkg/types"
)

// DateLayout is the format of Citation.AccessedDate.
const DateLayout = "2006-01-02"

const unknownTitle = "Unknown"

// FromResults builds one citation per result, in order, stamping every
// citation with the same accessed date. When max is positive the output is
// capped at max entries. The returned slice is never nil.
func FromResults(results []types.SearchResult, accessed time.Time, max int) []types.Citation {
	n := len(results)
	if max > 0 && n > max {
		n = max
	}

	date := accessed.Format(DateLayout)
	citations := make([]types.Citation, 0, n)
	for _, r := range results[:n] {
		title := r.Title
		if title == "" {
			title = unknownTitle
		}
		citations = append(citations, types.Citation{
			Title:        title,
			URL:          r.URL,
			Source:       r.Source,
			AccessedDate: date,
			Snippet:      r.Snippet,
		})
	}
	return citations
}

// Reference renders c as one entry of a report's numbered reference list,
// without the number.
func Reference(c types.Citation) string {
	return fmt.Sprintf("%s. Retrieved %s from %s", c.Title, c.AccessedDate, c.URL)
}

// CSLItem is a bibliographic entry in CSL-YAML form, readable by Pandoc and
// reference managers.
type CSLItem struct {
	ID             string   `yaml:"id"`
	Type           string   `yaml:"type"`
	Title          string   `yaml:"title"`
	URL            string   `yaml:"URL,omitempty"`
	ContainerTitle string   `yaml:"container-title,omitempty"`
	Abstract       string   `yaml:"abstract,omitempty"`
	Accessed       *CSLDate `yaml:"accessed,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes citations as a CSL-YAML list to w.
func WriteCSL(w io.Writer, citations []types.Citation) error {
	items := make([]CSLItem, len(citations))
	for i, c := range citations {
		items[i] = toCSLItem(i, c)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(i int, c types.Citation) CSLItem {
	item := CSLItem{
		ID:             "ref" + strconv.Itoa(i+1),
		Type:           "webpage",
		Title:          c.Title,
		URL:            c.URL,
		ContainerTitle: strings.TrimPrefix(c.Source, "www."),
		Abstract:       c.Snippet,
	}
	if d, err := time.Parse(DateLayout, c.AccessedDate); err == nil {
		item.Accessed = &CSLDate{DateParts: [][]int{{d.Year(), int(d.Month()), d.Day()}}}
	}
	return item
}
