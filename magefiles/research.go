//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Serve builds the binary and runs the job API in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}

// Research builds the binary and researches the query in $QUERY, writing
// the report to exports/report.md.
func Research() error {
	mg.Deps(Build, Init)
	query := os.Getenv("QUERY")
	if query == "" {
		query = "What are the latest developments in quantum computing?"
	}
	return sh.RunV(filepath.Join(binDir, binName), "run", query,
		"--out", filepath.Join("exports", "report.md"),
		"--csl", filepath.Join("exports", "citations.yaml"))
}
