// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/pdiddy/research-agent/internal/extract"
	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/internal/pipeline"
	"github.com/pdiddy/research-agent/internal/search"
	"github.com/pdiddy/research-agent/pkg/types"
)

// buildPipeline constructs every pipeline capability once from cfg.
func buildPipeline(cfg types.Config, log logging.Logger) (*pipeline.Pipeline, error) {
	backend, err := search.NewBackend(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("configuring search: %w", err)
	}

	fetcher, err := extract.NewHTTPFetcher(cfg.Extraction)
	if err != nil {
		return nil, fmt.Errorf("configuring extraction: %w", err)
	}

	gen, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("configuring language model: %w", err)
	}

	return pipeline.New(pipeline.Deps{
		Search:  search.NewTool(backend, log.With(logging.String("component", "search"))),
		Extract: extract.New(fetcher, cfg.Extraction, log.With(logging.String("component", "extract"))),
		LLM:     gen,
		Log:     log.With(logging.String("component", "pipeline")),
	}), nil
}
