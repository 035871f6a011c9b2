// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-agent/internal/citation"
	"github.com/pdiddy/research-agent/internal/logging"
	"github.com/pdiddy/research-agent/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Research a single query and print the report",
	Long: `Run executes the research pipeline synchronously for one query and writes
the markdown report to stdout or --out. The full pipeline state can be saved
as YAML with --state and the citations as CSL-YAML with --csl.

The exit status is non-zero when the pipeline records an error; the error
report is still written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("out", "", "write the markdown report to this file instead of stdout")
	runCmd.Flags().String("state", "", "write the final pipeline state as YAML to this file")
	runCmd.Flags().String("csl", "", "write citations as CSL-YAML to this file")
	runCmd.Flags().Int("max-results", 0, "number of search results to request (1-20, default search.max_results)")
	runCmd.Flags().Bool("no-citations", false, "omit citations from the report")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper(), loadedSecrets)

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	maxResults, _ := cmd.Flags().GetInt("max-results")
	if maxResults == 0 {
		maxResults = cfg.Search.MaxResults
	}
	if maxResults < 1 || maxResults > 20 {
		return fmt.Errorf("--max-results must be between 1 and 20, got %d", maxResults)
	}
	noCitations, _ := cmd.Flags().GetBool("no-citations")

	pipe, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	st := types.NewResearchState(query, uuid.NewString(), "", maxResults, !noCitations, time.Now())

	stderr := cmd.ErrOrStderr()
	st = pipe.Run(cmd.Context(), st, func(_ string, step types.Step) {
		fmt.Fprintf(stderr, "  %s\n", step)
	})

	if err := writeReport(cmd, st.ReportMarkdown); err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("state"); path != "" {
		if err := writeYAMLFile(path, st); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("csl"); path != "" {
		if err := writeCSLFile(path, st.Citations); err != nil {
			return err
		}
	}

	if st.Failed() {
		return fmt.Errorf("research failed at %s: %s", st.CurrentStep, st.ErrorMessage)
	}
	fmt.Fprintf(stderr, "Done: %d sources, %d citations\n", len(st.ExtractedContent), len(st.Citations))
	return nil
}

func writeReport(cmd *cobra.Command, markdown string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), markdown)
		return err
	}
	if err := os.WriteFile(out, []byte(markdown+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", out)
	return nil
}

func writeYAMLFile(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

func writeCSLFile(path string, citations []types.Citation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := citation.WriteCSL(f, citations); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
