package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"skillgap-backend/internal/analyses"
	"skillgap-backend/internal/resumes"
	"skillgap-backend/internal/skills"
)

const defaultQuery = "software engineer"

type analyzeOptions struct {
	file     string
	text     string
	query    string
	max      int
	userName string
	asJSON   bool
}

func newAnalyzeCmd(build appBuilder) *cobra.Command {
	opts := &analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a resume file or text against job postings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, build, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Resume file ("+strings.Join(resumes.AllowedExtensions(), ", ")+")")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "Resume text")
	cmd.Flags().StringVarP(&opts.query, "query", "q", defaultQuery, "Job title to search for")
	cmd.Flags().IntVarP(&opts.max, "max", "n", 0, "Maximum job postings to analyze")
	cmd.Flags().StringVar(&opts.userName, "user-name", "", "Name stored with the analysis")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the full report as JSON")
	cmd.MarkFlagsOneRequired("file", "text")
	cmd.MarkFlagsMutuallyExclusive("file", "text")
	return cmd
}

func runAnalyze(cmd *cobra.Command, build appBuilder, opts *analyzeOptions) error {
	ctx := cmd.Context()
	app, err := build(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	var report analyses.Report
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return fmt.Errorf("read %s: %w", opts.file, err)
		}
		report, err = app.Analyses.AnalyzeFile(ctx, analyses.FileRequest{
			UserName:   opts.userName,
			FileName:   filepath.Base(opts.file),
			Data:       data,
			Query:      opts.query,
			MaxResults: opts.max,
		})
		if err != nil {
			return err
		}
	} else {
		report, err = app.Analyses.AnalyzeText(ctx, analyses.TextRequest{
			UserName:   opts.userName,
			Text:       opts.text,
			Query:      opts.query,
			MaxResults: opts.max,
		})
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func printReport(w io.Writer, r analyses.Report) {
	fmt.Fprintln(w, r.Summary)
	fmt.Fprintf(w, "Analysis: %s\n\n", r.AnalysisID)
	fmt.Fprintf(w, "Matching skills: %s\n", r.Result.MatchingNames())
	fmt.Fprintln(w, "Skills to learn:")
	if len(r.Result.MissingSkills) == 0 {
		fmt.Fprintln(w, "   None")
	}
	for _, s := range r.Result.MissingSkills {
		fmt.Fprintf(w, "   - %s (%s)\n", s.Name, demand(s, r.Result.TotalJobsAnalyzed))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Plan.Text)
}

func demand(s skills.Weighted, jobs int) string {
	if jobs == 0 {
		return fmt.Sprintf("%d jobs", s.Frequency)
	}
	return fmt.Sprintf("%d of %d jobs", s.Frequency, jobs)
}
