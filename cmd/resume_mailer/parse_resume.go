package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/extraction"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/observability"
	"github.com/jonathan/resume-mailer/internal/schemas"
)

var parseResumeCmd = &cobra.Command{
	Use:   "parse-resume",
	Short: "Extract a candidate profile from a resume file",
	Long:  "Extract text from a PDF, DOCX or plain text resume and print the candidate profile as JSON. With a database the profile is stored and its ID printed for use with generate-email --file-id.",
	RunE:  runParseResume,
}

var (
	parseInputFile   string
	parseOutputFile  string
	parseDatabaseURL string
	parseVerbose     bool
)

func init() {
	parseResumeCmd.Flags().StringVarP(&parseInputFile, "in", "i", "", "Path to resume file (.pdf, .docx, .txt, .md)")
	parseResumeCmd.Flags().StringVarP(&parseOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")
	parseResumeCmd.Flags().StringVar(&parseDatabaseURL, "db-url", "", "Database URL to store the parsed profile, postgres:// or sqlite:PATH (overrides DATABASE_URL)")
	parseResumeCmd.Flags().BoolVarP(&parseVerbose, "verbose", "v", false, "Print a profile summary to stderr")

	_ = parseResumeCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(parseResumeCmd)
}

func runParseResume(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	extractor, err := ingestion.NewService(ctx)
	if err != nil {
		return err
	}

	doc, err := extractor.ExtractFile(ctx, parseInputFile)
	if err != nil {
		return err
	}
	profile := extraction.ExtractProfile(doc)

	if err := schemas.ValidateDocument(schemas.CandidateProfile, profile); err != nil {
		return fmt.Errorf("extracted profile does not validate against schema: %w", err)
	}

	if parseVerbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintDocument(doc)
		printer.PrintProfile(profile)
	}

	database, err := openDatabase(ctx, parseDatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()

		id, err := database.SaveParsedDocument(ctx, db.NewParsedDocument(doc, profile))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Document ID: %s\n", id)
	}

	return writeJSON(cmd.OutOrStdout(), parseOutputFile, profile)
}
