package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-mailer/internal/config"
	"github.com/jonathan/resume-mailer/internal/db"
	"github.com/jonathan/resume-mailer/internal/fetch"
	"github.com/jonathan/resume-mailer/internal/ingestion"
	"github.com/jonathan/resume-mailer/internal/observability"
	"github.com/jonathan/resume-mailer/internal/pipeline"
	"github.com/jonathan/resume-mailer/internal/schemas"
	"github.com/jonathan/resume-mailer/internal/types"
)

var generateEmailCmd = &cobra.Command{
	Use:   "generate-email",
	Short: "Draft a job application email from resumes or profiles",
	Long: `Extract and merge candidate profiles, then draft an application email for the given company and role.

Profiles come from resume files (--resume), profile JSON files (--profile) or stored
documents (--file-id). The email is drafted with Gemini when an API key is available and
falls back to a fixed template otherwise, so a draft is always produced.`,
	RunE: runGenerateEmail,
}

var (
	genResumes     []string
	genProfiles    []string
	genFileIDs     []string
	genCompany     string
	genRole        string
	genJobDescFile string
	genJobURL      string
	genTone        string
	genLength      string
	genAPIKey      string
	genProvider    string
	genModel       string
	genTimeout     int
	genOutputFile  string
	genFormat      string
	genDatabaseURL string
	genConfigPath  string
	genUseBrowser  bool
	genVerbose     bool
)

func init() {
	f := generateEmailCmd.Flags()
	f.StringSliceVarP(&genResumes, "resume", "r", nil, "Resume file (.pdf, .docx, .txt); repeatable")
	f.StringSliceVar(&genProfiles, "profile", nil, "Candidate profile JSON file; repeatable")
	f.StringSliceVar(&genFileIDs, "file-id", nil, "ID of a stored parsed document; repeatable")
	f.StringVar(&genCompany, "company", "", "Company name (required)")
	f.StringVar(&genRole, "role", "", "Role or position title (required)")
	f.StringVar(&genJobDescFile, "job-desc", "", "Path to job description text file")
	f.StringVar(&genJobURL, "job-url", "", "URL of the job posting")
	f.StringVar(&genTone, "tone", "", "Email tone: professional, friendly or enthusiastic")
	f.StringVar(&genLength, "length", "", "Email length: short, normal or long")
	f.StringVar(&genAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	f.StringVar(&genProvider, "provider", "", "LLM SDK: gemini or genai")
	f.StringVar(&genModel, "model", "", "Model name override")
	f.IntVar(&genTimeout, "timeout", 0, "LLM call timeout in seconds")
	f.StringVarP(&genOutputFile, "out", "o", "", "Path to output file (default stdout)")
	f.StringVar(&genFormat, "format", "json", "Output format: json, text or html")
	f.StringVar(&genDatabaseURL, "db-url", "", "Database URL, postgres:// or sqlite:PATH (overrides DATABASE_URL)")
	f.StringVarP(&genConfigPath, "config", "c", "", "Path to JSON or YAML config file")
	f.BoolVar(&genUseBrowser, "use-browser", false, "Render --job-url in a headless browser when the page needs JavaScript")
	f.BoolVarP(&genVerbose, "verbose", "v", false, "Print profile and draft summaries to stderr")

	_ = generateEmailCmd.MarkFlagRequired("company")
	_ = generateEmailCmd.MarkFlagRequired("role")
	generateEmailCmd.MarkFlagsMutuallyExclusive("job-desc", "job-url")

	rootCmd.AddCommand(generateEmailCmd)
}

func loadGenerateConfig() (config.Config, error) {
	return resolveConfig(genConfigPath, config.Config{
		APIKey:            genAPIKey,
		Provider:          genProvider,
		Model:             genModel,
		LLMTimeoutSeconds: genTimeout,
		Tone:              genTone,
		Length:            genLength,
		DatabaseURL:       genDatabaseURL,
		UseBrowser:        genUseBrowser,
		Verbose:           genVerbose,
	})
}

func runGenerateEmail(cmd *cobra.Command, _ []string) error {
	if len(genResumes) == 0 && len(genProfiles) == 0 && len(genFileIDs) == 0 {
		return errors.New("at least one of --resume, --profile or --file-id is required")
	}
	if genFormat != "json" && genFormat != "text" && genFormat != "html" {
		return fmt.Errorf("unknown output format %q (want json, text or html)", genFormat)
	}

	cfg, err := loadGenerateConfig()
	if err != nil {
		return err
	}
	tone, _ := types.ParseTone(cfg.Tone)
	length, _ := types.ParseLength(cfg.Length)

	ctx := context.Background()

	database, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	profiles, fileIDs, err := loadProfiles(ctx, database)
	if err != nil {
		return err
	}

	documents := make([]pipeline.Document, 0, len(genResumes))
	for _, path := range genResumes {
		doc, err := pipeline.ReadDocument(path)
		if err != nil {
			return err
		}
		documents = append(documents, doc)
	}

	var extractor *ingestion.Service
	if len(documents) > 0 {
		if extractor, err = ingestion.NewService(ctx); err != nil {
			return err
		}
	}

	jobDescription, err := loadJobDescription(ctx, cfg.UseBrowser)
	if err != nil {
		return err
	}

	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return err
	}
	backend := newBackend(cfg, llmCfg)

	job := types.JobContext{CompanyName: genCompany, Role: genRole, JobDescription: jobDescription}
	result, err := pipeline.Run(ctx, pipeline.Options{
		Documents: documents,
		Profiles:  profiles,
		Job:       job,
		Tone:      tone,
		Length:    length,
		Extractor: extractor,
		Backend:   backend,
	})
	if err != nil {
		return err
	}

	for _, p := range result.Parsed {
		if p.Err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipped %s: %v\n", p.Source, p.Err)
		}
	}

	if err := schemas.ValidateDocument(schemas.EmailDraft, result.Draft); err != nil {
		return fmt.Errorf("generated draft does not validate against schema: %w", err)
	}

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintProfile(result.Profile)
		printer.PrintJob(job)
		printer.PrintDraft(result.Draft)
	}

	if database != nil {
		id, err := saveRun(ctx, database, result, fileIDs)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Draft ID: %s\n", id)
	}

	return writeDraft(cmd.OutOrStdout(), result.Draft)
}

// loadProfiles reads --file-id records first, then --profile files.
func loadProfiles(ctx context.Context, database db.Store) ([]types.CandidateProfile, []uuid.UUID, error) {
	var profiles []types.CandidateProfile

	var ids []uuid.UUID
	if len(genFileIDs) > 0 {
		if database == nil {
			return nil, nil, fmt.Errorf("--file-id requires a database (use --db-url or set %s)", envDatabaseURL)
		}
		for _, raw := range genFileIDs {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, nil, fmt.Errorf("invalid file ID %q: %w", raw, err)
			}
			ids = append(ids, id)
		}
		docs, err := database.GetParsedDocuments(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		for _, d := range docs {
			profiles = append(profiles, d.Profile)
		}
	}

	for _, path := range genProfiles {
		if err := schemas.ValidateFile(schemas.CandidateProfile, path); err != nil {
			return nil, nil, fmt.Errorf("invalid profile %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read profile: %w", err)
		}
		var p types.CandidateProfile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
		}
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid profile %s: %w", path, err)
		}
		profiles = append(profiles, p)
	}

	return profiles, ids, nil
}

func loadJobDescription(ctx context.Context, useBrowser bool) (string, error) {
	switch {
	case genJobDescFile != "":
		data, err := os.ReadFile(genJobDescFile)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return ingestion.CleanText(string(data)), nil
	case genJobURL != "":
		return fetch.JobDescription(ctx, genJobURL, fetch.JobOptions{UseBrowser: useBrowser})
	}
	return "", nil
}

// saveRun stores newly parsed documents and the draft, linking the draft to every source document.
func saveRun(ctx context.Context, database db.Store, result *pipeline.Result, fileIDs []uuid.UUID) (uuid.UUID, error) {
	sourceIDs := append([]uuid.UUID(nil), fileIDs...)
	for _, p := range result.Parsed {
		if p.Err != nil {
			continue
		}
		id, err := database.SaveParsedDocument(ctx, db.NewParsedDocument(p.Document, p.Profile))
		if err != nil {
			return uuid.Nil, err
		}
		sourceIDs = append(sourceIDs, id)
	}
	return database.SaveDraft(ctx, db.NewDraftRecord(result.Request, result.Draft, sourceIDs))
}

func writeDraft(w io.Writer, draft *types.EmailDraft) error {
	switch genFormat {
	case "text":
		return writeText(w, fmt.Sprintf("Subject: %s\n\n%s\n", draft.Subject, draft.PlainBody))
	case "html":
		return writeText(w, draft.HTMLBody+"\n")
	}
	return writeJSON(w, genOutputFile, draft)
}

func writeText(w io.Writer, text string) error {
	if genOutputFile == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	if err := os.WriteFile(genOutputFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
