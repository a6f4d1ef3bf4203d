package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-mailer/internal/config"
	"github.com/jonathan/resume-mailer/internal/fetch"
	"github.com/jonathan/resume-mailer/internal/logger"
	"github.com/jonathan/resume-mailer/internal/server"
	"github.com/jonathan/resume-mailer/internal/server/ratelimit"
	"github.com/jonathan/resume-mailer/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve resume parsing and email drafting over HTTP.

Routes:
  GET    /health
  POST   /v1/documents        multipart upload, one or more "file" parts
  GET    /v1/documents/{id}
  POST   /v1/emails           JSON body, returns the draft
  POST   /v1/emails/stream    same body, progress as Server-Sent Events
  GET    /v1/drafts
  GET    /v1/drafts/{id}
  DELETE /v1/drafts/{id}

Storage routes need a database (--db-url or DATABASE_URL). Rate limits are read
from RATE_LIMIT_* environment variables. Job URLs must resolve to public
addresses unless --allow-private-urls is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr         string
	serveDatabaseURL  string
	serveConfigPath   string
	serveAPIKey       string
	serveProvider     string
	serveModel        string
	serveTimeout      int
	serveUseBrowser   bool
	serveAllowPrivate bool
)

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveAddr, "addr", ":8080", "Listen address")
	f.StringVar(&serveDatabaseURL, "db-url", "", "Database URL, postgres:// or sqlite:PATH (overrides DATABASE_URL)")
	f.StringVarP(&serveConfigPath, "config", "c", "", "Path to JSON or YAML config file")
	f.StringVar(&serveAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	f.StringVar(&serveProvider, "provider", "", "LLM SDK: gemini or genai")
	f.StringVar(&serveModel, "model", "", "Model name override")
	f.IntVar(&serveTimeout, "timeout", 0, "LLM call timeout in seconds")
	f.BoolVar(&serveUseBrowser, "use-browser", false, "Render job URLs in a headless browser when the page needs JavaScript")
	f.BoolVar(&serveAllowPrivate, "allow-private-urls", false, "Let job URLs reach loopback, private and link-local hosts")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(serveConfigPath, config.Config{
		APIKey:            serveAPIKey,
		Provider:          serveProvider,
		Model:             serveModel,
		LLMTimeoutSeconds: serveTimeout,
		DatabaseURL:       serveDatabaseURL,
		UseBrowser:        serveUseBrowser,
	})
	if err != nil {
		return err
	}
	llmCfg, err := cfg.LLMConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg := server.Config{
		Addr:                serveAddr,
		Backend:             newBackend(cfg, llmCfg),
		Job:                 fetch.JobOptions{UseBrowser: cfg.UseBrowser},
		RateLimit:           ratelimit.LoadConfig(),
		DefaultTone:         types.Tone(cfg.Tone),
		DefaultLength:       types.Length(cfg.Length),
		AllowPrivateJobURLs: serveAllowPrivate,
	}

	database, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
		srvCfg.Store = database
	} else {
		logger.Warn().Msg("no database configured, drafts will not be stored")
	}

	srv, err := server.New(ctx, srvCfg)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
