package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hireloop/hireloop/internal/campaign"
	"github.com/hireloop/hireloop/internal/drive"
	"github.com/hireloop/hireloop/internal/gemini"
	"github.com/hireloop/hireloop/internal/gmail"
	"github.com/hireloop/hireloop/internal/google"
	"github.com/hireloop/hireloop/internal/instrumentation"
	"github.com/hireloop/hireloop/internal/logging"
	"github.com/hireloop/hireloop/internal/recipients"
	"github.com/hireloop/hireloop/internal/resume"
	"github.com/hireloop/hireloop/internal/server"
)

// runOptions collects the run command's flags.
type runOptions struct {
	account        string
	recipientsPath string
	templatePath   string
	subject        string
	resumePath     string
	resumeDriveID  string
	attachResume   bool
	sendDelay      time.Duration
	genDelay       time.Duration
	maxRetries     uint64
	dryRun         bool
	noPersonalize  bool
	research       bool
	outPath        string
	metricsAddr    string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute an outreach campaign",
		Long: `Run one campaign end to end: load recipients from a CSV, personalize each
email with the configured generation model, send through the authenticated
Gmail account, and write a CSV report of every outcome.

Sends are paced (default 60s apart) to stay clear of Gmail's bulk-sending
heuristics, and generation calls are paced (default 4s apart) to stay inside
the free-tier quota. Ctrl-C stops the run between recipients, never mid-send;
recipients not yet processed are reported as skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCampaign(opts)
		},
	}

	cmd.Flags().StringVar(&opts.account, "account", "default", "Google account name to send from")
	cmd.Flags().StringVar(&opts.recipientsPath, "recipients", "", "Path to the recipients CSV (required)")
	cmd.Flags().StringVar(&opts.templatePath, "template", "", "Path to the email body template (required)")
	cmd.Flags().StringVar(&opts.subject, "subject", "", "Email subject; supports [Company Name] and [Recruiter Name] tokens (required)")
	cmd.Flags().StringVar(&opts.resumePath, "resume", "", "Path to a resume PDF used for personalization")
	cmd.Flags().StringVar(&opts.resumeDriveID, "resume-drive-id", "", "Google Drive file ID of the resume PDF")
	cmd.Flags().BoolVar(&opts.attachResume, "attach-resume", false, "Attach the resume PDF to every email")
	cmd.Flags().DurationVar(&opts.sendDelay, "send-delay", campaign.DefaultSendDelay, "Minimum interval between sends")
	cmd.Flags().DurationVar(&opts.genDelay, "gen-delay", campaign.DefaultGenDelay, "Minimum interval between generation calls")
	cmd.Flags().Uint64Var(&opts.maxRetries, "max-retries", campaign.DefaultSendRetries, "Retry budget for transient failures per recipient")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Prepare every email but send nothing")
	cmd.Flags().BoolVar(&opts.noPersonalize, "no-personalize", false, "Skip AI personalization; use plain placeholder substitution")
	cmd.Flags().BoolVar(&opts.research, "research", false, "Generate a company research pass before each personalization")
	cmd.Flags().StringVar(&opts.outPath, "out", "campaign-results.csv", "Path for the outcome report CSV")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Optional address for a metrics/progress listener (e.g. :9090)")

	_ = cmd.MarkFlagRequired("recipients")
	_ = cmd.MarkFlagRequired("template")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}

func runCampaign(opts runOptions) error {
	// Stop between recipients on Ctrl-C; never mid-send.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := logging.WithAccount(slog.Default(), opts.account)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("instrumentation shutdown failed", logging.Err(err))
		}
	}()

	// Load and validate inputs before touching any remote API.
	result, err := loadRecipients(opts.recipientsPath)
	if err != nil {
		return err
	}
	provider.Metrics().RecordRecipientsLoaded(ctx, "loaded", len(result.Records))
	provider.Metrics().RecordRecipientsLoaded(ctx, "skipped", len(result.Skipped))
	for _, skip := range result.Skipped {
		logger.Warn("skipping recipient row",
			logging.Row(skip.Row),
			slog.String("reason", skip.Reason))
	}
	if len(result.Records) == 0 {
		return fmt.Errorf("no sendable recipients in %s", opts.recipientsPath)
	}

	template, err := os.ReadFile(opts.templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	cfg := campaign.Config{
		Account:        opts.account,
		Subject:        opts.subject,
		Template:       string(template),
		GenDelay:       opts.genDelay,
		SendDelay:      opts.sendDelay,
		MaxSendRetries: opts.maxRetries,
		Personalize:    !opts.noPersonalize,
		Research:       opts.research,
		DryRun:         opts.dryRun,
		Logger:         logger,
		Metrics:        provider.Metrics(),
	}

	// Resume feeds personalization and, optionally, the attachment.
	resumeData, resumeName, err := loadResume(ctx, opts)
	if err != nil {
		return err
	}
	if resumeData != nil {
		summary, err := resume.Summary(resumeData)
		if err != nil {
			return fmt.Errorf("failed to extract resume text: %w", err)
		}
		cfg.ResumeSummary = summary

		if opts.attachResume {
			if len(resumeData) > gmail.MaxAttachmentSize {
				return fmt.Errorf("resume is %d bytes, above the %d byte attachment limit", len(resumeData), gmail.MaxAttachmentSize)
			}
			cfg.Attachment = &gmail.Attachment{
				Filename: resumeName,
				MimeType: "application/pdf",
				Data:     resumeData,
			}
		}
	} else if opts.attachResume {
		return fmt.Errorf("--attach-resume requires --resume or --resume-drive-id")
	}

	var gen campaign.Generator
	if cfg.Personalize {
		client, err := gemini.NewClient(os.Getenv(gemini.EnvAPIKey), gemini.WithMaxRetries(opts.maxRetries))
		if err != nil {
			return err
		}
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("generation API preflight failed: %w", err)
		}

		callsPerRecipient := 1
		if opts.research {
			callsPerRecipient = 2
		}
		if calls := len(result.Records) * callsPerRecipient; calls > gemini.DailyQuota {
			logger.Warn("campaign needs more generation calls than the daily quota allows",
				slog.Int("estimated_calls", calls),
				slog.Int("daily_quota", gemini.DailyQuota))
		}
		if opts.genDelay < gemini.MinCallInterval {
			logger.Warn("gen-delay is below the provider minimum and may trip the per-minute quota",
				slog.Duration("gen_delay", opts.genDelay),
				slog.Int("per_minute_quota", gemini.PerMinuteQuota))
		}

		gen = client
	}

	var sender campaign.Sender
	if !opts.dryRun {
		// Building the client forces a token refresh up front.
		client, err := gmail.NewClientForAccount(ctx, opts.account)
		if err != nil {
			if google.IsAuthError(err) {
				provider.Metrics().RecordTokenRefresh(ctx, instrumentation.StatusError)
				return fmt.Errorf("%w\n\n%s", err, google.GetAuthenticationErrorMessage(opts.account))
			}
			return err
		}
		provider.Metrics().RecordTokenRefresh(ctx, instrumentation.StatusSuccess)
		address, err := client.Profile(ctx)
		if err != nil {
			return fmt.Errorf("failed to verify Gmail access: %w", err)
		}
		logger.Info("sending as", logging.UserHash(address))
		sender = client
	}

	runner, err := campaign.NewRunner(cfg, gen, sender)
	if err != nil {
		return err
	}

	tracker := campaign.NewTracker(result.Records)

	metricsServer, health, err := startMetricsListener(opts.metricsAddr, provider, tracker)
	if err != nil {
		return err
	}
	if metricsServer != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
			defer shutdownCancel()
			_ = metricsServer.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("starting campaign",
		slog.Int("recipients", len(result.Records)),
		slog.Bool("dry_run", opts.dryRun),
		slog.Bool("personalize", cfg.Personalize))

	runErr := runner.Run(ctx, tracker)
	if health != nil {
		health.SetReady(false)
	}

	if err := writeReport(tracker, opts.outPath); err != nil {
		return err
	}

	summary := tracker.Summary()
	fmt.Printf("Campaign finished: %d sent, %d failed, %d skipped (of %d). Report: %s\n",
		summary.Sent, summary.Failed, summary.Skipped, summary.Total, opts.outPath)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func loadRecipients(path string) (*recipients.LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recipients file: %w", err)
	}
	defer f.Close()
	return recipients.Load(f)
}

// loadResume returns the resume PDF bytes from either a local path or a
// Drive file ID, or (nil, "", nil) when no resume was requested.
func loadResume(ctx context.Context, opts runOptions) ([]byte, string, error) {
	switch {
	case opts.resumePath != "" && opts.resumeDriveID != "":
		return nil, "", fmt.Errorf("--resume and --resume-drive-id are mutually exclusive")
	case opts.resumePath != "":
		data, err := os.ReadFile(opts.resumePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read resume: %w", err)
		}
		return data, filepath.Base(opts.resumePath), nil
	case opts.resumeDriveID != "":
		client, err := drive.NewClientForAccount(ctx, opts.account)
		if err != nil {
			return nil, "", err
		}
		file, err := client.Download(ctx, opts.resumeDriveID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to download resume from Drive: %w", err)
		}
		return file.Data, file.Name, nil
	default:
		return nil, "", nil
	}
}

// startMetricsListener starts the optional metrics/progress server. Returns
// nils when no address was configured.
func startMetricsListener(addr string, provider *instrumentation.Provider, tracker *campaign.Tracker) (*server.MetricsServer, *server.HealthChecker, error) {
	if addr == "" {
		return nil, nil, nil
	}
	if !provider.Enabled() {
		return nil, nil, fmt.Errorf("--metrics-addr requires instrumentation; set INSTRUMENTATION_ENABLED=true")
	}

	health := server.NewHealthChecker(tracker.Summary)
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
		Health:                  health,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	ready := make(chan struct{})
	errCh := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(ready); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ready:
		return metricsServer, health, nil
	case err := <-errCh:
		return nil, nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, nil, fmt.Errorf("metrics server startup timed out")
	}
}

func writeReport(tracker *campaign.Tracker, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := tracker.ExportCSV(f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
