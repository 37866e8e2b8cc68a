package campaign

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/hireloop/hireloop/internal/gemini"
	"github.com/hireloop/hireloop/internal/gmail"
	"github.com/hireloop/hireloop/internal/google"
	"github.com/hireloop/hireloop/internal/instrumentation"
	"github.com/hireloop/hireloop/internal/logging"
	"github.com/hireloop/hireloop/internal/recipients"
)

// Default pacing between consecutive API calls. The generation delay keeps
// a run under the free-tier per-minute quota; the send delay spreads sends
// out so the account does not trip Gmail's bulk-sending heuristics.
const (
	DefaultGenDelay  = gemini.MinCallInterval
	DefaultSendDelay = 60 * time.Second

	// DefaultSendRetries bounds per-recipient retry attempts on transient
	// send failures.
	DefaultSendRetries = 3
)

// Skip reasons recorded by the runner.
const (
	ReasonDryRun   = "dry-run"
	ReasonCanceled = "canceled"
	ReasonAuthHalt = "authentication error halted run"
)

// Generator produces text from a prompt. *gemini.Client satisfies this.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Sender delivers a prepared message. *gmail.Client satisfies this.
type Sender interface {
	Send(ctx context.Context, msg *gmail.Message) (*gmail.SendReceipt, error)
}

// Config holds the knobs for one campaign run.
type Config struct {
	Account string

	// Subject and Template may contain the placeholder tokens understood by
	// Substitute ([Company Name], [COMPANY], [Recruiter Name], [RECRUITER]).
	Subject  string
	Template string

	// ResumeSummary feeds the personalization prompt. Optional.
	ResumeSummary string

	// Attachment is attached to every outgoing message. Optional.
	Attachment *gmail.Attachment

	// GenDelay is the minimum interval between generation calls.
	GenDelay time.Duration

	// SendDelay is the minimum interval between send calls.
	SendDelay time.Duration

	// MaxSendRetries bounds retries of transient send failures per recipient.
	MaxSendRetries uint64

	// Personalize enables per-recipient body generation. When false the body
	// is the template with placeholder substitution only.
	Personalize bool

	// Research adds a company research pass before personalization. Research
	// failures are not fatal; personalization proceeds without it.
	Research bool

	// DryRun prepares every message but sends nothing. Each recipient is
	// recorded as Skipped.
	DryRun bool

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics
}

// Runner walks the recipient list in source order, generating and sending
// one message per recipient. A single forward cursor: each recipient gets
// exactly one terminal outcome and is never revisited.
type Runner struct {
	cfg         Config
	gen         Generator
	sender      Sender
	genLimiter  *rate.Limiter
	sendLimiter *rate.Limiter
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
}

// NewRunner validates the configuration and prepares a runner.
func NewRunner(cfg Config, gen Generator, sender Sender) (*Runner, error) {
	if cfg.Subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	if cfg.Template == "" {
		return nil, fmt.Errorf("template is required")
	}
	if sender == nil && !cfg.DryRun {
		return nil, fmt.Errorf("sender is required unless running with dry-run")
	}
	if cfg.Personalize && gen == nil {
		return nil, fmt.Errorf("generator is required when personalization is enabled")
	}
	if cfg.GenDelay <= 0 {
		cfg.GenDelay = DefaultGenDelay
	}
	if cfg.SendDelay <= 0 {
		cfg.SendDelay = DefaultSendDelay
	}
	if cfg.MaxSendRetries == 0 {
		cfg.MaxSendRetries = DefaultSendRetries
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &instrumentation.Metrics{}
	}

	return &Runner{
		cfg:         cfg,
		gen:         gen,
		sender:      sender,
		genLimiter:  rate.NewLimiter(rate.Every(cfg.GenDelay), 1),
		sendLimiter: rate.NewLimiter(rate.Every(cfg.SendDelay), 1),
		logger:      logging.WithOperation(cfg.Logger, "campaign.run"),
		metrics:     cfg.Metrics,
	}, nil
}

// Run processes every recipient in the tracker, leaving one terminal outcome
// per record. A context cancellation or an authentication failure stops the
// run between recipients; the remaining records are marked Skipped and the
// error is returned. The tracker can be created ahead of time so progress is
// observable while the run is in flight.
func (r *Runner) Run(ctx context.Context, tracker *Tracker) error {
	records := tracker.Records()

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(ctx, tracker, records[i:], ReasonCanceled)
			return err
		}

		recCtx, span := instrumentation.StartRecipientSpan(ctx, rec.Row)
		err := r.processRecipient(recCtx, tracker, rec)
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()

		if google.IsAuthError(err) {
			r.logger.Error("authentication failed, halting run",
				logging.Account(r.cfg.Account),
				logging.Err(err))
			r.skipRemaining(ctx, tracker, records[i+1:], ReasonAuthHalt)
			return err
		}
	}

	return nil
}

// processRecipient takes one recipient to a terminal outcome. Only
// authentication errors are returned; everything else is absorbed into the
// recipient's recorded outcome so the run continues.
func (r *Runner) processRecipient(ctx context.Context, tracker *Tracker, rec recipients.Record) error {
	logger := r.logger.With(
		logging.Company(rec.Company),
		logging.Row(rec.Row),
		logging.UserHash(rec.Email),
	)

	subject := Substitute(r.cfg.Subject, rec.Company, rec.Recruiter)

	body, err := r.buildBody(ctx, rec)
	if err != nil {
		if ctx.Err() != nil {
			r.metrics.RecordOutcome(ctx, Skipped.String())
			return tracker.Record(rec, Skipped, ReasonCanceled, subject, "")
		}
		logger.Warn("generation failed", logging.Err(err))
		r.metrics.RecordOutcome(ctx, Failed.String())
		if recErr := tracker.Record(rec, Failed, fmt.Sprintf("generation: %v", err), subject, ""); recErr != nil {
			return recErr
		}
		return nil
	}

	msg := &gmail.Message{
		To:         rec.Email,
		Subject:    subject,
		Body:       body,
		Attachment: r.cfg.Attachment,
	}

	if r.cfg.DryRun {
		logger.Info("dry-run, message prepared but not sent", slog.String("subject", subject))
		r.metrics.RecordOutcome(ctx, Skipped.String())
		return tracker.Record(rec, Skipped, ReasonDryRun, subject, "")
	}

	receipt, err := r.send(ctx, msg)
	if err != nil {
		if ctx.Err() != nil {
			r.metrics.RecordOutcome(ctx, Skipped.String())
			return tracker.Record(rec, Skipped, ReasonCanceled, subject, "")
		}
		if google.IsAuthError(err) {
			if recErr := tracker.Record(rec, Skipped, ReasonAuthHalt, subject, ""); recErr != nil {
				return recErr
			}
			return err
		}
		logger.Warn("send failed", logging.Err(err))
		r.metrics.RecordOutcome(ctx, Failed.String())
		if recErr := tracker.Record(rec, Failed, fmt.Sprintf("send: %v", err), subject, ""); recErr != nil {
			return recErr
		}
		return nil
	}

	logger.Info("message sent",
		logging.Status(logging.StatusSuccess),
		slog.String("message_id", receipt.MessageID))
	r.metrics.RecordOutcome(ctx, Sent.String())
	return tracker.Record(rec, Sent, "", subject, receipt.MessageID)
}

// buildBody produces the message body for one recipient, generating a
// personalized version when enabled and falling back to plain placeholder
// substitution otherwise.
func (r *Runner) buildBody(ctx context.Context, rec recipients.Record) (string, error) {
	substituted := Substitute(r.cfg.Template, rec.Company, rec.Recruiter)
	if !r.cfg.Personalize {
		return substituted, nil
	}

	research := ""
	if r.cfg.Research {
		research = r.research(ctx, rec)
	}

	if err := r.genLimiter.Wait(ctx); err != nil {
		return "", err
	}

	prompt := gemini.PersonalizationPrompt(gemini.PromptInput{
		CompanyName:     rec.Company,
		RecruiterName:   rec.Recruiter,
		BaseTemplate:    substituted,
		ResumeSummary:   r.cfg.ResumeSummary,
		CompanyResearch: research,
		Fields:          rec.Fields,
	})

	start := time.Now()
	genCtx, span := instrumentation.StartClientSpan(ctx, "gemini", "generate")
	body, err := r.gen.Generate(genCtx, prompt)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		span.End()
		r.metrics.RecordGeneration(ctx, r.gen.Model(), instrumentation.StatusError, time.Since(start).Seconds())
		return "", err
	}
	instrumentation.SetSpanSuccess(span)
	span.End()
	r.metrics.RecordGeneration(ctx, r.gen.Model(), instrumentation.StatusSuccess, time.Since(start).Seconds())

	// The model may echo placeholder tokens from the template back.
	return Substitute(body, rec.Company, rec.Recruiter), nil
}

// research runs the optional company research pass. Failures degrade to an
// empty research section rather than failing the recipient.
func (r *Runner) research(ctx context.Context, rec recipients.Record) string {
	if err := r.genLimiter.Wait(ctx); err != nil {
		return ""
	}

	start := time.Now()
	text, err := r.gen.Generate(ctx, gemini.ResearchPrompt(rec.Company))
	if err != nil {
		r.logger.Warn("company research failed, proceeding without it",
			logging.Company(rec.Company),
			logging.Err(err))
		r.metrics.RecordGeneration(ctx, r.gen.Model(), instrumentation.StatusError, time.Since(start).Seconds())
		return ""
	}
	r.metrics.RecordGeneration(ctx, r.gen.Model(), instrumentation.StatusSuccess, time.Since(start).Seconds())
	return text
}

// send paces and performs one delivery, retrying transient failures with
// exponential backoff up to the configured retry budget.
func (r *Runner) send(ctx context.Context, msg *gmail.Message) (*gmail.SendReceipt, error) {
	if err := r.sendLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var receipt *gmail.SendReceipt

	operation := func() error {
		start := time.Now()
		sendCtx, span := instrumentation.StartClientSpan(ctx, "gmail", "send")
		var err error
		receipt, err = r.sender.Send(sendCtx, msg)
		if err != nil {
			instrumentation.SetSpanError(span, err)
			span.End()
			r.metrics.RecordSend(ctx, instrumentation.StatusError, time.Since(start).Seconds())
			if !gmail.IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		instrumentation.SetSpanSuccess(span)
		span.End()
		r.metrics.RecordSend(ctx, instrumentation.StatusSuccess, time.Since(start).Seconds())
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), r.cfg.MaxSendRetries)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return receipt, nil
}

// skipRemaining marks every still-pending record in rest as Skipped.
func (r *Runner) skipRemaining(ctx context.Context, tracker *Tracker, rest []recipients.Record, reason string) {
	for _, rec := range rest {
		if err := tracker.Record(rec, Skipped, reason, "", ""); err != nil {
			continue // already terminal
		}
		r.metrics.RecordOutcome(ctx, Skipped.String())
	}
}
