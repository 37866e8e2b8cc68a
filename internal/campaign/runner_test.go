package campaign

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/hireloop/hireloop/internal/gmail"
	"github.com/hireloop/hireloop/internal/google"
	"github.com/hireloop/hireloop/internal/recipients"
)

type fakeGenerator struct {
	mu      sync.Mutex
	calls   []string
	times   []time.Time
	failFor string // substring of prompt that triggers an error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, prompt)
	g.times = append(g.times, time.Now())
	if g.failFor != "" && strings.Contains(prompt, g.failFor) {
		return "", errors.New("generation exhausted retries")
	}
	return "Generated body for row " + fmt.Sprint(len(g.calls)), nil
}

func (g *fakeGenerator) Model() string { return "fake-model" }

func (g *fakeGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []*gmail.Message
	times []time.Time
	// errFor maps recipient email to the error returned for it. A nil map
	// means every send succeeds.
	errFor map[string]error
}

func (s *fakeSender) Send(_ context.Context, msg *gmail.Message) (*gmail.SendReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times = append(s.times, time.Now())
	if err := s.errFor[msg.To]; err != nil {
		return nil, err
	}
	s.sent = append(s.sent, msg)
	return &gmail.SendReceipt{MessageID: fmt.Sprintf("msg-%d", len(s.sent))}, nil
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func testRecords(n int) []recipients.Record {
	recs := make([]recipients.Record, n)
	for i := range recs {
		recs[i] = recipients.Record{
			Company:   fmt.Sprintf("Company %d", i+1),
			Recruiter: fmt.Sprintf("Recruiter %d", i+1),
			Email:     fmt.Sprintf("r%d@example.com", i+1),
			Row:       i + 1,
		}
	}
	return recs
}

func testConfig() Config {
	return Config{
		Account:        "work",
		Subject:        "Hello [Company Name]",
		Template:       "Hi [Recruiter Name],\n\nI admire [Company Name].",
		GenDelay:       time.Millisecond,
		SendDelay:      time.Millisecond,
		MaxSendRetries: 1,
	}
}

func TestRunnerSendsAllRecipients(t *testing.T) {
	gen := &fakeGenerator{}
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.Personalize = true
	runner, err := NewRunner(cfg, gen, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(3))
	err = runner.Run(context.Background(), tracker)
	require.NoError(t, err)

	summary := tracker.Summary()
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Pending)

	require.Equal(t, 3, sender.sentCount())
	assert.Equal(t, 3, gen.callCount())

	// Subjects carry per-recipient substitution and the receipt is recorded.
	results := tracker.Results()
	assert.Equal(t, "Hello Company 1", results[0].Subject)
	assert.Equal(t, "msg-1", results[0].MessageID)
	assert.Equal(t, Sent, results[2].Outcome)
}

func TestRunnerWithoutPersonalization(t *testing.T) {
	sender := &fakeSender{}

	runner, err := NewRunner(testConfig(), nil, sender)
	require.NoError(t, err)

	err = runner.Run(context.Background(), NewTracker(testRecords(1)))
	require.NoError(t, err)

	require.Equal(t, 1, sender.sentCount())
	msg := sender.sent[0]
	assert.Equal(t, "r1@example.com", msg.To)
	assert.Equal(t, "Hi Recruiter 1,\n\nI admire Company 1.", msg.Body)
}

func TestRunnerGenerationFailureIsolated(t *testing.T) {
	gen := &fakeGenerator{failFor: "Company 2"}
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.Personalize = true
	runner, err := NewRunner(cfg, gen, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(3))
	err = runner.Run(context.Background(), tracker)
	require.NoError(t, err)

	summary := tracker.Summary()
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)

	results := tracker.Results()
	assert.Equal(t, Failed, results[1].Outcome)
	assert.Contains(t, results[1].Reason, "generation")
	// The failed recipient never reached the sender.
	assert.Equal(t, 2, sender.sentCount())
}

func TestRunnerPermanentSendFailureIsolated(t *testing.T) {
	sender := &fakeSender{
		errFor: map[string]error{
			"r2@example.com": &googleapi.Error{Code: 400, Message: "invalid recipient"},
		},
	}

	runner, err := NewRunner(testConfig(), nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(3))
	err = runner.Run(context.Background(), tracker)
	require.NoError(t, err)

	summary := tracker.Summary()
	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)

	results := tracker.Results()
	assert.Equal(t, Failed, results[1].Outcome)
	assert.Contains(t, results[1].Reason, "send")
}

func TestRunnerAuthErrorHaltsRun(t *testing.T) {
	sender := &fakeSender{
		errFor: map[string]error{
			"r2@example.com": &google.AuthError{Op: "send", Account: "work", Err: errors.New("token revoked")},
		},
	}

	runner, err := NewRunner(testConfig(), nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(4))
	err = runner.Run(context.Background(), tracker)
	require.Error(t, err)
	assert.True(t, google.IsAuthError(err))

	summary := tracker.Summary()
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Pending)

	results := tracker.Results()
	assert.Equal(t, Sent, results[0].Outcome)
	for _, r := range results[1:] {
		assert.Equal(t, Skipped, r.Outcome)
		assert.Equal(t, ReasonAuthHalt, r.Reason)
	}
}

func TestRunnerExpiredCredentialMidRunHaltsRun(t *testing.T) {
	// The shape a token revoked mid-run actually arrives in: the Gmail API
	// rejects the bearer token with a 401 wrapped in a SendError.
	expired := &gmail.SendError{
		Op:        "send",
		Recipient: "r2@example.com",
		Err:       &googleapi.Error{Code: 401, Message: "Invalid Credentials"},
	}
	sender := &fakeSender{errFor: map[string]error{"r2@example.com": expired}}

	runner, err := NewRunner(testConfig(), nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(3))
	err = runner.Run(context.Background(), tracker)
	require.Error(t, err)
	assert.True(t, google.IsAuthError(err))

	// The failing send is attempted exactly once (no retry on 401) and the
	// run halts instead of grinding through the remaining recipients.
	require.Len(t, sender.times, 2)
	summary := tracker.Summary()
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 2, summary.Skipped)

	results := tracker.Results()
	for _, r := range results[1:] {
		assert.Equal(t, Skipped, r.Outcome)
		assert.Equal(t, ReasonAuthHalt, r.Reason)
	}
}

func TestRunnerDryRunSendsNothing(t *testing.T) {
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.DryRun = true
	runner, err := NewRunner(cfg, nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(2))
	err = runner.Run(context.Background(), tracker)
	require.NoError(t, err)

	assert.Equal(t, 0, sender.sentCount())
	summary := tracker.Summary()
	assert.Equal(t, 2, summary.Skipped)

	for _, r := range tracker.Results() {
		assert.Equal(t, ReasonDryRun, r.Reason)
		// Dry-run still records the prepared subject for the report.
		assert.NotEmpty(t, r.Subject)
	}
}

func TestRunnerCancellationSkipsRemaining(t *testing.T) {
	sender := &fakeSender{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, err := NewRunner(testConfig(), nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(3))
	err = runner.Run(ctx, tracker)
	require.ErrorIs(t, err, context.Canceled)

	summary := tracker.Summary()
	assert.Equal(t, 0, summary.Sent)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 0, summary.Pending)

	for _, r := range tracker.Results() {
		assert.Equal(t, ReasonCanceled, r.Reason)
	}
}

func TestRunnerPacesSends(t *testing.T) {
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.SendDelay = 50 * time.Millisecond
	runner, err := NewRunner(cfg, nil, sender)
	require.NoError(t, err)

	err = runner.Run(context.Background(), NewTracker(testRecords(3)))
	require.NoError(t, err)

	require.Len(t, sender.times, 3)
	// The first send goes immediately; every subsequent send waits out the
	// configured delay.
	for i := 1; i < len(sender.times); i++ {
		gap := sender.times[i].Sub(sender.times[i-1])
		assert.GreaterOrEqual(t, gap, 45*time.Millisecond, "send %d too soon after send %d", i, i-1)
	}
}

func TestRunnerPacesGenerationCalls(t *testing.T) {
	gen := &fakeGenerator{}
	sender := &fakeSender{}

	cfg := testConfig()
	cfg.Personalize = true
	cfg.Research = true
	cfg.GenDelay = 50 * time.Millisecond
	runner, err := NewRunner(cfg, gen, sender)
	require.NoError(t, err)

	err = runner.Run(context.Background(), NewTracker(testRecords(2)))
	require.NoError(t, err)

	// Research plus personalization means two generation calls per recipient,
	// and every pair of consecutive calls waits out the delay, including the
	// research-to-personalize transition within one recipient.
	require.Len(t, gen.times, 4)
	for i := 1; i < len(gen.times); i++ {
		gap := gen.times[i].Sub(gen.times[i-1])
		assert.GreaterOrEqual(t, gap, 45*time.Millisecond, "generation call %d too soon after call %d", i, i-1)
	}
}

func TestRunnerRetriesTransientSendFailure(t *testing.T) {
	attempts := 0
	sender := &flakySender{failures: 2, attempts: &attempts}

	cfg := testConfig()
	cfg.MaxSendRetries = 3
	runner, err := NewRunner(cfg, nil, sender)
	require.NoError(t, err)

	tracker := NewTracker(testRecords(1))
	err = runner.Run(context.Background(), tracker)
	require.NoError(t, err)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, tracker.Summary().Sent)
}

// flakySender fails with a retryable error a fixed number of times, then
// succeeds.
type flakySender struct {
	failures int
	attempts *int
}

func (s *flakySender) Send(_ context.Context, _ *gmail.Message) (*gmail.SendReceipt, error) {
	*s.attempts++
	if *s.attempts <= s.failures {
		return nil, &googleapi.Error{Code: 503, Message: "backend unavailable"}
	}
	return &gmail.SendReceipt{MessageID: "msg-ok"}, nil
}

func TestNewRunnerValidation(t *testing.T) {
	t.Run("missing subject", func(t *testing.T) {
		cfg := testConfig()
		cfg.Subject = ""
		_, err := NewRunner(cfg, nil, &fakeSender{})
		assert.Error(t, err)
	})

	t.Run("missing template", func(t *testing.T) {
		cfg := testConfig()
		cfg.Template = ""
		_, err := NewRunner(cfg, nil, &fakeSender{})
		assert.Error(t, err)
	})

	t.Run("missing sender", func(t *testing.T) {
		_, err := NewRunner(testConfig(), nil, nil)
		assert.Error(t, err)
	})

	t.Run("dry-run needs no sender", func(t *testing.T) {
		cfg := testConfig()
		cfg.DryRun = true
		_, err := NewRunner(cfg, nil, nil)
		assert.NoError(t, err)
	})

	t.Run("personalization needs a generator", func(t *testing.T) {
		cfg := testConfig()
		cfg.Personalize = true
		_, err := NewRunner(cfg, nil, &fakeSender{})
		assert.Error(t, err)
	})
}
