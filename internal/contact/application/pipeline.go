package application

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/orsayn/site-api/internal/contact/domain"
)

const (
	defaultUpstreamTimeout = 5 * time.Second
	defaultObserverTimeout = 250 * time.Millisecond
)

// PipelineConfig defines the dependencies of a Pipeline.
type PipelineConfig struct {
	Logger   *log.Logger
	Gate     *Gate
	Mailer   Mailer
	Records  RecordStore
	Observer GateObserver
	// Failures, when set, keeps notifications the mailer could not deliver.
	Failures NotificationFailureStore
	Mail     MailSettings
	// UpstreamTimeout bounds each external write separately.
	UpstreamTimeout time.Duration
	// ObserverTimeout bounds the stats call made before the gate answers.
	ObserverTimeout time.Duration
	Now             func() time.Time
	NewID           func() string
}

// Pipeline admits, validates, sanitizes and forwards contact submissions.
// The email is always attempted before the record; neither failure aborts
// the other.
type Pipeline struct {
	logger   *log.Logger
	gate     *Gate
	mailer   Mailer
	records  RecordStore
	observer GateObserver
	failures NotificationFailureStore
	mail     MailSettings
	timeout  time.Duration
	observe  time.Duration
	now      func() time.Time
	newID    func() string
}

// NewPipeline wires a pipeline. A nil gate admits everything.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}
	if cfg.ObserverTimeout <= 0 {
		cfg.ObserverTimeout = defaultObserverTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = func() string { return uuid.NewString() }
	}
	return &Pipeline{
		logger:   cfg.Logger,
		gate:     cfg.Gate,
		mailer:   cfg.Mailer,
		records:  cfg.Records,
		observer: cfg.Observer,
		failures: cfg.Failures,
		mail:     cfg.Mail,
		timeout:  cfg.UpstreamTimeout,
		observe:  cfg.ObserverTimeout,
		now:      cfg.Now,
		newID:    cfg.NewID,
	}
}

// Admit runs the gate for clientID and reports the decision to the observer.
func (p *Pipeline) Admit(ctx context.Context, clientID, method, path string) Decision {
	decision := Decision{Allowed: true}
	if p.gate != nil {
		decision = p.gate.Decide(clientID)
	}

	if p.observer != nil {
		ctx, cancel := context.WithTimeout(ctx, p.observe)
		defer cancel()
		ev := GateEvent{
			ClientID: clientID,
			Allowed:  decision.Allowed,
			Reason:   decision.Reason,
			Method:   method,
			Path:     path,
			At:       p.now(),
		}
		if err := p.observer.Record(ctx, ev); err != nil {
			p.logf("gate stats record failed: %v", err)
		}
	}
	return decision
}

// Process handles an admitted submission. Validation failures short-circuit
// before any external call; upstream failures are captured in the result and
// never returned as errors.
func (p *Pipeline) Process(ctx context.Context, clientID string, sub domain.Submission) domain.Result {
	result := domain.Result{SubmissionID: p.newID(), Stage: domain.StageGateCheck}

	if invalid := sub.Validate(); invalid != nil {
		result.Invalid = invalid
		return result
	}
	result.Stage = domain.StageValidated

	clean := sub.Sanitize()
	if invalid := clean.Validate(); invalid != nil {
		result.Invalid = invalid
		return result
	}
	result.Stage = domain.StageSanitized

	// The writes outlive a client that disconnects mid-request.
	ctx = context.WithoutCancel(ctx)

	msg, attempt := p.sendNotification(ctx, clean, clientID, result.SubmissionID)
	result.Email = attempt
	result.Stage = domain.StageEmailAttempted
	if result.Email.Err != nil {
		p.logf("submission %s: email send failed: %v", result.SubmissionID, result.Email.Err)
		p.keepFailedNotification(ctx, result.SubmissionID, msg, result.Email.Err)
	}

	record := domain.NewRecord(result.SubmissionID, clean, p.now())
	result.Record = p.createRecord(ctx, record)
	result.Stage = domain.StageRecordAttempted
	if result.Record.Err != nil {
		p.logf("submission %s: record create failed: %v", result.SubmissionID, result.Record.Err)
	}

	return result
}

func (p *Pipeline) sendNotification(ctx context.Context, clean domain.SanitizedSubmission, clientID, reference string) (msg domain.EmailMessage, attempt domain.Attempt) {
	attempt.Attempted = true
	defer func() {
		if r := recover(); r != nil {
			attempt.Err = fmt.Errorf("mailer panic: %v", r)
		}
	}()

	msg, err := BuildNotification(p.mail, clean, clientID, reference)
	if err != nil {
		attempt.Err = err
		return msg, attempt
	}
	if p.mailer == nil {
		attempt.Err = fmt.Errorf("mailer: %w", domain.ErrConfigMissing)
		return msg, attempt
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	attempt.Err = p.mailer.Send(ctx, msg)
	return msg, attempt
}

func (p *Pipeline) keepFailedNotification(ctx context.Context, reference string, msg domain.EmailMessage, sendErr error) {
	if p.failures == nil || msg.Subject == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	failure := domain.FailedNotification{
		Reference: reference,
		Message:   msg,
		Err:       sendErr.Error(),
		FailedAt:  p.now(),
	}
	if err := p.failures.Save(ctx, failure); err != nil {
		p.logf("submission %s: keep failed notification: %v", reference, err)
	}
}

func (p *Pipeline) createRecord(ctx context.Context, record domain.Record) (attempt domain.Attempt) {
	attempt.Attempted = true
	defer func() {
		if r := recover(); r != nil {
			attempt.Err = fmt.Errorf("record store panic: %v", r)
		}
	}()

	if p.records == nil {
		attempt.Err = fmt.Errorf("record store: %w", domain.ErrConfigMissing)
		return attempt
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	id, err := p.records.Create(ctx, record)
	if err != nil {
		attempt.Err = err
		return attempt
	}
	p.logf("submission %s: record created id=%s", record.Reference, id)
	return attempt
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Printf(format, args...)
	}
}
