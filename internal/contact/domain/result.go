package domain

// Stage names the steps a submission goes through.
type Stage string

const (
	StageReceived        Stage = "received"
	StageGateCheck       Stage = "gate_check"
	StageValidated       Stage = "validated"
	StageSanitized       Stage = "sanitized"
	StageEmailAttempted  Stage = "email_attempted"
	StageRecordAttempted Stage = "record_attempted"
	StageResponded       Stage = "responded"
)

// Attempt is the outcome of one external write.
type Attempt struct {
	Attempted bool
	Err       error
}

// Succeeded reports whether the write was made and did not fail.
func (a Attempt) Succeeded() bool {
	return a.Attempted && a.Err == nil
}

// Result captures everything the pipeline did for one submission. The HTTP
// layer derives the caller-visible outcome from it.
type Result struct {
	SubmissionID string
	// Stage is the last stage reached before responding.
	Stage   Stage
	Invalid *ValidationError
	Email   Attempt
	Record  Attempt
}

// Accepted reports whether the submission passed validation and reached the
// external writes.
func (r Result) Accepted() bool {
	return r.Invalid == nil && r.Stage == StageRecordAttempted
}

// Degraded reports an accepted submission whose record write failed.
func (r Result) Degraded() bool {
	return r.Accepted() && !r.Record.Succeeded()
}
