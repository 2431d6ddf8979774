package metrics

// Pre-defined metrics for the proving pipeline. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- Execution metrics ----

	// SessionsExecuted counts guest sessions run to completion.
	SessionsExecuted = DefaultRegistry.Counter("exec.sessions")
	// SegmentsExecuted counts execution segments produced across sessions.
	SegmentsExecuted = DefaultRegistry.Counter("exec.segments")
	// CyclesExecuted counts total guest cycles consumed.
	CyclesExecuted = DefaultRegistry.Counter("exec.cycles")

	// ---- Proving metrics ----

	// SegmentsProven counts segment receipts produced.
	SegmentsProven = DefaultRegistry.Counter("prove.segments")
	// SegmentRate tracks segment receipts proven per second.
	SegmentRate = DefaultRegistry.Meter("prove.segment_rate")
	// CycleRate tracks guest cycles executed per second.
	CycleRate = DefaultRegistry.Meter("exec.cycle_rate")
	// ReceiptsLifted counts segment receipts lifted to succinct form.
	ReceiptsLifted = DefaultRegistry.Counter("prove.lifts")
	// ReceiptsJoined counts pairwise join operations.
	ReceiptsJoined = DefaultRegistry.Counter("prove.joins")
	// ProofsCompleted counts full execute-prove-compress runs.
	ProofsCompleted = DefaultRegistry.Counter("prove.proofs")
	// ProveTime records full proof duration in milliseconds.
	ProveTime = DefaultRegistry.Histogram("prove.duration_ms")

	// ---- Verification metrics ----

	// VerificationsOK counts receipts that passed full verification.
	VerificationsOK = DefaultRegistry.Counter("verify.ok")
	// VerificationsFailed counts receipts rejected by verification.
	VerificationsFailed = DefaultRegistry.Counter("verify.failed")

	// ---- Composition metrics ----

	// CompositionsProven counts composite proofs produced by the composer.
	CompositionsProven = DefaultRegistry.Counter("compose.proofs")
	// AssumptionsResolved counts assumptions consumed during composition.
	AssumptionsResolved = DefaultRegistry.Counter("compose.assumptions_resolved")
	// PreflightIssues counts consistency issues reported by preflight.
	PreflightIssues = DefaultRegistry.Counter("compose.preflight_issues")
)
