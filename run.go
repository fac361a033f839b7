package saletrack

// Termination reasons recorded on a RunResult.
const (
	TerminatedCompleted           = "completed"
	TerminatedPageLimit           = "page_limit"
	TerminatedConsecutiveFailures = "consecutive_failures"
	TerminatedCanceled            = "canceled"
)

// RunResult is the coverage metadata produced by one crawl invocation for one
// target. It is consumed immediately by the coverage validator and recorded as
// an audit log entry; it is never reconstructed after the fact. Downstream
// components must receive it explicitly rather than recompute page counts,
// because a recomputed or defaulted value hides partial crawls and turns
// unscraped listings into phantom sales.
type RunResult struct {
	Platform            string `json:"platform"`
	Target              string `json:"target"`
	PagesAttempted      int    `json:"pagesAttempted"`
	PagesTotal          int    `json:"pagesTotal"` // 0 when the marketplace advertised no total
	ItemsCollected      int    `json:"itemsCollected"`
	ItemsExpected       int    `json:"itemsExpected"` // advertised total item count, 0 when unknown
	ConsecutiveFailures int    `json:"consecutiveFailures"`
	TerminatedReason    string `json:"terminatedReason"`
}

// Validate returns an error if the run result lacks identity fields.
func (r *RunResult) Validate() error {
	if r.Platform == "" {
		return Errorf(EINVALID, "run platform required")
	}
	if r.Target == "" {
		return Errorf(EINVALID, "run target required")
	}
	return nil
}

// CoverageVerdict is the outcome of validating a RunResult against history.
// An invalid verdict is not an error: the snapshot is still persisted, but
// sale detection is suppressed for the day.
type CoverageVerdict struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}
