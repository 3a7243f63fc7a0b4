package version

import (
	"errors"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
)

// Operation outcomes reported to Metrics
const (
	OutcomeSuccess            = "success"
	OutcomePreconditionFailed = "precondition_failed"
	OutcomeStaleLock          = "stale_lock"
	OutcomePartialFailure     = "partial_failure"
	OutcomeError              = "error"
)

// Metrics receives lifecycle outcomes
type Metrics interface {
	RecordOperation(operation, outcome string)
	RecordSkipLock(actor string)
}

type nopMetrics struct{}

func (nopMetrics) RecordOperation(string, string) {}
func (nopMetrics) RecordSkipLock(string)          {}

// Outcome classifies the result of a lifecycle operation
func Outcome(err error) string {
	var partial *versionmodel.PartialFailureError
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &partial):
		return OutcomePartialFailure
	case errors.Is(err, lock.ErrStaleLock):
		return OutcomeStaleLock
	case versionmodel.IsPrecondition(err):
		return OutcomePreconditionFailed
	default:
		return OutcomeError
	}
}
