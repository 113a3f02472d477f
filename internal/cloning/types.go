package cloning

import "github.com/AoNovae/Git-Toolkit/internal/gitlab"

const (
	// FailureReasonDestinationExists marks jobs skipped because the destination directory was occupied.
	FailureReasonDestinationExists = "destination exists"
	// FailureReasonCloneCommandFailed marks jobs whose git invocation exited unsuccessfully.
	FailureReasonCloneCommandFailed = "clone command failed"
	// FailureReasonNetworkError marks jobs whose git invocation could not reach the remote.
	FailureReasonNetworkError = "network error"
)

// CloneJob pairs a project with the local directory it clones into.
type CloneJob struct {
	Project         gitlab.Project
	DestinationPath string
}

// Outcome records whether a job succeeded and, when it failed, why.
type Outcome struct {
	Succeeded     bool
	FailureReason string
	Detail        string
}

// SuccessOutcome constructs the outcome of a completed clone.
func SuccessOutcome() Outcome {
	return Outcome{Succeeded: true}
}

// FailureOutcome constructs the outcome of a failed clone with a reason and optional detail.
func FailureOutcome(failureReason string, failureDetail string) Outcome {
	return Outcome{FailureReason: failureReason, Detail: failureDetail}
}

// JobOutcome associates a job with its recorded outcome.
type JobOutcome struct {
	Job     CloneJob
	Outcome Outcome
}

// BatchReport enumerates every job outcome in input order.
type BatchReport []JobOutcome

// SucceededCount returns the number of successful jobs in the report.
func (report BatchReport) SucceededCount() int {
	succeededJobs := 0
	for _, jobOutcome := range report {
		if jobOutcome.Outcome.Succeeded {
			succeededJobs++
		}
	}
	return succeededJobs
}

// FailedCount returns the number of failed jobs in the report.
func (report BatchReport) FailedCount() int {
	return len(report) - report.SucceededCount()
}

// ProgressUpdate describes one finished job inside a running batch.
type ProgressUpdate struct {
	Index   int
	Total   int
	Job     CloneJob
	Outcome Outcome
}

// ProgressFunc receives exactly one update per job, in job order.
type ProgressFunc func(update ProgressUpdate)
