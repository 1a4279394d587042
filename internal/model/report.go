package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Outcome describes how (or whether) a single file was staged locally.
type Outcome int

const (
	// OutcomeCache means the file was copied from the local file cache
	// without any network transfer.
	OutcomeCache Outcome = iota

	// OutcomeNetwork means the file was fetched over the network using a
	// read ticket.
	OutcomeNetwork

	// OutcomeFailed means both the cache lookup and the ticket fetch failed.
	OutcomeFailed
)

// String returns the report string for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCache:
		return "downloaded-from-cache"
	case OutcomeNetwork:
		return "downloaded-from-network"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DownloadResult records the outcome of staging one file for one identifier.
//
// Failures are recorded here per file and never abort sibling files; Err
// holds the underlying error message when Outcome is OutcomeFailed.
type DownloadResult struct {
	ItemIdentifier string
	DatasetName    string
	FileName       string
	LocalPath      string
	Outcome        Outcome
	Err            string
}

// ItemStatus is the per-identifier result of one pipeline run.
type ItemStatus int

const (
	// StatusDownloaded means the identifier resolved and at least one
	// dataset was processed.
	StatusDownloaded ItemStatus = iota

	// StatusNoDatasets means the identifier resolved but no dataset of a
	// wanted type exists. This is a normal outcome, not a failure.
	StatusNoDatasets

	// StatusNotFound means the identifier does not resolve to any item.
	// This is a normal outcome, not a failure.
	StatusNotFound

	// StatusError means a remote call failed while processing the
	// identifier. Other identifiers are unaffected.
	StatusError

	// StatusNotProcessed means the run was cancelled before the identifier
	// was reached.
	StatusNotProcessed
)

// String returns the report string for the status.
func (s ItemStatus) String() string {
	switch s {
	case StatusDownloaded:
		return "resolved-and-downloaded"
	case StatusNoDatasets:
		return "resolved-no-datasets"
	case StatusNotFound:
		return "not-found"
	case StatusError:
		return "error"
	case StatusNotProcessed:
		return "not-processed"
	default:
		return "unknown"
	}
}

// ItemReport aggregates everything that happened for one item identifier.
type ItemReport struct {
	// Identifier is the item identifier as supplied by the caller.
	Identifier string

	// Status is the overall outcome for the identifier.
	Status ItemStatus

	// Message carries the error text when Status is StatusError.
	Message string

	// Results lists one entry per file that was attempted.
	Results []DownloadResult
}

// Downloaded returns the number of files successfully staged for the item.
func (r ItemReport) Downloaded() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome != OutcomeFailed {
			n++
		}
	}
	return n
}

// Summary returns a one-line human-readable summary such as
// "12345: resolved-and-downloaded(3 files)".
func (r ItemReport) Summary() string {
	switch r.Status {
	case StatusDownloaded:
		return fmt.Sprintf("%s: %s(%d files)", r.Identifier, r.Status, r.Downloaded())
	case StatusError:
		return fmt.Sprintf("%s: %s(%s)", r.Identifier, r.Status, r.Message)
	default:
		return fmt.Sprintf("%s: %s", r.Identifier, r.Status)
	}
}

// RunReport is the sole externally observable summary of a batch run.
//
// Items are ordered by the caller's input order regardless of how the run
// was scheduled, so front ends can display results predictably.
type RunReport struct {
	// ID uniquely identifies the run, for log correlation.
	ID string

	// Started and Finished bound the run wall-clock time.
	Started  time.Time
	Finished time.Time

	// Items holds one report per input identifier, in input order.
	Items []ItemReport
}

// NewRunReport creates an empty report with a fresh run id.
func NewRunReport() *RunReport {
	return &RunReport{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
}

// Append adds one item report to the run.
func (r *RunReport) Append(item ItemReport) {
	r.Items = append(r.Items, item)
}

// Finish stamps the run's end time.
func (r *RunReport) Finish() {
	r.Finished = time.Now()
}

// TotalFiles returns the number of files staged across all identifiers.
func (r *RunReport) TotalFiles() int {
	n := 0
	for _, item := range r.Items {
		n += item.Downloaded()
	}
	return n
}

// Failures returns the item reports that ended in an error, plus the
// per-file failures inside otherwise successful items. It gives callers
// enough to re-run only what went wrong.
func (r *RunReport) Failures() []ItemReport {
	var failed []ItemReport
	for _, item := range r.Items {
		if item.Status == StatusError {
			failed = append(failed, item)
			continue
		}
		var fileFailures []DownloadResult
		for _, res := range item.Results {
			if res.Outcome == OutcomeFailed {
				fileFailures = append(fileFailures, res)
			}
		}
		if len(fileFailures) > 0 {
			failed = append(failed, ItemReport{
				Identifier: item.Identifier,
				Status:     item.Status,
				Results:    fileFailures,
			})
		}
	}
	return failed
}
