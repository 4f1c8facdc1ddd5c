// Package workflow runs the two-stage document QA graph: ingestion turns an
// upload into validated text, answering turns text and a question into an
// answer. Each run is a sequence of immutable states.
package workflow

import "github.com/spherical/docqa/internal/domain"

// Stage names a node of the graph.
type Stage string

const (
	StageStart     Stage = "start"
	StageIngesting Stage = "ingesting"
	StageAnswering Stage = "answering"
	StageSucceeded Stage = "succeeded"
	StageFailed    Stage = "failed"

	// StageIngested labels a successful ingest-only run.
	StageIngested Stage = "ingested"
)

// State is one node of a run. The concrete types below are the only
// implementations.
type State interface {
	Stage() Stage
	terminal() bool
}

// Ingesting holds an upload awaiting extraction and validation.
type Ingesting struct {
	Question string
	Upload   domain.RawUpload
}

// Answering holds validated text awaiting the model.
type Answering struct {
	Question string
	Document domain.ExtractedDocument
}

// Succeeded is the terminal success state.
type Succeeded struct {
	Answer   string
	Document domain.ExtractedDocument
}

// Failed is the terminal failure state; At is the stage that failed.
type Failed struct {
	At  Stage
	Err *domain.DomainError
}

func (Ingesting) Stage() Stage { return StageIngesting }
func (Answering) Stage() Stage { return StageAnswering }
func (Succeeded) Stage() Stage { return StageSucceeded }
func (Failed) Stage() Stage    { return StageFailed }

func (Ingesting) terminal() bool { return false }
func (Answering) terminal() bool { return false }
func (Succeeded) terminal() bool { return true }
func (Failed) terminal() bool    { return true }

// Result is the outcome of a complete run.
type Result struct {
	RunID    string
	Answer   string
	Document domain.ExtractedDocument
	FailedAt Stage
	Err      *domain.DomainError
}

// OK reports whether the run succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// QAResult converts r to the wire-level result.
func (r Result) QAResult() domain.QAResult {
	if r.Err != nil {
		return domain.QAResult{Kind: r.Err.Kind, Message: r.Err.Message}
	}
	return domain.QAResult{Answer: r.Answer}
}
