package domain

// Source is a configured news outlet with a front page to scan for links.
type Source struct {
	Name     string
	URL      string
	Strategy string
}

// ArticleLink is a candidate article discovered on a source front page.
type ArticleLink struct {
	URL    string
	Source Source
}

// ExtractedArticle holds the title and main text pulled from one link.
type ExtractedArticle struct {
	Link  ArticleLink
	Title string
	Body  string
}

// Summary pairs an extracted article with its generated summary text.
type Summary struct {
	Article ExtractedArticle
	Text    string
}

// Stage enumerates run milestones; a run never revisits a stage.
type Stage string

const (
	StageInit        Stage = "init"
	StageListing     Stage = "listing"
	StageFetching    Stage = "fetching"
	StageExtracting  Stage = "extracting"
	StageSummarizing Stage = "summarizing"
	StageNotifying   Stage = "notifying"
	StageSkipped     Stage = "skipped"
	StageDone        Stage = "done"
)

// ErrorKind classifies per-item failures recorded during a run.
type ErrorKind string

const (
	ErrKindNetwork         ErrorKind = "network"
	ErrKindHTTPStatus      ErrorKind = "http_status"
	ErrKindParse           ErrorKind = "parse"
	ErrKindContentTooShort ErrorKind = "content_too_short"
	ErrKindSummarization   ErrorKind = "summarization"
	ErrKindMailDispatch    ErrorKind = "mail_dispatch"
)

// RunError captures one dropped item with enough context to identify it.
type RunError struct {
	Stage   Stage
	Ref     string
	Kind    ErrorKind
	Message string
}

// RunState is the mutable aggregate carried through one pipeline run.
// It is owned by the orchestrator and discarded when the run completes.
type RunState struct {
	Stage     Stage
	Sources   []Source
	Links     []ArticleLink
	Articles  []ExtractedArticle
	Summaries []Summary
	Errors    []RunError
	Skipped   bool
	Notified  bool
}

// NewRunState seeds a run with the configured sources.
func NewRunState(sources []Source) *RunState {
	return &RunState{Stage: StageInit, Sources: sources}
}

// Record appends one error entry; the log grows monotonically within a run.
func (s *RunState) Record(stage Stage, kind ErrorKind, ref, message string) {
	s.Errors = append(s.Errors, RunError{Stage: stage, Ref: ref, Kind: kind, Message: message})
}
