package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// Extractor turns an upload into raw text.
type Extractor interface {
	Extract(ctx context.Context, upload domain.RawUpload) (string, error)
}

// Validator gates raw text.
type Validator interface {
	Validate(text string) (string, error)
}

// Answerer answers a question over a document.
type Answerer interface {
	Answer(ctx context.Context, question string, doc domain.ExtractedDocument) (string, error)
}

// Input starts a run. Upload, when set, is ingested first; otherwise Text is
// treated as already extracted and only validated.
type Input struct {
	Question     string
	Upload       *domain.RawUpload
	Text         string
	DocumentName string
	DocumentType domain.DocumentFormat
}

// Graph wires the stages together. It holds no per-run state and is safe
// for concurrent use.
type Graph struct {
	extractor Extractor
	validator Validator
	answerer  Answerer
	logger    *observability.Logger
	metrics   *observability.Metrics
	newRunID  func() string
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the graph logger.
func WithLogger(l *observability.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records runs and transitions.
func WithMetrics(m *observability.Metrics) Option {
	return func(g *Graph) { g.metrics = m }
}

// WithRunIDs overrides run ID generation.
func WithRunIDs(fn func() string) Option {
	return func(g *Graph) {
		if fn != nil {
			g.newRunID = fn
		}
	}
}

// NewGraph creates a Graph from its stage implementations.
func NewGraph(ex Extractor, v Validator, a Answerer, opts ...Option) *Graph {
	g := &Graph{
		extractor: ex,
		validator: v,
		answerer:  a,
		logger:    observability.Nop(),
		newRunID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.WithComponent("workflow")
	return g
}

// Run drives in through the graph until a terminal state.
func (g *Graph) Run(ctx context.Context, in Input) Result {
	runID := g.newRunID()
	ctx = observability.ContextWithRunID(ctx, runID)
	log := g.logger.WithContext(ctx)
	start := time.Now()

	var state State
	from := StageStart
	state = g.entry(in)
	g.transition(log, from, state)

	for !state.terminal() {
		from = state.Stage()
		state = g.step(ctx, state)
		g.transition(log, from, state)
	}

	res := Result{RunID: runID}
	switch s := state.(type) {
	case Succeeded:
		res.Answer = s.Answer
		res.Document = s.Document
	case Failed:
		res.FailedAt = s.At
		res.Err = s.Err
	}

	g.finish(log, res, StageSucceeded, time.Since(start))
	return res
}

// Ingest runs the ingestion stage alone. The run is logged and counted like
// a full run; success is recorded at StageIngested.
func (g *Graph) Ingest(ctx context.Context, upload domain.RawUpload) (domain.ExtractedDocument, error) {
	runID := g.newRunID()
	ctx = observability.ContextWithRunID(ctx, runID)
	log := g.logger.WithContext(ctx)
	start := time.Now()

	entry := Ingesting{Upload: upload}
	g.transition(log, StageStart, entry)
	state := g.ingest(ctx, entry)
	g.transition(log, StageIngesting, state)

	res := Result{RunID: runID}
	switch s := state.(type) {
	case Answering:
		res.Document = s.Document
	case Failed:
		res.FailedAt = s.At
		res.Err = s.Err
	}

	g.finish(log, res, StageIngested, time.Since(start))
	if res.Err != nil {
		return domain.ExtractedDocument{}, res.Err
	}
	return res.Document, nil
}

// entry validates the input and picks the first stage.
func (g *Graph) entry(in Input) State {
	if strings.TrimSpace(in.Question) == "" {
		return Failed{At: StageStart, Err: domain.InvalidQuestionError("question is empty")}
	}
	if in.Upload != nil {
		return Ingesting{Question: in.Question, Upload: *in.Upload}
	}

	text, err := g.validator.Validate(in.Text)
	if err != nil {
		return Failed{At: StageStart, Err: asDomain(err, domain.KindExtractionFailed)}
	}
	return Answering{
		Question: in.Question,
		Document: domain.ExtractedDocument{
			Text:         text,
			SourceFormat: in.DocumentType,
			OriginalName: in.DocumentName,
		},
	}
}

// step advances a non-terminal state by one stage.
func (g *Graph) step(ctx context.Context, s State) State {
	switch s := s.(type) {
	case Ingesting:
		return g.ingest(ctx, s)
	case Answering:
		return g.answer(ctx, s)
	default:
		return s
	}
}

func (g *Graph) ingest(ctx context.Context, s Ingesting) State {
	raw, err := g.extractor.Extract(ctx, s.Upload)
	if err != nil {
		return Failed{At: StageIngesting, Err: asDomain(err, domain.KindExtractionFailed)}
	}
	text, err := g.validator.Validate(raw)
	if err != nil {
		return Failed{At: StageIngesting, Err: asDomain(err, domain.KindExtractionFailed)}
	}
	return Answering{
		Question: s.Question,
		Document: domain.ExtractedDocument{
			Text:         text,
			SourceFormat: s.Upload.Format,
			OriginalName: s.Upload.Filename,
		},
	}
}

func (g *Graph) answer(ctx context.Context, s Answering) State {
	out, err := g.answerer.Answer(ctx, s.Question, s.Document)
	if err != nil {
		return Failed{At: StageAnswering, Err: asDomain(err, domain.KindModelUnavailable)}
	}
	return Succeeded{Answer: out, Document: s.Document}
}

func (g *Graph) transition(log *observability.Logger, from Stage, to State) {
	log.Debug().Str("from", string(from)).Str("to", string(to.Stage())).Msg("Workflow transition")
	if g.metrics != nil {
		g.metrics.WorkflowTransitions.WithLabelValues(string(from), string(to.Stage())).Inc()
	}
}

// finish logs the outcome of a run and counts it. done labels a successful
// run.
func (g *Graph) finish(log *observability.Logger, res Result, done Stage, elapsed time.Duration) {
	stage, kind := string(done), "none"
	if res.Err != nil {
		stage, kind = string(res.FailedAt), string(res.Err.Kind)
		log.Warn().
			Str("failed_at", stage).
			Str("kind", kind).
			Dur("elapsed", elapsed).
			Err(res.Err).
			Msg("Workflow failed")
	} else {
		log.Info().
			Str("stage", stage).
			Str("format", string(res.Document.SourceFormat)).
			Int("text_chars", len([]rune(res.Document.Text))).
			Int("answer_chars", len([]rune(res.Answer))).
			Dur("elapsed", elapsed).
			Msg("Workflow succeeded")
	}
	if g.metrics != nil {
		g.metrics.WorkflowRunsTotal.WithLabelValues(stage, kind).Inc()
	}
}

// asDomain keeps typed failures and classifies anything else as fallback.
func asDomain(err error, fallback domain.ErrorKind) *domain.DomainError {
	if de, ok := domain.AsDomainError(err); ok {
		return de
	}
	return domain.NewError(fallback, err.Error(), err)
}
