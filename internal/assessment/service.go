// Package assessment turns a questionnaire record into a risk result: it
// aligns the record, runs the classifier (or the demo rules), attaches the
// treatment directory for high-risk outcomes and records the outcome.
package assessment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/cardiorisk/internal/align"
	"github.com/Skufu/cardiorisk/internal/cache"
	"github.com/Skufu/cardiorisk/internal/logger"
	"github.com/Skufu/cardiorisk/internal/metrics"
	"github.com/Skufu/cardiorisk/internal/model"
	"github.com/Skufu/cardiorisk/internal/store"
	"github.com/Skufu/cardiorisk/internal/treatment"
)

const (
	SourceModel = "model"
	SourceRules = "rules"
)

// Cache memoises classifier output per aligned row.
type Cache interface {
	Get(ctx context.Context, key string) (cache.Entry, bool, error)
	Set(ctx context.Context, key string, e cache.Entry) error
}

// Result is the outcome of one assessment.
type Result struct {
	ID              string                `json:"id"`
	RequestID       string                `json:"request_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	Label           string                `json:"label"`
	HighRisk        bool                  `json:"high_risk"`
	RiskProbability *float64              `json:"risk_probability,omitempty"`
	Probabilities   []float64             `json:"probabilities,omitempty"`
	RiskScore       *int                  `json:"risk_score,omitempty"`
	Source          string                `json:"source"`
	Recoveries      []align.FieldRecovery `json:"recoveries"`
	Treatment       *treatment.Directory  `json:"treatment,omitempty"`
	Debug           *Debug                `json:"debug,omitempty"`
}

// Debug exposes the row handed to the classifier.
type Debug struct {
	Columns []string  `json:"columns"`
	Row     []float64 `json:"row"`
	Scaled  bool      `json:"scaled"`
	Model   string    `json:"model,omitempty"`
}

// Options wires the collaborators; only Aligner is required.
type Options struct {
	Aligner    *align.Aligner
	Classifier model.Classifier // nil selects the demo rules
	Store      store.Repository
	Cache      Cache
	Treatment  *treatment.Directory
	Now        func() time.Time
}

type Service struct {
	aligner    *align.Aligner
	classifier model.Classifier
	rules      model.Rules
	store      store.Repository
	cache      Cache
	treatment  *treatment.Directory
	now        func() time.Time
}

func New(opt Options) *Service {
	s := &Service{
		aligner:    opt.Aligner,
		classifier: opt.Classifier,
		store:      opt.Store,
		cache:      opt.Cache,
		treatment:  opt.Treatment,
		now:        opt.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Mode is "model" when a classifier is loaded and "demo" otherwise.
func (s *Service) Mode() string {
	if s.classifier == nil {
		return "demo"
	}
	return SourceModel
}

// Schema returns the reference schema, or nil before one is loaded.
func (s *Service) Schema() *align.Schema {
	if s.aligner == nil {
		return nil
	}
	return s.aligner.Schema()
}

// Assess evaluates rec. The error is align.ErrNoSchema when no reference
// schema is loaded; classifier failures are returned wrapped.
func (s *Service) Assess(ctx context.Context, rec align.Record) (*Result, error) {
	start := s.now()
	log := logger.C(ctx)

	rec = WithBMI(rec)
	alignment, err := s.aligner.Align(rec)
	if err != nil {
		metrics.AssessmentErrors.WithLabelValues("align").Inc()
		return nil, err
	}
	for _, r := range alignment.Recoveries {
		metrics.FieldRecoveries.WithLabelValues(r.Column, r.Reason.String()).Inc()
	}

	res := &Result{
		ID:         uuid.NewString(),
		RequestID:  logger.RequestID(ctx),
		CreatedAt:  start.UTC(),
		Recoveries: alignment.Recoveries,
		Debug: &Debug{
			Columns: s.aligner.Schema().Names(),
			Row:     alignment.Row,
			Scaled:  s.aligner.Scaled(),
		},
	}
	if res.Recoveries == nil {
		res.Recoveries = []align.FieldRecovery{}
	}

	if s.classifier != nil {
		if err := s.predict(ctx, alignment.Row, res); err != nil {
			metrics.AssessmentErrors.WithLabelValues("predict").Inc()
			return nil, err
		}
	} else {
		label, score := s.rules.Predict(rec)
		res.Label = label
		res.RiskScore = &score
		res.Source = SourceRules
	}

	res.HighRisk = model.Positive(res.Label)
	if res.HighRisk {
		res.Treatment = s.treatment
	}

	s.persist(ctx, rec, res)

	metrics.AssessmentsTotal.WithLabelValues(res.Source, metrics.Outcome(res.HighRisk)).Inc()
	metrics.AssessmentDuration.WithLabelValues(res.Source).Observe(s.now().Sub(start).Seconds())
	log.Debug().
		Str("assessment_id", res.ID).
		Str("source", res.Source).
		Str("label", res.Label).
		Int("recoveries", len(res.Recoveries)).
		Msg("assessment complete")
	return res, nil
}

func (s *Service) predict(ctx context.Context, row []float64, res *Result) error {
	info := s.classifier.Info()
	res.Source = SourceModel
	res.Debug.Model = info.Name

	key := cache.Key(info.Name, info.Version, row)
	if entry, ok := s.cached(ctx, key); ok {
		apply(res, entry)
		return nil
	}

	label, err := s.classifier.Predict(row)
	if err != nil {
		return err
	}
	probs, err := s.classifier.PredictProba(row)
	if err != nil {
		return err
	}
	entry := cache.Entry{Label: label, Probabilities: probs}
	apply(res, entry)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entry); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("prediction cache write failed")
		}
	}
	return nil
}

func (s *Service) cached(ctx context.Context, key string) (cache.Entry, bool) {
	if s.cache == nil {
		return cache.Entry{}, false
	}
	entry, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.C(ctx).Warn().Err(err).Msg("prediction cache read failed")
		return cache.Entry{}, false
	case ok:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	return entry, ok
}

// apply copies classifier output into res. The reported risk probability
// is the probability of the predicted class.
func apply(res *Result, e cache.Entry) {
	res.Label = e.Label
	res.Probabilities = e.Probabilities
	if len(e.Probabilities) != 2 {
		return
	}
	p := e.Probabilities[0]
	if model.Positive(e.Label) {
		p = e.Probabilities[1]
	}
	res.RiskProbability = &p
}

func (s *Service) persist(ctx context.Context, rec align.Record, res *Result) {
	if s.store == nil {
		return
	}
	input, err := json.Marshal(rec)
	if err != nil {
		metrics.AssessmentErrors.WithLabelValues("persist").Inc()
		logger.C(ctx).Warn().Err(err).Str("assessment_id", res.ID).Msg("encode assessment input")
		return
	}
	recoveries, err := json.Marshal(res.Recoveries)
	if err != nil {
		metrics.AssessmentErrors.WithLabelValues("persist").Inc()
		logger.C(ctx).Warn().Err(err).Str("assessment_id", res.ID).Msg("encode assessment recoveries")
		return
	}

	a := store.Assessment{
		ID:         res.ID,
		RequestID:  res.RequestID,
		CreatedAt:  res.CreatedAt,
		Label:      res.Label,
		HighRisk:   res.HighRisk,
		Source:     res.Source,
		Input:      input,
		Recoveries: recoveries,
	}
	if res.RiskProbability != nil {
		a.RiskProbability = *res.RiskProbability
	}
	if err := s.store.Save(ctx, a); err != nil {
		metrics.AssessmentErrors.WithLabelValues("persist").Inc()
		logger.C(ctx).Error().Err(err).Str("assessment_id", res.ID).Msg("persist assessment")
	}
}

// Recent lists stored assessments, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]store.Assessment, error) {
	if s.store == nil {
		return nil, store.ErrDisabled
	}
	return s.store.Recent(ctx, limit)
}
