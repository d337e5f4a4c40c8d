package extraction

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/metrics"
	"github.com/jonathan/resume-matcher/internal/prompts"
	"github.com/jonathan/resume-matcher/internal/resilience"
	"github.com/jonathan/resume-matcher/internal/segment"
	"github.com/jonathan/resume-matcher/internal/types"
	schemafiles "github.com/jonathan/resume-matcher/schemas"
)

// Sub-extraction names.
const (
	FieldSkills  = "skills"
	FieldDomains = "domains"
	FieldYears   = "years"
	FieldLevel   = "level"
)

// maxPromptChars bounds the document text, in runes, sent with each prompt.
const maxPromptChars = 12000

// LLMExtractor runs four model calls per document (skills, domains, years,
// level) concurrently. Education, work authorization and location come from
// the segmenter's regex extractors.
type LLMExtractor struct {
	client llm.Client
	policy resilience.Policy
	logger *zap.Logger
}

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor)

// WithPolicy sets the retry policy applied to each model call.
func WithPolicy(p resilience.Policy) LLMOption {
	return func(e *LLMExtractor) { e.policy = p }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LLMOption {
	return func(e *LLMExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewLLMExtractor builds an extractor over client.
func NewLLMExtractor(client llm.Client, opts ...LLMOption) *LLMExtractor {
	e := &LLMExtractor{client: client, policy: resilience.DefaultPolicy(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// failures collects sub-extraction errors from concurrent tasks.
type failures struct {
	mu   sync.Mutex
	list []FieldFailure
}

func (f *failures) add(field string, err error) {
	f.mu.Lock()
	f.list = append(f.list, FieldFailure{Field: field, Err: err})
	f.mu.Unlock()
}

func (f *failures) err(side string) error {
	if len(f.list) == 0 {
		return nil
	}
	return &PartialError{Side: side, Failures: f.list}
}

// ExtractJobFeatures implements JobExtractor.
func (e *LLMExtractor) ExtractJobFeatures(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
	features := EmptyJobFeatures()
	text := jobText(s)
	requirements := firstNonEmpty(joinNonEmpty(s.Requirements, s.Qualifications), text)
	raw := firstNonEmpty(s.RawText, text)

	features.Education = firstFound(segment.ExtractEducation, requirements, text)
	features.WorkAuthRequired = segment.ExtractWorkAuthRequirement(raw)
	features.Location = segment.ExtractLocation(raw)

	var fails failures
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := call[jobSkillsOutput](gctx, e, SideJob, FieldSkills, schemafiles.JobSkills, llm.TierStandard,
			prompts.MustGet(prompts.ExtractionFile, "job-skills"),
			[]llm.Field{
				{Name: "required", Type: "[]string", Description: "must-have skills"},
				{Name: "preferred", Type: "[]string", Description: "nice-to-have skills"},
			}, text)
		if err != nil {
			fails.add(FieldSkills, err)
			return nil
		}
		required := NormalizeSkills(out.Required)
		preferred := NormalizeSkills(out.Preferred)
		features.Skills = types.JobSkills{
			Required:  required,
			Preferred: preferred,
			All:       NormalizeSkills(append(append([]string{}, required...), preferred...)),
		}
		return nil
	})

	g.Go(func() error {
		domains, err := e.domains(gctx, SideJob, "job posting", text)
		if err != nil {
			fails.add(FieldDomains, err)
			return nil
		}
		features.Domains = domains
		return nil
	})

	g.Go(func() error {
		years, err := e.years(gctx, SideJob, "job posting", "years-job", requirements)
		if err != nil {
			fails.add(FieldYears, err)
			features.YearsRequired = firstFound(segment.ExtractYears, requirements, text)
			return nil
		}
		features.YearsRequired = years
		return nil
	})

	g.Go(func() error {
		level, err := e.level(gctx, SideJob, "job posting", "level-job", raw)
		if err != nil {
			fails.add(FieldLevel, err)
			return nil
		}
		features.LevelRequired = level
		return nil
	})

	_ = g.Wait()
	return features, fails.err(SideJob)
}

// ExtractResumeFeatures implements ResumeExtractor.
func (e *LLMExtractor) ExtractResumeFeatures(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error) {
	features := EmptyResumeFeatures()
	text := resumeText(s)
	raw := firstNonEmpty(s.RawText, text)

	features.Education = firstFound(segment.ExtractEducation, s.Education, raw)
	features.WorkAuthStatus = segment.ExtractWorkAuthorization(raw)
	features.Location = segment.ExtractLocation(raw)

	var fails failures
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		out, err := call[resumeSkillsOutput](gctx, e, SideResume, FieldSkills, schemafiles.ResumeSkills, llm.TierStandard,
			prompts.MustGet(prompts.ExtractionFile, "resume-skills"),
			[]llm.Field{{Name: "skills", Type: "[]string"}}, text)
		if err != nil {
			fails.add(FieldSkills, err)
			return nil
		}
		features.Skills = NormalizeSkills(out.Skills)
		return nil
	})

	g.Go(func() error {
		domains, err := e.domains(gctx, SideResume, "resume", text)
		if err != nil {
			fails.add(FieldDomains, err)
			return nil
		}
		features.Domains = domains
		return nil
	})

	g.Go(func() error {
		years, err := e.years(gctx, SideResume, "resume", "years-resume", text)
		if err != nil {
			fails.add(FieldYears, err)
			features.YearsOfExperience = firstFound(segment.ExtractYears, s.Summary, s.Experience, raw)
			return nil
		}
		features.YearsOfExperience = years
		return nil
	})

	g.Go(func() error {
		level, err := e.level(gctx, SideResume, "resume", "level-resume", text)
		if err != nil {
			fails.add(FieldLevel, err)
			return nil
		}
		features.CurrentLevel = level
		return nil
	})

	_ = g.Wait()
	return features, fails.err(SideResume)
}

func (e *LLMExtractor) domains(ctx context.Context, side, document, text string) ([]string, error) {
	instruction, err := prompts.Render(prompts.ExtractionFile, "domains", map[string]string{"Document": document})
	if err != nil {
		return nil, err
	}
	out, err := call[domainsOutput](ctx, e, side, FieldDomains, schemafiles.Domains, llm.TierLite,
		instruction, []llm.Field{{Name: "domains", Type: "[]string"}}, text)
	if err != nil {
		return nil, err
	}
	return normalizeDomains(out.Domains), nil
}

func (e *LLMExtractor) years(ctx context.Context, side, document, instructionKey, text string) (*float64, error) {
	instruction, err := prompts.Render(prompts.ExtractionFile, "years", map[string]string{
		"Document":    document,
		"Instruction": prompts.MustGet(prompts.ExtractionFile, instructionKey),
	})
	if err != nil {
		return nil, err
	}
	out, err := call[yearsOutput](ctx, e, side, FieldYears, schemafiles.Years, llm.TierLite,
		instruction, []llm.Field{{Name: "years", Type: "number", Nullable: true}}, text)
	if err != nil {
		return nil, err
	}
	return out.Years, nil
}

func (e *LLMExtractor) level(ctx context.Context, side, document, instructionKey, text string) (string, error) {
	instruction, err := prompts.Render(prompts.ExtractionFile, "level", map[string]string{
		"Document":    document,
		"Instruction": prompts.MustGet(prompts.ExtractionFile, instructionKey),
	})
	if err != nil {
		return "", err
	}
	out, err := call[levelOutput](ctx, e, side, FieldLevel, schemafiles.Level, llm.TierLite,
		instruction, []llm.Field{{Name: "level", Nullable: true}}, text)
	if err != nil {
		return "", err
	}
	if out.Level == nil {
		return "", nil
	}
	return normalizeLevel(*out.Level), nil
}

// call sends one prompt through the retry policy and parses the answer into T.
// Schema violations are retried like transport errors; a fresh sample often fixes them.
func call[T any](ctx context.Context, e *LLMExtractor, side, field, schema string, tier llm.ModelTier,
	instruction string, fields []llm.Field, text string) (T, error) {
	var zero T
	prompt := llm.BuildExtractionPrompt(instruction, fields, logging.Truncate(text, maxPromptChars))

	policy := e.policy
	policy.Name = side + "_" + field
	if policy.Logger == nil {
		policy.Logger = e.logger
	}

	op := resilience.Wrap(func(ctx context.Context) (T, error) {
		raw, err := e.client.GenerateJSON(ctx, prompt, tier)
		if err != nil {
			return zero, &APICallError{Field: field, Message: "model call failed", Cause: err}
		}
		res := Parse[T](schema, raw)
		return res.Value, res.Err
	}, policy)

	out, err := op(ctx)
	if err != nil {
		metrics.ExtractorFailures.WithLabelValues(policy.Name).Inc()
		e.logger.Warn("extraction failed",
			zap.String("side", side),
			zap.String("field", field),
			logging.Preview("input", text),
			zap.Error(err))
		return zero, err
	}
	return out, nil
}
