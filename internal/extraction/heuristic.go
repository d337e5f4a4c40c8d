package extraction

import (
	"context"
	"strings"

	"github.com/jonathan/resume-matcher/internal/segment"
	"github.com/jonathan/resume-matcher/internal/types"
)

// HeuristicExtractor extracts features offline with keyword tables and the
// segmenter's regex extractors. It never fails.
type HeuristicExtractor struct{}

// NewHeuristicExtractor returns the offline extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// ExtractJobFeatures implements JobExtractor. Skills are left unclassified so
// the matcher splits them by the posting's own preferred markers.
func (h *HeuristicExtractor) ExtractJobFeatures(ctx context.Context, s types.JobSections) (types.JobFeatures, error) {
	if err := ctx.Err(); err != nil {
		return EmptyJobFeatures(), err
	}
	text := jobText(s)
	all := ScanSkills(firstNonEmpty(s.RawText, text))
	return types.JobFeatures{
		Skills:           types.JobSkills{Required: []string{}, Preferred: []string{}, All: all},
		Domains:          ScanDomains(text),
		YearsRequired:    firstFound(segment.ExtractYears, joinNonEmpty(s.Requirements, s.Qualifications), text),
		LevelRequired:    normalizeLevel(segment.ExtractLevel(firstNonEmpty(s.RawText, text))),
		Education:        firstFound(segment.ExtractEducation, joinNonEmpty(s.Requirements, s.Qualifications), text),
		WorkAuthRequired: segment.ExtractWorkAuthRequirement(firstNonEmpty(s.RawText, text)),
		Location:         segment.ExtractLocation(firstNonEmpty(s.RawText, text)),
	}, nil
}

// ExtractResumeFeatures implements ResumeExtractor.
func (h *HeuristicExtractor) ExtractResumeFeatures(ctx context.Context, s types.ResumeSections) (types.ResumeFeatures, error) {
	if err := ctx.Err(); err != nil {
		return EmptyResumeFeatures(), err
	}
	text := resumeText(s)
	raw := firstNonEmpty(s.RawText, text)
	return types.ResumeFeatures{
		Skills:            ScanSkills(raw),
		Domains:           ScanDomains(text),
		YearsOfExperience: firstFound(segment.ExtractYears, s.Summary, s.Experience, raw),
		CurrentLevel:      normalizeLevel(segment.ExtractLevel(currentRole(s))),
		Education:         firstFound(segment.ExtractEducation, s.Education, raw),
		WorkAuthStatus:    segment.ExtractWorkAuthorization(raw),
		Location:          segment.ExtractLocation(raw),
	}, nil
}

// currentRole is the start of the experience section, where the most recent
// title usually sits. The summary is appended so "Senior engineer with..." counts.
func currentRole(s types.ResumeSections) string {
	lines := strings.Split(strings.TrimSpace(s.Experience), "\n")
	if len(lines) > 3 {
		lines = lines[:3]
	}
	head := strings.Join(lines, "\n")
	return joinNonEmpty(head, s.Summary) + " "
}
