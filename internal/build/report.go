package build

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

const reportSchemaVersion = 1

// BuildReport captures the high-level result of one site generation run.
type BuildReport struct {
	SchemaVersion     int                      `json:"schema_version"`
	ID                string                   `json:"id"`
	Start             time.Time                `json:"start"`
	End               time.Time                `json:"end"`
	Outcome           BuildOutcome             `json:"outcome"`
	Platform          string                   `json:"platform"`
	Routes            int                      `json:"routes"`
	Files             int                      `json:"files"`
	RenderedPages     int                      `json:"rendered_pages"`
	FragmentFallbacks int                      `json:"fragment_fallbacks"`
	StageDurations    map[StageName]string     `json:"stage_durations"`
	StageErrors       map[StageName]string     `json:"stage_errors,omitempty"`
	stageErrorKinds   map[StageName]StageErrorKind
}

func newBuildReport(platform string) *BuildReport {
	return &BuildReport{
		SchemaVersion:   reportSchemaVersion,
		ID:              uuid.NewString(),
		Start:           time.Now(),
		Platform:        platform,
		StageDurations:  make(map[StageName]string),
		StageErrors:     make(map[StageName]string),
		stageErrorKinds: make(map[StageName]StageErrorKind),
	}
}

func (r *BuildReport) recordStage(name StageName, dur time.Duration, se *StageError, rec metrics.Recorder) {
	r.StageDurations[name] = dur.String()
	if se == nil {
		rec.IncStageResult(string(name), metrics.ResultSuccess)
		return
	}
	r.StageErrors[name] = se.Err.Error()
	r.stageErrorKinds[name] = se.Kind
	rec.IncStageResult(string(name), resultLabel(se.Kind))
}

// finish derives the overall outcome from recorded stage classifications.
func (r *BuildReport) finish() {
	r.End = time.Now()
	outcome := OutcomeSuccess
	for _, kind := range r.stageErrorKinds {
		switch kind {
		case StageErrorCanceled:
			r.Outcome = OutcomeCanceled
			return
		case StageErrorFatal:
			r.Outcome = OutcomeFailed
			return
		case StageErrorWarning:
			outcome = OutcomeWarning
		}
	}
	r.Outcome = outcome
}

// Persist writes the report as JSON into the output directory.
func (r *BuildReport) Persist(outputDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	path := filepath.Join(outputDir, "build-report.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}
