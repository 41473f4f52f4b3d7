// Package filter combines independent per-image check outcomes into a single
// keep-or-filter decision with traceable reasons.
package filter

import (
	"fmt"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/types"
)

// Detector is the set of per-image checks the engine can invoke. Detectors
// never return errors: an unreadable image yields a zero-value outcome.
type Detector interface {
	CheckBlur(path string) types.CheckOutcome
	AnalyzeExposure(path string) types.ExposureOutcome
	CheckResolution(path string) types.CheckOutcome
	CheckNoise(path string) types.CheckOutcome
	CountFaces(path string) types.FaceOutcome
	DetectClosedEyes(path string) types.CheckOutcome
}

// Engine evaluates the enabled checks for each image and assembles the
// per-image FilterResult.
type Engine struct {
	cfg config.FilterConfig
	det Detector
}

// NewEngine creates an engine over det using the toggles and thresholds
// in cfg.
func NewEngine(cfg config.FilterConfig, det Detector) *Engine {
	return &Engine{cfg: cfg, det: det}
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.FilterConfig {
	return e.cfg
}

// FilterImage runs every enabled check against one image, in a fixed order:
// blur, exposure, resolution, noise, people presence, closed eyes. Every
// triggered check appends one reason (exposure may append two); ShouldFilter
// is the OR across them. All enabled checks run even after the first trigger
// so Details and Reasons reflect every signal. The closed-eye check is the
// one exception: it is skipped entirely unless the face scan found at least
// one face.
func (e *Engine) FilterImage(path string) types.FilterResult {
	result := types.FilterResult{
		Path:    path,
		Reasons: []string{},
		Details: map[string]interface{}{},
	}

	if e.cfg.CheckBlur {
		outcome := e.det.CheckBlur(path)
		result.Details["blur_score"] = outcome.Score
		if outcome.Flagged {
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("Blurred (score: %.2f)", outcome.Score))
		}
	}

	if e.cfg.CheckExposure {
		outcome := e.det.AnalyzeExposure(path)
		result.Details["exposure_stats"] = outcome.Stats
		if outcome.Dark {
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, "Too dark")
		}
		if outcome.Overexposed {
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, "Overexposed")
		}
	}

	if e.cfg.CheckResolution {
		outcome := e.det.CheckResolution(path)
		result.Details["resolution"] = outcome.Details
		if outcome.Flagged {
			width, _ := outcome.Details["width"].(int)
			height, _ := outcome.Details["height"].(int)
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("Low resolution (%dx%d)", width, height))
		}
	}

	if e.cfg.CheckNoise {
		outcome := e.det.CheckNoise(path)
		result.Details["noise_score"] = outcome.Score
		if outcome.Flagged {
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, fmt.Sprintf("Noisy (score: %.2f)", outcome.Score))
		}
	}

	if e.cfg.FilterNoPeople || e.cfg.CheckClosedEyes {
		faces := e.det.CountFaces(path)
		result.Details["num_faces"] = faces.NumFaces

		if e.cfg.FilterNoPeople && !faces.HasPeople {
			result.ShouldFilter = true
			result.Reasons = append(result.Reasons, "No people detected")
		}

		if e.cfg.CheckClosedEyes && faces.HasPeople {
			eyes := e.det.DetectClosedEyes(path)
			result.Details["eye_detection"] = eyes.Details
			if eyes.Flagged {
				result.ShouldFilter = true
				result.Reasons = append(result.Reasons, "Closed eyes detected")
			}
		}
	}

	return result
}
