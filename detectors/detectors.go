// Package detectors implements the per-image quality checks with OpenCV.
// Every check follows the same decode-failure policy: an unreadable image
// yields a zero-value, non-flagged outcome instead of an error, so one
// corrupt file never aborts a batch.
package detectors

import (
	"gocv.io/x/gocv"

	"github.com/omelkes/phaicull/config"
	"github.com/omelkes/phaicull/logging"
	"github.com/omelkes/phaicull/types"
)

// Suite evaluates image-quality checks against the thresholds in the active
// configuration. The face cascades are loaded once at construction when the
// configuration needs them.
type Suite struct {
	cfg config.FilterConfig

	faceCascade gocv.CascadeClassifier
	eyeCascade  gocv.CascadeClassifier
	hasCascades bool
}

// NewSuite creates a detector suite for cfg. Loading the Haar cascades fails
// fast here, before any image is processed, when face checks are enabled but
// the cascade files cannot be found.
func NewSuite(cfg config.FilterConfig) (*Suite, error) {
	s := &Suite{cfg: cfg}
	if cfg.NeedsFaceDetection() {
		if err := s.loadCascades(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close releases the cascade classifiers.
func (s *Suite) Close() {
	if s.hasCascades {
		s.faceCascade.Close()
		s.eyeCascade.Close()
		s.hasCascades = false
	}
}

// loadGray reads the image at path as 8-bit grayscale. The returned Mat is
// empty when the file cannot be decoded; callers must Close it regardless.
func loadGray(path string) gocv.Mat {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	if img.Empty() {
		logging.DebugLog("cannot decode %s, check treated as not triggered", path)
	}
	return img
}

// CheckBlur measures focus with the variance of the Laplacian. Images whose
// variance falls below the configured threshold are flagged as blurred.
func (s *Suite) CheckBlur(path string) types.CheckOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.CheckOutcome{}
	}

	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(gray, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)

	mean := gocv.NewMat()
	stdDev := gocv.NewMat()
	defer mean.Close()
	defer stdDev.Close()
	gocv.MeanStdDev(lap, &mean, &stdDev)

	sigma := stdDev.GetDoubleAt(0, 0)
	variance := sigma * sigma

	return types.CheckOutcome{
		Flagged: variance < s.cfg.BlurThreshold,
		Score:   variance,
	}
}

// AnalyzeExposure inspects the grayscale histogram tails. An image is too
// dark when more than DarkThreshold of its pixels fall below 50, and
// overexposed when more than BrightThreshold exceed 205. Both verdicts come
// from the same pass and are independent.
func (s *Suite) AnalyzeExposure(path string) types.ExposureOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.ExposureOutcome{}
	}

	totalPixels := float64(gray.Rows() * gray.Cols())

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 49, 255, gocv.ThresholdBinaryInv)
	darkRatio := float64(gocv.CountNonZero(dark)) / totalPixels

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 205, 255, gocv.ThresholdBinary)
	brightRatio := float64(gocv.CountNonZero(bright)) / totalPixels

	meanBrightness := gray.Mean().Val1

	return types.ExposureOutcome{
		Dark:        darkRatio > s.cfg.DarkThreshold,
		Overexposed: brightRatio > s.cfg.BrightThreshold,
		Stats: map[string]float64{
			"mean_brightness": meanBrightness,
			"dark_ratio":      darkRatio,
			"bright_ratio":    brightRatio,
		},
	}
}

// CheckResolution flags images smaller than the configured minimum in either
// dimension.
func (s *Suite) CheckResolution(path string) types.CheckOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.CheckOutcome{Details: map[string]interface{}{}}
	}

	width := gray.Cols()
	height := gray.Rows()

	return types.CheckOutcome{
		Flagged: width < s.cfg.MinWidth || height < s.cfg.MinHeight,
		Details: map[string]interface{}{
			"width":        width,
			"height":       height,
			"total_pixels": width * height,
		},
	}
}

// CheckNoise estimates sensor noise as the mean residual between the image
// and its bilateral-filtered version. Scores above the threshold flag the
// image as noisy.
func (s *Suite) CheckNoise(path string) types.CheckOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.CheckOutcome{}
	}

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(gray, &smoothed, 9, 75, 75)

	residual := gocv.NewMat()
	defer residual.Close()
	gocv.AbsDiff(gray, smoothed, &residual)

	score := residual.Mean().Val1

	return types.CheckOutcome{
		Flagged: score > s.cfg.NoiseThreshold,
		Score:   score,
	}
}
