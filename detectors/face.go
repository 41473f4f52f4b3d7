package detectors

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/omelkes/phaicull/logging"
	"github.com/omelkes/phaicull/types"
)

const (
	faceCascadeFile = "haarcascade_frontalface_default.xml"
	eyeCascadeFile  = "haarcascade_eye.xml"
)

// cascadeSearchDirs are the usual locations of the OpenCV Haar cascade data
// files across distributions. PHAICULL_CASCADE_DIR overrides them.
var cascadeSearchDirs = []string{
	"/usr/share/opencv4/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
}

func findCascade(name string) (string, error) {
	dirs := cascadeSearchDirs
	if custom := os.Getenv("PHAICULL_CASCADE_DIR"); custom != "" {
		dirs = append([]string{custom}, dirs...)
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("cascade file %s not found (set PHAICULL_CASCADE_DIR to the OpenCV haarcascades directory)", name)
}

func (s *Suite) loadCascades() error {
	facePath, err := findCascade(faceCascadeFile)
	if err != nil {
		return err
	}
	eyePath, err := findCascade(eyeCascadeFile)
	if err != nil {
		return err
	}

	s.faceCascade = gocv.NewCascadeClassifier()
	if !s.faceCascade.Load(facePath) {
		s.faceCascade.Close()
		return fmt.Errorf("cannot load face cascade from %s", facePath)
	}

	s.eyeCascade = gocv.NewCascadeClassifier()
	if !s.eyeCascade.Load(eyePath) {
		s.faceCascade.Close()
		s.eyeCascade.Close()
		return fmt.Errorf("cannot load eye cascade from %s", eyePath)
	}

	s.hasCascades = true
	return nil
}

func (s *Suite) detectFaces(gray gocv.Mat) []image.Rectangle {
	return s.faceCascade.DetectMultiScaleWithParams(
		gray, 1.3, 5, 0, image.Point{}, image.Point{})
}

// CountFaces reports whether the image contains people, via the frontal-face
// cascade.
func (s *Suite) CountFaces(path string) types.FaceOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.FaceOutcome{}
	}

	faces := s.detectFaces(gray)
	return types.FaceOutcome{
		HasPeople: len(faces) > 0,
		NumFaces:  len(faces),
	}
}

// DetectClosedEyes runs the eye cascade inside each detected face region. A
// face with no detectable eyes is counted as closed. The cascade cannot tell
// closed eyes apart from profile angles or bad lighting, so this is a
// best-effort heuristic with known false positives.
func (s *Suite) DetectClosedEyes(path string) types.CheckOutcome {
	gray := loadGray(path)
	defer gray.Close()
	if gray.Empty() {
		return types.CheckOutcome{Details: map[string]interface{}{}}
	}

	faces := s.detectFaces(gray)

	withEyes := 0
	withoutEyes := 0
	for _, face := range faces {
		roi := gray.Region(face)
		eyes := s.eyeCascade.DetectMultiScaleWithParams(
			roi, 1.1, 5, 0, image.Point{}, image.Point{})
		roi.Close()

		if len(eyes) >= 1 {
			withEyes++
		} else {
			withoutEyes++
		}
	}

	if len(faces) > 0 {
		logging.DebugLog("eye detection for %s: %d faces, %d without eyes", path, len(faces), withoutEyes)
	}

	return types.CheckOutcome{
		Flagged: withoutEyes > 0 && len(faces) > 0,
		Details: map[string]interface{}{
			"num_faces":                len(faces),
			"faces_with_eyes_detected": withEyes,
			"faces_without_eyes":       withoutEyes,
		},
	}
}
