package types

// CheckOutcome is a single detector's verdict for one image. Details carries
// the detector's raw structured output when it has more than a scalar score.
type CheckOutcome struct {
	Flagged bool
	Score   float64
	Details map[string]interface{}
}

// ExposureOutcome carries the two independent exposure verdicts produced by
// one histogram pass.
type ExposureOutcome struct {
	Dark        bool
	Overexposed bool
	Stats       map[string]float64
}

// FaceOutcome reports how many faces were found in an image.
type FaceOutcome struct {
	HasPeople bool
	NumFaces  int
}

// FilterResult is the aggregate decision for one image. ShouldFilter is true
// exactly when Reasons is non-empty; Details maps check names to each check's
// raw output regardless of whether the check triggered.
type FilterResult struct {
	Path         string                 `json:"path"`
	ShouldFilter bool                   `json:"should_filter"`
	Reasons      []string               `json:"reasons"`
	Details      map[string]interface{} `json:"details"`
}

// DuplicateGroup is an ordered list of image paths considered near-identical.
// The first entry is the canonical (kept) image; the rest matched it within
// the similarity threshold.
type DuplicateGroup []string
