package report

import (
	"github.com/barasher/go-exiftool"

	"github.com/omelkes/phaicull/logging"
	"github.com/omelkes/phaicull/types"
)

// exifFields are the metadata tags copied into a result's details, mapped to
// the detail key they are stored under.
var exifFields = map[string]string{
	"Model":            "camera_model",
	"LensModel":        "lens_model",
	"DateTimeOriginal": "captured_at",
	"ExposureTime":     "exposure_time",
	"ISO":              "iso",
	"FNumber":          "f_number",
}

// EnrichEXIF adds camera metadata to each result's details under the "exif"
// key. Best effort: a missing exiftool binary or unreadable metadata leaves
// the results untouched.
func EnrichEXIF(results []types.FilterResult) {
	if len(results) == 0 {
		return
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.LogWarning("exif enrichment disabled: %v", err)
		return
	}
	defer et.Close()

	paths := make([]string, len(results))
	for i, result := range results {
		paths[i] = result.Path
	}

	metas := et.ExtractMetadata(paths...)
	for i, meta := range metas {
		if i >= len(results) {
			break
		}
		if meta.Err != nil {
			logging.DebugLog("no exif metadata for %s: %v", meta.File, meta.Err)
			continue
		}

		exif := map[string]interface{}{}
		for tag, key := range exifFields {
			if value, err := meta.GetString(tag); err == nil && value != "" {
				exif[key] = value
			}
		}
		if len(exif) > 0 {
			results[i].Details["exif"] = exif
		}
	}
}
