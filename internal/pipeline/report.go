package pipeline

import "time"

// Warning records a recovered, non-fatal condition of a run.
type Warning struct {
	Stage    string `json:"stage"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

// Exclusion identifies a single feature dropped from the output, by identity.
type Exclusion struct {
	FeatureID string `json:"feature_id"`
	Category  string `json:"category"`
	Reason    string `json:"reason"`
}

// Report accompanies every run result: a usable (possibly partial) layer is
// always paired with the list of features it is missing and why. Geometry is
// never silently dropped or duplicated.
type Report struct {
	RunID            string         `json:"run_id"`
	StartedAt        time.Time      `json:"started_at"`
	Elapsed          time.Duration  `json:"elapsed"`
	CategoryPixels   map[string]int `json:"category_pixels"`
	CategoryPolygons map[string]int `json:"category_polygons"`
	WidenedFallback  []string       `json:"widened_fallback,omitempty"`
	AmbiguousPixels  int            `json:"ambiguous_pixels"`
	FeatureCount     int            `json:"feature_count"`
	Warnings         []Warning      `json:"warnings,omitempty"`
	Excluded         []Exclusion    `json:"excluded,omitempty"`
}
