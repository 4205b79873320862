package models

import "encoding/json"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

type AgeCategory string

const (
	AgeChild   AgeCategory = "child"
	AgeAdult   AgeCategory = "adult"
	AgeElderly AgeCategory = "elderly"
)

// NormalizeAgeCategory maps a detector-reported age category onto the
// closed enum. Values outside the enum are coerced to AgeAdult.
func NormalizeAgeCategory(raw string) AgeCategory {
	switch AgeCategory(raw) {
	case AgeChild, AgeAdult, AgeElderly:
		return AgeCategory(raw)
	default:
		return AgeAdult
	}
}

// BoundingBox locates a detection within the source media, in pixel
// coordinates with the origin at the top-left corner.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Book struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Author        string      `json:"author"`
	ISBN          string      `json:"isbn"`
	ExtractedText string      `json:"extractedText"`
	Confidence    float64     `json:"confidence"`
	BoundingBox   BoundingBox `json:"boundingBox"`
}

type Person struct {
	ID          string      `json:"id"`
	AgeCategory AgeCategory `json:"ageCategory"`
	Action      string      `json:"action"`
	Confidence  float64     `json:"confidence"`
	BoundingBox BoundingBox `json:"boundingBox"`
}

// AnalysisResult is the full structured output for one analyzed media item.
// A session holds at most one; it is replaced wholesale on each new
// analysis, never merged.
type AnalysisResult struct {
	ID          string          `json:"id"`
	MediaURL    string          `json:"mediaUrl"`
	MediaType   MediaType       `json:"mediaType"`
	Books       []Book          `json:"books"`
	People      []Person        `json:"people"`
	RawResponse json.RawMessage `json:"rawResponse,omitempty"`
}
