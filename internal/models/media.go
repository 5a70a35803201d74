package models

import "time"

// MediaAsset describes one stored upload. LocalID doubles as the on-disk
// filename and the public handle clients pass back on analyze/chat calls.
type MediaAsset struct {
	LocalID      string    `json:"filename"`
	StoragePath  string    `json:"path"`
	ByteSize     int64     `json:"size"`
	MimeType     string    `json:"mimetype"`
	OriginalName string    `json:"original_name,omitempty"`
	StoredAt     time.Time `json:"stored_at"`
}

const KindInitialAnalysis = "initial-analysis"

// AnalysisResult is immutable once produced; one per successful analyze step.
type AnalysisResult struct {
	Text       string    `json:"text"`
	SourceURI  string    `json:"videoUri,omitempty"`
	ProducedAt time.Time `json:"timestamp"`
	Kind       string    `json:"type"`
}
