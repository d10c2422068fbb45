// Package types provides type definitions for structured data used throughout the paperfig pipeline.
package types

// PaperSection represents one named section of a source document with its character offsets
type PaperSection struct {
	Name  string `json:"name"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// PaperContent represents a parsed source document
type PaperContent struct {
	SourcePath string                  `json:"source_path"`
	FullText   string                  `json:"full_text"`
	Sections   map[string]PaperSection `json:"sections"`
}

// SourceSpan represents a reference into the source document backing a figure element
type SourceSpan struct {
	Section string `json:"section"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}
