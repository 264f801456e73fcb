package models

// Strategy identifies which extraction step produced the final content.
type Strategy string

const (
	// StrategyNone means no strategy ran, e.g. the page never loaded.
	StrategyNone         Strategy = "none"
	StrategyInnerText    Strategy = "inner_text"
	StrategyRawHTML      Strategy = "raw_html"
	StrategyOCR          Strategy = "ocr"
	StrategyRemoteReader Strategy = "remote_reader"
)

// ErrorContentPrefix starts the diagnostic content produced when the page
// could not be loaded at all.
const ErrorContentPrefix = "Error loading page: "

// ExtractionRequest identifies one pipeline run. It is never mutated after
// it is issued.
type ExtractionRequest struct {
	URL string

	// SessionID correlates progress events; the pipeline treats it as opaque.
	SessionID string
}

// ExtractionResult is the pipeline output handed to the report layer.
type ExtractionResult struct {
	// Content is always set. When the page could not be loaded it holds a
	// sentence starting with ErrorContentPrefix instead of page text.
	Content string `json:"content"`

	// Brand is the recovered site/brand name, empty when none was found.
	Brand string `json:"brand,omitempty"`

	// Strategy is the step whose output became Content.
	Strategy Strategy `json:"strategy"`

	// Attempts lists every strategy that ran, in order.
	Attempts []Attempt `json:"attempts,omitempty"`
}

// Attempt records the outcome of one strategy in the chain.
type Attempt struct {
	Strategy Strategy `json:"strategy"`
	Length   int      `json:"length"`
	Weak     bool     `json:"weak"`
	Error    string   `json:"error,omitempty"`
}

// Failed reports whether the result carries diagnostic content instead of
// page text.
func (r *ExtractionResult) Failed() bool {
	return r.Strategy == StrategyNone
}
