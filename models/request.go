package models

// SubmitRequest is the payload for POST /submit.
type SubmitRequest struct {
	// Name and Email identify the requester in the submission log.
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`

	// URL is the target page to scrape. Required.
	URL string `json:"url" binding:"required,url"`

	// SessionID correlates this submission with a GET /progress/:session_id
	// stream. Generated when empty.
	SessionID string `json:"session_id,omitempty"`

	// CallbackURL, when set, receives a signed submission.completed or
	// submission.failed webhook.
	CallbackURL string `json:"callback_url,omitempty" binding:"omitempty,url"`

	// MaxAge allows reusing a cached extraction younger than this many
	// milliseconds. 0 disables the cache.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	URL       string `json:"url" binding:"required,url"`
	SessionID string `json:"session_id,omitempty"`
	MaxAge    int    `json:"max_age,omitempty" binding:"omitempty,min=0"`
}
