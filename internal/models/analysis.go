package models

// AnalysisStatus is the externally visible outcome of an analysis request.
type AnalysisStatus string

const (
	StatusSuccess AnalysisStatus = "SUCCESS"
	StatusFailure AnalysisStatus = "FAILURE"
)

// AnalysisRequest is the inbound payload carrying extracted page content.
// FullText is the only field required to be non-empty.
type AnalysisRequest struct {
	Title       string   `json:"title"`
	FullText    string   `json:"fullText"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Headings    []string `json:"headings"`
	Channels    []string `json:"channels,omitempty"`
}

// IdeaDetail is one generated content idea for a channel.
// Pros and Cons are always non-nil once validated.
type IdeaDetail struct {
	Idea      string   `json:"idea"`
	Rationale string   `json:"rationale"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
}

// EnsureSlices replaces nil Pros/Cons with empty slices.
func (d *IdeaDetail) EnsureSlices() {
	if d.Pros == nil {
		d.Pros = []string{}
	}
	if d.Cons == nil {
		d.Cons = []string{}
	}
}

// AnalysisResponse is the outbound result of an analysis request. On failure
// Channels is an empty map and Summary carries a human-readable explanation.
type AnalysisResponse struct {
	Status    AnalysisStatus          `json:"status"`
	SessionID string                  `json:"sessionId"`
	Summary   string                  `json:"summary"`
	Channels  map[string][]IdeaDetail `json:"channels"`
}
