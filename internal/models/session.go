package models

import "time"

// ChannelIdeas groups the generated ideas for one channel, preserving the
// order in which the AI returned them.
type ChannelIdeas struct {
	Channel Channel      `json:"channel"`
	Ideas   []IdeaDetail `json:"ideas"`
}

// AnalysisSession is the aggregate stored per analysis. It is owned by the
// orchestrator until handed to the session store and immutable afterwards.
type AnalysisSession struct {
	SessionID       string         `json:"sessionId"`
	OriginalContent string         `json:"originalContent"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	URL             string         `json:"url"`
	Headings        []string       `json:"headings"`
	Summary         string         `json:"summary"`
	CreatedAt       time.Time      `json:"createdAt"`
	Channels        []ChannelIdeas `json:"channels"`
}

// NewSessionFromRequest builds a fresh session record from an inbound request.
func NewSessionFromRequest(req *AnalysisRequest, sessionID string) *AnalysisSession {
	return &AnalysisSession{
		SessionID:       sessionID,
		OriginalContent: req.FullText,
		Title:           req.Title,
		Description:     req.Description,
		URL:             req.URL,
		Headings:        req.Headings,
		CreatedAt:       time.Now().UTC(),
	}
}

// AddChannel appends a channel record to the session.
func (s *AnalysisSession) AddChannel(channel Channel, ideas []IdeaDetail) {
	s.Channels = append(s.Channels, ChannelIdeas{Channel: channel, Ideas: ideas})
}

// IdeaCount returns the total number of ideas across all channels.
func (s *AnalysisSession) IdeaCount() int {
	total := 0
	for _, c := range s.Channels {
		total += len(c.Ideas)
	}
	return total
}
