package models

import "github.com/breatheroute/roadtrip/internal/session"

// SessionResponse describes a display session.
type SessionResponse struct {
	ID        string           `json:"id"`
	CreatedAt Timestamp        `json:"createdAt"`
	Sequence  uint64           `json:"sequence"`
	Overlay   *session.Overlay `json:"overlay,omitempty"`
}

// NewSessionResponse snapshots s.
func NewSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID(),
		CreatedAt: Timestamp(s.CreatedAt()),
		Sequence:  s.Sequence(),
		Overlay:   s.Current(),
	}
}
