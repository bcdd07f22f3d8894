package gateway

import "time"

// Principal is the authenticated identity returned by login and verification.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// Credentials is the payload returned by a successful login.
type Credentials struct {
	Token string    `json:"token"`
	User  Principal `json:"user"`
}

// Verification is the result of a credential check.
type Verification struct {
	Valid bool      `json:"valid"`
	User  Principal `json:"user"`
}

// Profile describes a freshly registered account.
type Profile struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Segment is a timestamped span of transcript text.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscribeResult is the payload of a successful transcription upload.
type TranscribeResult struct {
	TranscriptionID string    `json:"transcription_id"`
	Transcription   string    `json:"transcription"`
	Segments        []Segment `json:"segments"`
}

// SummarizeResult is the payload of a successful summarize call.
type SummarizeResult struct {
	Summary      string   `json:"summary"`
	BulletPoints []string `json:"bullet_points"`
}

// KeyItem is the wire form of a decision or action item.
type KeyItem struct {
	Text     string `json:"text"`
	Assignee string `json:"assignee,omitempty"`
	Status   string `json:"status"`
}

// SearchResult is one matching document with its matching segments.
type SearchResult struct {
	ID               string    `json:"_id"`
	Filename         string    `json:"filename"`
	CreatedAt        time.Time `json:"created_at"`
	MatchingSegments []Segment `json:"matching_segments"`
}

// DocumentSummary is one entry of the user's transcription history.
type DocumentSummary struct {
	ID            string    `json:"_id"`
	Filename      string    `json:"filename"`
	CreatedAt     time.Time `json:"created_at"`
	Transcription string    `json:"transcription"`
	Summary       string    `json:"summary"`
}

// AdminUser is one account as seen by the admin user listing.
type AdminUser struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// LogEntry is one audit log record.
type LogEntry struct {
	ID        string         `json:"_id"`
	Action    string         `json:"action"`
	UserID    string         `json:"user_id"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
}

// UserActivity counts transcriptions per user.
type UserActivity struct {
	UserID string `json:"_id"`
	Count  int64  `json:"count"`
}

// Metric is one tracked analytics sample.
type Metric struct {
	ID        string    `json:"_id"`
	Type      string    `json:"type"`
	Value     float64   `json:"value"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Analytics aggregates the admin analytics payload.
type Analytics struct {
	TotalUsers          int64          `json:"total_users"`
	TotalTranscriptions int64          `json:"total_transcriptions"`
	TotalLogins         int64          `json:"total_logins"`
	TopUsers            []UserActivity `json:"top_users"`
	RecentMetrics       []Metric       `json:"recent_metrics"`
}

// ServiceInfo is the backend health check payload.
type ServiceInfo struct {
	Message  string   `json:"message"`
	Features []string `json:"features"`
	Version  string   `json:"version"`
}
