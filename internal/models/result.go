package models

// Per-file outcome statuses in a combined upload reply.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// FileOutcome reports what happened to one file of a combined upload. Clients
// match outcomes back to their items by filename.
type FileOutcome struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	Detail      string `json:"detail,omitempty"`
	CandidateID string `json:"candidate_id,omitempty"`
}

type UploadResponse struct {
	Results []FileOutcome `json:"results"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k,omitempty"`
}

type MessagePayload struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CreateChatRequest struct {
	Messages []MessagePayload `json:"messages"`
}

type AddMessagesRequest struct {
	Messages []MessagePayload `json:"messages"`
}
