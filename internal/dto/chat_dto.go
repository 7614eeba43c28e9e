package dto

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionId string `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	Content   string   `json:"content"`
	Sources   []string `json:"sources,omitempty"`
	Error     string   `json:"error,omitempty"`
	SessionId string   `json:"sessionId,omitempty"`
}
