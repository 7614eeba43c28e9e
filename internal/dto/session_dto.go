package dto

import "time"

type SessionTurnResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type SessionTurnsResponse struct {
	SessionId string                 `json:"sessionId"`
	Turns     []*SessionTurnResponse `json:"turns"`
}
