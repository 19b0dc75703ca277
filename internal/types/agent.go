package types

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ConversationTurn struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// TripParams are the search parameters collected during a conversation.
// A nil field has not been provided yet.
type TripParams struct {
	Origin         *string  `json:"origin"`
	Budget         *float64 `json:"budget"`
	Adults         *int     `json:"adults"`
	Children       *int     `json:"children"`
	CabinClass     *string  `json:"cabin_class"`
	TripType       *string  `json:"trip_type"`
	OriginSeason   *string  `json:"origin_season"`
	DestSeason     *string  `json:"dest_season"`
	Stops          *string  `json:"stops"`
	SchoolCalendar *string  `json:"school_calendar"`
}

// AgentSession is the caller-owned conversation state.
type AgentSession struct {
	ID           uuid.UUID          `json:"id"`
	History      []ConversationTurn `json:"history"`
	Params       TripParams         `json:"params"`
	PendingParam string             `json:"pending_param,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AgentReply is the structured answer of an intent extractor.
type AgentReply struct {
	Message         string     `json:"message"`
	ReadyToSearch   bool       `json:"ready_to_search"`
	ExtractedParams TripParams `json:"extracted_params"`
	MissingParams   []string   `json:"missing_params"`
	NextQuestion    *string    `json:"next_question"`
}

type AgentMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type AgentMessageResponse struct {
	SessionID      uuid.UUID        `json:"session_id"`
	Reply          AgentReply       `json:"reply"`
	Results        []TripSuggestion `json:"results,omitempty"`
	Found          int              `json:"found"`
	TotalTravelers int              `json:"total_travelers,omitempty"`
}
