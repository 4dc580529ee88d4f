package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateMinuteRequest struct {
	MinutesType    string    `json:"minutes_type" validate:"required"`
	MinutesDate    time.Time `json:"minutes_date" validate:"required"`
	AssemblyNumber string    `json:"assembly_number"`
	SessionNumber  string    `json:"session_number"`
	SubSession     string    `json:"sub_session"`
	SpeechOrder    int       `json:"speech_order" validate:"min=0"`
	Speaker        string    `json:"speaker"`
	Position       string    `json:"position"`
	Content        string    `json:"content" validate:"required"`
}

type CreateMinutesBulkRequest struct {
	Minutes []CreateMinuteRequest `json:"minutes" validate:"required,min=1,max=500,dive"`
}

type CreateMinutesBulkResponse struct {
	Ids    []uuid.UUID `json:"ids"`
	Queued int         `json:"queued"` // embedding jobs enqueued
}

type MinuteDTO struct {
	Id             uuid.UUID `json:"id"`
	MinutesType    string    `json:"minutes_type"`
	MinutesDate    time.Time `json:"minutes_date"`
	AssemblyNumber string    `json:"assembly_number,omitempty"`
	SessionNumber  string    `json:"session_number,omitempty"`
	SubSession     string    `json:"sub_session,omitempty"`
	SpeechOrder    int       `json:"speech_order"`
	Speaker        string    `json:"speaker,omitempty"`
	Position       string    `json:"position,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListMinutesRequest carries list filters parsed from query parameters.
// Zero From/To leave that side of the date range open.
type ListMinutesRequest struct {
	Limit       int
	Offset      int
	Speaker     string
	MinutesType string
	From        time.Time
	To          time.Time
}

type ListMinutesResponse struct {
	Minutes []MinuteDTO `json:"minutes"`
	Total   int64       `json:"total"`
}

type MinuteStatsResponse struct {
	Minutes    int64 `json:"minutes"`
	Embeddings int64 `json:"embeddings"`
}

type DeleteMinutesResponse struct {
	Deleted int `json:"deleted"`
}

// PublishEmbedMinuteMessage is the payload queued for the embedding consumer.
type PublishEmbedMinuteMessage struct {
	MinuteId uuid.UUID `json:"minute_id"`
}
