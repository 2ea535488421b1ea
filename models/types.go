package models

import "time"

// StageTimings records how long each pipeline stage took for one request.
type StageTimings struct {
	RequestID string
	Ingest    time.Duration
	Sniff     time.Duration
	Normalize time.Duration
	ModelCall time.Duration
	Parse     time.Duration
	Total     time.Duration
}

// Photo describes an original upload kept in object storage.
type Photo struct {
	Key         string    `json:"key"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
