package models

import "time"

// Upload is one accepted dataset file.
type Upload struct {
	ID          string
	FileName    string
	StoredPath  string
	Fingerprint string
	RowCount    int
	ColumnCount int
	CreatedAt   time.Time
}

// ChatMessage is one question/answer exchange with the assistant.
type ChatMessage struct {
	ID          string
	SessionID   string
	Fingerprint string
	Question    string
	Answer      string
	ToolCalls   []string
	LatencyMS   int
	CreatedAt   time.Time
}
