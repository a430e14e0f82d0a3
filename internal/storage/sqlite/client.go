package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/storage/models"
	"github.com/guideline-analyzer/backend/pkg/logger"
)

var ErrNotFound = errors.New("not found")

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping() error {
	return c.db.Ping()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		file_name TEXT NOT NULL,
		stored_path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		row_count INTEGER NOT NULL,
		column_count INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_uploads_created ON uploads(created_at);

	CREATE TABLE IF NOT EXISTS chat_history (
		id TEXT PRIMARY KEY,
		session_id TEXT,
		fingerprint TEXT,
		question TEXT NOT NULL,
		answer TEXT,
		tool_calls TEXT,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_session ON chat_history(session_id);
	CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertUpload(u *models.Upload) error {
	query := `
		INSERT INTO uploads (id, file_name, stored_path, fingerprint, row_count, column_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		u.ID,
		u.FileName,
		u.StoredPath,
		u.Fingerprint,
		u.RowCount,
		u.ColumnCount,
		u.CreatedAt.UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert upload: %w", err)
	}

	logger.Debug("Upload recorded", zap.String("upload_id", u.ID), zap.String("file", u.FileName))
	return nil
}

// LatestUpload returns the most recently recorded upload, or ErrNotFound.
func (c *Client) LatestUpload() (*models.Upload, error) {
	uploads, err := c.ListUploads(1)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, ErrNotFound
	}
	return &uploads[0], nil
}

func (c *Client) ListUploads(limit int) ([]models.Upload, error) {
	query := `
		SELECT id, file_name, stored_path, fingerprint, row_count, column_count, created_at
		FROM uploads
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var uploads []models.Upload
	for rows.Next() {
		var u models.Upload
		var createdAt int64

		err := rows.Scan(&u.ID, &u.FileName, &u.StoredPath, &u.Fingerprint, &u.RowCount, &u.ColumnCount, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		u.CreatedAt = time.Unix(0, createdAt)
		uploads = append(uploads, u)
	}

	return uploads, rows.Err()
}

func (c *Client) InsertChatMessage(m *models.ChatMessage) error {
	query := `
		INSERT INTO chat_history (id, session_id, fingerprint, question, answer, tool_calls, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	toolCalls, err := json.Marshal(m.ToolCalls)
	if err != nil {
		return fmt.Errorf("failed to encode tool calls: %w", err)
	}

	_, err = c.db.Exec(
		query,
		m.ID,
		m.SessionID,
		m.Fingerprint,
		m.Question,
		m.Answer,
		string(toolCalls),
		m.LatencyMS,
		m.CreatedAt.UnixNano(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	logger.Info("Chat message recorded",
		zap.String("message_id", m.ID),
		zap.String("session_id", m.SessionID),
		zap.Strings("tools", m.ToolCalls),
	)

	return nil
}

// GetChatHistory returns a session's messages, oldest first.
func (c *Client) GetChatHistory(sessionID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, fingerprint, question, answer, tool_calls, latency_ms, created_at
		FROM (
			SELECT * FROM chat_history
			WHERE session_id = ?
			ORDER BY created_at DESC
			LIMIT ?
		)
		ORDER BY created_at ASC
	`

	rows, err := c.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var toolCalls sql.NullString
		var createdAt int64

		err := rows.Scan(&m.ID, &m.SessionID, &m.Fingerprint, &m.Question, &m.Answer, &toolCalls, &m.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &m.ToolCalls); err != nil {
				logger.Warn("Failed to decode tool calls", zap.String("message_id", m.ID), zap.Error(err))
			}
		}
		m.CreatedAt = time.Unix(0, createdAt)
		messages = append(messages, m)
	}

	return messages, rows.Err()
}
