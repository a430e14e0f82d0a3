package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/ingestion"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/internal/storage/models"
	"github.com/guideline-analyzer/backend/internal/storage/sqlite"
	"github.com/guideline-analyzer/backend/pkg/logger"
	"github.com/guideline-analyzer/backend/pkg/utils"
)

var ErrNoDataset = errors.New("no dataset loaded")

// Snapshot is the active dataset together with where it came from. It is
// immutable once installed.
type Snapshot struct {
	Dataset     *guideline.Dataset
	UploadID    string
	FileName    string
	StoredPath  string
	Fingerprint string
	LoadedAt    time.Time
}

// UploadStore records accepted uploads so the latest can be restored.
type UploadStore interface {
	InsertUpload(u *models.Upload) error
	LatestUpload() (*models.Upload, error)
}

// Manager owns the one live dataset. Replacement is a single pointer swap,
// so readers see either the old or the new snapshot.
type Manager struct {
	current   atomic.Pointer[Snapshot]
	uploadDir string
	store     UploadStore

	mu        sync.Mutex
	listeners []func(*Snapshot)
}

// NewManager returns an empty Manager. store may be nil.
func NewManager(uploadDir string, store UploadStore) *Manager {
	return &Manager{uploadDir: uploadDir, store: store}
}

func (m *Manager) Current() (*Snapshot, error) {
	s := m.current.Load()
	if s == nil {
		return nil, ErrNoDataset
	}
	return s, nil
}

// OnReplace registers fn to run after every successful replacement.
func (m *Manager) OnReplace(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Upload saves the file under the upload directory, ingests and validates
// it, and installs it. On any error the previous dataset stays active and
// the saved file is removed.
func (m *Manager) Upload(fileName string, r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues("read_error").Inc()
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	fingerprint := utils.HashBytes(data)
	name := sanitizeFileName(fileName)

	if err := os.MkdirAll(m.uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	storedPath := filepath.Join(m.uploadDir, utils.Short(fingerprint)+"_"+name)
	if err := os.WriteFile(storedPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}

	snap, err := m.load(storedPath, name, fingerprint)
	if err != nil {
		os.Remove(storedPath)
		metrics.UploadsTotal.WithLabelValues(outcome(err)).Inc()
		logger.Warn("Upload rejected", zap.String("file", name), zap.Error(err))
		return nil, err
	}

	snap.UploadID = uuid.New().String()
	if m.store != nil {
		err := m.store.InsertUpload(&models.Upload{
			ID:          snap.UploadID,
			FileName:    name,
			StoredPath:  storedPath,
			Fingerprint: fingerprint,
			RowCount:    snap.Dataset.Len(),
			ColumnCount: len(snap.Dataset.Columns()),
			CreatedAt:   snap.LoadedAt,
		})
		if err != nil {
			logger.Warn("Failed to record upload", zap.Error(err))
		}
	}

	m.install(snap)
	metrics.UploadsTotal.WithLabelValues("accepted").Inc()
	return snap, nil
}

// LoadFile ingests a CSV from disk and installs it without recording an
// upload.
func (m *Manager) LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ingestion.IngestError{Kind: ingestion.Malformed, Path: path, Err: err}
	}
	fingerprint, err := utils.HashReader(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint %s: %w", path, err)
	}

	snap, err := m.load(path, filepath.Base(path), fingerprint)
	if err != nil {
		return nil, err
	}
	m.install(snap)
	return snap, nil
}

// RestoreLatest reloads the most recently recorded upload, if any. A missing
// record is not an error.
func (m *Manager) RestoreLatest() (*Snapshot, error) {
	if m.store == nil {
		return nil, nil
	}
	u, err := m.store.LatestUpload()
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up latest upload: %w", err)
	}

	snap, err := m.load(u.StoredPath, u.FileName, u.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to restore %s: %w", u.FileName, err)
	}
	snap.UploadID = u.ID
	snap.LoadedAt = u.CreatedAt
	m.install(snap)

	logger.Info("Restored latest upload", zap.String("file", u.FileName), zap.Int("rows", snap.Dataset.Len()))
	return snap, nil
}

func (m *Manager) load(path, name, fingerprint string) (*Snapshot, error) {
	ds, err := ingestion.LoadAndValidate(path)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Dataset:     ds,
		FileName:    name,
		StoredPath:  path,
		Fingerprint: fingerprint,
		LoadedAt:    time.Now(),
	}, nil
}

func (m *Manager) install(snap *Snapshot) {
	m.current.Store(snap)
	metrics.DatasetRows.Set(float64(snap.Dataset.Len()))

	logger.Info("Dataset installed",
		zap.String("file", snap.FileName),
		zap.String("fingerprint", utils.Short(snap.Fingerprint)),
		zap.Int("rows", snap.Dataset.Len()),
	)

	m.mu.Lock()
	listeners := make([]func(*Snapshot), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(snap)
	}
}

func outcome(err error) string {
	var ie *ingestion.IngestError
	var ve *ingestion.ValidationError
	switch {
	case errors.As(err, &ie):
		return "malformed"
	case errors.As(err, &ve):
		return "invalid"
	default:
		return "error"
	}
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "upload.csv"
	}
	return base
}
