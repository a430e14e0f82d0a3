package exports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/pkg/logger"
	"github.com/guideline-analyzer/backend/pkg/utils"
)

const csvContentType = "text/csv"

// Manifest lists what one Publish call wrote.
type Manifest struct {
	Fingerprint string   `json:"fingerprint"`
	Prefix      string   `json:"prefix"`
	Objects     []Object `json:"objects"`
}

// Publisher renders the complete dataset and every curated subset as CSV and
// writes them under <prefix>/<short fingerprint>/.
type Publisher struct {
	store       Store
	prefix      string
	concurrency int
}

func NewPublisher(store Store, prefix string) *Publisher {
	return &Publisher{store: store, prefix: prefix, concurrency: 4}
}

func (p *Publisher) Store() Store { return p.store }

// Dir is the key prefix used for the dataset with the given fingerprint.
func (p *Publisher) Dir(fingerprint string) string {
	return path.Join(p.prefix, utils.Short(fingerprint)) + "/"
}

// Key is the object key of fileName for the given fingerprint.
func (p *Publisher) Key(fingerprint, fileName string) string {
	return p.Dir(fingerprint) + fileName
}

func (p *Publisher) Publish(ctx context.Context, ds *guideline.Dataset, fingerprint string) (*Manifest, error) {
	if ds.Empty() {
		return nil, fmt.Errorf("nothing to export: dataset is empty")
	}

	subsets := append([]analysis.Subset{analysis.CompleteDataset(ds)}, analysis.BuildSubsets(ds)...)
	objects := make([]Object, len(subsets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, sub := range subsets {
		g.Go(func() error {
			var buf bytes.Buffer
			if err := sub.Data.WriteCSV(&buf); err != nil {
				return fmt.Errorf("failed to render %s: %w", sub.FileName, err)
			}
			obj, err := p.store.Put(gctx, p.Key(fingerprint, sub.FileName), buf.Bytes(), csvContentType)
			if err != nil {
				metrics.ExportedObjects.WithLabelValues(p.store.Driver(), "error").Inc()
				return err
			}
			metrics.ExportedObjects.WithLabelValues(p.store.Driver(), "success").Inc()
			objects[i] = obj
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("Export failed", zap.String("driver", p.store.Driver()), zap.Error(err))
		return nil, err
	}

	logger.Info("Dataset exported",
		zap.String("driver", p.store.Driver()),
		zap.String("prefix", p.Dir(fingerprint)),
		zap.Int("objects", len(objects)),
	)
	return &Manifest{Fingerprint: fingerprint, Prefix: p.Dir(fingerprint), Objects: objects}, nil
}

// List returns the objects already published for fingerprint.
func (p *Publisher) List(ctx context.Context, fingerprint string) ([]Object, error) {
	return p.store.List(ctx, p.Dir(fingerprint))
}

// Open reads one published file back.
func (p *Publisher) Open(ctx context.Context, fingerprint, fileName string) (Object, io.ReadCloser, error) {
	return p.store.Get(ctx, p.Key(fingerprint, fileName))
}
