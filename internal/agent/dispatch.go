package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/guideline-analyzer/backend/internal/analysis"
	"github.com/guideline-analyzer/backend/internal/guideline"
	"github.com/guideline-analyzer/backend/internal/metrics"
	"github.com/guideline-analyzer/backend/pkg/logger"
	"github.com/guideline-analyzer/backend/pkg/utils"
)

// Record is one row of a tool result.
type Record map[string]any

// Result is what every tool call returns: rows, or a single {"Error": ...}
// record.
type Result []Record

const ErrorKey = "Error"

var ErrNoDataset = errors.New("No dataset loaded")

// ErrorResult wraps msg in the single-record error shape.
func ErrorResult(msg string) Result {
	return Result{{ErrorKey: msg}}
}

// Err reports the message of an error result.
func (r Result) Err() (string, bool) {
	if len(r) != 1 {
		return "", false
	}
	msg, ok := r[0][ErrorKey].(string)
	return msg, ok && len(r[0]) == 1
}

// Cache stores tool results between identical calls on the same dataset.
type Cache interface {
	GetResult(ctx context.Context, key string, out any) (bool, error)
	SetResult(ctx context.Context, key string, value any, ttl time.Duration) error
}

type Dispatcher struct {
	cache Cache
	ttl   time.Duration
}

// NewDispatcher returns a Dispatcher. cache may be nil.
func NewDispatcher(cache Cache, ttl time.Duration) *Dispatcher {
	return &Dispatcher{cache: cache, ttl: ttl}
}

// Call decodes and executes one tool call. It never returns an error or
// panics: every failure becomes an error record. fingerprint identifies ds
// for caching and may be empty to skip the cache.
func (d *Dispatcher) Call(ctx context.Context, ds *guideline.Dataset, fingerprint, name string, args json.RawMessage) (result Result) {
	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Tool call panicked", zap.String("tool", name), zap.Any("panic", r))
			result = ErrorResult(fmt.Sprintf("internal error in %s", name))
		}
		if _, isErr := result.Err(); isErr && outcome == "ok" {
			outcome = "error"
		}
		metrics.DispatchTotal.WithLabelValues(name, outcome).Inc()
	}()

	req, err := Decode(name, args)
	if err != nil {
		if errors.Is(err, ErrUnknownTool) {
			return ErrorResult("Unknown function: " + name)
		}
		return ErrorResult(err.Error())
	}
	if ds == nil {
		return ErrorResult(ErrNoDataset.Error())
	}

	key := ""
	if d != nil && d.cache != nil && fingerprint != "" {
		key = cacheKey(fingerprint, req)
		var cached Result
		found, err := d.cache.GetResult(ctx, key, &cached)
		if err != nil {
			logger.Warn("Tool cache read failed", zap.String("tool", name), zap.Error(err))
		} else if found {
			metrics.CacheHits.WithLabelValues("dispatch").Inc()
			outcome = "cached"
			return cached
		}
		metrics.CacheMisses.WithLabelValues("dispatch").Inc()
	}

	result = Execute(ds, req)

	if key != "" {
		if err := d.cache.SetResult(ctx, key, result, d.ttl); err != nil {
			logger.Warn("Tool cache write failed", zap.String("tool", name), zap.Error(err))
		}
	}
	return result
}

func cacheKey(fingerprint string, req Request) string {
	args, _ := json.Marshal(req)
	return fmt.Sprintf("%s:%s:%s", utils.Short(fingerprint), req.ToolName(), utils.HashBytes(args))
}

// Execute runs a decoded request against ds. Query failures such as an
// unknown theme come back as error records.
func Execute(ds *guideline.Dataset, req Request) Result {
	switch r := req.(type) {
	case DatasetInfoRequest:
		return Result{toRecord(analysis.GetDatasetInfo(ds))}

	case OverallStatisticsRequest:
		s := analysis.ComputeOverallStatistics(ds)
		return Result{{
			"Total Guidelines": s.Total,
			"Desktop":          s.Desktop,
			"Mobile":           s.Mobile,
			"App":              s.App,
		}}

	case RankByImpactRequest:
		g, err := analysis.RankByImpact(ds, r.GroupBy, r.Ascending)
		if err != nil {
			return ErrorResult(err.Error())
		}
		return groupingRecords(g)

	case CompareGuidelineRequest:
		out, err := analysis.CompareGuideline(ds, r.GuidelineID, r.Platform)
		if err != nil {
			return ErrorResult(err.Error())
		}
		return datasetRecords(out)

	case SearchGuidelineRequest:
		return datasetRecords(analysis.SearchGuidelines(ds, r.SearchTerm))

	case ThemeGuidelinesRequest:
		out, err := analysis.ThemeGuidelines(ds, r.Theme, r.Topic)
		if err != nil {
			return ErrorResult(err.Error())
		}
		return datasetRecords(out)

	case CriteriaRequest:
		return datasetRecords(analysis.AnalyzeByCriteria(ds, analysis.Criteria{
			Theme:      r.Theme,
			Topic:      r.Topic,
			Platform:   r.Platform,
			LowCost:    r.LowCost,
			HighImpact: r.HighImpact,
			Violated:   r.Violated,
			Adhered:    r.Adhered,
			NA:         r.NA,
		}))

	case SiteAdherenceRequest:
		counts := analysis.SiteAdherence(ds, analysis.AdherenceQuery{
			Status:     r.Status,
			Platform:   r.Platform,
			LowCost:    r.LowCost,
			HighImpact: r.HighImpact,
		})
		out := make(Result, 0, len(counts))
		for _, c := range counts {
			out = append(out, Record{guideline.ColCaseStudy: c.CaseStudy, "count": c.Count})
		}
		return out

	default:
		return ErrorResult(fmt.Sprintf("Unknown function: %T", req))
	}
}

func datasetRecords(ds *guideline.Dataset) Result {
	recs := ds.Records()
	out := make(Result, len(recs))
	for i, r := range recs {
		out[i] = Record(r)
	}
	return out
}

func groupingRecords(g *analysis.Grouping) Result {
	out := make(Result, 0, len(g.Groups))
	for _, s := range g.Groups {
		rec := make(Record, len(g.Fields)+2)
		for i, f := range g.Fields {
			rec[f] = s.Keys[i]
		}
		if s.HasMean {
			rec["Average_Impact"] = s.MeanImpact
		} else {
			rec["Average_Impact"] = nil
		}
		rec["Guidelines_Count"] = s.Count
		out = append(out, rec)
	}
	return out
}

func toRecord(v any) Record {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{ErrorKey: err.Error()}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{ErrorKey: err.Error()}
	}
	return rec
}
