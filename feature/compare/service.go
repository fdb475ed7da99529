package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"asset-reconciler/core/reconcile"
	"asset-reconciler/core/rules"
	"asset-reconciler/core/session"
	"asset-reconciler/core/sheet"
	"asset-reconciler/core/storage"
	"asset-reconciler/feature/report"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidRequest marks requests that name no inputs.
var ErrInvalidRequest = errors.New("invalid compare request")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Request names the bucket objects of one comparison.
type Request struct {
	// Platform and Reference are object names of the input tables.
	Platform  string `json:"platform"`
	Reference string `json:"reference"`
	// Rules is the rule book object; the configured default is used when empty.
	Rules string `json:"rules,omitempty"`
	// PlatformSheet and ReferenceSheet override the configured worksheets.
	PlatformSheet  string `json:"platform_sheet,omitempty"`
	ReferenceSheet string `json:"reference_sheet,omitempty"`
	// SaveReport writes the xlsx report under the report prefix.
	SaveReport bool `json:"save_report"`
}

// Outcome is the result of a comparison together with what produced it.
type Outcome struct {
	Result       *reconcile.Result
	Rules        []rules.Rule
	ReportObject string
	Elapsed      time.Duration
}

// Service runs comparisons against objects in a bucket.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
	cfg    Config
	cache  *reconcile.BookCache
}

// NewService creates a new compare service. db may be nil; staging is then skipped.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, cfg Config) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
		cfg:    cfg,
		cache:  reconcile.NewBookCache(cfg.CacheTTL()),
	}
}

// Book returns the parsed rule book stored under object, from cache when fresh.
func (s *Service) Book(ctx context.Context, object string) (*rules.Book, error) {
	if object == "" {
		object = s.cfg.RulesObject
	}
	return s.cache.Get(ctx, object, func(ctx context.Context) (*rules.Book, error) {
		data, err := storage.ReadObject(ctx, s.client, s.bucket, object)
		if err != nil {
			return nil, err
		}
		book, err := rules.LoadNamed(object, bytes.NewReader(data), s.cfg.Sheets())
		if err != nil {
			return nil, err
		}
		for _, w := range book.Warnings {
			s.logger.Warn("Rule book warning", zap.String("object", object), zap.String("warning", w))
		}
		return book, nil
	})
}

// InvalidateRules drops a cached rule book so the next run reads it again.
func (s *Service) InvalidateRules(object string) {
	if object == "" {
		object = s.cfg.RulesObject
	}
	s.cache.Invalidate(object)
}

// ListInputs lists the input tables available under the input prefix.
func (s *Service) ListInputs(ctx context.Context) ([]string, error) {
	return storage.ListNames(ctx, s.client, s.bucket, s.cfg.InputPrefix, sheet.Extensions...)
}

// Compare runs the comparison described by req.
func (s *Service) Compare(ctx context.Context, req Request) (*Outcome, error) {
	if req.Platform == "" || req.Reference == "" {
		return nil, fmt.Errorf("%w: platform and reference objects are required", ErrInvalidRequest)
	}
	book, err := s.Book(ctx, req.Rules)
	if err != nil {
		return nil, err
	}
	platform := sheet.ObjectSource{Client: s.client, Bucket: s.bucket, Object: req.Platform, Options: s.cfg.PlatformOptions(req.PlatformSheet)}
	reference := sheet.ObjectSource{Client: s.client, Bucket: s.bucket, Object: req.Reference, Options: s.cfg.ReferenceOptions(req.ReferenceSheet)}
	return s.Run(ctx, book, platform, reference, req.SaveReport)
}

// Run compares two sources under book. With save set, the xlsx report is uploaded.
func (s *Service) Run(ctx context.Context, book *rules.Book, platform, reference reconcile.Source, save bool) (*Outcome, error) {
	engine, err := reconcile.NewEngine(book, reconcile.Options{
		Profile:             ptr(s.cfg.Profile()),
		CategoryPrefixWidth: s.cfg.CategoryPrefixWidth,
	})
	if err != nil {
		return nil, err
	}

	sess := session.New(s.logger)
	defer func() {
		if err := sess.Close(); err != nil {
			sess.Logger.Warn("Failed to release session resources", zap.Error(err))
		}
	}()
	if s.cfg.Staging && s.db != nil {
		if err := sess.AttachStore(s.db); err != nil {
			sess.Logger.Warn("Staging store unavailable, keeping rows in memory", zap.Error(err))
		}
	}

	p, r, err := reconcile.LoadTables(ctx, platform, reference)
	if err != nil {
		return nil, err
	}
	res, err := engine.Run(ctx, sess, p, r)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: res, Rules: engine.Rules()}
	if save {
		var buf bytes.Buffer
		if err := report.WriteWorkbook(&buf, res, out.Rules, s.cfg.Report); err != nil {
			return nil, fmt.Errorf("failed to render report: %w", err)
		}
		name := path.Join(s.cfg.ReportPrefix, sess.ID+".xlsx")
		if err := storage.WriteObject(ctx, s.client, s.bucket, name, xlsxContentType, buf.Bytes()); err != nil {
			return nil, err
		}
		out.ReportObject = name
		sess.Logger.Info("Report saved", zap.String("object", name))
	}
	out.Elapsed = sess.Elapsed()
	return out, nil
}

func ptr[T any](v T) *T { return &v }
