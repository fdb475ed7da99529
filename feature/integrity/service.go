package integrity

import (
	"context"

	"asset-reconciler/core/storage"
	"asset-reconciler/feature/compare"
	"asset-reconciler/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks of the reconciliation workspace.
type Service struct {
	client storage.Client
	bucket string
	logger *zap.Logger
	db     *gorm.DB
	cfg    compare.Config
}

// NewService creates a new integrity service. db may be nil when staging is off.
func NewService(client storage.Client, bucket string, logger *zap.Logger, db *gorm.DB, cfg compare.Config) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logger,
		db:     db,
		cfg:    cfg,
	}
}

// Folders returns the folders the bucket is expected to contain.
func (s *Service) Folders() []string {
	return checks.RequiredFolders(s.cfg.RulesObject, s.cfg.InputPrefix, s.cfg.ReportPrefix)
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket, s.Folders())
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckRuleBook validates object, or the configured rule book when object is empty.
func (s *Service) CheckRuleBook(ctx context.Context, object string) (*checks.RuleBookReport, error) {
	if object == "" {
		object = s.cfg.RulesObject
	}
	return checks.CheckRuleBook(ctx, s.client, s.bucket, object, s.cfg.Sheets())
}

// CheckStaging validates the staging table. Without a database it reports "disabled".
func (s *Service) CheckStaging() (*checks.StagingReport, error) {
	if s.db == nil {
		return &checks.StagingReport{
			MissingColumns: []string{},
			Errors:         []string{},
			Status:         "disabled",
		}, nil
	}
	return checks.CheckStaging(s.db)
}
