package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/folioapp/folio/internal/model"
	"github.com/folioapp/folio/internal/store"
	"github.com/folioapp/folio/internal/validate"
)

// ValidationError carries the full set of field diagnostics from a rejected
// site-data write.
type ValidationError struct {
	Errors []model.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("site data validation failed: %d field error(s)", len(e.Errors))
}

// ContentService owns the singleton site-data document. Reads are public;
// writes are validated and replace the document wholesale.
type ContentService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewContentService creates a ContentService.
func NewContentService(st *store.Store, logger *slog.Logger) *ContentService {
	return &ContentService{store: st, logger: logger}
}

// GetSiteData returns the current document, creating it with defaults on
// first access. The stored document was validated on the way in, so reads
// return it as-is.
func (s *ContentService) GetSiteData(ctx context.Context) (model.SiteData, error) {
	data, err := s.store.GetOrCreateSiteData(ctx)
	if err != nil {
		return model.SiteData{}, fmt.Errorf("get site data: %w", err)
	}
	return data, nil
}

// UpdateSiteData validates the candidate and replaces the stored document.
// A rejected candidate comes back as *ValidationError listing every
// violation.
func (s *ContentService) UpdateSiteData(ctx context.Context, data model.SiteData) error {
	if errs := validate.SiteData(data); errs != nil {
		s.logger.Warn("site data rejected", "violations", len(errs))
		return &ValidationError{Errors: errs}
	}

	if err := s.store.ReplaceSiteData(ctx, data); err != nil {
		return fmt.Errorf("update site data: %w", err)
	}
	s.logger.Info("site data updated")
	return nil
}
