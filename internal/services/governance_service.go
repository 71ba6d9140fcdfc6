// Package services holds the application services between the HTTP
// handlers and the upstream identity server.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"governd/internal/config"
	app_errors "governd/internal/errors"
	"governd/internal/governance"
	locales "governd/internal/i18n"
	"governd/internal/models"
	"governd/internal/store"
	"governd/internal/suborg"
	"governd/internal/upstream"

	"github.com/google/uuid"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	categoriesCacheKey = "governd:governance:categories"

	// CacheInvalidationChannel notifies other instances that the category
	// cache must be dropped after an update.
	CacheInvalidationChannel = "governd:governance:invalidate"
)

// FormField is one renderable field of a connector form, with its
// localized label and hint resolved.
type FormField struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
	Hint  string `json:"hint,omitempty"`
}

// ConnectorForm is the editable view of one connector.
type ConnectorForm struct {
	CategoryID   string                    `json:"category_id"`
	ConnectorID  string                    `json:"connector_id"`
	FriendlyName string                    `json:"friendly_name"`
	ViewModel    *governance.FormViewModel `json:"view_model"`
	Fields       []FormField               `json:"fields"`
}

// UpdateMeta carries request attribution persisted with the audit record.
type UpdateMeta struct {
	Operator    string
	SourceIP    string
	SubOrgScope bool
}

// GovernanceService orchestrates connector reads and updates: upstream
// calls, caching, sub-organization filtering, form mapping and auditing.
type GovernanceService struct {
	upstreamClient  *upstream.Client
	store           store.Store
	settingsManager *config.SystemSettingsManager
	visibility      *suborg.Table
	db              *gorm.DB

	invalidationSub store.Subscription
}

// NewGovernanceService creates the governance service and starts watching
// for cross-instance cache invalidations.
func NewGovernanceService(
	upstreamClient *upstream.Client,
	storeInst store.Store,
	settingsManager *config.SystemSettingsManager,
	visibility *suborg.Table,
	db *gorm.DB,
) (*GovernanceService, error) {
	s := &GovernanceService{
		upstreamClient:  upstreamClient,
		store:           storeInst,
		settingsManager: settingsManager,
		visibility:      visibility,
		db:              db,
	}

	sub, err := storeInst.Subscribe(CacheInvalidationChannel)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to cache invalidations: %w", err)
	}
	s.invalidationSub = sub
	go s.watchInvalidations()

	return s, nil
}

// Stop releases the invalidation subscription.
func (s *GovernanceService) Stop() {
	if s.invalidationSub != nil {
		s.invalidationSub.Close()
	}
}

func (s *GovernanceService) watchInvalidations() {
	for range s.invalidationSub.Channel() {
		if err := s.store.Delete(categoriesCacheKey); err != nil && err != store.ErrNotFound {
			logrus.WithError(err).Warn("failed to drop category cache after invalidation")
		}
	}
}

// ListCategories returns all connector categories, reduced to the
// sub-organization view when subOrg is set.
func (s *GovernanceService) ListCategories(ctx context.Context, subOrg bool) ([]models.ConnectorCategory, error) {
	categories, err := s.fetchCategories(ctx)
	if err != nil {
		return nil, err
	}
	if !subOrg {
		return categories, nil
	}

	visible := make([]models.ConnectorCategory, 0, len(categories))
	for _, category := range categories {
		if !s.visibility.Has(category.ID) {
			logrus.WithField("category", category.ID).Debug("category hidden from sub-organization view")
			continue
		}
		connectors, err := s.visibility.FilterForSubOrg(category.ID, category.Connectors)
		if err != nil {
			return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error())
		}
		visible = append(visible, models.ConnectorCategory{
			ID:         category.ID,
			Name:       category.Name,
			Connectors: connectors,
		})
	}
	return visible, nil
}

// GetConnectorForm fetches one connector and maps it into its editable
// form, with labels and hints resolved against loc.
func (s *GovernanceService) GetConnectorForm(
	ctx context.Context,
	categoryID, connectorID string,
	subOrg bool,
	loc *i18n.Localizer,
) (*ConnectorForm, error) {
	connector, err := s.upstreamClient.GetConnector(ctx, categoryID, connectorID)
	if err != nil {
		return nil, err
	}

	properties := connector.Properties
	if subOrg {
		filtered, err := s.visibility.FilterForSubOrg(categoryID, []models.GovernanceConnector{*connector})
		if err != nil {
			var unknown *suborg.UnknownCategoryError
			if errors.As(err, &unknown) {
				return nil, app_errors.NewAPIError(app_errors.ErrResourceNotFound, unknown.Error())
			}
			return nil, app_errors.NewAPIError(app_errors.ErrInternalServer, err.Error())
		}
		if len(filtered) == 0 {
			return nil, app_errors.NewAPIError(app_errors.ErrResourceNotFound,
				fmt.Sprintf("connector %s is not available to sub-organizations", connectorID))
		}
		properties = filtered[0].Properties
	}

	schema, err := governance.SchemaFor(connectorID)
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrResourceNotFound, err.Error())
	}
	if subOrg {
		// The restricted schema only validates allow-listed keys, so the
		// filtered property list satisfies it.
		if allowed, ok := s.visibility.AllowedProperties(categoryID, connectorID); ok {
			schema = schema.Restrict(allowed)
		}
	}

	viewModel, err := schema.ToViewModel(flatten(properties))
	if err != nil {
		return nil, app_errors.NewAPIError(app_errors.ErrUpstreamRejected, err.Error())
	}

	fields := make([]FormField, 0, len(properties))
	for _, prop := range properties {
		fieldType := "text"
		if isCheckboxKey(schema, prop.Name) {
			fieldType = "checkbox"
		}
		fields = append(fields, FormField{
			Name:  prop.Name,
			Type:  fieldType,
			Value: prop.Value,
			Label: locales.ResolveLabel(loc, categoryID, prop.Name, prop.DisplayName),
			Hint:  locales.ResolveHint(loc, categoryID, prop.Name, prop.Description),
		})
	}

	return &ConnectorForm{
		CategoryID:   categoryID,
		ConnectorID:  connectorID,
		FriendlyName: connector.FriendlyName,
		ViewModel:    viewModel,
		Fields:       fields,
	}, nil
}

// UpdateConnector maps the submitted view model into a property patch,
// sends it upstream and records the attempt in the audit log. In
// sub-organization scope the patch is reduced to the allow-listed keys,
// so properties hidden from the caller keep their upstream values. The
// category cache is invalidated on success.
func (s *GovernanceService) UpdateConnector(
	ctx context.Context,
	categoryID, connectorID string,
	viewModel *governance.FormViewModel,
	meta UpdateMeta,
) error {
	schema, err := governance.SchemaFor(connectorID)
	if err != nil {
		return app_errors.NewAPIError(app_errors.ErrResourceNotFound, err.Error())
	}
	if meta.SubOrgScope {
		allowed, ok := s.visibility.AllowedProperties(categoryID, connectorID)
		if !ok {
			return app_errors.NewAPIError(app_errors.ErrResourceNotFound,
				fmt.Sprintf("connector %s is not available to sub-organizations", connectorID))
		}
		schema = schema.Restrict(allowed)
	}

	patch := models.PatchRequest{
		Operation:  models.PatchOperationUpdate,
		Properties: schema.ToUpdateRequest(viewModel),
	}

	start := time.Now()
	updateErr := s.upstreamClient.PatchConnector(ctx, categoryID, connectorID, patch)
	s.writeAuditRecord(categoryID, connectorID, patch.Properties, meta, updateErr, time.Since(start))

	if updateErr != nil {
		return updateErr
	}

	s.invalidateCache()
	return nil
}

func (s *GovernanceService) writeAuditRecord(
	categoryID, connectorID string,
	properties []models.ConfigProperty,
	meta UpdateMeta,
	updateErr error,
	elapsed time.Duration,
) {
	payload, err := json.Marshal(properties)
	if err != nil {
		logrus.WithError(err).Error("failed to encode audit properties")
		payload = []byte("[]")
	}

	record := models.ConnectorUpdateLog{
		ID:          uuid.NewString(),
		Timestamp:   time.Now(),
		CategoryID:  categoryID,
		ConnectorID: connectorID,
		Operator:    meta.Operator,
		SourceIP:    meta.SourceIP,
		SubOrgScope: meta.SubOrgScope,
		IsSuccess:   updateErr == nil,
		Properties:  datatypes.JSON(payload),
		Duration:    elapsed.Milliseconds(),
	}
	if updateErr != nil {
		record.ErrorMessage = updateErr.Error()
	}

	if err := s.db.Create(&record).Error; err != nil {
		logrus.WithError(err).Error("failed to write connector update audit record")
	}
}

func (s *GovernanceService) invalidateCache() {
	if err := s.store.Delete(categoriesCacheKey); err != nil && err != store.ErrNotFound {
		logrus.WithError(err).Warn("failed to drop category cache")
	}
	if err := s.store.Publish(CacheInvalidationChannel, []byte("invalidate")); err != nil {
		logrus.WithError(err).Warn("failed to publish cache invalidation")
	}
}

func (s *GovernanceService) fetchCategories(ctx context.Context) ([]models.ConnectorCategory, error) {
	if cached, err := s.store.Get(categoriesCacheKey); err == nil {
		var categories []models.ConnectorCategory
		if err := json.Unmarshal(cached, &categories); err == nil {
			return categories, nil
		}
		logrus.Warn("dropping undecodable category cache entry")
		s.store.Delete(categoriesCacheKey)
	}

	categories, err := s.upstreamClient.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.settingsManager.GetSettings().ConnectorCacheTTLMinutes) * time.Minute
	if ttl > 0 {
		if payload, err := json.Marshal(categories); err == nil {
			if err := s.store.Set(categoriesCacheKey, payload, ttl); err != nil {
				logrus.WithError(err).Warn("failed to cache category listing")
			}
		}
	}

	return categories, nil
}

func flatten(properties []models.ConnectorProperty) []models.ConfigProperty {
	flat := make([]models.ConfigProperty, 0, len(properties))
	for _, prop := range properties {
		flat = append(flat, models.ConfigProperty{Name: prop.Name, Value: prop.Value})
	}
	return flat
}

func isCheckboxKey(schema *governance.FormSchema, name string) bool {
	for _, key := range schema.CheckboxKeys {
		if key == name {
			return true
		}
	}
	return false
}
