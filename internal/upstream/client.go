// Package upstream implements the client for the identity server's
// governance admin API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"governd/internal/encryption"
	"governd/internal/errors"
	"governd/internal/httpclient"
	"governd/internal/models"
	"governd/internal/types"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const governanceBasePath = "/api/server/v1/identity-governance"

// CredentialSettingKey names the system_settings row holding the
// service-account credential, encrypted when ENCRYPTION_KEY is set.
const CredentialSettingKey = "upstream_credential"

// Client talks to the identity server governance API with basic auth.
type Client struct {
	httpClient func() *http.Client
	baseURL    string
	username   string
	password   string
}

// NewClient builds the upstream client. The service-account credential is
// read from the database when present, falling back to configuration. On
// the master instance a configured credential is seeded into the database
// so later re-encryption has a single source of truth.
func NewClient(
	configManager types.ConfigManager,
	clientManager *httpclient.HTTPClientManager,
	encryptionSvc encryption.Service,
	db *gorm.DB,
) (*Client, error) {
	upstreamConfig := configManager.GetUpstreamConfig()

	password := upstreamConfig.Password
	if configManager.IsMaster() && password != "" {
		if err := seedCredential(db, encryptionSvc, password); err != nil {
			return nil, fmt.Errorf("failed to seed upstream credential: %w", err)
		}
	}

	var stored models.SystemSetting
	err := db.Where("setting_key = ?", CredentialSettingKey).First(&stored).Error
	switch {
	case err == nil && stored.SettingValue != "":
		decrypted, decErr := encryptionSvc.Decrypt(stored.SettingValue)
		if decErr != nil {
			return nil, fmt.Errorf("failed to decrypt upstream credential: %w", decErr)
		}
		password = decrypted
	case err != nil && err != gorm.ErrRecordNotFound:
		return nil, err
	}

	return &Client{
		httpClient: clientManager.Client,
		baseURL:    upstreamConfig.BaseURL,
		username:   upstreamConfig.Username,
		password:   password,
	}, nil
}

func seedCredential(db *gorm.DB, encryptionSvc encryption.Service, password string) error {
	encrypted, err := encryptionSvc.Encrypt(password)
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.SystemSetting{
		SettingKey:   CredentialSettingKey,
		SettingValue: encrypted,
		Description:  "Identity server service-account credential",
	}).Error
}

// wire shapes of the governance admin API

type categoryListResponse struct {
	Categories []categoryResponse `json:"categories"`
}

type categoryResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Connectors []connectorResponse `json:"connectors"`
}

type connectorResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	CategoryID   string             `json:"categoryId"`
	FriendlyName string             `json:"friendlyName"`
	Order        int                `json:"order"`
	Properties   []propertyResponse `json:"properties"`
}

type propertyResponse struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// ListCategories fetches every connector category with its connectors and
// their current property values.
func (client *Client) ListCategories(ctx context.Context) ([]models.ConnectorCategory, error) {
	var list categoryListResponse
	if err := client.do(ctx, http.MethodGet, governanceBasePath, nil, &list); err != nil {
		return nil, err
	}

	categories := make([]models.ConnectorCategory, 0, len(list.Categories))
	for _, cat := range list.Categories {
		categories = append(categories, toCategory(cat))
	}
	return categories, nil
}

// GetConnector fetches a single connector with its flat property list.
func (client *Client) GetConnector(ctx context.Context, categoryID, connectorID string) (*models.GovernanceConnector, error) {
	var conn connectorResponse
	path := fmt.Sprintf("%s/%s/connectors/%s", governanceBasePath, categoryID, connectorID)
	if err := client.do(ctx, http.MethodGet, path, nil, &conn); err != nil {
		return nil, err
	}
	connector := toConnector(conn)
	return &connector, nil
}

// PatchConnector submits a property update for a connector.
func (client *Client) PatchConnector(ctx context.Context, categoryID, connectorID string, patch models.PatchRequest) error {
	path := fmt.Sprintf("%s/%s/connectors/%s", governanceBasePath, categoryID, connectorID)
	return client.do(ctx, http.MethodPatch, path, patch, nil)
}

func toCategory(cat categoryResponse) models.ConnectorCategory {
	connectors := make([]models.GovernanceConnector, 0, len(cat.Connectors))
	for _, conn := range cat.Connectors {
		connectors = append(connectors, toConnector(conn))
	}
	return models.ConnectorCategory{
		ID:         cat.ID,
		Name:       cat.Name,
		Connectors: connectors,
	}
}

func toConnector(conn connectorResponse) models.GovernanceConnector {
	properties := make([]models.ConnectorProperty, 0, len(conn.Properties))
	for _, prop := range conn.Properties {
		properties = append(properties, models.ConnectorProperty{
			Name:        prop.Name,
			Value:       prop.Value,
			DisplayName: prop.DisplayName,
			Description: prop.Description,
		})
	}
	return models.GovernanceConnector{
		ID:           conn.ID,
		Name:         conn.Name,
		CategoryID:   conn.CategoryID,
		FriendlyName: conn.FriendlyName,
		Order:        conn.Order,
		Properties:   properties,
	}
}

func (client *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, client.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.SetBasicAuth(client.username, client.password)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.httpClient().Do(req)
	if err != nil {
		return errors.NewAPIError(errors.ErrUpstreamUnavailable, fmt.Sprintf("identity server unreachable: %v", err))
	}
	defer resp.Body.Close()

	reader, err := decodeBody(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(reader, 4096))
		logrus.WithFields(logrus.Fields{
			"method": method,
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("identity server request failed")
		return errors.ParseUpstreamError(resp.StatusCode, string(raw))
	}

	if out == nil {
		io.Copy(io.Discard, reader)
		return nil
	}

	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return errors.NewAPIError(errors.ErrUpstreamUnavailable, fmt.Sprintf("invalid identity server response: %v", err))
	}
	return nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.NewAPIError(errors.ErrUpstreamUnavailable, fmt.Sprintf("invalid gzip response: %v", err))
		}
		return reader, nil
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}
