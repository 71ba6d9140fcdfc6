package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"governd/internal/models"
	"governd/internal/store"
	"governd/internal/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsUpdateChannel carries cross-instance invalidation events.
const settingsUpdateChannel = "governd:settings:updated"

// SystemSettingsManager manages the runtime-tunable settings persisted in
// the system_settings table, with an in-process snapshot refreshed through
// the store's pub/sub channel.
type SystemSettingsManager struct {
	db            *gorm.DB
	store         store.Store
	configManager types.ConfigManager

	mu      sync.RWMutex
	current types.SystemSettings
}

// NewSystemSettingsManager seeds missing settings rows with their defaults,
// loads the current values and starts listening for invalidation events.
func NewSystemSettingsManager(db *gorm.DB, storeInst store.Store, configManager types.ConfigManager) (*SystemSettingsManager, error) {
	m := &SystemSettingsManager{
		db:            db,
		store:         storeInst,
		configManager: configManager,
		current:       DefaultSettings(),
	}

	if configManager.IsMaster() {
		if err := m.seedDefaults(); err != nil {
			return nil, fmt.Errorf("failed to seed system settings: %w", err)
		}
	}
	if err := m.loadFromDB(); err != nil {
		return nil, fmt.Errorf("failed to load system settings: %w", err)
	}
	if err := m.watchInvalidations(); err != nil {
		return nil, err
	}

	return m, nil
}

// GetSettings returns a snapshot of the current settings.
func (m *SystemSettingsManager) GetSettings() types.SystemSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// GetSettingsInfo returns all settings together with their display
// metadata, grouped by category in declaration order.
func (m *SystemSettingsManager) GetSettingsInfo() []models.CategorizedSettings {
	current := m.GetSettings()
	currentValue := reflect.ValueOf(current)
	defaults := reflect.ValueOf(DefaultSettings())
	settingsType := currentValue.Type()

	categoryOrder := make([]string, 0)
	grouped := make(map[string][]models.SystemSettingInfo)

	for i := 0; i < settingsType.NumField(); i++ {
		field := settingsType.Field(i)
		key := jsonKey(field)
		if key == "" {
			continue
		}

		category := field.Tag.Get("category")
		if _, seen := grouped[category]; !seen {
			categoryOrder = append(categoryOrder, category)
		}

		info := models.SystemSettingInfo{
			Key:          key,
			Name:         field.Tag.Get("name"),
			Value:        currentValue.Field(i).Interface(),
			Type:         field.Type.Kind().String(),
			DefaultValue: defaults.Field(i).Interface(),
			Description:  field.Tag.Get("desc"),
			Category:     category,
		}
		if min, ok := minConstraint(field); ok {
			info.MinValue = &min
		}
		grouped[category] = append(grouped[category], info)
	}

	result := make([]models.CategorizedSettings, 0, len(categoryOrder))
	for _, category := range categoryOrder {
		result = append(result, models.CategorizedSettings{
			CategoryName: category,
			Settings:     grouped[category],
		})
	}
	return result
}

// UpdateSettings validates and persists the given key/value updates, then
// refreshes this instance and notifies the others.
func (m *SystemSettingsManager) UpdateSettings(updates map[string]any) error {
	fields := fieldsByJSONKey()

	rows := make([]models.SystemSetting, 0, len(updates))
	for key, raw := range updates {
		field, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown setting %q", key)
		}
		value, err := coerceValue(field, raw)
		if err != nil {
			return fmt.Errorf("invalid value for %q: %w", key, err)
		}
		rows = append(rows, models.SystemSetting{
			SettingKey:   key,
			SettingValue: value,
			Description:  field.Tag.Get("desc"),
		})
	}

	if err := m.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "setting_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := m.loadFromDB(); err != nil {
		return err
	}
	if err := m.store.Publish(settingsUpdateChannel, []byte("updated")); err != nil {
		logrus.WithError(err).Warn("failed to publish settings invalidation")
	}
	return nil
}

// DefaultSettings builds a SystemSettings populated from the struct's
// default tags.
func DefaultSettings() types.SystemSettings {
	var settings types.SystemSettings
	value := reflect.ValueOf(&settings).Elem()
	settingsType := value.Type()

	for i := 0; i < settingsType.NumField(); i++ {
		field := settingsType.Field(i)
		def := field.Tag.Get("default")
		if def == "" {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			value.Field(i).SetString(def)
		case reflect.Int:
			if n, err := strconv.Atoi(def); err == nil {
				value.Field(i).SetInt(int64(n))
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(def); err == nil {
				value.Field(i).SetBool(b)
			}
		}
	}
	return settings
}

func (m *SystemSettingsManager) seedDefaults() error {
	defaults := DefaultSettings()
	value := reflect.ValueOf(defaults)
	settingsType := value.Type()

	for i := 0; i < settingsType.NumField(); i++ {
		field := settingsType.Field(i)
		key := jsonKey(field)
		if key == "" {
			continue
		}
		row := models.SystemSetting{
			SettingKey:   key,
			SettingValue: fmt.Sprint(value.Field(i).Interface()),
			Description:  field.Tag.Get("desc"),
		}
		if err := m.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (m *SystemSettingsManager) loadFromDB() error {
	var rows []models.SystemSetting
	if err := m.db.Find(&rows).Error; err != nil {
		return err
	}

	settings := DefaultSettings()
	value := reflect.ValueOf(&settings).Elem()
	fields := fieldsByJSONKey()
	indexes := fieldIndexesByJSONKey()

	for _, row := range rows {
		field, ok := fields[row.SettingKey]
		if !ok {
			continue // superseded setting left behind by an older version
		}
		i := indexes[row.SettingKey]
		switch field.Type.Kind() {
		case reflect.String:
			value.Field(i).SetString(row.SettingValue)
		case reflect.Int:
			if n, err := strconv.Atoi(row.SettingValue); err == nil {
				value.Field(i).SetInt(int64(n))
			}
		case reflect.Bool:
			if b, err := strconv.ParseBool(row.SettingValue); err == nil {
				value.Field(i).SetBool(b)
			}
		}
	}

	m.mu.Lock()
	m.current = settings
	m.mu.Unlock()
	return nil
}

func (m *SystemSettingsManager) watchInvalidations() error {
	sub, err := m.store.Subscribe(settingsUpdateChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to settings channel: %w", err)
	}

	go func() {
		for range sub.Channel() {
			if err := m.loadFromDB(); err != nil {
				logrus.WithError(err).Error("failed to reload system settings")
			} else {
				logrus.Debug("system settings reloaded after invalidation")
			}
		}
	}()
	return nil
}

// coerceValue converts a JSON-decoded update value into its stored string
// form, enforcing the field's validate tag.
func coerceValue(field reflect.StructField, raw any) (string, error) {
	switch field.Type.Kind() {
	case reflect.Int:
		var n int
		switch v := raw.(type) {
		case float64:
			n = int(v)
		case json.Number:
			parsed, err := v.Int64()
			if err != nil {
				return "", err
			}
			n = int(parsed)
		case string:
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return "", err
			}
			n = parsed
		default:
			return "", fmt.Errorf("expected integer, got %T", raw)
		}
		if min, ok := minConstraint(field); ok && n < min {
			return "", fmt.Errorf("must be at least %d", min)
		}
		return strconv.Itoa(n), nil
	case reflect.Bool:
		b, ok := raw.(bool)
		if !ok {
			return "", fmt.Errorf("expected boolean, got %T", raw)
		}
		return strconv.FormatBool(b), nil
	case reflect.String:
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("expected string, got %T", raw)
		}
		return s, nil
	default:
		return "", fmt.Errorf("unsupported setting type %s", field.Type.Kind())
	}
}

func jsonKey(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func minConstraint(field reflect.StructField) (int, bool) {
	tag := field.Tag.Get("validate")
	for _, part := range strings.Split(tag, ",") {
		if v, ok := strings.CutPrefix(part, "min="); ok {
			if n, err := strconv.Atoi(v); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func fieldsByJSONKey() map[string]reflect.StructField {
	settingsType := reflect.TypeOf(types.SystemSettings{})
	fields := make(map[string]reflect.StructField, settingsType.NumField())
	for i := 0; i < settingsType.NumField(); i++ {
		field := settingsType.Field(i)
		if key := jsonKey(field); key != "" {
			fields[key] = field
		}
	}
	return fields
}

func fieldIndexesByJSONKey() map[string]int {
	settingsType := reflect.TypeOf(types.SystemSettings{})
	indexes := make(map[string]int, settingsType.NumField())
	for i := 0; i < settingsType.NumField(); i++ {
		if key := jsonKey(settingsType.Field(i)); key != "" {
			indexes[key] = i
		}
	}
	return indexes
}
