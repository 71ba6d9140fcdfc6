// Package i18n resolves translated labels and hints for governance
// connector properties, falling back to the upstream display name when no
// translation entry exists.
package i18n

import (
	"embed"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	for _, file := range []string{"locales/active.en.yaml", "locales/active.es.yaml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			panic(fmt.Sprintf("i18n: failed to load embedded message file %s: %v", file, err))
		}
	}
}

// Localizer returns a localizer for the given language preferences.
func Localizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// ForRequest returns a localizer honoring the request's Accept-Language.
func ForRequest(c *gin.Context) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, c.GetHeader("Accept-Language"))
}

// Message localizes a message id for the request, returning the id itself
// when no entry exists.
func Message(c *gin.Context, id string) string {
	return resolve(ForRequest(c), id, id)
}

// ResolveLabel returns the translated label for a connector property, or
// the fallback display name unchanged when the lookup key has no entry.
func ResolveLabel(loc *i18n.Localizer, categoryID, propertyName, fallback string) string {
	return resolve(loc, LabelKey(categoryID, propertyName), fallback)
}

// ResolveHint is ResolveLabel for the property's hint text.
func ResolveHint(loc *i18n.Localizer, categoryID, propertyName, fallback string) string {
	return resolve(loc, HintKey(categoryID, propertyName), fallback)
}

// LabelKey builds the deterministic lookup key for a property label.
func LabelKey(categoryID, propertyName string) string {
	return fmt.Sprintf("governanceConnectors.%s.%s.label", camelKey(categoryID), camelKey(propertyName))
}

// HintKey builds the deterministic lookup key for a property hint.
func HintKey(categoryID, propertyName string) string {
	return fmt.Sprintf("governanceConnectors.%s.%s.hint", camelKey(categoryID), camelKey(propertyName))
}

func resolve(loc *i18n.Localizer, id, fallback string) string {
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return fallback
	}
	return msg
}
