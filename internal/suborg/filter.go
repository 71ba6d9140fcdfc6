package suborg

import (
	"fmt"

	"governd/internal/models"

	"github.com/sirupsen/logrus"
)

// UnknownCategoryError reports a filter request for a category the
// allow-list does not declare. Explicit and recoverable; callers must not
// treat it as an empty result.
type UnknownCategoryError struct {
	CategoryID string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("suborg: no visibility allow-list entry for category %q", e.CategoryID)
}

// FilterForSubOrg reduces a category's connector list to the allow-listed
// subset. Retained connectors keep only their allow-listed properties, in
// the connector's original property order. The input is never mutated.
func (t *Table) FilterForSubOrg(categoryID string, connectors []models.GovernanceConnector) ([]models.GovernanceConnector, error) {
	allowed, ok := t.categories[categoryID]
	if !ok {
		return nil, &UnknownCategoryError{CategoryID: categoryID}
	}

	allowedProps := make(map[string]map[string]struct{}, len(allowed))
	for _, entry := range allowed {
		props := make(map[string]struct{}, len(entry.Properties))
		for _, name := range entry.Properties {
			props[name] = struct{}{}
		}
		allowedProps[entry.ID] = props
	}

	filtered := make([]models.GovernanceConnector, 0, len(connectors))
	for _, connector := range connectors {
		props, ok := allowedProps[connector.ID]
		if !ok {
			logrus.WithFields(logrus.Fields{
				"category":  categoryID,
				"connector": connector.ID,
			}).Debug("connector hidden from sub-organization scope")
			continue
		}

		visible := connector
		visible.Properties = make([]models.ConnectorProperty, 0, len(connector.Properties))
		for _, property := range connector.Properties {
			if _, ok := props[property.Name]; !ok {
				logrus.WithFields(logrus.Fields{
					"category":  categoryID,
					"connector": connector.ID,
					"property":  property.Name,
				}).Debug("property hidden from sub-organization scope")
				continue
			}
			visible.Properties = append(visible.Properties, property)
		}
		filtered = append(filtered, visible)
	}

	return filtered, nil
}
