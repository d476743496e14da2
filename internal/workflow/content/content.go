// Package content holds the built-in content renderers for workflow action menus.
package content

import (
	"errors"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
)

// RegisterDefaults registers every built-in content renderer on reg.
func RegisterDefaults(reg *registry.ContentRegistry) error {
	return errors.Join(
		reg.Register(models.TypeImage, Image),
		reg.Register(models.TypeMap, Map),
		reg.Register(models.TypePieChart, PieChart),
	)
}
