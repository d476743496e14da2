package content

import (
	"fmt"
	"math"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

const mapRegionDelta = 0.01

// MapsURL is the external link opened when a map is tapped.
func MapsURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%v,%v", lat, lon)
}

// Map renders a pinned location whose url the shell opens on tap. Out-of-range or unparsable coordinates render
// an explanatory text node instead of a map.
func Map(p registry.ContentProps) *render.Node {
	item, ok := p.Item.(models.MapItem)
	if !ok {
		return nil
	}

	lat, latErr := item.Latitude.Float()
	lon, lonErr := item.Longitude.Float()
	if latErr != nil || lonErr != nil || !validLatitude(lat) || !validLongitude(lon) {
		return render.New(render.KindView, p.Key, nil,
			render.New(render.KindText, p.Key+"/invalid", map[string]any{
				"text":  fmt.Sprintf("Invalid map coordinates (lat: %s, lon: %s)", item.Latitude, item.Longitude),
				"color": p.Colors.Text,
			}).WithStyle("description"),
		).WithStyle("fieldContainer")
	}

	var caption *render.Node
	if item.Text != "" {
		caption = render.New(render.KindText, p.Key+"/caption", map[string]any{
			"text":  item.Text,
			"color": p.Colors.Text,
		}).WithStyle("label")
	}

	mapNode := render.New(render.KindMap, p.Key+"/map", map[string]any{
		"latitude":       lat,
		"longitude":      lon,
		"latitudeDelta":  mapRegionDelta,
		"longitudeDelta": mapRegionDelta,
		"markerTitle":    item.Title,
		"interactive":    false,
		"url":            MapsURL(lat, lon),
	})

	return render.New(render.KindView, p.Key, nil,
		caption,
		mapNode,
		render.New(render.KindText, p.Key+"/hint", map[string]any{
			"text":  "Tap to open in Maps",
			"color": p.Colors.Primary,
		}).WithStyle("description"),
	).WithStyle("fieldContainer")
}

func validLatitude(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

func validLongitude(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}
