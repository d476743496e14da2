package content

import (
	"strings"

	"credwallet/internal/workflow/models"
	"credwallet/internal/workflow/registry"
	"credwallet/internal/workflow/render"
)

// Image renders an image item; items without a URL render nothing.
func Image(p registry.ContentProps) *render.Node {
	item, ok := p.Item.(models.ImageItem)
	if !ok {
		return nil
	}
	url := strings.TrimSpace(item.URL)
	if url == "" {
		return nil
	}
	return render.New(render.KindView, p.Key, nil,
		render.New(render.KindImage, p.Key+"/image", map[string]any{
			"uri":        url,
			"resizeMode": "contain",
		}).WithStyle("image"),
	).WithStyle("fieldContainer")
}
