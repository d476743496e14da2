package models

import (
	"encoding/json"
	"fmt"

	dErrors "credwallet/pkg/domain-errors"
)

type envelope struct {
	Type string `json:"type"`
}

// DecodeContent turns a JSON array of action-menu items into content items,
// preserving order. Items with unknown tags become UnknownItem.
func DecodeContent(data []byte) ([]ContentItem, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "content must be a JSON array")
	}

	items := make([]ContentItem, 0, len(raws))
	for i, raw := range raws {
		item, err := DecodeItem(raw)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("content[%d]: %v", i, err))
		}
		items = append(items, item)
	}
	return items, nil
}

// DecodeItem decodes a single item by its type tag.
func DecodeItem(raw json.RawMessage) (ContentItem, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, fmt.Errorf("missing type")
	}

	switch env.Type {
	case TypeImage:
		return decodeAs[ImageItem](raw)
	case TypeTitle:
		return decodeAs[TitleItem](raw)
	case TypeText:
		return decodeAs[TextItem](raw)
	case TypeButton:
		return decodeAs[ButtonItem](raw)
	case TypeForm:
		return decodeAs[FormItem](raw)
	case TypePieChart:
		return decodeAs[PieChartItem](raw)
	case TypeMap:
		return decodeAs[MapItem](raw)
	default:
		cp := make(json.RawMessage, len(raw))
		copy(cp, raw)
		return UnknownItem{Kind: env.Type, Raw: cp}, nil
	}
}

func decodeAs[T ContentItem](raw json.RawMessage) (ContentItem, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
