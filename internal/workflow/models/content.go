package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Content type tags understood by the decoder. Any other tag decodes to an
// UnknownItem and can still be served by a registered renderer.
const (
	TypeImage    = "image"
	TypeTitle    = "title"
	TypeText     = "text"
	TypeButton   = "button"
	TypeForm     = "form"
	TypePieChart = "pie-chart"
	TypeMap      = "map"
)

// ContentItem is one unit of a workflow action-menu payload. Each variant
// carries only the fields relevant to its type.
type ContentItem interface {
	Type() string
}

type ImageItem struct {
	URL string `json:"url"`
}

type TitleItem struct {
	Text string `json:"text"`
}

type TextItem struct {
	Text string `json:"text"`
}

// ButtonItem triggers a workflow action. InvitationLink, when set, is forwarded
// to the host as the action payload.
type ButtonItem struct {
	ActionID       string `json:"actionID"`
	Label          string `json:"label"`
	InvitationLink string `json:"invitationLink,omitempty"`
}

type FormItem struct {
	Fields []FormField `json:"fields"`
}

type PieChartItem struct {
	Title  string  `json:"title,omitempty"`
	Slices []Slice `json:"slices"`
}

// Slice is one pie-chart segment.
type Slice struct {
	Label string  `json:"label"`
	Count float64 `json:"count"`
}

// MapItem pins a single location. Coordinates arrive as strings or numbers.
type MapItem struct {
	Text      string     `json:"text,omitempty"`
	Title     string     `json:"title,omitempty"`
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// UnknownItem preserves an item whose tag has no dedicated variant.
type UnknownItem struct {
	Kind string
	Raw  json.RawMessage
}

func (ImageItem) Type() string    { return TypeImage }
func (TitleItem) Type() string    { return TypeTitle }
func (TextItem) Type() string     { return TypeText }
func (ButtonItem) Type() string   { return TypeButton }
func (FormItem) Type() string     { return TypeForm }
func (PieChartItem) Type() string { return TypePieChart }
func (MapItem) Type() string      { return TypeMap }
func (u UnknownItem) Type() string {
	return u.Kind
}

// Decode unmarshals the raw item into dst.
func (u UnknownItem) Decode(dst any) error {
	return json.Unmarshal(u.Raw, dst)
}

// FormField describes one input of a form item. Its value lives in the
// assembled view's form state, keyed by Name.
type FormField struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Options []string `json:"options,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

// Coordinate is a decimal degree kept as its source text.
type Coordinate string

// UnmarshalJSON accepts both quoted and bare numbers.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	*c = Coordinate(n.String())
	return nil
}

// Float parses the coordinate; empty parses as 0.
func (c Coordinate) Float() (float64, error) {
	if c == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(c), 64)
}

// ActionID returns the item's action id, empty for items without one.
func ActionID(item ContentItem) string {
	if b, ok := item.(ButtonItem); ok {
		return b.ActionID
	}
	return ""
}

// Text returns the item's primary text, empty for items without one.
func Text(item ContentItem) string {
	switch v := item.(type) {
	case TitleItem:
		return v.Text
	case TextItem:
		return v.Text
	case MapItem:
		return v.Text
	}
	return ""
}
