package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "credwallet/pkg/domain-errors"
)

func TestDecodeContent(t *testing.T) {
	payload := []byte(`[
		{"type":"title","text":"Welcome"},
		{"type":"image","url":" https://example.org/logo.png "},
		{"type":"button","actionID":"next","label":"Continue","invitationLink":"https://inv"},
		{"type":"form","fields":[{"name":"age","type":"slider","label":"Age","min":18,"max":99}]},
		{"type":"pie-chart","title":"Votes","slices":[{"label":"A","count":3}]},
		{"type":"map","latitude":"35.2","longitude":-80.8},
		{"type":"video","src":"x.mp4"}
	]`)

	items, err := DecodeContent(payload)
	require.NoError(t, err)
	require.Len(t, items, 7)

	assert.Equal(t, TitleItem{Text: "Welcome"}, items[0])
	assert.Equal(t, TypeImage, items[1].Type())
	assert.Equal(t, ButtonItem{ActionID: "next", Label: "Continue", InvitationLink: "https://inv"}, items[2])

	form := items[3].(FormItem)
	require.Len(t, form.Fields, 1)
	require.NotNil(t, form.Fields[0].Min)
	assert.Equal(t, 18.0, *form.Fields[0].Min)

	assert.Equal(t, []Slice{{Label: "A", Count: 3}}, items[4].(PieChartItem).Slices)

	m := items[5].(MapItem)
	assert.Equal(t, Coordinate("35.2"), m.Latitude)
	assert.Equal(t, Coordinate("-80.8"), m.Longitude)

	unknown := items[6].(UnknownItem)
	assert.Equal(t, "video", unknown.Type())
	var body struct {
		Src string `json:"src"`
	}
	require.NoError(t, unknown.Decode(&body))
	assert.Equal(t, "x.mp4", body.Src)
}

func TestDecodeContent_Errors(t *testing.T) {
	t.Run("not an array", func(t *testing.T) {
		_, err := DecodeContent([]byte(`{"type":"text"}`))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := DecodeContent([]byte(`[{"text":"orphan"}]`))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		assert.Contains(t, err.Error(), "content[0]")
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := DecodeContent([]byte(`[{"type":"pie-chart","slices":"many"}]`))
		assert.Error(t, err)
	})
}

func TestCoordinate(t *testing.T) {
	f, err := Coordinate("12.5").Float()
	require.NoError(t, err)
	assert.Equal(t, 12.5, f)

	f, err = Coordinate("").Float()
	require.NoError(t, err)
	assert.Zero(t, f)

	_, err = Coordinate("north").Float()
	assert.Error(t, err)
}

func TestItemAccessors(t *testing.T) {
	assert.Equal(t, "go", ActionID(ButtonItem{ActionID: "go"}))
	assert.Empty(t, ActionID(TextItem{Text: "x"}))
	assert.Equal(t, "hello", Text(TextItem{Text: "hello"}))
	assert.Equal(t, "pin", Text(MapItem{Text: "pin"}))
	assert.Empty(t, Text(ImageItem{URL: "u"}))
}
