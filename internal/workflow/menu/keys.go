package menu

import (
	"strconv"
	"strings"

	"credwallet/internal/workflow/models"
)

const keyTextRunes = 10

// ItemKey derives a stable node key from the item's type, its index, its
// action id and the first characters of its text.
func ItemKey(item models.ContentItem, index int) string {
	var b strings.Builder
	b.WriteString(item.Type())
	b.WriteByte('_')
	b.WriteString(strconv.Itoa(index))
	if id := models.ActionID(item); id != "" {
		b.WriteByte('_')
		b.WriteString(id)
	}
	if text := models.Text(item); text != "" {
		b.WriteByte('_')
		b.WriteString(prefix(text, keyTextRunes))
	}
	return b.String()
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
