package types

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"
)

const ContentItemText = "text"

// ContentItem is one tagged payload inside a message. Only the "text" kind
// carries meaning today; unknown kinds are preserved in storage and skipped
// when flattening.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func EncodeContent(items []ContentItem) (datatypes.JSON, error) {
	if items == nil {
		items = []ContentItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func DecodeContent(raw datatypes.JSON) ([]ContentItem, error) {
	var items []ContentItem
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FlattenText concatenates the text payloads of all "text" items in order,
// dropping every other item kind.
func FlattenText(items []ContentItem) string {
	var b strings.Builder
	for _, item := range items {
		if item.Type != ContentItemText {
			continue
		}
		b.WriteString(item.Text)
	}
	return b.String()
}

// FlattenStoredContent flattens a stored content document. Rows written
// before the structured-content migration hold a bare JSON string instead of
// an item list; those decode through the string branch.
func FlattenStoredContent(raw datatypes.JSON) string {
	items, err := DecodeContent(raw)
	if err == nil {
		return FlattenText(items)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
