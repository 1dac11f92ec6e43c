package types

import (
	"testing"

	"gorm.io/datatypes"
)

func TestFlattenTextDropsUnknownKinds(t *testing.T) {
	items := []ContentItem{
		{Type: ContentItemText, Text: "hello "},
		{Type: "image", Text: "ignored"},
		{Type: ContentItemText, Text: "world"},
	}
	if got := FlattenText(items); got != "hello world" {
		t.Fatalf("FlattenText: want=%q got=%q", "hello world", got)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	encoded, err := EncodeContent([]ContentItem{{Type: ContentItemText, Text: "hi"}})
	if err != nil {
		t.Fatalf("EncodeContent: %v", err)
	}
	items, err := DecodeContent(encoded)
	if err != nil {
		t.Fatalf("DecodeContent: %v", err)
	}
	if len(items) != 1 || items[0].Text != "hi" {
		t.Fatalf("round trip: got=%v", items)
	}
}

func TestEncodeContentNilBecomesEmptyList(t *testing.T) {
	encoded, err := EncodeContent(nil)
	if err != nil {
		t.Fatalf("EncodeContent: %v", err)
	}
	if string(encoded) != "[]" {
		t.Fatalf("EncodeContent nil: want=%q got=%q", "[]", string(encoded))
	}
}

func TestFlattenStoredContentLegacyString(t *testing.T) {
	// Rows written before structured content hold a bare JSON string.
	raw := datatypes.JSON(`"plain old text"`)
	if got := FlattenStoredContent(raw); got != "plain old text" {
		t.Fatalf("FlattenStoredContent: want=%q got=%q", "plain old text", got)
	}
}

func TestFlattenStoredContentEmpty(t *testing.T) {
	if got := FlattenStoredContent(nil); got != "" {
		t.Fatalf("FlattenStoredContent nil: want empty got=%q", got)
	}
}
