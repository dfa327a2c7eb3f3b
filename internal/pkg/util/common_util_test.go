package util

import (
	"reflect"
	"testing"
)

func TestExtractHashtags(t *testing.T) {
	got := ExtractHashtags("Sunset #Beach vibes #summer_2026 #beach")
	want := []string{"#Beach", "#summer_2026", "#beach"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractHashtags = %v, want %v", got, want)
	}
	if got = ExtractHashtags("no tags here"); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestExtractTagsDeduplicates(t *testing.T) {
	got := ExtractTags("#Beach #beach #Sun")
	want := []string{"beach", "sun"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ExtractTags = %v, want %v", got, want)
	}
}

func TestEmojis(t *testing.T) {
	text := "Good vibes only! 🌟 Creating my own sunshine ☀️ 😊"
	if n := len(ExtractEmojis(text)); n != 3 {
		t.Fatalf("ExtractEmojis found %d, want 3", n)
	}
	stripped := StripEmojis(text)
	if len(ExtractEmojis(stripped)) != 0 {
		t.Fatalf("emojis left after strip: %q", stripped)
	}
	if stripped != "Good vibes only! Creating my own sunshine" {
		t.Fatalf("StripEmojis = %q", stripped)
	}
}

func TestStripHashtags(t *testing.T) {
	got := StripHashtags("Living my best life ✨ #goodvibes #blessed")
	if got != "Living my best life ✨" {
		t.Fatalf("StripHashtags = %q", got)
	}
}

func TestCounts(t *testing.T) {
	if n := CharCount("héllo 😊"); n != 7 {
		t.Fatalf("CharCount = %d, want 7", n)
	}
	if n := WordCount("  one two\tthree\n"); n != 3 {
		t.Fatalf("WordCount = %d, want 3", n)
	}
}
