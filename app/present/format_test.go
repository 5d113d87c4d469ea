package present

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	time.Local = time.UTC
	os.Exit(m.Run())
}

func TestDates(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	if got := ShortDate(ts); got != "Mar 5, 2024" {
		t.Errorf("Expected short date 'Mar 5, 2024', got '%s'", got)
	}
	if got := LongDate(ts); got != "March 5, 2024" {
		t.Errorf("Expected long date 'March 5, 2024', got '%s'", got)
	}
	if got := ShortDate(time.Time{}); got != "" {
		t.Errorf("Expected empty short date for zero time, got '%s'", got)
	}
	if got := LongDate(time.Time{}); got != "" {
		t.Errorf("Expected empty long date for zero time, got '%s'", got)
	}
}

func TestCount(t *testing.T) {
	tests := map[int]string{
		0:       "0",
		999:     "999",
		1500:    "1,500",
		1234567: "1,234,567",
	}

	for n, expected := range tests {
		if got := Count(n); got != expected {
			t.Errorf("Expected Count(%d) = '%s', got '%s'", n, expected, got)
		}
	}
}

func TestCardTags(t *testing.T) {
	tags, more := CardTags([]string{"saas", "growth", "ai", "seed", "b2b"})

	expected := []string{"SAAS", "GROWTH", "AI"}
	if !reflect.DeepEqual(tags, expected) {
		t.Errorf("Expected tags %v, got %v", expected, tags)
	}
	if more != 2 {
		t.Errorf("Expected 2 hidden tags, got %d", more)
	}

	tags, more = CardTags(nil)
	if len(tags) != 0 || more != 0 {
		t.Errorf("Expected no tags, got %v (+%d)", tags, more)
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		author   string
		expected string
	}{
		{"", "A"},
		{"Jane", "J"},
		{"Jane Founder", "JF"},
		{"Jane  Q Founder", "JQ"},
		{"émile zola", "éz"},
	}

	for _, tt := range tests {
		if got := Initials(tt.author); got != tt.expected {
			t.Errorf("Expected initials of '%s' to be '%s', got '%s'", tt.author, tt.expected, got)
		}
	}
}

func TestCategoryLabel(t *testing.T) {
	if got := CategoryLabel(""); got != "ARTICLE" {
		t.Errorf("Expected 'ARTICLE', got '%s'", got)
	}
	if got := CategoryLabel("Technology"); got != "TECHNOLOGY" {
		t.Errorf("Expected 'TECHNOLOGY', got '%s'", got)
	}
}
