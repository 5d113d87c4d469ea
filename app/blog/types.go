package blog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Post is a normalized blog post. Values are treated as read-only once
// returned by the Normalizer; callers must not mutate the slices.
type Post struct {
	Slug               string
	Title              string
	Excerpt            string
	Body               []string // always at least one paragraph
	BodyShape          BodyShape
	CoverImage         string
	Category           string
	Theme              string // gradient key resolved from Category
	ReadingTimeMinutes int
	Tags               []string
	SourceURLs         []string
	Author             string
	GeneratedAt        time.Time // zero when absent or unparsable
	Views              *int      // nil means hidden
	Likes              *int
	Comments           *int
}

// BodyShape records which wire form the post body arrived in.
type BodyShape string

const (
	BodyMissing           BodyShape = "missing"
	BodyParagraphs        BodyShape = "paragraphs"
	BodyEncodedParagraphs BodyShape = "encoded_paragraphs"
	BodyText              BodyShape = "text"
)

// RawPost is the wire form of a post as served by the blog API. Fields the
// API is known to send in more than one shape use tolerant types.
type RawPost struct {
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Excerpt            string     `json:"excerpt"`
	Body               RawBody    `json:"body"`
	CoverImage         string     `json:"cover_image"`
	FeaturedImage      string     `json:"featured_image"`
	Category           string     `json:"category"`
	ReadingTime        FlexInt    `json:"reading_time"`
	ReadingTimeMinutes FlexInt    `json:"reading_time_minutes"`
	Tags               StringList `json:"tags"`
	SourceURLs         StringList `json:"source_urls"`
	Author             string     `json:"author"`
	GeneratedAt        string     `json:"generated_at"`
	Views              FlexInt    `json:"views"`
	Likes              FlexInt    `json:"likes"`
	Comments           FlexInt    `json:"comments"`
}

// RawBody keeps the undecoded body so the Normalizer can classify its shape.
type RawBody struct {
	raw json.RawMessage
}

func (b *RawBody) UnmarshalJSON(data []byte) error {
	b.raw = append(b.raw[:0], data...)
	return nil
}

func (b RawBody) MarshalJSON() ([]byte, error) {
	if len(b.raw) == 0 {
		return []byte("null"), nil
	}
	return b.raw, nil
}

// FlexInt accepts a JSON number, a numeric string or null.
type FlexInt struct {
	Value int
	Valid bool
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		data = []byte(s)
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// Unreadable numbers are dropped rather than failing the whole post.
		return nil
	}
	f.Value = int(n)
	f.Valid = true
	return nil
}

// StringList accepts a JSON array (elements are stringified), a single
// string or null. Any other shape decodes to an empty list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	*l = nil

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
		out := make(StringList, 0, len(elems))
		for _, elem := range elems {
			out = append(out, stringify(elem))
		}
		*l = out
		return nil
	default:
		return nil
	}
}

// Envelope is the top-level shape of every blog API response.
type Envelope struct {
	Item  json.RawMessage `json:"item"`
	Items json.RawMessage `json:"items"`
}

func stringify(elem json.RawMessage) string {
	var s string
	if err := json.Unmarshal(elem, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, elem); err != nil {
		return string(elem)
	}
	return buf.String()
}

func isNull(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) == 0 || string(data) == "null"
}
