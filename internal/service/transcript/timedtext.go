package transcript

import (
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/Taichi-iskw/yt-trend/internal/model"
)

// timedTextDoc covers both timedtext layouts YouTube serves:
// the legacy <transcript><text start dur> and srv3 <timedtext><body><p t d>
type timedTextDoc struct {
	Texts []struct {
		Start float64 `xml:"start,attr"`
		Dur   float64 `xml:"dur,attr"`
		Text  string  `xml:",chardata"`
	} `xml:"text"`
	Paragraphs []struct {
		T     int64  `xml:"t,attr"` // milliseconds
		D     int64  `xml:"d,attr"`
		Inner string `xml:",innerxml"`
	} `xml:"body>p"`
}

var (
	tagRE        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// ParseTimedText parses a timedtext XML document into ordered segments
func ParseTimedText(data []byte) ([]model.TranscriptSegment, error) {
	var doc timedTextDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segments := make([]model.TranscriptSegment, 0, len(doc.Texts)+len(doc.Paragraphs))
	for _, t := range doc.Texts {
		segments = append(segments, model.TranscriptSegment{
			StartTime: t.Start,
			EndTime:   t.Start + t.Dur,
			Text:      cleanCaptionText(t.Text),
		})
	}
	for _, p := range doc.Paragraphs {
		start := float64(p.T) / 1000
		segments = append(segments, model.TranscriptSegment{
			StartTime: start,
			EndTime:   start + float64(p.D)/1000,
			Text:      cleanCaptionText(html.UnescapeString(tagRE.ReplaceAllString(p.Inner, ""))),
		})
	}

	return Normalize(segments), nil
}

// cleanCaptionText removes markup that survives XML decoding (captions often
// carry HTML-escaped <font> tags and entities) and collapses whitespace
func cleanCaptionText(s string) string {
	s = html.UnescapeString(s)
	s = tagRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
