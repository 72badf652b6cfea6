package library

import (
	"strings"
	"unicode"

	"scriptdesk/internal/config"
	models "scriptdesk/internal/domain/models/library"
	librarySvc "scriptdesk/internal/domain/services/library"
)

type contentAnalyzerService struct{}

// NewContentAnalyzer creates a new content analyzer service
func NewContentAnalyzer() librarySvc.ContentAnalyzer {
	return &contentAnalyzerService{}
}

// CountWords counts words in script text after stripping markup
func (s *contentAnalyzerService) CountWords(content string) int {
	text := s.cleanMarkup(content)

	count := 0
	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		if strings.IndexFunc(word, isWordRune) >= 0 {
			count++
		}
	}
	return count
}

// EstimateDuration returns ceil(words / SpokenWordsPerMinute) for spoken
// content without an explicit duration
func (s *contentAnalyzerService) EstimateDuration(script *models.Script) *int {
	if script.Metadata.Duration != nil || !script.Metadata.ContentType.IsSpoken() {
		return nil
	}
	minutes := (script.WordCount + config.SpokenWordsPerMinute - 1) / config.SpokenWordsPerMinute
	return &minutes
}

// cleanMarkup drops notes ([[...]]) and boneyard (/* ... */) sections, which
// are never performed, then the emphasis, heading and transition markers
func (s *contentAnalyzerService) cleanMarkup(text string) string {
	text = removeDelimited(text, "[[", "]]")
	text = removeDelimited(text, "/*", "*/")
	text = removeDelimited(text, "```", "```")

	replacer := strings.NewReplacer(
		"**", " ", "*", " ", "__", " ", "_", " ", "~~", " ",
		"#", " ", ">", " ", "<", " ", "===", " ", "`", " ",
	)
	return replacer.Replace(text)
}

func removeDelimited(text, open, close string) string {
	for {
		start := strings.Index(text, open)
		if start == -1 {
			return text
		}
		end := strings.Index(text[start+len(open):], close)
		if end == -1 {
			return text
		}
		text = text[:start] + " " + text[start+len(open)+end+len(close):]
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
