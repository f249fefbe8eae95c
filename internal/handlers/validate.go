package handlers

import (
	"unicode/utf8"

	"inkwell/internal/content"
	"inkwell/internal/models"
)

// Length limits applied before input reaches the editor.
const (
	maxTitleLen       = 300
	maxSubtitleLen    = 300
	maxBodyLen        = 100_000
	maxExcerptLen     = 1_000
	maxReadingTime    = 600
	maxNameLen        = 100
	maxDescriptionLen = 1_000
	maxEmailLen       = 320
	maxSubjectLen     = 300
	maxMessageLen     = 5_000
)

type limit struct {
	field, value, message string
	max                   int
}

func checkLimits(limits ...limit) error {
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return &content.ValidationError{Field: l.field, Message: l.message}
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// validateArticle bounds the article fields. Required-field checks happen
// in the editor.
func validateArticle(in models.ArticleInput) error {
	if in.ReadingTime < 0 || in.ReadingTime > maxReadingTime {
		return &content.ValidationError{Field: "reading_time", Message: "Reading time must be between 0 and 600 minutes"}
	}
	return checkLimits(
		limit{"title", in.Title, "Title is too long (max 300 characters)", maxTitleLen},
		limit{"subtitle", deref(in.Subtitle), "Subtitle is too long (max 300 characters)", maxSubtitleLen},
		limit{"excerpt", deref(in.Excerpt), "Excerpt is too long (max 1,000 characters)", maxExcerptLen},
		limit{"content", in.Content, "Content is too long (max 100,000 characters)", maxBodyLen},
	)
}

func validateCategory(in models.CategoryInput) error {
	return checkLimits(
		limit{"name", in.Name, "Name is too long (max 100 characters)", maxNameLen},
		limit{"slug", in.Slug, "Slug is too long (max 100 characters)", maxNameLen},
		limit{"description", deref(in.Description), "Description is too long (max 1,000 characters)", maxDescriptionLen},
	)
}

func validateTag(name string) error {
	return checkLimits(limit{"name", name, "Name is too long (max 100 characters)", maxNameLen})
}

func validateContact(s models.ContactSubmission) error {
	return checkLimits(
		limit{"name", s.Name, "Name is too long (max 100 characters)", maxNameLen},
		limit{"email", s.Email, "Email is too long", maxEmailLen},
		limit{"subject", deref(s.Subject), "Subject is too long (max 300 characters)", maxSubjectLen},
		limit{"message", s.Message, "Message is too long (max 5,000 characters)", maxMessageLen},
	)
}
