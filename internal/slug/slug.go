// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from titles and names.
package slug

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var (
	// disallowed matches anything that isn't a letter, digit, whitespace, or hyphen.
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespaceRuns collapses any run of whitespace into a single hyphen.
	whitespaceRuns = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
//
// The result only ever contains [a-z0-9-]. Characters outside ASCII
// (accents, CJK, emoji) are dropped, so a title made only of them yields "".
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = disallowed.ReplaceAllString(result, "")
	result = whitespaceRuns.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// FromTitle is Generate with a deterministic fallback for titles that have
// no ASCII letters or digits: "untitled-" followed by a hash of the title.
// The same title always maps to the same slug.
func FromTitle(title string) string {
	if s := Generate(title); s != "" {
		return s
	}
	h := fnv.New32a()
	h.Write([]byte(strings.TrimSpace(title)))
	return fmt.Sprintf("untitled-%08x", h.Sum32())
}
