// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"sync"

	"inkwell/internal/models"
)

// Ticket identifies one issued list request.
type Ticket uint64

// ListState holds the article list a view is showing while filters change.
// Each fetch takes a ticket from Begin; Resolve applies only the result of
// the most recently issued ticket, so a slow earlier request can never
// overwrite a later one. A failed fetch sets LoadFailed and keeps the
// previous articles.
type ListState struct {
	mu         sync.Mutex
	issued     Ticket
	applied    Ticket
	articles   []models.ArticleView
	loadFailed bool
}

// Begin issues the ticket for a new fetch.
func (s *ListState) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Resolve applies the outcome of the fetch holding t. It reports whether
// the outcome was applied; stale tickets are discarded.
func (s *ListState) Resolve(t Ticket, articles []models.ArticleView, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.issued || t <= s.applied {
		return false
	}
	s.applied = t
	if err != nil {
		s.loadFailed = true
		return true
	}
	s.loadFailed = false
	s.articles = articles
	return true
}

// Articles returns the last applied list.
func (s *ListState) Articles() []models.ArticleView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articles
}

// LoadFailed reports whether the latest applied fetch failed.
func (s *ListState) LoadFailed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadFailed
}
