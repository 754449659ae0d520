package services

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer strips unsafe markup from user-authored note bodies.
type ContentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer allows the UGC subset (headings, lists, links, images,
// code, tables) and forces rel="nofollow noopener" on links.
func NewContentSanitizer() *ContentSanitizer {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return &ContentSanitizer{policy: p}
}

func (s *ContentSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

// SanitizeText removes all markup, for single-line fields like titles.
func (s *ContentSanitizer) SanitizeText(raw string) string {
	return strings.TrimSpace(bluemonday.StrictPolicy().Sanitize(raw))
}
