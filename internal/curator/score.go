package curator

import (
	"fmt"
	"strings"

	"github.com/pcannon/curio/internal/config"
)

const (
	baseScore        = 70
	shortTextPenalty = 25
	popularityFloor  = 1000
	popularityCap    = 10
)

// Score computes an item's confidence. It is pure and deterministic:
// identical input always yields the identical score, which the duplicate
// resolver relies on for tie-breaking. Missing optional fields (page count,
// publisher, description) are scoring-neutral.
func Score(item Item, cfg config.FilterConfig) Confidence {
	score := baseScore

	var reasons []string

	text := strings.ToLower(item.Title + " " + item.Description)

	// Page count signals only apply to text items with a known count.
	if item.Mediatype == "texts" && item.PageCount > 0 {
		switch {
		case item.PageCount < cfg.MinPages:
			score -= shortTextPenalty
			reasons = append(reasons, fmt.Sprintf("-%d: only %d pages (min: %d)", shortTextPenalty, item.PageCount, cfg.MinPages))
		case item.PageCount > cfg.PageBonusThreshold:
			score += cfg.PageBonusPoints
			reasons = append(reasons, fmt.Sprintf("+%d: %d pages (substantial work)", cfg.PageBonusPoints, item.PageCount))
		}
	}

	if pattern, ok := matchPattern(text, cfg.AcademicPatterns); ok {
		score -= cfg.AcademicPenalty
		reasons = append(reasons, fmt.Sprintf("-%d: academic pattern: %q", cfg.AcademicPenalty, pattern))
	}

	if item.Mediatype == "audio" {
		if pattern, ok := matchPattern(text, cfg.InterviewPatterns); ok {
			score -= cfg.InterviewPenalty
			reasons = append(reasons, fmt.Sprintf("-%d: interview pattern: %q", cfg.InterviewPenalty, pattern))
		}

		if pattern, ok := matchPattern(text, cfg.LivePatterns); ok {
			score -= cfg.LivePenalty
			reasons = append(reasons, fmt.Sprintf("-%d: live recording pattern: %q", cfg.LivePenalty, pattern))
		}
	}

	publisher := strings.ToLower(item.Publisher)
	for _, trusted := range cfg.TrustedPublishers {
		if trusted != "" && strings.Contains(publisher, strings.ToLower(trusted)) {
			score += cfg.PublisherBonus
			reasons = append(reasons, fmt.Sprintf("+%d: trusted publisher: %s", cfg.PublisherBonus, trusted))

			break
		}
	}

	for _, coll := range item.Collections {
		if containsString(cfg.TrustedCollections, coll) {
			score += cfg.CollectionBonus
			reasons = append(reasons, fmt.Sprintf("+%d: trusted collection: %s", cfg.CollectionBonus, coll))

			break
		}
	}

	if preferred := cfg.PreferredFormats[item.Mediatype]; len(preferred) > 0 {
		for _, format := range item.Formats {
			if containsString(preferred, format) {
				score += cfg.FormatBonus
				reasons = append(reasons, fmt.Sprintf("+%d: preferred format: %s", cfg.FormatBonus, format))

				break
			}
		}
	}

	if item.Downloads >= popularityFloor {
		bonus := int(item.Downloads / popularityFloor)
		if bonus > popularityCap {
			bonus = popularityCap
		}

		score += bonus
		reasons = append(reasons, fmt.Sprintf("+%d: popular (%d downloads)", bonus, item.Downloads))
	}

	if score < 0 {
		score = 0
	}

	if score > 100 {
		score = 100
	}

	return Confidence{
		Score:   score,
		Reasons: reasons,
		Passes:  score >= cfg.MinConfidence,
	}
}

// matchPattern reports the first pattern found as a case-insensitive
// substring of text. Each rule table penalizes at most once.
func matchPattern(text string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(text, strings.ToLower(pattern)) {
			return pattern, true
		}
	}

	return "", false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}

	return false
}
