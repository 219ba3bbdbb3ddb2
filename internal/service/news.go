package service

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"tredia-investing/internal/domain"
	"tredia-investing/internal/provider"
)

func newsFromContent(item provider.ContentItem, holdings []string, now time.Time) domain.NewsItem {
	summary := item.Excerpt
	if summary == "" {
		summary = item.Title
	}
	return domain.NewsItem{
		Title:   item.Title,
		Summary: summary,
		Time:    formatAge(item.PublishedAt, now),
		Impact:  impactFor(relevanceScore(item.Title+" "+item.Excerpt, holdings)),
		URL:     item.URL,
	}
}

// formatAge renders how long ago t was, in minutes under an hour, hours under
// a day and days beyond that.
func formatAge(t, now time.Time) string {
	hours := now.Sub(t).Hours()
	if hours < 0 {
		hours = 0
	}
	switch {
	case hours < 1:
		return fmt.Sprintf("%d minutes ago", int(math.Round(hours*60)))
	case hours < 24:
		return fmt.Sprintf("%d hours ago", int(math.Round(hours)))
	default:
		return fmt.Sprintf("%d days ago", int(math.Round(hours/24)))
	}
}

// relevanceScore is 0.5 per distinct holding symbol mentioned in text, capped at 1.
func relevanceScore(text string, holdings []string) float64 {
	if len(holdings) == 0 {
		return 0
	}
	tokens := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		tokens[tok] = struct{}{}
	}

	hits := 0
	for _, symbol := range holdings {
		if _, ok := tokens[symbol]; ok {
			hits++
		}
	}
	return math.Min(1, float64(hits)*0.5)
}

func impactFor(score float64) domain.Impact {
	switch {
	case score > 0.7:
		return domain.ImpactHigh
	case score > 0.4:
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}
