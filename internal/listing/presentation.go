// Package listing holds the pure presentation logic for marketplace posts:
// snapshot filtering, sorting and remaining-time formatting. It performs no
// I/O so the behavior stays unit-testable apart from any store.
package listing

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"hostelx-service/internal/models"
)

// TypeFilter narrows a snapshot to one listing type.
type TypeFilter string

const (
	FilterAll  TypeFilter = "all"
	FilterNeed TypeFilter = "need"
	FilterSell TypeFilter = "sell"
)

// SortKey selects how a snapshot is ordered.
type SortKey string

const (
	SortTime  SortKey = "time"
	SortPrice SortKey = "price"
)

// Apply runs the full presentation pipeline over a snapshot delivered
// newest-first: drop expired posts, narrow by type, match free text, then
// sort. SortTime keeps the incoming order; SortPrice is a stable ascending
// sort on effective price.
func Apply(posts []models.Post, filter TypeFilter, query string, key SortKey, now time.Time) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.Expired(now) {
			continue
		}
		if !matchesType(p, filter) {
			continue
		}
		if !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	if key == SortPrice {
		SortByPrice(out)
	}
	return out
}

func matchesType(p models.Post, filter TypeFilter) bool {
	return filter == "" || filter == FilterAll || p.Type == string(filter)
}

func matchesQuery(p models.Post, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// SortByPrice orders posts ascending by effective price, in place. The sort
// is stable so posts with equal prices keep their relative recency order.
func SortByPrice(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return EffectivePrice(posts[i]) < EffectivePrice(posts[j])
	})
}

// EffectivePrice treats an absent price as 0 for sorting purposes.
func EffectivePrice(p models.Post) float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// FormatRemaining renders the time left until expiry at minute granularity.
// It returns "" for posts without an expiry and "Expired" once the expiry
// has passed.
func FormatRemaining(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return ""
	}
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "Expired"
	}

	hours := int(diff / time.Hour)
	mins := int((diff % time.Hour) / time.Minute)
	if hours >= 1 {
		if mins > 0 {
			return strconv.Itoa(hours) + "h " + strconv.Itoa(mins) + "m left"
		}
		return strconv.Itoa(hours) + "h left"
	}
	return strconv.Itoa(mins) + "m left"
}
