package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelx-service/internal/models"
)

func ptrFloat(v float64) *float64 { return &v }

func ptrTime(t time.Time) *time.Time { return &t }

func TestApplyFiltersByType(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Type: models.PostTypeSell, Title: "Lamp"},
		{ID: 2, Type: models.PostTypeNeed, Title: "Charger"},
		{ID: 3, Type: models.PostTypeNeed, Title: "Bucket"},
	}

	got := Apply(posts, FilterNeed, "", SortTime, time.Now())
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}

func TestApplyDropsExpired(t *testing.T) {
	now := time.Now()
	posts := []models.Post{
		{ID: 1, Type: models.PostTypeSell, ExpiresAt: ptrTime(now.Add(-time.Minute))},
		{ID: 2, Type: models.PostTypeSell, ExpiresAt: ptrTime(now.Add(time.Hour))},
		{ID: 3, Type: models.PostTypeSell},
	}

	got := Apply(posts, FilterAll, "", SortTime, now)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ID)
	assert.Equal(t, 3, got[1].ID)
}

func TestApplyTextSearchMatchesTitleAndDescription(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Type: models.PostTypeSell, Title: "Blue Pen", Description: "barely used"},
		{ID: 2, Type: models.PostTypeSell, Title: "Maggi", Description: "two packs of noodles"},
		{ID: 3, Type: models.PostTypeSell, Title: "Desk lamp", Description: "warm white"},
	}

	assert.Len(t, Apply(posts, FilterAll, "PEN", SortTime, time.Now()), 1)
	assert.Len(t, Apply(posts, FilterAll, "noodles", SortTime, time.Now()), 1)
	assert.Len(t, Apply(posts, FilterAll, "   ", SortTime, time.Now()), 3)
}

func TestSortByPriceTreatsMissingAsZero(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Price: ptrFloat(50)},
		{ID: 2},
		{ID: 3, Price: ptrFloat(10)},
	}

	SortByPrice(posts)
	assert.Equal(t, []int{2, 3, 1}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestSortByPriceStableOnEqualKeys(t *testing.T) {
	posts := []models.Post{
		{ID: 1, Price: ptrFloat(20)},
		{ID: 2},
		{ID: 3, Price: ptrFloat(20)},
		{ID: 4},
	}

	SortByPrice(posts)
	assert.Equal(t, []int{2, 4, 1, 3}, []int{posts[0].ID, posts[1].ID, posts[2].ID, posts[3].ID})
}

func TestFormatRemaining(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name string
		exp  *time.Time
		want string
	}{
		{"no expiry", nil, ""},
		{"exactly one hour", ptrTime(now.Add(time.Hour)), "1h left"},
		{"hours and minutes", ptrTime(now.Add(2*time.Hour + 15*time.Minute)), "2h 15m left"},
		{"under an hour", ptrTime(now.Add(42 * time.Minute)), "42m left"},
		{"under a minute", ptrTime(now.Add(20 * time.Second)), "0m left"},
		{"at expiry", ptrTime(now), "Expired"},
		{"past expiry", ptrTime(now.Add(-time.Second)), "Expired"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatRemaining(tc.exp, now))
		})
	}
}

func TestFormatRemainingScenario(t *testing.T) {
	// sell post expiring one hour out, checked again 61.6 minutes later
	now := time.Unix(1_700_000_000, 0)
	exp := ptrTime(now.Add(3600000 * time.Millisecond))

	assert.Equal(t, "1h left", FormatRemaining(exp, now))
	assert.Equal(t, "Expired", FormatRemaining(exp, now.Add(3650000*time.Millisecond)))
}
