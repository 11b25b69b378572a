package normalize

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/pkg/outscraper"
)

func yelpReview(text string) outscraper.YelpReview {
	return outscraper.YelpReview{
		Text:        text,
		AuthorName:  "Jordan P.",
		Rating:      4.0,
		DatetimeUTC: "02/05/2023 18:45:12",
	}
}

func TestYelp_KeepsAllReviews(t *testing.T) {
	reviews := []outscraper.YelpReview{
		yelpReview("Tiny."),
		yelpReview(strings.Repeat("a", 100)),
	}

	out := Yelp("yelp-1", reviews)
	require.Len(t, out, 2)
	assert.Equal(t, model.ProviderYelp, out[0].Provider)
	assert.Equal(t, "yelp-1", out[0].PlaceID)
	assert.Empty(t, out[0].Link)
}

func TestYelp_FullTimestamp(t *testing.T) {
	out := Yelp("yelp-1", []outscraper.YelpReview{yelpReview("Solid brunch place.")})
	require.Len(t, out, 1)
	assert.Equal(t, time.Date(2023, 2, 5, 18, 45, 12, 0, time.UTC), out[0].Date)
}

func TestYelp_AppendsOwnerReplies(t *testing.T) {
	r := yelpReview("Lovely patio.")
	r.OwnerReplies = []string{"Thank you!", "Come again soon."}

	out := Yelp("yelp-1", []outscraper.YelpReview{r})
	require.Len(t, out, 1)
	assert.Equal(t,
		"Lovely patio."+OwnerResponseDelimiter+"Thank you!<br/><br/>Come again soon.<br/><br/>",
		out[0].Text,
	)
}

func TestYelp_AuthorImageFromFirstPhoto(t *testing.T) {
	r := yelpReview("Good coffee.")
	r.ReviewPhotos = []string{"https://img/1.jpg", "https://img/2.jpg"}

	out := Yelp("yelp-1", []outscraper.YelpReview{r})
	require.Len(t, out, 1)
	assert.Equal(t, "https://img/1.jpg", out[0].AuthorImage)
}

func TestYelp_DropsUnparseableDate(t *testing.T) {
	r := yelpReview("Good coffee.")
	r.DatetimeUTC = "02/05/2023" // missing time-of-day

	out := Yelp("yelp-1", []outscraper.YelpReview{r})
	assert.Empty(t, out)
}

func TestYelpSimple_LengthAndCapRules(t *testing.T) {
	var reviews []outscraper.YelpReview
	reviews = append(reviews, yelpReview("too short"))
	for i := 0; i < 8; i++ {
		reviews = append(reviews, yelpReview(strings.Repeat("x", 30)))
	}

	out := YelpSimple("yelp-1", reviews)
	assert.Len(t, out, 6)
}
