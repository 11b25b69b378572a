package normalize

import (
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/pkg/outscraper"
)

const yelpDateLayout = "01/02/2006 15:04:05"

// Yelp converts a Yelp refresh payload. Every review with a parseable
// timestamp is kept; the fetch request already caps the payload at the
// provider, so no length filter applies here.
func Yelp(placeID string, reviews []outscraper.YelpReview) []model.Review {
	var out []model.Review
	for _, r := range reviews {
		rec, ok := yelpRecord(placeID, r)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

// YelpSimple selects up to six reviews in encounter order, keeping any
// body longer than twenty characters. Used for the one-time initial
// load of a place.
func YelpSimple(placeID string, reviews []outscraper.YelpReview) []model.Review {
	var out []model.Review
	for _, r := range reviews {
		if utf8.RuneCountInString(yelpText(r)) > 20 && len(out) < 6 {
			rec, ok := yelpRecord(placeID, r)
			if ok {
				out = append(out, rec)
			}
		}
	}
	return out
}

func yelpText(r outscraper.YelpReview) string {
	text := r.Text
	if len(r.OwnerReplies) > 0 {
		text += OwnerResponseDelimiter
		for _, reply := range r.OwnerReplies {
			text += reply + "<br/><br/>"
		}
	}
	return text
}

func yelpRecord(placeID string, r outscraper.YelpReview) (model.Review, bool) {
	// Yelp timestamps carry the full time-of-day.
	date, err := time.ParseInLocation(yelpDateLayout, r.DatetimeUTC, time.UTC)
	if err != nil {
		zap.L().Warn("normalize: dropping yelp review with bad date",
			zap.String("place_id", placeID),
			zap.String("datetime", r.DatetimeUTC),
			zap.Error(err),
		)
		return model.Review{}, false
	}

	authorImage := ""
	if len(r.ReviewPhotos) > 0 {
		authorImage = r.ReviewPhotos[0]
	}

	return model.Review{
		Provider:    model.ProviderYelp,
		PlaceID:     placeID,
		AuthorName:  r.AuthorName,
		AuthorImage: authorImage,
		Date:        date,
		Rating:      r.Rating,
		Text:        yelpText(r),
	}, true
}
