// Package normalize converts provider-shaped review payloads into
// canonical Review records, applying text-quality and recency filters.
package normalize

import (
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/change-of-scenery/placesync/internal/model"
	"github.com/change-of-scenery/placesync/pkg/outscraper"
)

// OwnerResponseDelimiter separates the review body from an appended
// owner-response section. The consuming view renders the text as HTML.
const OwnerResponseDelimiter = "<br/><br/><strong>Owner Response</strong><br/><br/>"

const (
	googleDateLayout = "01/02/2006"

	// Sliding acceptance parameters for the Google refresh flow.
	startMinLength   = 50
	minLengthStep    = 10
	maxAccepted      = 5
	maxInspected     = 5 // candidates examined per pass, relevance order
	smallPayloadSize = 6 // below this, the length filter is waived
)

// Google selects up to five reviews from a Google refresh payload.
//
// Candidates are inspected in relevance order with a sliding length
// threshold: a pass accepts bodies longer than the current minimum
// (waived when the provider returned fewer than six candidates), then
// the minimum relaxes by ten per pass until it reaches zero, so short
// reviews are eventually accepted when nothing better exists. A
// permalink is accepted at most once across all passes. The output is
// deterministic for identical input.
func Google(placeID string, reviews []outscraper.GoogleReview, total int) []model.Review {
	var out []model.Review
	seen := make(map[string]struct{})

	for minLength := startMinLength; minLength > 0; minLength -= minLengthStep {
		inspected := 0
		for _, r := range reviews {
			text := googleText(r)

			if (utf8.RuneCountInString(text) > minLength || total < smallPayloadSize) &&
				len(out) < maxAccepted && !accepted(seen, r.Link) {
				rec, ok := googleRecord(placeID, r, text)
				if ok {
					seen[r.Link] = struct{}{}
					out = append(out, rec)
				}
			}

			inspected++
			if inspected == maxInspected {
				break
			}
		}
	}

	return out
}

// GoogleSimple selects up to six reviews in encounter order, keeping
// any body longer than twenty characters. Used for the one-time
// initial load of a place, where relevance ordering and permalink
// de-duplication are not needed.
func GoogleSimple(placeID string, reviews []outscraper.GoogleReview) []model.Review {
	var out []model.Review
	for _, r := range reviews {
		text := googleText(r)
		if utf8.RuneCountInString(text) > 20 && len(out) < 6 {
			rec, ok := googleRecord(placeID, r, text)
			if ok {
				out = append(out, rec)
			}
		}
	}
	return out
}

func googleText(r outscraper.GoogleReview) string {
	text := r.Text
	if r.OwnerAnswer != "" {
		text += OwnerResponseDelimiter + r.OwnerAnswer
	}
	return text
}

func googleRecord(placeID string, r outscraper.GoogleReview, text string) (model.Review, bool) {
	date, err := parseGoogleDate(r.DatetimeUTC)
	if err != nil {
		zap.L().Warn("normalize: dropping google review with bad date",
			zap.String("place_id", placeID),
			zap.String("datetime", r.DatetimeUTC),
			zap.Error(err),
		)
		return model.Review{}, false
	}

	return model.Review{
		Provider:    model.ProviderGoogle,
		PlaceID:     placeID,
		AuthorName:  r.AuthorName,
		AuthorImage: r.AuthorImage,
		Date:        date,
		Rating:      r.Rating,
		Text:        text,
		Link:        r.Link,
	}, true
}

// parseGoogleDate keeps only the calendar-date portion of the provider
// timestamp ("MM/dd/yyyy HH:mm:ss"); Google review rows carry no
// time-of-day.
func parseGoogleDate(s string) (time.Time, error) {
	datePart, _, _ := strings.Cut(s, " ")
	return time.ParseInLocation(googleDateLayout, datePart, time.UTC)
}

func accepted(seen map[string]struct{}, link string) bool {
	_, ok := seen[link]
	return ok
}
