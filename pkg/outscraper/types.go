package outscraper

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Field lists accepted by the maps/reviews-v3 endpoint.
var (
	// GooglePlaceFields requests place metadata without review bodies.
	GooglePlaceFields = []string{
		"status", "id", "name", "site", "street", "phone",
		"latitude", "longitude", "type", "working_hours",
		"rating", "reviews",
	}

	// GoogleReviewFields requests review bodies only.
	GoogleReviewFields = []string{"status", "id", "name", "reviews_data"}
)

// GooglePlace is one element of a Success payload from maps/reviews-v3.
type GooglePlace struct {
	Name         string            `json:"name"`
	Site         string            `json:"site"`
	Street       string            `json:"street"`
	Phone        string            `json:"phone"`
	Latitude     float64           `json:"latitude"`
	Longitude    float64           `json:"longitude"`
	Type         string            `json:"type"`
	WorkingHours map[string]string `json:"working_hours"`
	Rating       float64           `json:"rating"`
	Reviews      int               `json:"reviews"`
	ReviewsData  []GoogleReview    `json:"reviews_data"`
}

// GoogleReview is one review candidate in relevance order.
type GoogleReview struct {
	Text        string  `json:"review_text"`
	OwnerAnswer string  `json:"owner_answer"`
	Link        string  `json:"review_link"`
	AuthorName  string  `json:"author_title"`
	AuthorImage string  `json:"author_image"`
	Rating      float64 `json:"review_rating"`
	DatetimeUTC string  `json:"review_datetime_utc"` // "MM/dd/yyyy HH:mm:ss"
}

// YelpReview is one review from the yelp/reviews endpoint.
type YelpReview struct {
	Text         string   `json:"review_text"`
	OwnerReplies []string `json:"owner_replies"`
	AuthorName   string   `json:"author_title"`
	ReviewPhotos []string `json:"review_photos"`
	Rating       float64  `json:"review_rating"`
	DatetimeUTC  string   `json:"datetime_utc"` // "MM/dd/yyyy HH:mm:ss"
}

// DecodeGooglePlaces decodes a Success payload from maps/reviews-v3.
// The data element is an array of place objects; queries by place id
// return at most one.
func DecodeGooglePlaces(resp *Response) ([]GooglePlace, error) {
	if resp == nil || resp.Status != StatusSuccess {
		return nil, eris.New("outscraper: response is not a success payload")
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	var places []GooglePlace
	if err := json.Unmarshal(resp.Data, &places); err != nil {
		return nil, eris.Wrap(err, "outscraper: decode google places")
	}
	return places, nil
}

// DecodeYelpReviews decodes a Success payload from yelp/reviews. The
// data element is an array whose first entry is the review array for
// the queried business.
func DecodeYelpReviews(resp *Response) ([]YelpReview, error) {
	if resp == nil || resp.Status != StatusSuccess {
		return nil, eris.New("outscraper: response is not a success payload")
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	var groups [][]YelpReview
	if err := json.Unmarshal(resp.Data, &groups); err != nil {
		return nil, eris.Wrap(err, "outscraper: decode yelp reviews")
	}
	if len(groups) == 0 {
		return nil, nil
	}
	return groups[0], nil
}
