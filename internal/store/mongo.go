package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/change-of-scenery/placesync/internal/model"
)

const (
	collectionPlaces  = "places"
	collectionReviews = "reviews"
)

// MongoStore implements Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, eris.Wrap(err, "store: connect mongo")
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, eris.Wrap(err, "store: ping mongo")
	}

	return &MongoStore{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (s *MongoStore) places() *mongo.Collection  { return s.db.Collection(collectionPlaces) }
func (s *MongoStore) reviews() *mongo.Collection { return s.db.Collection(collectionReviews) }

// ListPlacesByArea returns every place whose area equals the given name.
func (s *MongoStore) ListPlacesByArea(ctx context.Context, area string) ([]model.Place, error) {
	cur, err := s.places().Find(ctx, bson.M{"area": area})
	if err != nil {
		return nil, eris.Wrapf(err, "store: list places for area %s", area)
	}
	defer cur.Close(ctx)

	var places []model.Place
	if err := cur.All(ctx, &places); err != nil {
		return nil, eris.Wrap(err, "store: decode places")
	}
	return places, nil
}

// ListAreas returns the distinct area names across all places.
func (s *MongoStore) ListAreas(ctx context.Context) ([]string, error) {
	raw, err := s.places().Distinct(ctx, "area", bson.M{})
	if err != nil {
		return nil, eris.Wrap(err, "store: list areas")
	}

	areas := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok && name != "" {
			areas = append(areas, name)
		}
	}
	return areas, nil
}

// GetPlaceByName returns the place with the given display name.
func (s *MongoStore) GetPlaceByName(ctx context.Context, name string) (*model.Place, error) {
	var place model.Place
	err := s.places().FindOne(ctx, bson.M{"name": name}).Decode(&place)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get place %s", name)
	}
	return &place, nil
}

// UpdatePlaceGoogleData writes the Google-sourced place fields.
func (s *MongoStore) UpdatePlaceGoogleData(ctx context.Context, id string, d model.GoogleData) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	res, err := s.places().UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"website":        d.Website,
		"address":        d.Address,
		"location":       d.Location,
		"description":    d.Description,
		"phone":          d.Phone,
		"google_rating":  d.Rating,
		"google_reviews": d.Reviews,
		"hours":          d.Hours,
	}})
	if err != nil {
		return eris.Wrapf(err, "store: update google data for place %s", id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePlaceYelpData writes the Yelp-sourced place fields.
func (s *MongoStore) UpdatePlaceYelpData(ctx context.Context, id string, d model.YelpData) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	res, err := s.places().UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"yelp_rating":   d.Rating,
		"yelp_reviews":  d.Reviews,
		"phone":         d.Phone,
		"yelp_price":    d.Price,
		"yelp_url":      d.URL,
		"yelp_category": d.Category,
	}})
	if err != nil {
		return eris.Wrapf(err, "store: update yelp data for place %s", id)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReviews removes every review for the (provider, place) pair
// and returns how many were removed.
func (s *MongoStore) DeleteReviews(ctx context.Context, provider model.Provider, placeID string) (int, error) {
	res, err := s.reviews().DeleteMany(ctx, bson.M{
		"provider": provider,
		"place_id": placeID,
	})
	if err != nil {
		return 0, eris.Wrapf(err, "store: delete %s reviews for %s", provider, placeID)
	}
	return int(res.DeletedCount), nil
}

// InsertReview adds one review document.
func (s *MongoStore) InsertReview(ctx context.Context, review model.Review) error {
	review.ID = "" // let the driver assign an object id
	if _, err := s.reviews().InsertOne(ctx, review); err != nil {
		return eris.Wrapf(err, "store: insert %s review for %s", review.Provider, review.PlaceID)
	}
	return nil
}

// ListReviews returns the stored reviews for the (provider, place)
// pair, newest first.
func (s *MongoStore) ListReviews(ctx context.Context, provider model.Provider, placeID string) ([]model.Review, error) {
	cur, err := s.reviews().Find(ctx,
		bson.M{"provider": provider, "place_id": placeID},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "store: list %s reviews for %s", provider, placeID)
	}
	defer cur.Close(ctx)

	var reviews []model.Review
	if err := cur.All(ctx, &reviews); err != nil {
		return nil, eris.Wrap(err, "store: decode reviews")
	}
	return reviews, nil
}

// Ping verifies the connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// idFilter matches a document id whether it is a raw object id or a
// plain string key (the curated place data uses both).
func idFilter(id string) (bson.M, error) {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": oid}, nil
	}
	if id == "" {
		return nil, eris.New("store: empty document id")
	}
	return bson.M{"_id": id}, nil
}
