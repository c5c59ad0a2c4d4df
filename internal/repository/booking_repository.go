package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/staybook/internal/model"
)

// BookingRepo stores bookings in the `bookings` collection.  Bookings
// reference their listing through the `place` field.
type BookingRepo struct{ coll *mongo.Collection }

func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{coll: db.Collection("bookings")}
}

// Create inserts b and assigns its id.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	b.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		b.ID = ""
		return err
	}
	return nil
}

// ListByUser returns the bookings made by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return r.find(ctx, bson.M{"user": userID})
}

// ListByPlace returns every booking of a listing, newest first.
func (r *BookingRepo) ListByPlace(ctx context.Context, placeID string) ([]model.Booking, error) {
	return r.find(ctx, bson.M{"place": placeID})
}

// Delete removes a booking by id.  Deleting a missing booking is not an
// error.
func (r *BookingRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// DeleteByPlace removes all bookings of a listing and reports how many
// were removed.
func (r *BookingRepo) DeleteByPlace(ctx context.Context, placeID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"place": placeID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *BookingRepo) find(ctx context.Context, filter bson.M) ([]model.Booking, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []model.Booking{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
