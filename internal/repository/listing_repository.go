// Package repository contains data access logic separated from HTTP handlers.
// This file stores listings ("places") in the `places` collection.  Ids are
// hex ObjectIDs generated on insert, so sorting by _id orders listings by
// creation time.
package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/staybook/internal/model"
)

// ListingRepo encapsulates all queries related to listings.
type ListingRepo struct {
	coll *mongo.Collection
}

// NewListingRepo constructs a ListingRepo on the given database.
func NewListingRepo(db *mongo.Database) *ListingRepo {
	return &ListingRepo{coll: db.Collection("places")}
}

// Create inserts a new listing and populates its ID.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	l.ID = primitive.NewObjectID().Hex()
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		l.ID = ""
		return err
	}
	return nil
}

// GetByID fetches a listing regardless of owner.  It returns
// ErrNotFound if no document matches.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (model.Listing, error) {
	var l model.Listing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Listing{}, ErrNotFound
		}
		return model.Listing{}, err
	}
	return l, nil
}

// GetByIDs resolves many listings with a single $in query.  Ids that do
// not exist are silently absent from the result.
func (r *ListingRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Listing, error) {
	if len(ids) == 0 {
		return []model.Listing{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// List returns one page of listings, newest first.
func (r *ListingRepo) List(ctx context.Context, page model.Page) ([]model.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))
	return r.find(ctx, bson.M{}, opts)
}

// ListByOwner returns every listing owned by ownerID, newest first.
func (r *ListingRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{"owner": ownerID}, opts)
}

// Update replaces the stored listing with l.  Ownership must be checked
// by the caller.
func (r *ListingRepo) Update(ctx context.Context, l model.Listing) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the listing document only.  Dependent bookings and
// photos are handled by the service layer.
func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ListingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Listing, error) {
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = r.coll.Find(ctx, filter, opts)
	} else {
		cur, err = r.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	out := []model.Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
