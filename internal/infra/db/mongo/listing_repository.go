package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/listings"
)

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection("listings")}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	var doc listingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, listings.ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *ListingRepository) Save(ctx context.Context, listing *listings.Listing) error {
	if err := listing.Validate(); err != nil {
		return err
	}
	doc := listingDocument{
		ID:               string(listing.ID),
		Host:             string(listing.Host),
		Title:            listing.Title,
		MaxGuests:        listing.MaxGuests,
		NightlyRateCents: listing.NightlyRateCents,
		Currency:         listing.Currency,
		Active:           listing.Active,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

type listingDocument struct {
	ID               string `bson:"_id"`
	Host             string `bson:"host"`
	Title            string `bson:"title"`
	MaxGuests        int    `bson:"max_guests"`
	NightlyRateCents int64  `bson:"nightly_rate_cents"`
	Currency         string `bson:"currency"`
	Active           bool   `bson:"active"`
}

func (d listingDocument) toModel() *listings.Listing {
	return &listings.Listing{
		ID:               listings.ListingID(d.ID),
		Host:             listings.HostID(d.Host),
		Title:            d.Title,
		MaxGuests:        d.MaxGuests,
		NightlyRateCents: d.NightlyRateCents,
		Currency:         d.Currency,
		Active:           d.Active,
	}
}
