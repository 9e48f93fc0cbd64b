package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/internal/domain/availability"
	"stayhub/internal/domain/listings"
	"stayhub/internal/domain/payment"
	"stayhub/internal/domain/pricing"
	"stayhub/internal/domain/reservation"
	"stayhub/internal/domain/shared/daterange"
	"stayhub/internal/domain/shared/money"
)

// activeStates are the states that block a listing's dates.
var activeStates = []string{
	string(reservation.StatePending),
	string(reservation.StateAwaitingPayment),
	string(reservation.StateConfirmed),
	string(reservation.StateArrived),
}

type ReservationRepository struct {
	db    *mongo.Database
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) (*ReservationRepository, error) {
	col := db.Collection("agg_reservation")
	idx := mongo.IndexModel{Keys: bson.D{
		{Key: "listing_id", Value: 1},
		{Key: "state", Value: 1},
		{Key: "range.check_in", Value: 1},
	}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, fmt.Errorf("mongo: reservation indexes: %w", err)
	}
	return &ReservationRepository{db: db, col: col, locks: db.Collection("listing_locks")}, nil
}

func (r *ReservationRepository) ByID(ctx context.Context, id reservation.ReservationID) (*reservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save updates the document only when the stored version still matches
// the one the caller loaded, surfacing lost races as ErrVersionConflict.
func (r *ReservationRepository) Save(ctx context.Context, res *reservation.Reservation) error {
	doc := newReservationDocument(res)
	filter := bson.M{"_id": doc.ID, "version": res.Version}
	doc.Version = res.Version + 1
	result, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the id is unknown or the version moved underneath us.
		count, countErr := r.col.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if countErr != nil {
			return countErr
		}
		if count == 0 {
			return reservation.ErrNotFound
		}
		return reservation.ErrVersionConflict
	}
	res.Version = doc.Version
	return nil
}

// CreateIfAvailable runs the overlap check and the insert inside one
// session transaction so two concurrent requests for the same dates
// cannot both commit. This is the storage-level guarantee the engine
// relies on instead of check-then-act in application code.
//
// Snapshot-isolated transactions only abort each other when they write
// the same document; two creates inserting distinct reservations would
// otherwise both count zero overlaps and both commit. Bumping the
// per-listing lock document first gives every writer for a listing a
// common write target: the loser gets a WriteConflict, the driver
// reruns its transaction, and the rerun counts the committed insert.
func (r *ReservationRepository) CreateIfAvailable(ctx context.Context, res *reservation.Reservation) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(r.db.ReadConcern()).
		SetWriteConcern(r.db.WriteConcern())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		lockFilter, lockBump := listingLock(res.ListingID)
		if _, err := r.locks.UpdateOne(sc, lockFilter, lockBump, options.Update().SetUpsert(true)); err != nil {
			return nil, err
		}
		count, err := r.col.CountDocuments(sc, overlapFilter(res.ListingID, res.Range))
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, availability.ErrDateConflict
		}
		doc := newReservationDocument(res)
		doc.Version = 1
		if _, err := r.col.InsertOne(sc, doc); err != nil {
			return nil, err
		}
		return nil, nil
	}, txnOpts)
	if err != nil {
		return err
	}
	res.Version = 1
	return nil
}

// listingLock is the filter and update every create for a listing must
// apply before checking availability. The update is a real document
// modification, which is what makes overlapping transactions conflict.
func listingLock(listingID listings.ListingID) (bson.M, bson.M) {
	return bson.M{"_id": string(listingID)}, bson.M{"$inc": bson.M{"writers": int64(1)}}
}

func (r *ReservationRepository) ListActiveForListing(ctx context.Context, listingID listings.ListingID, dr daterange.DateRange) ([]*reservation.Reservation, error) {
	cursor, err := r.col.Find(ctx, overlapFilter(listingID, dr))
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string) ([]*reservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func (r *ReservationRepository) ListByHost(ctx context.Context, hostID listings.HostID) ([]*reservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"host_id": string(hostID)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

// overlapFilter matches active reservations whose half-open range
// intersects dr: existing.check_in < dr.check_out AND dr.check_in <
// existing.check_out.
func overlapFilter(listingID listings.ListingID, dr daterange.DateRange) bson.M {
	return bson.M{
		"listing_id":      string(listingID),
		"state":           bson.M{"$in": activeStates},
		"range.check_in":  bson.M{"$lt": dr.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": dr.CheckIn.UnixMilli()},
	}
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]*reservation.Reservation, error) {
	defer cursor.Close(ctx)
	var out []*reservation.Reservation
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID             string            `bson:"_id"`
	ListingID      string            `bson:"listing_id"`
	GuestID        string            `bson:"guest_id"`
	HostID         string            `bson:"host_id"`
	Range          rangeDocument     `bson:"range"`
	Guests         int               `bson:"guests"`
	Nightly        moneyDocument     `bson:"nightly"`
	Price          priceDocument     `bson:"price"`
	Plan           planDocument      `bson:"plan"`
	DepositPaid    bool              `bson:"deposit_paid"`
	RemainingPaid  bool              `bson:"remaining_paid"`
	PaymentDueDate int64             `bson:"payment_due_date,omitempty"`
	State          string            `bson:"state"`
	DeclineReason  string            `bson:"decline_reason,omitempty"`
	CancelReason   string            `bson:"cancel_reason,omitempty"`
	RefundPercent  int               `bson:"refund_percent,omitempty"`
	Refund         moneyDocument     `bson:"refund,omitempty"`
	CreatedAt      int64             `bson:"created_at"`
	UpdatedAt      int64             `bson:"updated_at"`
	Version        int64             `bson:"version"`
	History        []historyDocument `bson:"history"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type moneyDocument struct {
	Amount   int64  `bson:"amount"`
	Currency string `bson:"currency"`
}

type priceDocument struct {
	Nights      int           `bson:"nights"`
	Nightly     moneyDocument `bson:"nightly"`
	Subtotal    moneyDocument `bson:"subtotal"`
	ServiceFee  moneyDocument `bson:"service_fee"`
	CleaningFee moneyDocument `bson:"cleaning_fee"`
	Taxes       moneyDocument `bson:"taxes"`
	Total       moneyDocument `bson:"total"`
}

type planDocument struct {
	Kind      string        `bson:"kind"`
	Deposit   moneyDocument `bson:"deposit"`
	Remaining moneyDocument `bson:"remaining"`
	Method    string        `bson:"method"`
}

type historyDocument struct {
	From  string `bson:"from"`
	To    string `bson:"to"`
	Actor string `bson:"actor,omitempty"`
	Note  string `bson:"note,omitempty"`
	At    int64  `bson:"at"`
}

func newReservationDocument(res *reservation.Reservation) reservationDocument {
	history := make([]historyDocument, 0, len(res.History))
	for _, h := range res.History {
		history = append(history, historyDocument{
			From:  string(h.From),
			To:    string(h.To),
			Actor: h.Actor,
			Note:  h.Note,
			At:    h.At.UnixMilli(),
		})
	}
	doc := reservationDocument{
		ID:            string(res.ID),
		ListingID:     string(res.ListingID),
		GuestID:       res.GuestID,
		HostID:        string(res.HostID),
		Range:         rangeDocument{CheckIn: res.Range.CheckIn.UnixMilli(), CheckOut: res.Range.CheckOut.UnixMilli()},
		Guests:        res.Guests,
		Nightly:       toMoneyDoc(res.Nightly),
		Price:         toPriceDoc(res.Price),
		Plan:          planDocument{Kind: string(res.Plan.Kind), Deposit: toMoneyDoc(res.Plan.Deposit), Remaining: toMoneyDoc(res.Plan.Remaining), Method: string(res.Plan.Method)},
		DepositPaid:   res.DepositPaid,
		RemainingPaid: res.RemainingPaid,
		State:         string(res.State),
		DeclineReason: res.DeclineReason,
		CancelReason:  res.CancelReason,
		RefundPercent: res.RefundPercent,
		Refund:        toMoneyDoc(res.Refund),
		CreatedAt:     res.CreatedAt.UnixMilli(),
		UpdatedAt:     res.UpdatedAt.UnixMilli(),
		Version:       res.Version,
		History:       history,
	}
	if !res.PaymentDueDate.IsZero() {
		doc.PaymentDueDate = res.PaymentDueDate.UnixMilli()
	}
	return doc
}

func (d reservationDocument) toAggregate() *reservation.Reservation {
	history := make([]reservation.HistoryEntry, 0, len(d.History))
	for _, h := range d.History {
		history = append(history, reservation.HistoryEntry{
			From:  reservation.State(h.From),
			To:    reservation.State(h.To),
			Actor: h.Actor,
			Note:  h.Note,
			At:    msToTime(h.At),
		})
	}
	res := &reservation.Reservation{
		ID:            reservation.ReservationID(d.ID),
		ListingID:     listings.ListingID(d.ListingID),
		GuestID:       d.GuestID,
		HostID:        listings.HostID(d.HostID),
		Range:         daterange.DateRange{CheckIn: msToTime(d.Range.CheckIn), CheckOut: msToTime(d.Range.CheckOut)},
		Guests:        d.Guests,
		Nightly:       fromMoneyDoc(d.Nightly),
		Price:         fromPriceDoc(d.Price),
		Plan:          payment.Plan{Kind: payment.PlanKind(d.Plan.Kind), Deposit: fromMoneyDoc(d.Plan.Deposit), Remaining: fromMoneyDoc(d.Plan.Remaining), Method: payment.Method(d.Plan.Method)},
		DepositPaid:   d.DepositPaid,
		RemainingPaid: d.RemainingPaid,
		State:         reservation.State(d.State),
		DeclineReason: d.DeclineReason,
		CancelReason:  d.CancelReason,
		RefundPercent: d.RefundPercent,
		Refund:        fromMoneyDoc(d.Refund),
		CreatedAt:     msToTime(d.CreatedAt),
		UpdatedAt:     msToTime(d.UpdatedAt),
		Version:       d.Version,
		History:       history,
	}
	if d.PaymentDueDate != 0 {
		res.PaymentDueDate = msToTime(d.PaymentDueDate)
	}
	return res
}

func toMoneyDoc(m money.Money) moneyDocument {
	return moneyDocument{Amount: m.Amount, Currency: m.Currency}
}

func fromMoneyDoc(d moneyDocument) money.Money {
	return money.Money{Amount: d.Amount, Currency: d.Currency}
}

func toPriceDoc(p pricing.PriceBreakdown) priceDocument {
	return priceDocument{
		Nights:      p.Nights,
		Nightly:     toMoneyDoc(p.Nightly),
		Subtotal:    toMoneyDoc(p.Subtotal),
		ServiceFee:  toMoneyDoc(p.ServiceFee),
		CleaningFee: toMoneyDoc(p.CleaningFee),
		Taxes:       toMoneyDoc(p.Taxes),
		Total:       toMoneyDoc(p.Total),
	}
}

func fromPriceDoc(d priceDocument) pricing.PriceBreakdown {
	return pricing.PriceBreakdown{
		Nights:      d.Nights,
		Nightly:     fromMoneyDoc(d.Nightly),
		Subtotal:    fromMoneyDoc(d.Subtotal),
		ServiceFee:  fromMoneyDoc(d.ServiceFee),
		CleaningFee: fromMoneyDoc(d.CleaningFee),
		Taxes:       fromMoneyDoc(d.Taxes),
		Total:       fromMoneyDoc(d.Total),
	}
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
