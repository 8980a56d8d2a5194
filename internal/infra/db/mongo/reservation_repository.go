package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/daterange"
)

// ReservationRepository serialises writes per cabin: every Add or Update
// first bumps the cabin's lock document inside the caller's transaction, so
// two transactions booking the same cabin cannot both commit.
type ReservationRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	return &ReservationRepository{
		col:   db.Collection(collectionReservations),
		locks: db.Collection(collectionCabinLocks),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservations.ReservationID) (*domainreservations.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservations.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate()
}

func (r *ReservationRepository) Add(ctx context.Context, res *domainreservations.Reservation) error {
	if err := r.guard(ctx, res); err != nil {
		return err
	}
	doc := newReservationDocument(res)
	doc.Version = 1
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreservations.ErrConcurrentUpdate
		}
		return r.translate(err)
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *domainreservations.Reservation) error {
	if err := r.guard(ctx, res); err != nil {
		return err
	}
	doc := newReservationDocument(res)
	doc.Version = res.Version + 1
	out, err := r.col.UpdateOne(ctx, bson.M{"_id": doc.ID, "version": res.Version}, bson.M{"$set": doc})
	if err != nil {
		return r.translate(err)
	}
	if out.MatchedCount == 0 {
		if _, lookupErr := r.ByID(ctx, res.ID); lookupErr != nil {
			return lookupErr
		}
		return domainreservations.ErrConcurrentUpdate
	}
	res.Version = doc.Version
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainreservations.ReservationID) error {
	out, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if out.DeletedCount == 0 {
		return domainreservations.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByCabin(ctx context.Context, cabinID domaincabins.CabinID) ([]*domainreservations.Reservation, error) {
	return r.find(ctx, bson.M{"cabin_id": string(cabinID)})
}

func (r *ReservationRepository) ListOverlapping(ctx context.Context, dr daterange.DateRange) ([]*domainreservations.Reservation, error) {
	return r.find(ctx, overlapFilter(dr))
}

func (r *ReservationRepository) List(ctx context.Context, filter domainreservations.ListFilter) ([]*domainreservations.Reservation, error) {
	q := bson.M{}
	if filter.CabinID != "" {
		q["cabin_id"] = string(filter.CabinID)
	}
	if filter.Status != "" {
		q["status"] = string(filter.Status)
	}
	return r.find(ctx, q)
}

// guard takes the cabin lock and rejects an active reservation that overlaps
// another active one of the same cabin.
func (r *ReservationRepository) guard(ctx context.Context, res *domainreservations.Reservation) error {
	if !res.IsActive() {
		return nil
	}
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": string(res.CabinID)},
		bson.M{"$inc": bson.M{"seq": 1}, "$set": bson.M{"touched_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return r.translate(err)
	}
	q := overlapFilter(res.Range)
	q["cabin_id"] = string(res.CabinID)
	q["_id"] = bson.M{"$ne": string(res.ID)}
	n, err := r.col.CountDocuments(ctx, q, options.Count().SetLimit(1))
	if err != nil {
		return r.translate(err)
	}
	if n > 0 {
		return domainreservations.ErrConflict
	}
	return nil
}

func (r *ReservationRepository) translate(err error) error {
	if isWriteConflict(err) || mongo.IsDuplicateKeyError(err) {
		return domainreservations.ErrConcurrentUpdate
	}
	return err
}

func (r *ReservationRepository) find(ctx context.Context, q bson.M) ([]*domainreservations.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	var docs []reservationDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreservations.Reservation, 0, len(docs))
	for _, d := range docs {
		agg, err := d.toAggregate()
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, nil
}

// overlapFilter selects active reservations with check_in < dr.CheckOut and
// check_out > dr.CheckIn.
func overlapFilter(dr daterange.DateRange) bson.M {
	return bson.M{
		"status":    bson.M{"$ne": string(domainreservations.StatusCancelled)},
		"check_in":  bson.M{"$lt": dr.CheckOut.String()},
		"check_out": bson.M{"$gt": dr.CheckIn.String()},
	}
}

var _ domainreservations.Repository = (*ReservationRepository)(nil)
