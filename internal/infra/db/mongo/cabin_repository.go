package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincabins "cabinrent/internal/domain/cabins"
)

type CabinRepository struct {
	col *mongo.Collection
}

func NewCabinRepository(db *mongo.Database) *CabinRepository {
	return &CabinRepository{col: db.Collection(collectionCabins)}
}

func (r *CabinRepository) ByID(ctx context.Context, id domaincabins.CabinID) (*domaincabins.Cabin, error) {
	var doc cabinDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domaincabins.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *CabinRepository) List(ctx context.Context) ([]*domaincabins.Cabin, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []cabinDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domaincabins.Cabin, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toAggregate())
	}
	domaincabins.SortByName(out)
	return out, nil
}

// Save upserts with an optimistic version filter.
func (r *CabinRepository) Save(ctx context.Context, c *domaincabins.Cabin) error {
	doc := newCabinDocument(c)
	filter := bson.M{"_id": doc.ID, "version": c.Version}
	doc.Version = c.Version + 1
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domaincabins.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return domaincabins.ErrConcurrentUpdate
	}
	c.Version = doc.Version
	return nil
}

func (r *CabinRepository) Delete(ctx context.Context, id domaincabins.CabinID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domaincabins.ErrNotFound
	}
	return nil
}

var _ domaincabins.Repository = (*CabinRepository)(nil)
