package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testimonials/testimonials/internal/testimonial"
	"github.com/testimonials/testimonials/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores testimonials in a MongoDB collection. _id holds the hex
// form of a generated ObjectID.
type MongoRepo struct {
	col *mongo.Collection
}

// NewMongoRepo ensures the createdAt index used for newest-first listing.
func NewMongoRepo(ctx context.Context, col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		logger.Warnf("mongo: failed to create createdAt index on %s: %v", col.Name(), err)
	}
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, t *testimonial.Testimonial) error {
	if t.ID == "" {
		t.ID = primitive.NewObjectID().Hex()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	t.UpdatedAt = t.CreatedAt
	if _, err := m.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}
	return nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*testimonial.Testimonial, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find testimonials: %w", err)
	}
	defer cur.Close(ctx)
	out := []*testimonial.Testimonial{}
	for cur.Next(ctx) {
		var t testimonial.Testimonial
		if err := cur.Decode(&t); err != nil {
			return nil, fmt.Errorf("decode testimonial: %w", err)
		}
		out = append(out, &t)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate testimonials: %w", err)
	}
	return out, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*testimonial.Testimonial, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrNotFound
	}
	var t testimonial.Testimonial
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find testimonial %s: %w", id, err)
	}
	return &t, nil
}

func (m *MongoRepo) Update(ctx context.Context, id string, f testimonial.Fields, image *string) (*testimonial.Testimonial, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrNotFound
	}
	set := bson.M{
		"name":      f.Name,
		"message":   f.Message,
		"jobTitle":  f.JobTitle,
		"company":   f.Company,
		"updatedAt": time.Now().UTC(),
	}
	if image != nil {
		set["image"] = *image
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before testimonial.Testimonial
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update testimonial %s: %w", id, err)
	}
	return &before, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) (*testimonial.Testimonial, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, ErrNotFound
	}
	var t testimonial.Testimonial
	if err := m.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete testimonial %s: %w", id, err)
	}
	return &t, nil
}
