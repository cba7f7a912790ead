package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"verum/academy-app/internal/domain"
	"verum/academy-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const awardCollectionName = "awards"

// mongoAwardRepository implements the repository.AwardRepository interface using MongoDB.
type mongoAwardRepository struct {
	collection *mongo.Collection
}

func NewMongoAwardRepository(db *mongo.Database) repository.AwardRepository {
	return &mongoAwardRepository{
		collection: db.Collection(awardCollectionName),
	}
}

func (r *mongoAwardRepository) Create(ctx context.Context, award *domain.Award) (primitive.ObjectID, error) {
	if award.UserID == primitive.NilObjectID || award.Title == "" {
		return primitive.NilObjectID, errors.New("award recipient and title are required")
	}

	award.ID = primitive.NewObjectID()
	award.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, award)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoAwardRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Award, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var awards []domain.Award
	if err = cursor.All(ctx, &awards); err != nil {
		return nil, err
	}
	return awards, nil
}

func (r *mongoAwardRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAwardIndexes creates necessary indexes for the awards collection.
func EnsureAwardIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
