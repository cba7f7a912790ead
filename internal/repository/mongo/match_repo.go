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

const matchCollectionName = "matches"

// mongoMatchRepository implements the repository.MatchRepository interface using MongoDB.
type mongoMatchRepository struct {
	collection *mongo.Collection
}

func NewMongoMatchRepository(db *mongo.Database) repository.MatchRepository {
	return &mongoMatchRepository{
		collection: db.Collection(matchCollectionName),
	}
}

// Create inserts a new fixture.
func (r *mongoMatchRepository) Create(ctx context.Context, event *domain.MatchEvent) (primitive.ObjectID, error) {
	if event.UserID == primitive.NilObjectID || event.Opponent == "" || event.Date == "" {
		return primitive.NilObjectID, errors.New("match owner, opponent, and date are required")
	}

	event.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

func (r *mongoMatchRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MatchEvent, error) {
	var event domain.MatchEvent
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (r *mongoMatchRepository) find(ctx context.Context, filter bson.M) ([]domain.MatchEvent, error) {
	// No order-by here: date+time ordering would need a composite index,
	// so the service layer sorts in-process.
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []domain.MatchEvent
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *mongoMatchRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MatchEvent, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoMatchRepository) GetAll(ctx context.Context) ([]domain.MatchEvent, error) {
	return r.find(ctx, bson.M{})
}

// Update replaces the mutable fields of a fixture.
func (r *mongoMatchRepository) Update(ctx context.Context, event *domain.MatchEvent) error {
	if event.ID == primitive.NilObjectID {
		return errors.New("match ID is required for update")
	}
	event.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"opponent":   event.Opponent,
		"date":       event.Date,
		"time":       event.Time,
		"location":   event.Location,
		"type":       event.Type,
		"homeOrAway": event.HomeOrAway,
		"status":     event.Status,
		"result":     event.Result,
		"userStats":  event.UserStats,
		"updatedAt":  event.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": event.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMatchRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMatchRepository) SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MatchEvent)) (repository.CancelFunc, error) {
	return watchCollection(ctx, r.collection, nil, func(c context.Context) {
		events, err := r.GetByUserID(c, userID)
		if err != nil {
			if c.Err() == nil {
				log.Printf("WARN: agenda snapshot failed: %v", err)
			}
			return
		}
		fn(events)
	})
}

// EnsureMatchIndexes creates necessary indexes for the matches collection.
func EnsureMatchIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
