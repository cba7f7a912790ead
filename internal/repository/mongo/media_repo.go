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

const mediaCollectionName = "media"

// mongoMediaRepository implements the repository.MediaRepository interface using MongoDB.
type mongoMediaRepository struct {
	collection *mongo.Collection
}

func NewMongoMediaRepository(db *mongo.Database) repository.MediaRepository {
	return &mongoMediaRepository{
		collection: db.Collection(mediaCollectionName),
	}
}

// Create inserts a new media item.
func (r *mongoMediaRepository) Create(ctx context.Context, item *domain.MediaItem) (primitive.ObjectID, error) {
	if item.UserID == primitive.NilObjectID || item.Title == "" {
		return primitive.NilObjectID, errors.New("media owner and title are required")
	}

	item.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single media item.
func (r *mongoMediaRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MediaItem, error) {
	var item domain.MediaItem
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// find runs a filter and decodes all matching items. Results carry no
// ordering guarantee; callers sort in-process.
func (r *mongoMediaRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]domain.MediaItem, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []domain.MediaItem
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetByUserID retrieves all of one owner's items, any status.
func (r *mongoMediaRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MediaItem, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

// GetPending retrieves the review queue.
func (r *mongoMediaRepository) GetPending(ctx context.Context) ([]domain.MediaItem, error) {
	return r.find(ctx, bson.M{"status": domain.StatusPending})
}

// GetRecent retrieves publicly visible items for the global feed, capped
// at limit. The store-side sort narrows the fetch; the feed layer still
// re-sorts in-process before presenting.
func (r *mongoMediaRepository) GetRecent(ctx context.Context, limit int) ([]domain.MediaItem, error) {
	filter := bson.M{"status": bson.M{"$in": bson.A{domain.StatusApproved, domain.StatusFeatured}}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}

// Update replaces the mutable fields of an existing item.
func (r *mongoMediaRepository) Update(ctx context.Context, item *domain.MediaItem) error {
	if item.ID == primitive.NilObjectID {
		return errors.New("media ID is required for update")
	}
	item.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"title":         item.Title,
		"category":      item.Category,
		"status":        item.Status,
		"coachRating":   item.CoachRating,
		"coachFeedback": item.CoachFeedback,
		"reviewedAt":    item.ReviewedAt,
		"views":         item.Views,
		"updatedAt":     item.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddLike adds userID to the likes set.
func (r *mongoMediaRepository) AddLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	update := bson.M{"$addToSet": bson.M{"likes": userID}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": mediaID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// RemoveLike removes userID from the likes set.
func (r *mongoMediaRepository) RemoveLike(ctx context.Context, mediaID, userID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"likes": userID}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": mediaID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// IncrementComments bumps the denormalized comment counter.
func (r *mongoMediaRepository) IncrementComments(ctx context.Context, mediaID primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"commentsCount": 1}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": mediaID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMediaRepository) subscribe(ctx context.Context, fn func([]domain.MediaItem), query func(context.Context) ([]domain.MediaItem, error)) (repository.CancelFunc, error) {
	return watchCollection(ctx, r.collection, nil, func(c context.Context) {
		items, err := query(c)
		if err != nil {
			if c.Err() == nil {
				log.Printf("WARN: media snapshot failed: %v", err)
			}
			return
		}
		fn(items)
	})
}

func (r *mongoMediaRepository) SubscribeRecent(ctx context.Context, limit int, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	return r.subscribe(ctx, fn, func(c context.Context) ([]domain.MediaItem, error) {
		return r.GetRecent(c, limit)
	})
}

func (r *mongoMediaRepository) SubscribeByUser(ctx context.Context, userID primitive.ObjectID, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	return r.subscribe(ctx, fn, func(c context.Context) ([]domain.MediaItem, error) {
		return r.GetByUserID(c, userID)
	})
}

func (r *mongoMediaRepository) SubscribePending(ctx context.Context, fn func([]domain.MediaItem)) (repository.CancelFunc, error) {
	return r.subscribe(ctx, fn, func(c context.Context) ([]domain.MediaItem, error) {
		return r.GetPending(c)
	})
}

// EnsureMediaIndexes creates necessary indexes for the media collection.
func EnsureMediaIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
