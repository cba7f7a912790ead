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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user profile into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.UserProfile) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("user with this email already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user profile by email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	var user domain.UserProfile
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user profile by its ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.UserProfile, error) {
	var user domain.UserProfile
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListByRole retrieves all profiles with the given role.
func (r *mongoUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.UserProfile, error) {
	filter := bson.M{"role": role}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []domain.UserProfile
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateFields applies a partial update to one profile document.
func (r *mongoUserRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// addToSet adds value to an array field of one profile. $addToSet keeps
// the array a set even though the store does not enforce uniqueness.
func (r *mongoUserRepository) addToSet(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) pull(ctx context.Context, id primitive.ObjectID, field string, value primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{field: value},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) AddFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.addToSet(ctx, userID, "followers", followerID)
}

func (r *mongoUserRepository) RemoveFollower(ctx context.Context, userID, followerID primitive.ObjectID) error {
	return r.pull(ctx, userID, "followers", followerID)
}

func (r *mongoUserRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.addToSet(ctx, userID, "following", targetID)
}

func (r *mongoUserRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	return r.pull(ctx, userID, "following", targetID)
}

// IncrementStats rolls a completed fixture into the profile counters.
func (r *mongoUserRepository) IncrementStats(ctx context.Context, id primitive.ObjectID, minutes, goals, assists int) error {
	update := bson.M{
		"$inc": bson.M{
			"stats.matches":       1,
			"stats.minutesPlayed": minutes,
			"stats.goals":         goals,
			"stats.assists":       assists,
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetRatingAvg persists the recomputed aggregate rating.
func (r *mongoUserRepository) SetRatingAvg(ctx context.Context, id primitive.ObjectID, avg float64) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"stats.ratingAvg": avg})
}

// Subscribe delivers the profile document on registration and on every
// change to it. A document that fails to decode is skipped: the error is
// logged and fn keeps its last-known-good value.
func (r *mongoUserRepository) Subscribe(ctx context.Context, id primitive.ObjectID, fn func(*domain.UserProfile)) (repository.CancelFunc, error) {
	match := bson.M{"documentKey._id": id}
	return watchCollection(ctx, r.collection, match, func(c context.Context) {
		user, err := r.GetByID(c, id)
		if err != nil {
			if c.Err() == nil && !errors.Is(err, repository.ErrNotFound) {
				log.Printf("WARN: profile snapshot for %s failed: %v", id.Hex(), err)
			}
			return
		}
		fn(user)
	})
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
