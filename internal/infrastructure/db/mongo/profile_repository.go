package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wyclub/member-system/internal/core/domain"
	"github.com/wyclub/member-system/internal/core/ports"
)

const profileCollection = "profiles"

// MongoProfileRepository persists member profiles. The provider's user ID is
// the document _id, so one provider identity maps to exactly one profile.
type MongoProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *MongoProfileRepository {
	return &MongoProfileRepository{coll: db.Collection(profileCollection)}
}

type mongoProfile struct {
	UserID    string `bson:"_id"`
	Email     string `bson:"email"`
	Name      string `bson:"name"`
	Role      string `bson:"role"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func (r *MongoProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	var mp mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&mp); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *MongoProfileRepository) Insert(ctx context.Context, p *domain.Profile) error {
	doc := mongoProfile{
		UserID:    p.UserID,
		Email:     p.Email,
		Name:      p.Name,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt.Unix(),
		UpdatedAt: p.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProfileExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (r *MongoProfileRepository) Update(ctx context.Context, userID string, in ports.UpdateProfileInput, now time.Time) (*domain.Profile, error) {
	set := bson.M{"updated_at": now.Unix()}
	if in.Name != nil {
		set["name"] = *in.Name
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProfile
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": userID}, bson.M{"$set": set}, opts).Decode(&mp)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return mp.toDomain(), nil
}

// CountByRole groups profiles by role for the admin dashboard.
func (r *MongoProfileRepository) CountByRole(ctx context.Context) (ports.RoleCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count by role: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(ports.RoleCounts)
	for cursor.Next(ctx) {
		var row struct {
			Role  string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("count by role: decode: %w", err)
		}
		counts[domain.Role(row.Role)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("count by role: %w", err)
	}
	return counts, nil
}

func (mp *mongoProfile) toDomain() *domain.Profile {
	return &domain.Profile{
		UserID:    mp.UserID,
		Email:     mp.Email,
		Name:      mp.Name,
		Role:      domain.Role(mp.Role),
		CreatedAt: unixToTime(mp.CreatedAt),
		UpdatedAt: unixToTime(mp.UpdatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
