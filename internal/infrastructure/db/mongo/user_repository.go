package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

const (
	collectionUsers  = "users"
	collectionClaims = "claims"

	// Single well-known document id in the claims collection. The unique _id
	// constraint makes the first insert the only one that ever succeeds.
	superadminClaimID = "superadmin"
)

type UserRepository struct {
	users  *mongo.Collection
	claims *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:  db.Collection(collectionUsers),
		claims: db.Collection(collectionClaims),
	}
}

// Create inserts a new user document. The principal is the _id, so a rejected
// principal occupies its slot forever and cannot re-register.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByPrincipal(ctx context.Context, principal string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"_id": principal}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

// UpdateStatus moves a user from the expected status to the next one. The
// status filter makes concurrent approvals of the same request resolve to a
// single winner.
func (r *UserRepository) UpdateStatus(ctx context.Context, principal string, expect, next domain.UserStatus, info *domain.ApprovalInfo) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"status":     next,
		"updated_at": time.Now().UTC(),
	}
	if info != nil {
		set["approval"] = info
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": principal, "status": expect},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.users.CountDocuments(ctx, bson.M{"_id": principal})
		if err != nil {
			return fmt.Errorf("update user status: %w", err)
		}
		if n == 0 {
			return domain.ErrUserNotFound
		}
		return domain.ErrInvalidUserTransition
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, principal string, role domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": principal},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) ListByStatus(ctx context.Context, status domain.UserStatus) ([]*domain.User, error) {
	return r.list(ctx, bson.M{"status": status})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx, bson.M{})
}

func (r *UserRepository) list(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.users.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return out, nil
}

// ClaimSuperadmin records the one-time claim and promotes the principal. The
// claim document insert is the atomic gate; the promotion follows only for
// the caller that won the insert.
func (r *UserRepository) ClaimSuperadmin(ctx context.Context, principal string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.claims.InsertOne(ctx, bson.M{
		"_id":        superadminClaimID,
		"principal":  principal,
		"claimed_at": time.Now().UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyClaimed
		}
		return fmt.Errorf("insert claim: %w", err)
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": principal},
		bson.M{"$set": bson.M{
			"role":       domain.RoleSuperadmin,
			"status":     domain.UserActive,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("promote superadmin: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.users.Indexes().CreateMany(ctx, indexes)
	return err
}
