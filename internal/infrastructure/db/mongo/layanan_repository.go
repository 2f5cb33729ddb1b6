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

const collectionLayanan = "layanan"

type LayananRepository struct {
	col *mongo.Collection
}

func NewLayananRepository(db *mongo.Database) *LayananRepository {
	return &LayananRepository{col: db.Collection(collectionLayanan)}
}

func (r *LayananRepository) Create(ctx context.Context, l *domain.Layanan) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, l)
	if err != nil {
		return fmt.Errorf("insert layanan: %w", err)
	}
	return nil
}

func (r *LayananRepository) FindByID(ctx context.Context, id string) (*domain.Layanan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.Layanan
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrLayananNotFound
		}
		return nil, fmt.Errorf("find layanan: %w", err)
	}
	return &l, nil
}

func (r *LayananRepository) ListActiveByClient(ctx context.Context, clientID string) ([]*domain.Layanan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx,
		bson.M{"client_id": clientID, "status": domain.LayananActive},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list layanan: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Layanan
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode layanan: %w", err)
	}
	return out, nil
}

// ReserveHours moves hours onto hold. The balance guard lives in the update
// filter, so two reservations racing for the last hours resolve to a single
// winner inside Mongo.
func (r *LayananRepository) ReserveHours(ctx context.Context, id string, hours int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": domain.LayananActive,
		"$expr": bson.M{"$gte": bson.A{
			bson.M{"$subtract": bson.A{"$saldo_jam_efektif", "$jam_on_hold"}},
			hours,
		}},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"jam_on_hold": hours}})
	if err != nil {
		return fmt.Errorf("reserve hours: %w", err)
	}
	if res.MatchedCount == 0 {
		var l domain.Layanan
		findErr := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
		switch {
		case errors.Is(findErr, mongo.ErrNoDocuments):
			return domain.ErrLayananNotFound
		case findErr != nil:
			return fmt.Errorf("check layanan: %w", findErr)
		case l.Status != domain.LayananActive:
			return domain.ErrLayananInactive
		}
		return domain.ErrInsufficientBalance
	}
	return nil
}

// ReleaseHours returns held hours without burning them.
func (r *LayananRepository) ReleaseHours(ctx context.Context, id string, hours int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "jam_on_hold": bson.M{"$gte": hours}}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"jam_on_hold": -hours}})
	if err != nil {
		return fmt.Errorf("release hours: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.classifyBalanceMiss(ctx, id)
	}
	return nil
}

// BurnHours consumes held hours from the effective balance and flips the
// layanan to depleted when nothing remains.
func (r *LayananRepository) BurnHours(ctx context.Context, id string, hours int64) (*domain.Layanan, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"_id":               id,
		"jam_on_hold":       bson.M{"$gte": hours},
		"saldo_jam_efektif": bson.M{"$gte": hours},
	}
	update := bson.M{"$inc": bson.M{
		"jam_on_hold":       -hours,
		"saldo_jam_efektif": -hours,
	}}

	var l domain.Layanan
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.classifyBalanceMiss(ctx, id)
		}
		return nil, fmt.Errorf("burn hours: %w", err)
	}

	if l.Exhausted() && l.Status != domain.LayananDepleted {
		_, err := r.col.UpdateOne(ctx,
			bson.M{"_id": id, "saldo_jam_efektif": 0, "jam_on_hold": 0},
			bson.M{"$set": bson.M{"status": domain.LayananDepleted}},
		)
		if err != nil {
			return nil, fmt.Errorf("mark depleted: %w", err)
		}
		l.Status = domain.LayananDepleted
	}
	return &l, nil
}

// classifyBalanceMiss distinguishes a missing document from a guard failure
// after a conditional update matched nothing.
func (r *LayananRepository) classifyBalanceMiss(ctx context.Context, id string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("check layanan: %w", err)
	}
	if n == 0 {
		return domain.ErrLayananNotFound
	}
	return domain.ErrInsufficientBalance
}

// EnsureIndexes creates lookup indexes on the layanan collection.
func (r *LayananRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
