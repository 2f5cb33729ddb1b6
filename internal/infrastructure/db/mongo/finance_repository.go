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
	collectionResults   = "financial_results"
	collectionBalances  = "partner_balances"
	collectionEntries   = "balance_entries"
	collectionWithdraws = "withdraw_requests"
)

type FinanceRepository struct {
	results   *mongo.Collection
	balances  *mongo.Collection
	entries   *mongo.Collection
	withdraws *mongo.Collection
}

func NewFinanceRepository(db *mongo.Database) *FinanceRepository {
	return &FinanceRepository{
		results:   db.Collection(collectionResults),
		balances:  db.Collection(collectionBalances),
		entries:   db.Collection(collectionEntries),
		withdraws: db.Collection(collectionWithdraws),
	}
}

// InsertResult stores the settlement record. The task id is the _id, so a
// duplicate settlement hits the unique constraint and reports ErrResultExists.
func (r *FinanceRepository) InsertResult(ctx context.Context, res *domain.FinancialResult) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.results.InsertOne(ctx, res)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrResultExists
		}
		return fmt.Errorf("insert financial result: %w", err)
	}
	return nil
}

func (r *FinanceRepository) FindResultByTask(ctx context.Context, taskID string) (*domain.FinancialResult, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res domain.FinancialResult
	err := r.results.FindOne(ctx, bson.M{"_id": taskID}).Decode(&res)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("find financial result: %w", err)
	}
	return &res, nil
}

// CreditPartner increments the balance document and journals the movement.
// Upsert covers a partner's first earning.
func (r *FinanceRepository) CreditPartner(ctx context.Context, partnerID string, amount int64, entryType, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.balances.UpdateOne(ctx,
		bson.M{"_id": partnerID},
		bson.M{
			"$inc": bson.M{"balance": amount},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("credit partner: %w", err)
	}

	return r.journal(ctx, domain.BalanceEntry{
		PartnerID: partnerID,
		Amount:    amount,
		EntryType: entryType,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
}

// DebitPartner decrements the balance with the covering-funds guard in the
// update filter. Two approvals racing the same funds resolve to one winner.
func (r *FinanceRepository) DebitPartner(ctx context.Context, partnerID string, amount int64, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.balances.UpdateOne(ctx,
		bson.M{"_id": partnerID, "balance": bson.M{"$gte": amount}},
		bson.M{
			"$inc": bson.M{"balance": -amount},
			"$set": bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("debit partner: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrInsufficientFunds
	}

	return r.journal(ctx, domain.BalanceEntry{
		PartnerID: partnerID,
		Amount:    -amount,
		EntryType: domain.EntryWithdrawal,
		Reference: reference,
		CreatedAt: time.Now().UTC(),
	})
}

func (r *FinanceRepository) journal(ctx context.Context, entry domain.BalanceEntry) error {
	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("journal balance entry: %w", err)
	}
	return nil
}

func (r *FinanceRepository) Balance(ctx context.Context, partnerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc struct {
		Balance int64 `bson:"balance"`
	}
	err := r.balances.FindOne(ctx, bson.M{"_id": partnerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("find balance: %w", err)
	}
	return doc.Balance, nil
}

func (r *FinanceRepository) CreateWithdraw(ctx context.Context, w *domain.WithdrawRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.withdraws.InsertOne(ctx, w)
	if err != nil {
		return fmt.Errorf("insert withdraw request: %w", err)
	}
	return nil
}

func (r *FinanceRepository) FindWithdraw(ctx context.Context, id string) (*domain.WithdrawRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var w domain.WithdrawRequest
	err := r.withdraws.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrWithdrawNotFound
		}
		return nil, fmt.Errorf("find withdraw request: %w", err)
	}
	return &w, nil
}

func (r *FinanceRepository) ListWithdrawsByStatus(ctx context.Context, status domain.WithdrawStatus) ([]*domain.WithdrawRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.withdraws.Find(ctx,
		bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list withdraw requests: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.WithdrawRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode withdraw requests: %w", err)
	}
	return out, nil
}

// ResolveWithdraw finalizes a request. The pending filter lets a concurrent
// resolution match nothing rather than overwrite the first decision.
func (r *FinanceRepository) ResolveWithdraw(ctx context.Context, id string, status domain.WithdrawStatus, financeID string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.withdraws.UpdateOne(ctx,
		bson.M{"_id": id, "status": domain.WithdrawPending},
		bson.M{"$set": bson.M{
			"status":      status,
			"finance_id":  financeID,
			"resolved_at": at.UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("resolve withdraw request: %w", err)
	}
	if res.MatchedCount == 0 {
		n, err := r.withdraws.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("check withdraw request: %w", err)
		}
		if n == 0 {
			return domain.ErrWithdrawNotFound
		}
		return domain.ErrWithdrawResolved
	}
	return nil
}

// EnsureIndexes creates lookup indexes on the finance collections.
func (r *FinanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.entries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "partner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}); err != nil {
		return err
	}
	_, err := r.withdraws.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "partner_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	return err
}
