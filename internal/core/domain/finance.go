package domain

import (
	"errors"
	"time"
)

// Fee split applied to the task value at settlement, in percent.
// The three shares always sum to 100.
const (
	PlatformFeePct        int64 = 20
	PartnerFeePct         int64 = 70
	PartnerReferralFeePct int64 = 10
)

var (
	ErrWithdrawNotFound   = errors.New("withdraw request not found")
	ErrWithdrawResolved   = errors.New("withdraw request already resolved")
	ErrInsufficientFunds  = errors.New("insufficient partner balance")
	ErrResultExists       = errors.New("financial result already recorded")
	ErrResultNotFound     = errors.New("financial result not found")
)

// FinancialResult is the immutable settlement record produced exactly once
// when a task completes.
type FinancialResult struct {
	TaskID             string    `json:"task_id" bson:"_id"`
	Status             string    `json:"status" bson:"status"`
	JamDibakar         int64     `json:"jam_dibakar" bson:"jam_dibakar"`
	JumlahBayar        int64     `json:"jumlah_bayar" bson:"jumlah_bayar"`
	PlatformFee        int64     `json:"platform_fee" bson:"platform_fee"`
	PartnerFee         int64     `json:"partner_fee" bson:"partner_fee"`
	PartnerReferralFee int64     `json:"partner_referral_fee" bson:"partner_referral_fee"`
	SettledAt          time.Time `json:"settled_at" bson:"settled_at"`
}

// Settle computes the settlement for burned hours priced per unit.
// The task value is hours * unit price / hours-per-unit; the platform fee
// absorbs any rounding remainder so the shares always sum to the value.
func Settle(taskID string, jamDibakar, pricePerUnit int64, at time.Time) FinancialResult {
	value := jamDibakar * pricePerUnit / HoursPerUnit
	partnerFee := value * PartnerFeePct / 100
	referralFee := value * PartnerReferralFeePct / 100
	platformFee := value - partnerFee - referralFee

	return FinancialResult{
		TaskID:             taskID,
		Status:             string(TaskCompleted),
		JamDibakar:         jamDibakar,
		JumlahBayar:        value,
		PlatformFee:        platformFee,
		PartnerFee:         partnerFee,
		PartnerReferralFee: referralFee,
		SettledAt:          at,
	}
}

// WithdrawStatus is the resolution state of a withdrawal request.
type WithdrawStatus string

const (
	WithdrawPending  WithdrawStatus = "pending"
	WithdrawApproved WithdrawStatus = "approved"
	WithdrawRejected WithdrawStatus = "rejected"
)

// WithdrawRequest is a partner's request to pay out accrued balance.
// Only a finance user may resolve it.
type WithdrawRequest struct {
	ID         string         `json:"id" bson:"_id"`
	PartnerID  string         `json:"partner_id" bson:"partner_id"`
	Amount     int64          `json:"amount" bson:"amount"`
	Status     WithdrawStatus `json:"status" bson:"status"`
	FinanceID  string         `json:"finance_id,omitempty" bson:"finance_id,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	ResolvedAt time.Time      `json:"resolved_at,omitempty" bson:"resolved_at,omitempty"`
}

// Journal entry types for the partner balance ledger.
const (
	EntryTaskEarning  = "task_earning"
	EntryWithdrawal   = "withdrawal"
	EntryAdjustment   = "adjustment"
)

// BalanceEntry is one movement on a partner's balance. The running balance
// is the sum of entries; withdrawals are negative amounts.
type BalanceEntry struct {
	PartnerID string    `json:"partner_id" bson:"partner_id"`
	Amount    int64     `json:"amount" bson:"amount"`
	EntryType string    `json:"entry_type" bson:"entry_type"`
	Reference string    `json:"reference,omitempty" bson:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
