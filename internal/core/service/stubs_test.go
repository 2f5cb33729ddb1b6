package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories shared by the service tests. They mirror the
// conditional-update semantics of the real Mongo repositories, including the
// balance guards, so the concurrency tests are meaningful.
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

// --- users ---

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	claimed  bool
	claimErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	if u.Approval != nil {
		info := *u.Approval
		clone.Approval = &info
	}
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.Principal]; exists {
		return domain.ErrUserExists
	}
	for _, u := range r.users {
		if user.Email != "" && u.Email == user.Email {
			return domain.ErrUserExists
		}
	}
	r.users[user.Principal] = cloneUser(user)
	return nil
}

func (r *stubUserRepo) FindByPrincipal(_ context.Context, principal string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[principal]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateStatus(_ context.Context, principal string, expect, next domain.UserStatus, info *domain.ApprovalInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[principal]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Status != expect {
		return domain.ErrInvalidUserTransition
	}
	u.Status = next
	u.Approval = info
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, principal string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[principal]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) ListByStatus(_ context.Context, status domain.UserStatus) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if u.Status == status {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) ClaimSuperadmin(_ context.Context, principal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claimErr != nil {
		return r.claimErr
	}
	if r.claimed {
		return domain.ErrAlreadyClaimed
	}
	u, ok := r.users[principal]
	if !ok {
		return domain.ErrUserNotFound
	}
	r.claimed = true
	u.Role = domain.RoleSuperadmin
	u.Status = domain.UserActive
	return nil
}

// seedUser inserts a user directly, bypassing registration.
func seedUser(r *stubUserRepo, principal string, role domain.Role, status domain.UserStatus) *domain.User {
	u := &domain.User{
		Principal: principal,
		Name:      principal,
		Email:     principal + "@example.com",
		Role:      role,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	r.mu.Lock()
	r.users[principal] = u
	r.mu.Unlock()
	return u
}

// --- layanan ---

type stubLayananRepo struct {
	mu      sync.Mutex
	layanan map[string]*domain.Layanan
	burnErr error
}

func newStubLayananRepo() *stubLayananRepo {
	return &stubLayananRepo{layanan: make(map[string]*domain.Layanan)}
}

func (r *stubLayananRepo) Create(_ context.Context, l *domain.Layanan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *l
	r.layanan[l.ID] = &clone
	return nil
}

func (r *stubLayananRepo) FindByID(_ context.Context, id string) (*domain.Layanan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.layanan[id]
	if !ok {
		return nil, domain.ErrLayananNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubLayananRepo) ListActiveByClient(_ context.Context, clientID string) ([]*domain.Layanan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Layanan
	for _, l := range r.layanan {
		if l.ClientID == clientID && l.Status == domain.LayananActive {
			clone := *l
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubLayananRepo) ReserveHours(_ context.Context, id string, hours int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.layanan[id]
	if !ok {
		return domain.ErrLayananNotFound
	}
	if l.Status != domain.LayananActive {
		return domain.ErrLayananInactive
	}
	if l.SaldoJamEfektif-l.JamOnHold < hours {
		return domain.ErrInsufficientBalance
	}
	l.JamOnHold += hours
	return nil
}

func (r *stubLayananRepo) ReleaseHours(_ context.Context, id string, hours int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.layanan[id]
	if !ok {
		return domain.ErrLayananNotFound
	}
	if l.JamOnHold < hours {
		return domain.ErrInsufficientBalance
	}
	l.JamOnHold -= hours
	return nil
}

func (r *stubLayananRepo) BurnHours(_ context.Context, id string, hours int64) (*domain.Layanan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.burnErr != nil {
		return nil, r.burnErr
	}
	l, ok := r.layanan[id]
	if !ok {
		return nil, domain.ErrLayananNotFound
	}
	if l.JamOnHold < hours || l.SaldoJamEfektif < hours {
		return nil, domain.ErrInsufficientBalance
	}
	l.JamOnHold -= hours
	l.SaldoJamEfektif -= hours
	if l.Exhausted() {
		l.Status = domain.LayananDepleted
	}
	clone := *l
	return &clone, nil
}

// seedLayanan inserts an active layanan with the given hour balance.
func seedLayanan(r *stubLayananRepo, id, clientID string, hours, pricePerUnit int64) *domain.Layanan {
	l := &domain.Layanan{
		ID:              id,
		ClientID:        clientID,
		Type:            domain.LayananAssistance,
		ResourceType:    domain.ResourceStandard,
		Status:          domain.LayananActive,
		PricePerUnit:    pricePerUnit,
		SaldoOriginal:   hours,
		SaldoJamEfektif: hours,
		CreatedAt:       time.Now().UTC(),
	}
	r.mu.Lock()
	r.layanan[id] = l
	r.mu.Unlock()
	return l
}

// --- tasks ---

type stubTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	clone := *t
	if t.InternalData != nil {
		data := *t.InternalData
		clone.InternalData = &data
	}
	clone.StatusHistory = append([]domain.TaskHistoryEntry(nil), t.StatusHistory...)
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) ListByClient(_ context.Context, clientID string) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		if t.ClientID == clientID {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

func (r *stubTaskRepo) Transition(_ context.Context, id string, expect domain.TaskStatus, update ports.TaskUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.Status != expect {
		return domain.ErrIllegalTransition
	}
	t.Status = update.Status
	t.StatusHistory = append(t.StatusHistory, update.History)
	if update.EstimasiJam != nil {
		t.EstimasiJam = *update.EstimasiJam
	}
	if update.EstimasiDisetujui != nil {
		t.EstimasiDisetujui = *update.EstimasiDisetujui
	}
	if update.InternalData != nil {
		data := *update.InternalData
		t.InternalData = &data
	}
	if update.CompletedAt != nil {
		t.CompletedAt = *update.CompletedAt
	}
	return nil
}

// --- finance ---

type stubFinanceRepo struct {
	mu        sync.Mutex
	results   map[string]*domain.FinancialResult
	balances  map[string]int64
	entries   []domain.BalanceEntry
	withdraws map[string]*domain.WithdrawRequest
	insertErr error
}

func newStubFinanceRepo() *stubFinanceRepo {
	return &stubFinanceRepo{
		results:   make(map[string]*domain.FinancialResult),
		balances:  make(map[string]int64),
		withdraws: make(map[string]*domain.WithdrawRequest),
	}
}

func (r *stubFinanceRepo) InsertResult(_ context.Context, res *domain.FinancialResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.results[res.TaskID]; exists {
		return domain.ErrResultExists
	}
	clone := *res
	r.results[res.TaskID] = &clone
	return nil
}

func (r *stubFinanceRepo) FindResultByTask(_ context.Context, taskID string) (*domain.FinancialResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.results[taskID]
	if !ok {
		return nil, domain.ErrResultNotFound
	}
	clone := *res
	return &clone, nil
}

func (r *stubFinanceRepo) CreditPartner(_ context.Context, partnerID string, amount int64, entryType, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[partnerID] += amount
	r.entries = append(r.entries, domain.BalanceEntry{
		PartnerID: partnerID, Amount: amount, EntryType: entryType, Reference: reference,
	})
	return nil
}

func (r *stubFinanceRepo) DebitPartner(_ context.Context, partnerID string, amount int64, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balances[partnerID] < amount {
		return domain.ErrInsufficientFunds
	}
	r.balances[partnerID] -= amount
	r.entries = append(r.entries, domain.BalanceEntry{
		PartnerID: partnerID, Amount: -amount, EntryType: domain.EntryWithdrawal, Reference: reference,
	})
	return nil
}

func (r *stubFinanceRepo) Balance(_ context.Context, partnerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balances[partnerID], nil
}

func (r *stubFinanceRepo) CreateWithdraw(_ context.Context, w *domain.WithdrawRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *w
	r.withdraws[w.ID] = &clone
	return nil
}

func (r *stubFinanceRepo) FindWithdraw(_ context.Context, id string) (*domain.WithdrawRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdraws[id]
	if !ok {
		return nil, domain.ErrWithdrawNotFound
	}
	clone := *w
	return &clone, nil
}

func (r *stubFinanceRepo) ListWithdrawsByStatus(_ context.Context, status domain.WithdrawStatus) ([]*domain.WithdrawRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.WithdrawRequest
	for _, w := range r.withdraws {
		if w.Status == status {
			clone := *w
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubFinanceRepo) ResolveWithdraw(_ context.Context, id string, status domain.WithdrawStatus, financeID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdraws[id]
	if !ok {
		return domain.ErrWithdrawNotFound
	}
	if w.Status != domain.WithdrawPending {
		return domain.ErrWithdrawResolved
	}
	w.Status = status
	w.FinanceID = financeID
	w.ResolvedAt = at
	return nil
}

// --- claim guard ---

type stubClaimGuard struct {
	mu       sync.Mutex
	acquired bool
	err      error
}

func (g *stubClaimGuard) Acquire(_ context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return false, g.err
	}
	if g.acquired {
		return false, nil
	}
	g.acquired = true
	return true, nil
}

func (g *stubClaimGuard) Release(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acquired = false
	return nil
}
