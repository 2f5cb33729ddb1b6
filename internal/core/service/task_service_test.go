package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/asistenmu/workflow-api/internal/core/domain"
	"github.com/asistenmu/workflow-api/internal/core/ports"
)

// taskFixture wires a TaskService against the in-memory stubs with the
// standard cast: an active client, asistenmu, and two partners.
type taskFixture struct {
	svc     *TaskService
	users   *stubUserRepo
	tasks   *stubTaskRepo
	layanan *stubLayananRepo
	finance *stubFinanceRepo
}

func newTaskFixture() *taskFixture {
	f := &taskFixture{
		users:   newStubUserRepo(),
		tasks:   newStubTaskRepo(),
		layanan: newStubLayananRepo(),
		finance: newStubFinanceRepo(),
	}
	f.svc = NewTaskService(f.tasks, f.layanan, f.users, f.finance, nil, discardLogger)
	seedUser(f.users, "client-1", domain.RoleClient, domain.UserActive)
	seedUser(f.users, "am-1", domain.RoleAsistenmu, domain.UserActive)
	seedUser(f.users, "partner-1", domain.RolePartner, domain.UserActive)
	seedUser(f.users, "partner-2", domain.RolePartner, domain.UserActive)
	return f
}

// seedTask inserts a task directly in the given status, bypassing the
// lifecycle, with 2 hours already held on the layanan.
func (f *taskFixture) seedTask(id string, status domain.TaskStatus, data *domain.InternalData) *domain.Task {
	now := time.Now().UTC()
	t := &domain.Task{
		ID:               id,
		ClientID:         "client-1",
		LayananID:        "lay-1",
		Judul:            "laporan bulanan",
		DetailPermintaan: "rangkum data penjualan",
		Status:           status,
		EstimasiJam:      4,
		EstimasiDisetujui: status != domain.TaskRequested && status != domain.TaskAwaitingClientApproval,
		JamReserved:      domain.HoursPerUnit,
		InternalData:     data,
		CreatedAt:        now,
		StatusHistory:    []domain.TaskHistoryEntry{{Status: status, Timestamp: now}},
	}
	_ = f.tasks.Create(context.Background(), t)
	return t
}

func assigned() *domain.InternalData {
	return &domain.InternalData{
		PartnerID:    "partner-1",
		ScopeKerja:   "penulisan laporan",
		JamEfektif:   4,
		LevelPartner: "senior",
	}
}

func TestTask_Create_ReservesHours(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)

	task, err := f.svc.CreateTask(context.Background(), "client-1", ports.CreateTaskInput{
		LayananID: "lay-1", Judul: "laporan", DetailPermintaan: "detail",
	})
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if task.Status != domain.TaskRequested {
		t.Fatalf("expected Requested, got %s", task.Status)
	}
	if task.JamReserved != 2 {
		t.Fatalf("expected 2 hours reserved, got %d", task.JamReserved)
	}

	l, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if l.Available() != 0 {
		t.Fatalf("expected 0 hours available, got %d", l.Available())
	}
	if l.JamOnHold != 2 {
		t.Fatalf("expected 2 hours on hold, got %d", l.JamOnHold)
	}
	if l.SaldoJamEfektif != 2 {
		t.Fatalf("reservation must not burn the balance, saldo=%d", l.SaldoJamEfektif)
	}
}

func TestTask_Create_InsufficientBalance(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 1, 100_000)

	_, err := f.svc.CreateTask(context.Background(), "client-1", ports.CreateTaskInput{
		LayananID: "lay-1", Judul: "laporan", DetailPermintaan: "detail",
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestTask_Create_ConcurrentLastUnit(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateTask(context.Background(), "client-1", ports.CreateTaskInput{
				LayananID: "lay-1", Judul: "laporan", DetailPermintaan: "detail",
			})
		}(i)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientBalance):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one InsufficientBalance, got ok=%d insufficient=%d", ok, insufficient)
	}
}

func TestTask_Create_ForeignLayananRejected(t *testing.T) {
	f := newTaskFixture()
	seedUser(f.users, "client-2", domain.RoleClient, domain.UserActive)
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)

	_, err := f.svc.CreateTask(context.Background(), "client-2", ports.CreateTaskInput{
		LayananID: "lay-1", Judul: "laporan", DetailPermintaan: "detail",
	})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTask_InputEstimasi_InternalOnly(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskRequested, nil)

	if err := f.svc.InputEstimasiAM(context.Background(), "client-1", "task-1", 4); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for client caller, got %v", err)
	}

	if err := f.svc.InputEstimasiAM(context.Background(), "am-1", "task-1", 4); err != nil {
		t.Fatalf("InputEstimasiAM returned error: %v", err)
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskAwaitingClientApproval {
		t.Fatalf("expected AwaitingClientApproval, got %s", task.Status)
	}
	if task.EstimasiJam != 4 {
		t.Fatalf("expected estimasi 4, got %d", task.EstimasiJam)
	}

	// Estimating again from AwaitingClientApproval is illegal.
	if err := f.svc.InputEstimasiAM(context.Background(), "am-1", "task-1", 6); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTask_ApproveEstimasi_QueuesUntilAssigned(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskAwaitingClientApproval, nil)

	if err := f.svc.ApproveEstimasiClient(context.Background(), "client-1", "task-1"); err != nil {
		t.Fatalf("ApproveEstimasiClient returned error: %v", err)
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskAwaitingClientApproval {
		t.Fatalf("expected task to stay queued without a partner, got %s", task.Status)
	}
	if !task.EstimasiDisetujui {
		t.Fatalf("expected estimasi approval flag to be set")
	}

	// Assigning after approval releases the task to the partner.
	if err := f.svc.AssignPartner(context.Background(), "am-1", ports.AssignPartnerInput{
		TaskID: "task-1", PartnerID: "partner-1", ScopeKerja: "laporan", JamEfektif: 4, LevelPartner: "senior",
	}); err != nil {
		t.Fatalf("AssignPartner returned error: %v", err)
	}
	task, _ = f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskPendingPartner {
		t.Fatalf("expected PendingPartner, got %s", task.Status)
	}
}

func TestTask_ApproveEstimasi_MovesWhenAlreadyAssigned(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskAwaitingClientApproval, assigned())

	if err := f.svc.ApproveEstimasiClient(context.Background(), "client-1", "task-1"); err != nil {
		t.Fatalf("ApproveEstimasiClient returned error: %v", err)
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskPendingPartner {
		t.Fatalf("expected PendingPartner, got %s", task.Status)
	}
}

func TestTask_ApproveEstimasi_OwnerOnly(t *testing.T) {
	f := newTaskFixture()
	seedUser(f.users, "client-2", domain.RoleClient, domain.UserActive)
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskAwaitingClientApproval, nil)

	if err := f.svc.ApproveEstimasiClient(context.Background(), "client-2", "task-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTask_AssignPartner_RejectsNonPartnerTarget(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskAwaitingClientApproval, nil)

	err := f.svc.AssignPartner(context.Background(), "am-1", ports.AssignPartnerInput{
		TaskID: "task-1", PartnerID: "client-1",
	})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestTask_ResponPartner_Accept(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskPendingPartner, assigned())

	if err := f.svc.ResponPartner(context.Background(), "partner-1", "task-1", true); err != nil {
		t.Fatalf("ResponPartner returned error: %v", err)
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskOnProgress {
		t.Fatalf("expected OnProgress, got %s", task.Status)
	}
}

func TestTask_ResponPartner_RejectKeepsHoursHeld(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskPendingPartner, assigned())

	if err := f.svc.ResponPartner(context.Background(), "partner-1", "task-1", false); err != nil {
		t.Fatalf("ResponPartner returned error: %v", err)
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskRejectedByPartner {
		t.Fatalf("expected RejectedByPartner, got %s", task.Status)
	}

	after, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if after.JamOnHold != 2 {
		t.Fatalf("rejection must keep hours held, got hold=%d", after.JamOnHold)
	}

	// Reassignment to a new candidate goes back to PendingPartner.
	if err := f.svc.AssignPartner(context.Background(), "am-1", ports.AssignPartnerInput{
		TaskID: "task-1", PartnerID: "partner-2", ScopeKerja: "laporan", JamEfektif: 4, LevelPartner: "junior",
	}); err != nil {
		t.Fatalf("reassignment failed: %v", err)
	}
	task, _ = f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskPendingPartner {
		t.Fatalf("expected PendingPartner after reassignment, got %s", task.Status)
	}
	if task.InternalData.PartnerID != "partner-2" {
		t.Fatalf("expected partner-2 assigned, got %s", task.InternalData.PartnerID)
	}
}

func TestTask_ResponPartner_OnlyAssignedPartner(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskPendingPartner, assigned())

	if err := f.svc.ResponPartner(context.Background(), "partner-2", "task-1", true); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unassigned partner, got %v", err)
	}
}

func TestTask_UpdateStatus_FollowsGraph(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskOnProgress, assigned())

	steps := []domain.TaskStatus{domain.TaskInQA, domain.TaskClientReview, domain.TaskRevision, domain.TaskOnProgress}
	for _, next := range steps {
		if err := f.svc.UpdateStatus(context.Background(), "am-1", "task-1", next); err != nil {
			t.Fatalf("transition to %s failed: %v", next, err)
		}
	}
	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskOnProgress {
		t.Fatalf("expected OnProgress after revision loop, got %s", task.Status)
	}
}

func TestTask_UpdateStatus_IllegalJump(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskRequested, nil)

	if err := f.svc.UpdateStatus(context.Background(), "am-1", "task-1", domain.TaskCompleted); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for Requested->Completed, got %v", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), "am-1", "task-1", domain.TaskInQA); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition for Requested->InQA, got %v", err)
	}
}

func TestTask_UpdateStatus_CompletedNeverGeneric(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	// Even from ClientReview, completion must run settlement.
	if err := f.svc.UpdateStatus(context.Background(), "am-1", "task-1", domain.TaskCompleted); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTask_UpdateStatus_OutsiderRejected(t *testing.T) {
	f := newTaskFixture()
	seedUser(f.users, "client-2", domain.RoleClient, domain.UserActive)
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskOnProgress, assigned())

	if err := f.svc.UpdateStatus(context.Background(), "client-2", "task-1", domain.TaskInQA); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTask_Complete_SettlesAndBurns(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	result, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1")
	if err != nil {
		t.Fatalf("CompleteTask returned error: %v", err)
	}

	// 2 hours at 100k/unit (1 unit = 2 hours) -> value 100k, split 20/70/10.
	if result.JamDibakar != 2 {
		t.Fatalf("expected 2 hours burned, got %d", result.JamDibakar)
	}
	if result.JumlahBayar != 100_000 {
		t.Fatalf("expected value 100000, got %d", result.JumlahBayar)
	}
	if result.PartnerFee != 70_000 || result.PartnerReferralFee != 10_000 || result.PlatformFee != 20_000 {
		t.Fatalf("unexpected fee split: platform=%d partner=%d referral=%d",
			result.PlatformFee, result.PartnerFee, result.PartnerReferralFee)
	}
	if result.PlatformFee+result.PartnerFee+result.PartnerReferralFee != result.JumlahBayar {
		t.Fatalf("fees do not sum to the task value")
	}

	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskCompleted {
		t.Fatalf("expected Completed, got %s", task.Status)
	}
	if task.CompletedAt.IsZero() {
		t.Fatalf("expected CompletedAt to be set")
	}

	after, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if after.SaldoJamEfektif != 0 || after.JamOnHold != 0 {
		t.Fatalf("expected ledger fully burned, saldo=%d hold=%d", after.SaldoJamEfektif, after.JamOnHold)
	}
	if after.Status != domain.LayananDepleted {
		t.Fatalf("expected depleted layanan, got %s", after.Status)
	}

	balance, _ := f.finance.Balance(context.Background(), "partner-1")
	if balance != 70_000 {
		t.Fatalf("expected partner credited 70000, got %d", balance)
	}
}

func TestTask_Complete_SecondCallDoesNotDoubleBill(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); !errors.Is(err, domain.ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}

	after, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if after.SaldoJamEfektif != 2 || after.JamOnHold != 0 {
		t.Fatalf("second call must not touch the ledger, saldo=%d hold=%d", after.SaldoJamEfektif, after.JamOnHold)
	}
	balance, _ := f.finance.Balance(context.Background(), "partner-1")
	if balance != 70_000 {
		t.Fatalf("second call must not credit again, balance=%d", balance)
	}
	if len(f.finance.results) != 1 {
		t.Fatalf("expected a single financial result, got %d", len(f.finance.results))
	}
}

func TestTask_Complete_RequiresClientReview(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 4, 100_000)
	f.seedTask("task-1", domain.TaskOnProgress, assigned())

	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTask_Complete_RetriesAfterBurnFailure(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	f.layanan.burnErr = errors.New("socket timeout")
	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); err == nil {
		t.Fatalf("expected burn failure to surface")
	}

	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskClientReview {
		t.Fatalf("task must return to client review after a failed settlement, got %s", task.Status)
	}
	after, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if after.SaldoJamEfektif != 2 || after.JamOnHold != 2 {
		t.Fatalf("ledger must be untouched, saldo=%d hold=%d", after.SaldoJamEfektif, after.JamOnHold)
	}

	f.layanan.burnErr = nil
	result, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1")
	if err != nil {
		t.Fatalf("retry after transient failure must succeed: %v", err)
	}
	if result.JumlahBayar != 100_000 {
		t.Fatalf("expected value 100000 on retry, got %d", result.JumlahBayar)
	}
	task, _ = f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskCompleted {
		t.Fatalf("expected Completed after retry, got %s", task.Status)
	}
	after, _ = f.layanan.FindByID(context.Background(), "lay-1")
	if after.SaldoJamEfektif != 0 || after.JamOnHold != 0 {
		t.Fatalf("expected ledger fully burned on retry, saldo=%d hold=%d", after.SaldoJamEfektif, after.JamOnHold)
	}
	if len(f.finance.results) != 1 {
		t.Fatalf("expected a single financial result, got %d", len(f.finance.results))
	}
	balance, _ := f.finance.Balance(context.Background(), "partner-1")
	if balance != 70_000 {
		t.Fatalf("expected partner credited once, balance=%d", balance)
	}
}

func TestTask_Complete_RetriesAfterResultInsertFailure(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	f.finance.insertErr = errors.New("socket timeout")
	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); err == nil {
		t.Fatalf("expected insert failure to surface")
	}

	task, _ := f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskClientReview {
		t.Fatalf("task must return to client review, got %s", task.Status)
	}
	if len(f.finance.results) != 0 {
		t.Fatalf("no result may be recorded on a failed insert, got %d", len(f.finance.results))
	}
	after, _ := f.layanan.FindByID(context.Background(), "lay-1")
	if after.SaldoJamEfektif != 2 || after.JamOnHold != 2 {
		t.Fatalf("ledger must be untouched, saldo=%d hold=%d", after.SaldoJamEfektif, after.JamOnHold)
	}

	f.finance.insertErr = nil
	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); err != nil {
		t.Fatalf("retry after transient failure must succeed: %v", err)
	}
	task, _ = f.tasks.FindByID(context.Background(), "task-1")
	if task.Status != domain.TaskCompleted {
		t.Fatalf("expected Completed after retry, got %s", task.Status)
	}
}

func TestTask_Settlement_Visibility(t *testing.T) {
	f := newTaskFixture()
	l := seedLayanan(f.layanan, "lay-1", "client-1", 2, 100_000)
	l.JamOnHold = 2
	f.seedTask("task-1", domain.TaskClientReview, assigned())

	if _, err := f.svc.Settlement(context.Background(), "client-1", "task-1"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound before completion, got %v", err)
	}

	if _, err := f.svc.CompleteTask(context.Background(), "client-1", "task-1"); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	for _, actor := range []string{"client-1", "am-1", "partner-1"} {
		result, err := f.svc.Settlement(context.Background(), actor, "task-1")
		if err != nil {
			t.Fatalf("Settlement failed for %s: %v", actor, err)
		}
		if result.JumlahBayar != 100_000 {
			t.Fatalf("unexpected settlement value for %s: %d", actor, result.JumlahBayar)
		}
	}

	if _, err := f.svc.Settlement(context.Background(), "partner-2", "task-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an uninvolved partner, got %v", err)
	}
}

func TestTask_ClientTasks_MasksDelegationChurn(t *testing.T) {
	f := newTaskFixture()
	seedLayanan(f.layanan, "lay-1", "client-1", 8, 100_000)
	f.seedTask("task-1", domain.TaskPendingPartner, assigned())
	f.seedTask("task-2", domain.TaskRejectedByPartner, assigned())
	f.seedTask("task-3", domain.TaskOnProgress, assigned())

	views, err := f.svc.ClientTasks(context.Background(), "client-1", "client-1")
	if err != nil {
		t.Fatalf("ClientTasks returned error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(views))
	}
	masked := 0
	for _, v := range views {
		switch v.ID {
		case "task-1", "task-2":
			if v.Status != domain.StatusDidelegasikan {
				t.Fatalf("task %s: expected masked status, got %s", v.ID, v.Status)
			}
			masked++
		case "task-3":
			if v.Status != string(domain.TaskOnProgress) {
				t.Fatalf("task-3: expected OnProgress, got %s", v.Status)
			}
		}
	}
	if masked != 2 {
		t.Fatalf("expected both delegation states masked, got %d", masked)
	}
}

func TestTask_ClientTasks_ForeignClientRejected(t *testing.T) {
	f := newTaskFixture()
	seedUser(f.users, "client-2", domain.RoleClient, domain.UserActive)

	if _, err := f.svc.ClientTasks(context.Background(), "client-2", "client-1"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
