package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/esewa"
)

type stubPaymentRepo struct {
	orders       map[uuid.UUID]*models.Order
	transactions map[uuid.UUID]*models.PaymentTransaction

	superseded  []uuid.UUID
	created     []*models.PaymentTransaction
	completeHit bool
	failReason  string
	orderPaid   *uuid.UUID
	inTx        bool
	paidInTx    bool
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{
		orders:       map[uuid.UUID]*models.Order{},
		transactions: map[uuid.UUID]*models.PaymentTransaction{},
	}
}

func (s *stubPaymentRepo) WithTx(_ *gorm.DB) Repository {
	s.inTx = true
	return s
}

func (s *stubPaymentRepo) CreateTransaction(_ context.Context, txn *models.PaymentTransaction) error {
	s.created = append(s.created, txn)
	s.transactions[txn.ProductID] = txn
	return nil
}

func (s *stubPaymentRepo) FindByProductID(_ context.Context, productID uuid.UUID) (*models.PaymentTransaction, error) {
	if txn, ok := s.transactions[productID]; ok {
		copied := *txn
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentRepo) FindOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubPaymentRepo) SupersedePending(_ context.Context, orderID uuid.UUID, reason string) (int64, error) {
	s.superseded = append(s.superseded, orderID)
	var n int64
	for _, txn := range s.transactions {
		if txn.OrderID == orderID && txn.Status == enums.PaymentStatusPending {
			txn.Status = enums.PaymentStatusFailed
			r := reason
			txn.FailureReason = &r
			n++
		}
	}
	return n, nil
}

func (s *stubPaymentRepo) MarkCompleted(_ context.Context, id uuid.UUID) (int64, error) {
	s.completeHit = true
	for _, txn := range s.transactions {
		if txn.ID == id && txn.Status == enums.PaymentStatusPending {
			txn.Status = enums.PaymentStatusCompleted
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubPaymentRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) (int64, error) {
	s.failReason = reason
	for _, txn := range s.transactions {
		if txn.ID == id && txn.Status == enums.PaymentStatusPending {
			txn.Status = enums.PaymentStatusFailed
			r := reason
			txn.FailureReason = &r
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubPaymentRepo) SetOrderPaid(_ context.Context, orderID uuid.UUID) error {
	s.orderPaid = &orderID
	s.paidInTx = s.inTx
	if order, ok := s.orders[orderID]; ok {
		order.PaymentStatus = enums.PaymentStatusCompleted
		order.Status = enums.OrderStatusConfirmed
	}
	return nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubGateway struct {
	nextUUID   uuid.UUID
	status     esewa.TransactionStatus
	statusErr  error
	payloadErr error
	checked    []uuid.UUID
}

func (s *stubGateway) NewTransactionUUID() uuid.UUID {
	if s.nextUUID == uuid.Nil {
		return uuid.New()
	}
	return s.nextUUID
}

func (s *stubGateway) BuildPaymentPayload(_ context.Context, transactionUUID uuid.UUID, amountPaisa int) (*esewa.PaymentPayload, error) {
	if s.payloadErr != nil {
		return nil, s.payloadErr
	}
	return &esewa.PaymentPayload{TransactionUUID: transactionUUID.String()}, nil
}

func (s *stubGateway) CheckStatus(_ context.Context, transactionUUID uuid.UUID, _ int) (*esewa.StatusResult, error) {
	s.checked = append(s.checked, transactionUUID)
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return &esewa.StatusResult{TransactionUUID: transactionUUID.String(), Status: s.status}, nil
}

type stubNotifier struct {
	events []notifications.Event
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event) {
	s.events = append(s.events, event)
}

type paymentFixture struct {
	repo     *stubPaymentRepo
	tx       *stubTxRunner
	gateway  *stubGateway
	notifier *stubNotifier
	svc      Service
	buyer    uuid.UUID
	farmer   uuid.UUID
	order    *models.Order
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	f := &paymentFixture{
		repo:     newStubPaymentRepo(),
		tx:       &stubTxRunner{},
		gateway:  &stubGateway{},
		notifier: &stubNotifier{},
		buyer:    uuid.New(),
		farmer:   uuid.New(),
	}

	f.order = &models.Order{
		ID:            uuid.New(),
		BuyerID:       f.buyer,
		OrderNumber:   "FB-20250901-112233",
		PaymentMethod: enums.PaymentMethodOnline,
		PaymentStatus: enums.PaymentStatusPending,
		Status:        enums.OrderStatusPending,
		TotalPaisa:    150_00,
		Items: []models.OrderItem{
			{ID: uuid.New(), FarmerID: f.farmer, Status: enums.OrderItemStatusAccepted, SubtotalPaisa: 100_00},
			{ID: uuid.New(), FarmerID: uuid.New(), Status: enums.OrderItemStatusDeclined, SubtotalPaisa: 50_00},
		},
	}
	f.repo.orders[f.order.ID] = f.order

	svc, err := NewService(f.repo, f.tx, f.gateway, f.notifier)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	f.svc = svc
	return f
}

func (f *paymentFixture) seedPending(t *testing.T) *models.PaymentTransaction {
	t.Helper()
	txn := &models.PaymentTransaction{
		ID:          uuid.New(),
		OrderID:     f.order.ID,
		BuyerID:     f.buyer,
		ProductID:   uuid.New(),
		AmountPaisa: 100_00,
		Status:      enums.PaymentStatusPending,
	}
	f.repo.transactions[txn.ProductID] = txn
	return txn
}

func TestInitiateCreatesPendingAttempt(t *testing.T) {
	f := newPaymentFixture(t)

	resp, err := f.svc.Initiate(context.Background(), f.buyer, InitiateRequest{OrderID: f.order.ID})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if resp.Transaction.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending attempt, got %s", resp.Transaction.Status)
	}
	if resp.Transaction.AmountPaisa != 100_00 {
		t.Fatalf("expected declined line excluded from amount, got %d", resp.Transaction.AmountPaisa)
	}
	if resp.Payload == nil || resp.Payload.TransactionUUID != resp.Transaction.ProductID.String() {
		t.Fatalf("payload does not match transaction")
	}
	if len(f.repo.created) != 1 {
		t.Fatalf("expected one persisted attempt, got %d", len(f.repo.created))
	}
}

func TestInitiateSupersedesStalePendingAttempt(t *testing.T) {
	f := newPaymentFixture(t)
	stale := f.seedPending(t)

	if _, err := f.svc.Initiate(context.Background(), f.buyer, InitiateRequest{OrderID: f.order.ID}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if stale.Status != enums.PaymentStatusFailed {
		t.Fatalf("expected stale attempt failed, got %s", stale.Status)
	}
	if stale.FailureReason == nil || *stale.FailureReason != supersededReason {
		t.Fatalf("expected supersede reason on stale attempt")
	}
	if len(f.repo.superseded) != 1 {
		t.Fatalf("expected supersede inside the initiate transaction")
	}
}

func TestInitiateRejectsForeignOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Initiate(context.Background(), uuid.New(), InitiateRequest{OrderID: f.order.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestInitiateRejectsCashOnDelivery(t *testing.T) {
	f := newPaymentFixture(t)
	f.order.PaymentMethod = enums.PaymentMethodCashOnDelivery

	_, err := f.svc.Initiate(context.Background(), f.buyer, InitiateRequest{OrderID: f.order.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestInitiateRejectsPaidOrder(t *testing.T) {
	f := newPaymentFixture(t)
	f.order.PaymentStatus = enums.PaymentStatusCompleted

	_, err := f.svc.Initiate(context.Background(), f.buyer, InitiateRequest{OrderID: f.order.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestInitiateRequiresAcceptedItem(t *testing.T) {
	f := newPaymentFixture(t)
	f.order.Items[0].Status = enums.OrderItemStatusPending

	_, err := f.svc.Initiate(context.Background(), f.buyer, InitiateRequest{OrderID: f.order.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict without accepted item, got %v", err)
	}
	if len(f.repo.created) != 0 {
		t.Fatalf("expected no attempt persisted")
	}
}

func TestCheckStatusCompleteSettlesAtomically(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)
	f.gateway.status = esewa.StatusComplete

	dto, err := f.svc.CheckStatus(context.Background(), f.buyer, txn.ProductID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if dto.Status != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed, got %s", dto.Status)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one settle transaction, got %d", f.tx.calls)
	}
	if !f.repo.paidInTx {
		t.Fatalf("expected order update inside the settle transaction")
	}
	if f.order.PaymentStatus != enums.PaymentStatusCompleted || f.order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected order confirmed and paid, got %s/%s", f.order.PaymentStatus, f.order.Status)
	}

	var buyerPinged, farmerPinged bool
	for _, e := range f.notifier.events {
		if e.Type != enums.NotificationPaymentSettled {
			t.Fatalf("unexpected event type %s", e.Type)
		}
		if e.RecipientUserID == f.buyer {
			buyerPinged = true
		}
		if e.RecipientUserID == f.farmer {
			farmerPinged = true
		}
	}
	if !buyerPinged || !farmerPinged {
		t.Fatalf("expected buyer and accepting farmer notified, got %+v", f.notifier.events)
	}
}

func TestCheckStatusPendingLeavesRowAlone(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)
	f.gateway.status = esewa.StatusPending

	dto, err := f.svc.CheckStatus(context.Background(), f.buyer, txn.ProductID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if dto.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending, got %s", dto.Status)
	}
	if f.repo.completeHit || f.repo.failReason != "" {
		t.Fatalf("expected no writes on a pending verdict")
	}
}

func TestCheckStatusCanceledFailsAttempt(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)
	f.gateway.status = esewa.StatusCanceled

	dto, err := f.svc.CheckStatus(context.Background(), f.buyer, txn.ProductID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if dto.Status != enums.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", dto.Status)
	}
	if dto.FailureReason == nil || *dto.FailureReason != string(esewa.StatusCanceled) {
		t.Fatalf("expected gateway verdict recorded, got %+v", dto.FailureReason)
	}
	if len(f.notifier.events) != 0 {
		t.Fatalf("expected no notifications on failure")
	}
}

func TestCheckStatusTerminalRowSkipsGateway(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)
	txn.Status = enums.PaymentStatusCompleted

	dto, err := f.svc.CheckStatus(context.Background(), f.buyer, txn.ProductID)
	if err != nil {
		t.Fatalf("check status: %v", err)
	}
	if dto.Status != enums.PaymentStatusCompleted {
		t.Fatalf("expected stored status, got %s", dto.Status)
	}
	if len(f.gateway.checked) != 0 {
		t.Fatalf("expected no gateway call for a settled row")
	}
}

func TestCheckStatusEnforcesOwnership(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)

	_, err := f.svc.CheckStatus(context.Background(), uuid.New(), txn.ProductID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCheckStatusGatewayFailureSurfacesDependencyError(t *testing.T) {
	f := newPaymentFixture(t)
	txn := f.seedPending(t)
	f.gateway.statusErr = errors.New("gateway timeout")

	_, err := f.svc.CheckStatus(context.Background(), f.buyer, txn.ProductID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
