package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product
	orders   map[uuid.UUID]*models.Order
	items    map[uuid.UUID]*models.OrderItem

	decrements      map[uuid.UUID]int
	failStockFor    uuid.UUID
	statusUpdateHit bool
	concurrentLoss  bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:   map[uuid.UUID]*models.Product{},
		orders:     map[uuid.UUID]*models.Order{},
		items:      map[uuid.UUID]*models.OrderItem{},
		decrements: map[uuid.UUID]int{},
	}
}

func (s *stubRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRepo) CreateOrder(_ context.Context, order *models.Order) error {
	order.ID = uuid.New()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		item := order.Items[i]
		s.items[item.ID] = &item
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubRepo) FindOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListOrdersByBuyer(_ context.Context, input ListInput) ([]models.Order, string, error) {
	var rows []models.Order
	for _, o := range s.orders {
		if o.BuyerID == input.BuyerID {
			rows = append(rows, *o)
		}
	}
	return rows, "", nil
}

func (s *stubRepo) FindItem(_ context.Context, id uuid.UUID) (*models.OrderItem, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) ListItemsByFarmer(_ context.Context, input ItemListInput) ([]models.OrderItem, string, error) {
	var rows []models.OrderItem
	for _, item := range s.items {
		if item.FarmerID != input.FarmerID {
			continue
		}
		if input.Status != nil && item.Status != *input.Status {
			continue
		}
		rows = append(rows, *item)
	}
	return rows, "", nil
}

func (s *stubRepo) UpdateItemStatusFrom(_ context.Context, itemID uuid.UUID, from, to enums.OrderItemStatus, notes *string) (int64, error) {
	s.statusUpdateHit = true
	if s.concurrentLoss {
		return 0, nil
	}
	item, ok := s.items[itemID]
	if !ok || item.Status != from {
		return 0, nil
	}
	item.Status = to
	if notes != nil {
		item.FarmerNotes = notes
	}
	return 1, nil
}

func (s *stubRepo) FindProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) DecrementProductStock(_ context.Context, productID uuid.UUID, qty int) (int64, error) {
	if productID == s.failStockFor {
		return 0, nil
	}
	s.decrements[productID] += qty
	return 1, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubNotifier struct {
	events []notifications.Event
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event) {
	s.events = append(s.events, event)
}

func buildOrderService(t *testing.T, repo *stubRepo) (Service, *stubNotifier) {
	t.Helper()
	notifier := &stubNotifier{}
	svc, err := NewService(repo, stubTxRunner{}, notifier)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, notifier
}

func addProduct(repo *stubRepo, farmerID uuid.UUID, name string, pricePaisa, qty int) *models.Product {
	p := &models.Product{
		ID:          uuid.New(),
		FarmerID:    farmerID,
		ProductName: name,
		ProductType: "vegetable",
		Quantity:    qty,
		Unit:        "kg",
		PricePaisa:  pricePaisa,
	}
	repo.products[p.ID] = p
	return p
}

func validCheckout(items ...CheckoutItemRequest) CheckoutRequest {
	return CheckoutRequest{
		Items:           items,
		ShippingAddress: "Ward 4, Naya Bazar",
		City:            "Kathmandu",
		State:           "Bagmati",
		PinCode:         "44600",
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
	}
}

func TestCheckoutValidation(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)
	buyer := uuid.New()
	product := addProduct(repo, uuid.New(), "Tomato", 5000, 100)

	cases := []struct {
		name string
		req  CheckoutRequest
	}{
		{"no items", validCheckout()},
		{"zero quantity", validCheckout(CheckoutItemRequest{ProductID: product.ID, Quantity: 0})},
		{"nil product", validCheckout(CheckoutItemRequest{Quantity: 1})},
		{"duplicate product", validCheckout(
			CheckoutItemRequest{ProductID: product.ID, Quantity: 1},
			CheckoutItemRequest{ProductID: product.ID, Quantity: 2},
		)},
	}
	for _, tc := range cases {
		_, err := svc.Checkout(context.Background(), buyer, tc.req)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	req := validCheckout(CheckoutItemRequest{ProductID: product.ID, Quantity: 1})
	req.PaymentMethod = "barter"
	_, err := svc.Checkout(context.Background(), buyer, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for bad payment method, got %v", err)
	}

	req = validCheckout(CheckoutItemRequest{ProductID: product.ID, Quantity: 1})
	req.City = "  "
	_, err = svc.Checkout(context.Background(), buyer, req)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for blank city, got %v", err)
	}
}

func TestCheckoutSnapshotsPricesAndNotifiesFarmers(t *testing.T) {
	repo := newStubRepo()
	svc, notifier := buildOrderService(t, repo)

	farmerA := uuid.New()
	farmerB := uuid.New()
	tomato := addProduct(repo, farmerA, "Tomato", 5000, 100)
	potato := addProduct(repo, farmerA, "Potato", 3000, 100)
	rice := addProduct(repo, farmerB, "Rice", 12000, 100)

	buyer := uuid.New()
	dto, err := svc.Checkout(context.Background(), buyer, validCheckout(
		CheckoutItemRequest{ProductID: tomato.ID, Quantity: 2},
		CheckoutItemRequest{ProductID: potato.ID, Quantity: 3},
		CheckoutItemRequest{ProductID: rice.ID, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	wantTotal := 2*5000 + 3*3000 + 1*12000
	if dto.TotalPaisa != wantTotal {
		t.Fatalf("expected total %d, got %d", wantTotal, dto.TotalPaisa)
	}
	if len(dto.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(dto.Items))
	}
	for _, item := range dto.Items {
		if item.Status != enums.OrderItemStatusPending {
			t.Fatalf("expected pending item, got %s", item.Status)
		}
	}
	matched, _ := regexp.MatchString(`^FB-\d{8}-\d{6}$`, dto.OrderNumber)
	if !matched {
		t.Fatalf("unexpected order number format %q", dto.OrderNumber)
	}
	if repo.decrements[tomato.ID] != 2 || repo.decrements[rice.ID] != 1 {
		t.Fatalf("expected stock reservations, got %+v", repo.decrements)
	}

	// One notification per distinct farmer, not per item.
	if len(notifier.events) != 2 {
		t.Fatalf("expected 2 farmer notifications, got %d", len(notifier.events))
	}
	recipients := map[uuid.UUID]bool{}
	for _, e := range notifier.events {
		if e.Type != enums.NotificationOrderPlaced {
			t.Fatalf("expected order_placed events, got %s", e.Type)
		}
		recipients[e.RecipientUserID] = true
	}
	if !recipients[farmerA] || !recipients[farmerB] {
		t.Fatalf("expected both farmers notified")
	}
}

func TestCheckoutInsufficientStockConflicts(t *testing.T) {
	repo := newStubRepo()
	svc, notifier := buildOrderService(t, repo)

	product := addProduct(repo, uuid.New(), "Cabbage", 4000, 1)
	repo.failStockFor = product.ID

	_, err := svc.Checkout(context.Background(), uuid.New(), validCheckout(
		CheckoutItemRequest{ProductID: product.ID, Quantity: 5},
	))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no notifications on failed checkout")
	}
}

func TestGetOrderEnforcesOwnership(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)

	buyer := uuid.New()
	order := &models.Order{BuyerID: buyer, OrderNumber: "FB-20250901-000001"}
	repo.CreateOrder(context.Background(), order)

	_, err := svc.Get(context.Background(), uuid.New(), order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	dto, err := svc.Get(context.Background(), buyer, order.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if dto.OrderNumber != order.OrderNumber {
		t.Fatalf("unexpected order returned")
	}
}

func seedItem(repo *stubRepo, farmerID uuid.UUID, status enums.OrderItemStatus) (*models.Order, *models.OrderItem) {
	buyer := uuid.New()
	order := &models.Order{BuyerID: buyer, OrderNumber: "FB-20250901-123456"}
	repo.CreateOrder(context.Background(), order)

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductID:   uuid.New(),
		FarmerID:    farmerID,
		ProductName: "Tomato",
		Quantity:    2,
		PricePaisa:  5000,
		Status:      status,
	}
	repo.items[item.ID] = item
	return order, item
}

func TestDecideItemAcceptsPendingAndNotifiesBuyer(t *testing.T) {
	repo := newStubRepo()
	svc, notifier := buildOrderService(t, repo)

	farmer := uuid.New()
	order, item := seedItem(repo, farmer, enums.OrderItemStatusPending)

	notes := "ready for pickup after 3pm"
	dto, err := svc.DecideItem(context.Background(), farmer, item.ID, DecisionRequest{
		Status: enums.OrderItemStatusAccepted,
		Notes:  &notes,
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if dto.Status != enums.OrderItemStatusAccepted {
		t.Fatalf("expected accepted, got %s", dto.Status)
	}
	if dto.FarmerNotes == nil || *dto.FarmerNotes != notes {
		t.Fatalf("expected notes to be stored")
	}
	if len(notifier.events) != 1 || notifier.events[0].RecipientUserID != order.BuyerID {
		t.Fatalf("expected buyer notification, got %+v", notifier.events)
	}
	if notifier.events[0].Type != enums.NotificationItemDecided {
		t.Fatalf("expected item_decided event")
	}
}

func TestDecideItemRejectsNonDecisionStatus(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)
	farmer := uuid.New()
	_, item := seedItem(repo, farmer, enums.OrderItemStatusPending)

	_, err := svc.DecideItem(context.Background(), farmer, item.ID, DecisionRequest{
		Status: enums.OrderItemStatusDelivered,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecideItemEnforcesOwnership(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)
	_, item := seedItem(repo, uuid.New(), enums.OrderItemStatusPending)

	_, err := svc.DecideItem(context.Background(), uuid.New(), item.ID, DecisionRequest{
		Status: enums.OrderItemStatusAccepted,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestDecideItemStateConflictAfterDecision(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)
	farmer := uuid.New()
	_, item := seedItem(repo, farmer, enums.OrderItemStatusAccepted)

	_, err := svc.DecideItem(context.Background(), farmer, item.ID, DecisionRequest{
		Status: enums.OrderItemStatusDeclined,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDecideItemIsIdempotentOnRepeat(t *testing.T) {
	repo := newStubRepo()
	svc, notifier := buildOrderService(t, repo)
	farmer := uuid.New()
	_, item := seedItem(repo, farmer, enums.OrderItemStatusAccepted)

	dto, err := svc.DecideItem(context.Background(), farmer, item.ID, DecisionRequest{
		Status: enums.OrderItemStatusAccepted,
	})
	if err != nil {
		t.Fatalf("repeat decide: %v", err)
	}
	if dto.Status != enums.OrderItemStatusAccepted {
		t.Fatalf("expected accepted, got %s", dto.Status)
	}
	if repo.statusUpdateHit {
		t.Fatalf("expected no status update for repeat decision")
	}
	if len(notifier.events) != 0 {
		t.Fatalf("expected no notification for repeat decision")
	}
}

func TestDecideItemConcurrentWriterWins(t *testing.T) {
	repo := newStubRepo()
	svc, _ := buildOrderService(t, repo)
	farmer := uuid.New()
	_, item := seedItem(repo, farmer, enums.OrderItemStatusPending)
	repo.concurrentLoss = true

	_, err := svc.DecideItem(context.Background(), farmer, item.ID, DecisionRequest{
		Status: enums.OrderItemStatusAccepted,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on concurrent update, got %v", err)
	}
}

func TestNewOrderNumberFormat(t *testing.T) {
	now := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	number, err := newOrderNumber(now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	matched, _ := regexp.MatchString(`^FB-20250901-\d{6}$`, number)
	if !matched {
		t.Fatalf("unexpected format %q", number)
	}
}
