package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

type stubDeliveryRepo struct {
	items  map[uuid.UUID]*models.OrderItem
	orders map[uuid.UUID]*models.Order

	claimLoss   bool
	advanceLoss bool
	lastArea    string
}

func newStubDeliveryRepo() *stubDeliveryRepo {
	return &stubDeliveryRepo{
		items:  map[uuid.UUID]*models.OrderItem{},
		orders: map[uuid.UUID]*models.Order{},
	}
}

func (s *stubDeliveryRepo) ListAvailable(_ context.Context, serviceArea string, _ pagination.Params) ([]DeliveryRow, string, error) {
	s.lastArea = serviceArea
	var rows []DeliveryRow
	for _, item := range s.items {
		if item.Status == enums.OrderItemStatusAccepted && item.SupplierID == nil {
			rows = append(rows, DeliveryRow{OrderItem: *item})
		}
	}
	return rows, "", nil
}

func (s *stubDeliveryRepo) ListBySupplier(_ context.Context, supplierID uuid.UUID, active bool, _ pagination.Params) ([]DeliveryRow, string, error) {
	var rows []DeliveryRow
	for _, item := range s.items {
		if item.SupplierID == nil || *item.SupplierID != supplierID {
			continue
		}
		if active == item.Status.IsTerminal() {
			continue
		}
		rows = append(rows, DeliveryRow{OrderItem: *item})
	}
	return rows, "", nil
}

func (s *stubDeliveryRepo) FindItem(_ context.Context, id uuid.UUID) (*models.OrderItem, error) {
	if item, ok := s.items[id]; ok {
		return item, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDeliveryRepo) FindOrder(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDeliveryRepo) ClaimItem(_ context.Context, itemID, supplierID uuid.UUID, at time.Time) (int64, error) {
	if s.claimLoss {
		return 0, nil
	}
	item, ok := s.items[itemID]
	if !ok || item.Status != enums.OrderItemStatusAccepted || item.SupplierID != nil {
		return 0, nil
	}
	item.Status = enums.OrderItemStatusAssigned
	item.SupplierID = &supplierID
	item.AssignedAt = &at
	return 1, nil
}

func (s *stubDeliveryRepo) AdvanceItem(_ context.Context, itemID, supplierID uuid.UUID, from, to enums.OrderItemStatus, _ map[string]any) (int64, error) {
	if s.advanceLoss {
		return 0, nil
	}
	item, ok := s.items[itemID]
	if !ok || item.SupplierID == nil || *item.SupplierID != supplierID || item.Status != from {
		return 0, nil
	}
	item.Status = to
	return 1, nil
}

type stubProfiles struct {
	byUser map[uuid.UUID]*models.SupplierDetail
}

func (s *stubProfiles) FindByUserID(_ context.Context, userID uuid.UUID) (*models.SupplierDetail, error) {
	if d, ok := s.byUser[userID]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubNotifier struct {
	events []notifications.Event
}

func (s *stubNotifier) Publish(_ context.Context, event notifications.Event) {
	s.events = append(s.events, event)
}

type fixture struct {
	repo     *stubDeliveryRepo
	profiles *stubProfiles
	notifier *stubNotifier
	svc      Service
	supplier uuid.UUID
	buyer    uuid.UUID
	farmer   uuid.UUID
	order    *models.Order
	item     *models.OrderItem
}

func newFixture(t *testing.T, itemStatus enums.OrderItemStatus, claimed bool) *fixture {
	t.Helper()
	f := &fixture{
		repo:     newStubDeliveryRepo(),
		profiles: &stubProfiles{byUser: map[uuid.UUID]*models.SupplierDetail{}},
		notifier: &stubNotifier{},
		supplier: uuid.New(),
		buyer:    uuid.New(),
		farmer:   uuid.New(),
	}
	f.profiles.byUser[f.supplier] = &models.SupplierDetail{
		UserID:      f.supplier,
		ServiceArea: "Kathmandu",
	}

	f.order = &models.Order{
		ID:          uuid.New(),
		BuyerID:     f.buyer,
		OrderNumber: "FB-20250901-654321",
		City:        "Kathmandu",
	}
	f.repo.orders[f.order.ID] = f.order

	f.item = &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     f.order.ID,
		FarmerID:    f.farmer,
		ProductName: "Tomato",
		Quantity:    5,
		Status:      itemStatus,
	}
	if claimed {
		supplierID := f.supplier
		f.item.SupplierID = &supplierID
	}
	f.repo.items[f.item.ID] = f.item

	svc, err := NewService(f.repo, f.profiles, f.notifier)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	f.svc = svc
	return f
}

func TestListAvailableUsesSupplierServiceArea(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAccepted, false)

	result, err := f.svc.ListAvailable(context.Background(), ListInput{SupplierID: f.supplier})
	if err != nil {
		t.Fatalf("list available: %v", err)
	}
	if f.repo.lastArea != "Kathmandu" {
		t.Fatalf("expected service area filter, got %q", f.repo.lastArea)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected one available delivery, got %d", len(result.Items))
	}
}

func TestListAvailableRequiresProfile(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAccepted, false)

	_, err := f.svc.ListAvailable(context.Background(), ListInput{SupplierID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden without profile, got %v", err)
	}
}

func TestAcceptClaimsUnassignedItem(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAccepted, false)

	dto, err := f.svc.Accept(context.Background(), f.supplier, AcceptRequest{OrderItemID: f.item.ID})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if dto.Status != enums.OrderItemStatusAssigned {
		t.Fatalf("expected assigned, got %s", dto.Status)
	}
	if dto.SupplierID == nil || *dto.SupplierID != f.supplier {
		t.Fatalf("expected supplier recorded")
	}
	if f.item.AssignedAt == nil {
		t.Fatalf("expected assigned_at stamp")
	}
	if len(f.notifier.events) != 1 || f.notifier.events[0].RecipientUserID != f.buyer {
		t.Fatalf("expected buyer notification, got %+v", f.notifier.events)
	}
}

func TestAcceptConflictsWhenAlreadyClaimed(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)

	other := uuid.New()
	f.profiles.byUser[other] = &models.SupplierDetail{UserID: other, ServiceArea: "Pokhara"}

	_, err := f.svc.Accept(context.Background(), other, AcceptRequest{OrderItemID: f.item.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for claimed item, got %v", err)
	}
}

func TestAcceptStateConflictWhenNotAccepted(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusPending, false)

	_, err := f.svc.Accept(context.Background(), f.supplier, AcceptRequest{OrderItemID: f.item.ID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for pending item, got %v", err)
	}
}

func TestUpdateStatusWalksSequence(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)

	steps := []enums.OrderItemStatus{
		enums.OrderItemStatusPickupInProgress,
		enums.OrderItemStatusPickedUp,
		enums.OrderItemStatusInTransit,
		enums.OrderItemStatusDelivered,
	}
	for _, step := range steps {
		dto, err := f.svc.UpdateStatus(context.Background(), f.supplier, f.item.ID, StatusUpdateRequest{Status: step})
		if err != nil {
			t.Fatalf("advance to %s: %v", step, err)
		}
		if dto.Status != step {
			t.Fatalf("expected %s, got %s", step, dto.Status)
		}
	}

	// delivered also pings the farmer, on top of the per-step buyer updates
	var farmerPings int
	for _, e := range f.notifier.events {
		if e.RecipientUserID == f.farmer {
			farmerPings++
		}
	}
	if farmerPings != 1 {
		t.Fatalf("expected one farmer notification, got %d", farmerPings)
	}
	if f.item.CompletedAt == nil {
		t.Fatalf("expected completed_at stamp on delivery")
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)

	_, err := f.svc.UpdateStatus(context.Background(), f.supplier, f.item.ID, StatusUpdateRequest{
		Status: enums.OrderItemStatusDelivered,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for skipped step, got %v", err)
	}
}

func TestUpdateStatusAllowsFailureEscape(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusInTransit, true)

	notes := "vehicle breakdown on Prithvi highway"
	dto, err := f.svc.UpdateStatus(context.Background(), f.supplier, f.item.ID, StatusUpdateRequest{
		Status:        enums.OrderItemStatusFailed,
		DeliveryNotes: &notes,
	})
	if err != nil {
		t.Fatalf("fail delivery: %v", err)
	}
	if dto.Status != enums.OrderItemStatusFailed {
		t.Fatalf("expected failed, got %s", dto.Status)
	}
	if dto.DeliveryNotes == nil || *dto.DeliveryNotes != notes {
		t.Fatalf("expected delivery notes stored")
	}
}

func TestUpdateStatusEnforcesOwnership(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), f.item.ID, StatusUpdateRequest{
		Status: enums.OrderItemStatusPickupInProgress,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestUpdateStatusRejectsFarmerDecisionStatuses(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)

	_, err := f.svc.UpdateStatus(context.Background(), f.supplier, f.item.ID, StatusUpdateRequest{
		Status: enums.OrderItemStatusAccepted,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusConcurrentWriterWins(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusAssigned, true)
	f.repo.advanceLoss = true

	_, err := f.svc.UpdateStatus(context.Background(), f.supplier, f.item.ID, StatusUpdateRequest{
		Status: enums.OrderItemStatusPickupInProgress,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestListActiveAndHistorySplitByTerminal(t *testing.T) {
	f := newFixture(t, enums.OrderItemStatusInTransit, true)

	supplierID := f.supplier
	done := &models.OrderItem{
		ID:         uuid.New(),
		OrderID:    f.order.ID,
		FarmerID:   f.farmer,
		Status:     enums.OrderItemStatusDelivered,
		SupplierID: &supplierID,
	}
	f.repo.items[done.ID] = done

	active, err := f.svc.ListActive(context.Background(), ListInput{SupplierID: f.supplier})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active.Items) != 1 || active.Items[0].Status != enums.OrderItemStatusInTransit {
		t.Fatalf("unexpected active set: %+v", active.Items)
	}

	history, err := f.svc.ListHistory(context.Background(), ListInput{SupplierID: f.supplier})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(history.Items) != 1 || history.Items[0].Status != enums.OrderItemStatusDelivered {
		t.Fatalf("unexpected history set: %+v", history.Items)
	}
}
