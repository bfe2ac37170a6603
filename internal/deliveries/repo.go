package deliveries

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

const deliveryColumns = `order_items.*,
	orders.order_number AS order_number,
	orders.shipping_address AS shipping_address,
	orders.city AS city,
	orders.state AS state,
	orders.pin_code AS pin_code`

// Repository exposes supplier-side order item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a deliveries repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("order_items").
		Select(deliveryColumns).
		Joins("JOIN orders ON orders.id = order_items.order_id")
}

// ListAvailable pages unclaimed accepted items, optionally narrowed to the
// supplier's service area by destination city or state.
func (r *Repository) ListAvailable(ctx context.Context, serviceArea string, p pagination.Params) ([]DeliveryRow, string, error) {
	pageSize := pagination.NormalizeLimit(p.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(p.Limit)

	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.joined(ctx).
		Where("order_items.status = ? AND order_items.supplier_id IS NULL", enums.OrderItemStatusAccepted)
	if area := strings.TrimSpace(serviceArea); area != "" {
		pattern := "%" + area + "%"
		qb = qb.Where("orders.city ILIKE ? OR orders.state ILIKE ?", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(order_items.created_at < ?) OR (order_items.created_at = ? AND order_items.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []DeliveryRow
	err = qb.Order("order_items.created_at DESC, order_items.id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}
	return pageRows(rows, pageSize)
}

// ListBySupplier pages the supplier's claimed items; active selects non-terminal rows.
func (r *Repository) ListBySupplier(ctx context.Context, supplierID uuid.UUID, active bool, p pagination.Params) ([]DeliveryRow, string, error) {
	pageSize := pagination.NormalizeLimit(p.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(p.Limit)

	cursor, err := pagination.ParseCursor(p.Cursor)
	if err != nil {
		return nil, "", err
	}

	terminal := []enums.OrderItemStatus{
		enums.OrderItemStatusDelivered,
		enums.OrderItemStatusFailed,
		enums.OrderItemStatusCancelled,
	}

	qb := r.joined(ctx).Where("order_items.supplier_id = ?", supplierID)
	if active {
		qb = qb.Where("order_items.status NOT IN ?", terminal)
	} else {
		qb = qb.Where("order_items.status IN ?", terminal)
	}
	if cursor != nil {
		qb = qb.Where("(order_items.created_at < ?) OR (order_items.created_at = ? AND order_items.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []DeliveryRow
	err = qb.Order("order_items.created_at DESC, order_items.id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}
	return pageRows(rows, pageSize)
}

// FindItem loads one order item.
func (r *Repository) FindItem(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindOrder loads the parent order without its items.
func (r *Repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ClaimItem assigns the supplier if the item is still accepted and unclaimed.
// Zero rows means another supplier won the race.
func (r *Repository) ClaimItem(ctx context.Context, itemID, supplierID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND status = ? AND supplier_id IS NULL", itemID, enums.OrderItemStatusAccepted).
		Updates(map[string]any{
			"status":      enums.OrderItemStatusAssigned,
			"supplier_id": supplierID,
			"assigned_at": at,
		})
	return res.RowsAffected, res.Error
}

// AdvanceItem flips the claimed item's status only when it still holds the
// expected prior status and belongs to the supplier.
func (r *Repository) AdvanceItem(ctx context.Context, itemID, supplierID uuid.UUID, from, to enums.OrderItemStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	res := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND supplier_id = ? AND status = ?", itemID, supplierID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func pageRows(rows []DeliveryRow, pageSize int) ([]DeliveryRow, string, error) {
	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}
