package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fasalbajar/fasalbajar-backend/internal/notifications"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db"
	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	pkgerrors "github.com/fasalbajar/fasalbajar-backend/pkg/errors"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

type reviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByEntity(ctx context.Context, entityID uuid.UUID, p pagination.Params) ([]models.Review, string, error)
	Summary(ctx context.Context, entityID uuid.UUID) (float64, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type notifier interface {
	Publish(ctx context.Context, event notifications.Event)
}

// Service defines review operations: rating farmers and suppliers, and the
// aggregated rating summary buyers browse.
type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error)
	ListForEntity(ctx context.Context, input ListInput) (*ListResult, error)
	Update(ctx context.Context, authorID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error
}

type service struct {
	repo     reviewRepository
	users    userReader
	notifier notifier
}

// NewService builds a review service with the required dependencies.
func NewService(repo reviewRepository, users userReader, notifier notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{repo: repo, users: users, notifier: notifier}, nil
}

func (s *service) Create(ctx context.Context, authorID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !req.EntityType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid entity type")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if req.EntityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity_id is required")
	}
	if req.EntityID == authorID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot review yourself")
	}

	target, err := s.users.FindByID(ctx, req.EntityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review target not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review target")
	}
	if target.Role != req.EntityType.Role() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("target is not a %s", req.EntityType))
	}

	review := &models.Review{
		ID:         uuid.New(),
		UserID:     authorID,
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
		Rating:     req.Rating,
		Comment:    trimComment(req.Comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if db.IsUniqueViolation(err, "idx_reviews_user_entity") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already reviewed this account")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	s.notifier.Publish(ctx, notifications.Event{
		Type:            enums.NotificationReviewCreated,
		RecipientUserID: review.EntityID,
		Title:           "New review",
		Body:            fmt.Sprintf("You received a %d-star review", review.Rating),
	})
	return FromModel(review), nil
}

func (s *service) ListForEntity(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.EntityID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entity_id is required")
	}

	reviews, nextCursor, err := s.repo.ListByEntity(ctx, input.EntityID, input.Pagination)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	average, count, err := s.repo.Summary(ctx, input.EntityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summarize reviews")
	}

	return &ListResult{
		Items:      fromModels(reviews),
		Average:    roundRating(average),
		Count:      count,
		NextCursor: nextCursor,
	}, nil
}

func (s *service) Update(ctx context.Context, authorID, reviewID uuid.UUID, req UpdateReviewRequest) (*ReviewDTO, error) {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != authorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to user")
	}

	updates := map[string]any{}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
		}
		updates["rating"] = *req.Rating
	}
	if req.Comment != nil {
		updates["comment"] = trimComment(req.Comment)
	}
	if len(updates) == 0 {
		return FromModel(review), nil
	}

	updated, err := s.repo.Update(ctx, reviewID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, actorRole enums.UserRole, reviewID uuid.UUID) error {
	review, err := s.loadReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID && actorRole != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to user")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	return nil
}

func (s *service) loadReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	return review, nil
}

func trimComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func roundRating(average float64) float64 {
	return math.Round(average*100) / 100
}
