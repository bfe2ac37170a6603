package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/fasalbajar/fasalbajar-backend/pkg/db/models"
	"github.com/fasalbajar/fasalbajar-backend/pkg/enums"
	"github.com/fasalbajar/fasalbajar-backend/pkg/pagination"
)

// ReviewDTO is the API shape of one review.
type ReviewDTO struct {
	ID         uuid.UUID              `json:"id"`
	UserID     uuid.UUID              `json:"user_id"`
	EntityID   uuid.UUID              `json:"entity_id"`
	EntityType enums.ReviewEntityType `json:"entity_type"`
	Rating     int                    `json:"rating"`
	Comment    *string                `json:"comment,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// CreateReviewRequest rates a farmer or supplier.
type CreateReviewRequest struct {
	EntityID   uuid.UUID              `json:"entity_id" validate:"required"`
	EntityType enums.ReviewEntityType `json:"entity_type" validate:"required"`
	Rating     int                    `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string                `json:"comment,omitempty"`
}

// UpdateReviewRequest edits the author's own review. Nil fields stay unchanged.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// ListInput pages reviews for one target entity.
type ListInput struct {
	EntityID   uuid.UUID
	Pagination pagination.Params
}

// ListResult is one page of reviews plus the target's rating summary.
type ListResult struct {
	Items      []ReviewDTO `json:"items"`
	Average    float64     `json:"average_rating"`
	Count      int64       `json:"review_count"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted review onto the API shape.
func FromModel(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         review.ID,
		UserID:     review.UserID,
		EntityID:   review.EntityID,
		EntityType: review.EntityType,
		Rating:     review.Rating,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
		UpdatedAt:  review.UpdatedAt,
	}
}

func fromModels(reviews []models.Review) []ReviewDTO {
	out := make([]ReviewDTO, 0, len(reviews))
	for i := range reviews {
		out = append(out, *FromModel(&reviews[i]))
	}
	return out
}
