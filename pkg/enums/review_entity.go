package enums

import "fmt"

// ReviewEntityType names the kind of account a review targets.
type ReviewEntityType string

const (
	ReviewEntityFarmer   ReviewEntityType = "farmer"
	ReviewEntitySupplier ReviewEntityType = "supplier"
)

var validReviewEntityTypes = []ReviewEntityType{
	ReviewEntityFarmer,
	ReviewEntitySupplier,
}

// String implements fmt.Stringer.
func (r ReviewEntityType) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReviewEntityType.
func (r ReviewEntityType) IsValid() bool {
	for _, candidate := range validReviewEntityTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// Role maps the entity type to the user role the target must hold.
func (r ReviewEntityType) Role() UserRole {
	if r == ReviewEntitySupplier {
		return UserRoleSupplier
	}
	return UserRoleFarmer
}

// ParseReviewEntityType converts raw input into a ReviewEntityType.
func ParseReviewEntityType(value string) (ReviewEntityType, error) {
	for _, candidate := range validReviewEntityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid review entity type %q", value)
}
