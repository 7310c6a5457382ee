package enums

import "fmt"

// ListingCategory maps to the listing_category enum in Postgres.
type ListingCategory string

const (
	ListingCategoryTrending     ListingCategory = "trending"
	ListingCategoryRooms        ListingCategory = "rooms"
	ListingCategoryIconicCities ListingCategory = "iconic_cities"
	ListingCategoryMountains    ListingCategory = "mountains"
	ListingCategoryCastles      ListingCategory = "castles"
	ListingCategoryAmazingPools ListingCategory = "amazing_pools"
	ListingCategoryCamping      ListingCategory = "camping"
	ListingCategoryFarms        ListingCategory = "farms"
	ListingCategoryArctic       ListingCategory = "arctic"
	ListingCategoryDomes        ListingCategory = "domes"
	ListingCategoryBoats        ListingCategory = "boats"
)

var validListingCategories = []ListingCategory{
	ListingCategoryTrending,
	ListingCategoryRooms,
	ListingCategoryIconicCities,
	ListingCategoryMountains,
	ListingCategoryCastles,
	ListingCategoryAmazingPools,
	ListingCategoryCamping,
	ListingCategoryFarms,
	ListingCategoryArctic,
	ListingCategoryDomes,
	ListingCategoryBoats,
}

// String implements fmt.Stringer.
func (l ListingCategory) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingCategory.
func (l ListingCategory) IsValid() bool {
	for _, candidate := range validListingCategories {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingCategory converts raw input into a ListingCategory.
func ParseListingCategory(value string) (ListingCategory, error) {
	for _, candidate := range validListingCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing category %q", value)
}
