package restaurant

// Event sources
const (
	SourceDiscovery = "tablescout.discovery"
	SourceImport    = "tablescout.import"
)

// Event types
const (
	TypeRestaurantCreated  = "restaurant.created"
	TypeRestaurantUpdated  = "restaurant.updated"
	TypeRestaurantArchived = "restaurant.archived"
	TypeReviewAdded        = "review.added"
	TypeReviewDeleted      = "review.deleted"
	TypeImportCompleted    = "import.completed"
)

// Event detail keys
const (
	DetailRestaurantID = "restaurantId"
	DetailReviewID     = "reviewId"
	DetailCity         = "city"
	DetailRating       = "rating"
	DetailImportCount  = "importCount"
)
