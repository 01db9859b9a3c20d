package restaurant

import "fmt"

// Single-table key layout: restaurants live under a RESTAURANT partition
// with a fixed metadata sort key, and GSI1 indexes them by city ordered by
// name for listing.
const (
	SortKeyMetadata = "METADATA"
)

// PartitionKey returns the table partition key for a restaurant id.
func PartitionKey(id string) string {
	return fmt.Sprintf("RESTAURANT#%s", id)
}

// CityPartitionKey returns the GSI1 partition key for a city.
func CityPartitionKey(city string) string {
	return fmt.Sprintf("CITY#%s", city)
}
