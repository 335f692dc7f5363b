package model

// PointsRecord is the points-service projection for one address.
type PointsRecord struct {
	Points        float64 `json:"points"`
	SwapsCount    int64   `json:"swaps_count"`
	JoinPoolCount int64   `json:"join_pool_count"`
}
