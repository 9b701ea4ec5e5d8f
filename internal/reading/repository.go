package reading

import "context"

// Store is the persistence collaborator the bridge writes through.
// Implementations return the identifier of the inserted row.
type Store interface {
	InsertReading(ctx context.Context, r *Reading) (int64, error)
	InsertEvent(ctx context.Context, e Event) (int64, error)
	InsertStatistics(ctx context.Context, s Statistics) (int64, error)
}

// Repository extends Store with the read-side queries the HTTP API serves.
type Repository interface {
	Store

	RecentReadings(ctx context.Context, limit int) ([]StoredReading, error)
	RecentEvents(ctx context.Context, limit int) ([]StoredEvent, error)
	RecentStatistics(ctx context.Context, limit int) ([]StoredStatistics, error)
}
