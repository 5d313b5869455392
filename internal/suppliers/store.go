package suppliers

import "context"

// Store is the data access contract for suppliers. Get returns
// shared.ErrNotFound for a missing row; every other error is a store
// failure the caller treats as opaque. Implementations sanitize Input
// before persisting it.
type Store interface {
	List(ctx context.Context) ([]Supplier, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, in Input) (int64, error)
	Update(ctx context.Context, id int64, in Input) error
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}
