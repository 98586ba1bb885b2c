package party

import "context"

// Store persists entity records. Implementations map the declarative
// descriptor semantics (duplicate guards, dependent guards, partial update,
// party supertype rows) onto their backing medium.
type Store interface {
	List(ctx context.Context, d *Descriptor) ([]Record, error)
	Get(ctx context.Context, d *Descriptor, id int64) (Record, error)
	Create(ctx context.Context, d *Descriptor, rec Record) (Record, error)
	Update(ctx context.Context, d *Descriptor, id int64, update Record) (Record, error)
	Delete(ctx context.Context, d *Descriptor, id int64) error
}
