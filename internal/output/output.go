package output

import (
	"context"

	"github.com/kiriyama-dx/hcpmix/internal/model"
)

// Sink defines the interface for normalized dataset destinations. A
// dataset arrives complete; sinks never see partial runs.
type Sink interface {
	Write(ctx context.Context, ds model.Dataset) error
	Close() error
}
