package motionplan

import "github.com/pkg/errors"

var (
	// ErrNoSolution is returned by a SearchEngine that could not connect start and goal.
	ErrNoSolution = errors.New("motion planner failed to find path")

	// ErrBufferTooLarge is returned when the node buffers for a grid would exceed the limit.
	ErrBufferTooLarge = errors.New("node buffers exceed the configured limit")
)

// NewBufferTooLargeError reports the requested buffer dimensions.
func NewBufferTooLargeError(width, height, headings, limit int) error {
	return errors.Wrapf(ErrBufferTooLarge, "%dx%dx%d nodes requested, limit is %d", width, height, headings, limit)
}
