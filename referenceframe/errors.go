package referenceframe

import "github.com/pkg/errors"

// ErrTransformUnavailable is returned when no fresh chain of transforms links two frames.
var ErrTransformUnavailable = errors.New("transform unavailable")

// NewTransformUnavailableError names the frames that could not be linked.
func NewTransformUnavailableError(target, source string) error {
	return errors.Wrapf(ErrTransformUnavailable, "from %q to %q", source, target)
}
