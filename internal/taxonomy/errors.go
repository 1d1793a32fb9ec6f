package taxonomy

import "errors"

// Sentinel errors for taxonomy operations. Every one is recoverable and
// returned wrapped with the offending names; check with errors.Is.
var (
	ErrEmptyName     = errors.New("taxonomy: tag name is empty")
	ErrDuplicateName = errors.New("taxonomy: tag name already exists")
	ErrUnknownTag    = errors.New("taxonomy: unknown tag")
	ErrUnknownParent = errors.New("taxonomy: unknown parent tag")
	ErrCycle         = errors.New("taxonomy: parent would create a cycle")
	ErrHasChildren   = errors.New("taxonomy: tag has child tags")
	ErrEmptyContent  = errors.New("taxonomy: knowledge point content is empty")
	ErrPointIndex    = errors.New("taxonomy: knowledge point index out of range")
)
