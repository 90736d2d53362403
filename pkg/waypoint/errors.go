package waypoint

import (
	"errors"
	"fmt"

	"github.com/teslashibe/go-wayfinder/pkg/band"
)

// Sentinel errors for graph configuration problems.
var (
	// ErrDanglingNext is returned when a node's next code is not in the graph.
	ErrDanglingNext = errors.New("waypoint: next references unknown code")

	// ErrDuplicateCode is returned when a code appears more than once.
	ErrDuplicateCode = errors.New("waypoint: duplicate code")

	// ErrInvalidColor is returned for a partition key that is not a band.
	ErrInvalidColor = errors.New("waypoint: invalid color partition")

	// ErrInvalidNode is returned for a node missing its code or text.
	ErrInvalidNode = errors.New("waypoint: invalid node")

	// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML.
	ErrUnsupportedFormat = errors.New("waypoint: unsupported file format")
)

// ValidationError describes one configuration problem.
type ValidationError struct {
	Code  string
	Color band.Band
	Err   error
	Info  string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("%v: %s/%s (%s)", e.Err, e.Color, e.Code, e.Info)
	}
	return fmt.Sprintf("%v: %s/%s", e.Err, e.Color, e.Code)
}

// Unwrap returns the underlying sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate reports every duplicate code and every dangling next reference.
// The returned error joins one ValidationError per problem.
func (g *Graph) Validate() error {
	var errs []error

	for _, d := range g.dups {
		errs = append(errs, &ValidationError{
			Code:  d.code,
			Color: d.color,
			Err:   ErrDuplicateCode,
			Info:  "first defined in " + d.first.String(),
		})
	}

	for _, b := range band.All() {
		for _, code := range g.order[b] {
			n := g.partitions[b][code]
			if n.Next == "" {
				continue
			}
			if _, ok := g.Lookup(n.Next); !ok {
				errs = append(errs, &ValidationError{
					Code:  code,
					Color: b,
					Err:   ErrDanglingNext,
					Info:  "next " + n.Next,
				})
			}
		}
	}
	return errors.Join(errs...)
}
