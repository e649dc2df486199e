package remote

import (
	"fmt"
	"strings"
)

const (
	directionFetchStringConstant     = "fetch"
	directionPushStringConstant      = "push"
	invalidDirectionTemplateConstant = "invalid remote direction %q; expected `fetch` or `push`"
	parseDirectionOperationConstant  = "parse direction"
)

// Direction identifies whether a connection downloads (fetch) or uploads (push) data.
type Direction string

// Supported directions.
const (
	DirectionFetch Direction = Direction(directionFetchStringConstant)
	DirectionPush  Direction = Direction(directionPushStringConstant)
)

// Directions lists the recognized direction tokens.
func Directions() []string {
	return []string{string(DirectionFetch), string(DirectionPush)}
}

// ParseDirection converts a direction token into a Direction.
// Only the exact tokens "fetch" and "push" are accepted.
func ParseDirection(token string) (Direction, error) {
	direction := Direction(strings.TrimSpace(token))
	if validationError := direction.validate(parseDirectionOperationConstant); validationError != nil {
		return "", validationError
	}
	return direction, nil
}

// String returns the direction token.
func (direction Direction) String() string {
	return string(direction)
}

func (direction Direction) validate(operation string) error {
	switch direction {
	case DirectionFetch, DirectionPush:
		return nil
	default:
		return newOperationError(ErrInvalidArgument, operation, fmt.Sprintf(invalidDirectionTemplateConstant, string(direction)), nil)
	}
}
