package room

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validation error codes.
const (
	CodeInvalidField      = "invalid_field"
	CodeNonPositiveExtent = "non_positive_extent"
	CodeDuplicateID       = "duplicate_id"
)

// ValidationError describes one problem with a room record.
type ValidationError struct {
	Code    string
	Message string
	RoomID  int
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (room: %d)", e.Code, e.Message, e.RoomID)
}

// Validate checks a single room. Axis alignment of explicit corners is
// left to the engine, which rejects it while building the room's edges.
func (r Room) Validate() []ValidationError {
	var errs []ValidationError

	if err := validate.Struct(r); err != nil {
		errs = append(errs, ValidationError{
			Code:    CodeInvalidField,
			Message: formatValidationError(err).Error(),
			RoomID:  r.ID,
		})
	}

	if len(r.Corners) == 0 {
		errs = append(errs, validateExtent(r)...)
	}
	return errs
}

func validateExtent(r Room) []ValidationError {
	var errs []ValidationError
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", r.Width}, {"depth", r.Depth}, {"height", r.Height}} {
		if d.v <= 0 {
			errs = append(errs, ValidationError{
				Code:    CodeNonPositiveExtent,
				Message: fmt.Sprintf("room %s is %.4f, must be positive", d.name, d.v),
				RoomID:  r.ID,
			})
		}
	}
	return errs
}

// ValidateAll checks every room and the uniqueness of their IDs.
func ValidateAll(rooms []Room) []ValidationError {
	var errs []ValidationError
	seen := make(map[int]bool, len(rooms))
	for _, r := range rooms {
		if seen[r.ID] {
			errs = append(errs, ValidationError{
				Code:    CodeDuplicateID,
				Message: fmt.Sprintf("room id %d used more than once", r.ID),
				RoomID:  r.ID,
			})
		}
		seen[r.ID] = true
		errs = append(errs, r.Validate()...)
	}
	return errs
}

// Join folds validation errors into one error, or nil.
func Join(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	wrapped := make([]error, len(errs))
	for i, e := range errs {
		wrapped[i] = e
	}
	return errors.Join(wrapped...)
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	for _, e := range validationErrs {
		switch e.Tag() {
		case "len":
			return fmt.Errorf("%s: must have exactly %s entries", e.Field(), e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", e.Field(), e.Param())
		case "max":
			return fmt.Errorf("%s: must not exceed %s characters", e.Field(), e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", e.Field(), e.Tag())
		}
	}
	return err
}
