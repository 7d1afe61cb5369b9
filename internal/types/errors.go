package types

import "errors"

// Sentinel errors for shutterbook operations.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfiguration indicates an admin-time structural violation in a form.
	// Concrete failures are *ConfigurationError values matching this sentinel.
	ErrConfiguration = errors.New("invalid form configuration")

	// ErrInvalidRule indicates a conditional rule that cannot be decoded.
	ErrInvalidRule = errors.New("invalid conditional rule")

	// ErrAmbiguousRule indicates a rule carrying both AND and OR keys.
	// Evaluation lets AND win; saving such a rule is rejected.
	ErrAmbiguousRule = errors.New("rule has both AND and OR keys")

	// ErrUnknownOperator indicates an operator outside the supported set.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrEmptyField indicates a condition without a field name.
	ErrEmptyField = errors.New("condition field is empty")

	// ErrFieldTooLong indicates a field name over MaxFieldNameLength.
	ErrFieldTooLong = errors.New("condition field too long")

	// ErrInValuesNotArray indicates an IN/NOT_IN condition whose value is not a list.
	ErrInValuesNotArray = errors.New("IN operator requires a list value")

	// ErrTooManyInValues indicates an IN list over MaxInOperatorValues.
	ErrTooManyInValues = errors.New("IN operator has too many values")

	// ErrNonNumericOperand indicates an ordering comparison against a non-number.
	ErrNonNumericOperand = errors.New("ordering operator requires a numeric value")

	// ErrInvalidSection indicates an unknown form_section value.
	ErrInvalidSection = errors.New("invalid form section")

	// ErrInvalidProductType indicates an unknown product_type value.
	ErrInvalidProductType = errors.New("invalid product type")
)

// ConfigurationError reports why a form builder mutation was refused.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// Is lets errors.Is(err, ErrConfiguration) match any ConfigurationError.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
