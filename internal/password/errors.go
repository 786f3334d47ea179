package password

import (
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

// PolicyErrorMessage is the fixed text of every PolicyError.
const PolicyErrorMessage = "Password does not match the password definition"

// PolicyError reports a plaintext password rejected by a Definition.
// Mask carries the failed rules for programmatic handling.
type PolicyError struct {
	Mask Violation
}

func (e *PolicyError) Error() string {
	return PolicyErrorMessage
}

// Is lets errors.Is(err, common.ErrorValidation) match policy failures.
func (e *PolicyError) Is(target error) bool {
	return target == common.ErrorValidation
}

// Detail returns the message with the failed rule names appended.
func (e *PolicyError) Detail() string {
	return fmt.Sprintf("%s (%s)", PolicyErrorMessage, e.Mask)
}

// Check returns a *PolicyError when password violates d, nil otherwise.
// A nil Definition accepts everything.
func (d *Definition) Check(password string) error {
	if d == nil {
		return nil
	}
	if mask := d.MatchPassword(password); mask != 0 {
		return &PolicyError{Mask: mask}
	}
	return nil
}
