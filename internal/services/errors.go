package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophusers/internal/common"
)

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}

// passThrough keeps the caller-facing sentinels and collapses everything
// else into ErrorInternal.
func passThrough(err error) error {
	for _, known := range []error{
		common.ErrorNotFound,
		common.ErrorUserExists,
		common.ErrorValidation,
		common.ErrorUnsupported,
		common.ErrorInvalidArgument,
		common.ErrorNotAuthenticated,
		common.ErrorInternal,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
