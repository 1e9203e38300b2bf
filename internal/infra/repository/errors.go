package repository

import (
	"errors"
	"fmt"

	"github.com/agencydesk/crm-sla-sweep/internal/domain"
)

var (
	ErrInvalidItemData = errors.New("invalid item data")
	ErrInvalidRuleData = errors.New("invalid rule data")
)

// storeErr converts a driver-level failure into the transient
// StoreUnavailable condition the sweep treats as "skip this pass".
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
