// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types.
package services

import (
	"fmt"
	"strings"
	"unicode"

	itemdomain "github.com/ghuser/crochestock/services/item/domain"
	"github.com/ghuser/crochestock/services/item/domain/models"
)

// ValidateName enforces the rules an ItemName must satisfy beyond its length:
//   - No leading or trailing whitespace
//   - Not only whitespace
//   - No control characters
//
// Errors wrap ErrInvalidItemName.
func ValidateName(name models.ItemName) error {
	s := name.String()

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: must not be blank", itemdomain.ErrInvalidItemName)
	}

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("%w: must not have leading or trailing whitespace", itemdomain.ErrInvalidItemName)
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: must not contain control characters", itemdomain.ErrInvalidItemName)
		}
	}

	return nil
}

// ValidateItemForCreation checks an Item built by models.NewItem before it is
// handed to the repository.
func ValidateItemForCreation(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if item.OwnerID == "" {
		return itemdomain.ErrOwnerRequired
	}
	if err := ValidateName(item.Name); err != nil {
		return err
	}
	return item.CheckRanges()
}

// ValidatePatch applies the creation rules to every field a patch sets.
func ValidatePatch(p models.ItemPatch) error {
	if p.Name != nil {
		if err := ValidateName(*p.Name); err != nil {
			return err
		}
	}
	return p.CheckRanges()
}
