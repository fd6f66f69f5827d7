package repo

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// ShortageError is returned when a conditional stock decrement matched no
// row, i.e. another writer got to the stock first.
type ShortageError struct {
	ProductID uuid.UUID
	Requested int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("stock for product %s dropped below %d", e.ProductID, e.Requested)
}
