package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a buyer, tenant or payer.
type Customer struct {
	ID         uuid.UUID
	Number     string // CUS-0001
	Name       string
	Email      string
	Phone      string
	NationalID string
	Address    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

// DisplayName is the label printed as payer on receipts and listings.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.Number
}
