package inventory

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mmdatafocus/factory_backend/models"
)

// IdIssuer hands out identifiers for cart lines, re-baling transactions and
// direct sale invoice numbers.
type IdIssuer interface {
	NewId() string
	NewDirectSaleNumber() string
}

type UUIDIssuer struct{}

func (UUIDIssuer) NewId() string {
	return uuid.NewString()
}

// NewDirectSaleNumber is DS- plus eight random hex characters. The namespace is
// not sequential, so a collision is possible and rejected on insert.
func (UUIDIssuer) NewDirectSaleNumber() string {
	return models.DirectSalePrefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
