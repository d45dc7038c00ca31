package records

import (
	"context"
	"fmt"

	"github.com/kbukum/clinic/database/query"
)

// MedicationQuery is what GET /medications may search and sort on.
var MedicationQuery = query.Config{
	SearchFields:      []string{"name"},
	AllowedSortFields: []string{"id", "name"},
	DefaultSort:       "name, id",
}

// ListMedications returns a page of the catalogue, by name unless sorted
// otherwise.
func (r *Repository) ListMedications(ctx context.Context, p query.Params) (*query.Result[Medication], error) {
	return listPage[Medication](r.db.WithContext(ctx).Model(&Medication{}), p, MedicationQuery, "medications")
}

// CreateMedication adds m to the catalogue.
func (r *Repository) CreateMedication(ctx context.Context, m *Medication) error {
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("records: create medication: %w", err)
	}
	return nil
}
