package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Comercial-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contador atómico de consecutivos sobre PostgreSQL.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador de secuencias. Pasar pool o tx (Querier).
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el siguiente valor de la secuencia por empresa.
// El upsert con RETURNING es atómico: dos llamadas concurrentes nunca pueden
// obtener el mismo número.
func (r *SequenceRepo) Next(companyID, name string) (int64, error) {
	query := `
		INSERT INTO sequences (company_id, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (company_id, name)
		DO UPDATE SET value = sequences.value + 1
		RETURNING value`
	var value int64
	if err := r.q.QueryRow(context.Background(), query, companyID, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}
