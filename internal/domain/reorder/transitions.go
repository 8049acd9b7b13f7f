// Package reorder define la máquina de estados del ciclo de vida de una
// solicitud de reposición. Las transiciones ilegales se rechazan en un solo
// punto en lugar de chequeos de status dispersos por los usecases.
package reorder

import (
	"fmt"

	"github.com/jhoicas/Comercial-api/internal/domain"
	"github.com/jhoicas/Comercial-api/internal/domain/entity"
)

// transitions tabla de transiciones legales: estado origen → destinos válidos.
// received y cancelled son terminales.
var transitions = map[string]map[string]bool{
	entity.ReorderPending: {
		entity.ReorderApproved:  true,
		entity.ReorderOrdered:   true,
		entity.ReorderReceived:  true, // reposición rápida: salta aprobación
		entity.ReorderCancelled: true,
	},
	entity.ReorderApproved: {
		entity.ReorderOrdered:   true,
		entity.ReorderReceived:  true,
		entity.ReorderCancelled: true,
	},
	entity.ReorderOrdered: {
		entity.ReorderReceived:  true,
		entity.ReorderCancelled: true,
	},
	entity.ReorderReceived:  {},
	entity.ReorderCancelled: {},
}

// Transition valida el paso de from a to. Devuelve ErrConflict envuelto con el
// detalle si la transición no está permitida.
func Transition(from, to string) error {
	allowed, ok := transitions[from]
	if !ok {
		return fmt.Errorf("estado desconocido %q: %w", from, domain.ErrConflict)
	}
	if !allowed[to] {
		return fmt.Errorf("transición %s → %s no permitida: %w", from, to, domain.ErrConflict)
	}
	return nil
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(status string) bool {
	return status == entity.ReorderReceived || status == entity.ReorderCancelled
}
