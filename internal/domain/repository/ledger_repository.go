package repository

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia del ledger de movimientos.
//
// Append construye el evento con el timestamp local del servidor, aplica la
// regla de herencia de atributos (ver csvledger) y lo persiste; todo dentro de
// una única sección crítica efectiva entre procesos. Devuelve el evento ya
// enriquecido.
//
// ReadAll devuelve el snapshot completo en orden de inserción. Nunca observa
// un append a medio escribir.
//
// Ambas operaciones bloquean mientras esperan el lock compartido; si el plazo
// se agota devuelven domain.ErrLockTimeout.
type LedgerRepository interface {
	Append(ctx context.Context, itemID, location, quantity, model, substance string) (*entity.MovementEvent, error)
	ReadAll(ctx context.Context) (entity.Snapshot, error)
}
