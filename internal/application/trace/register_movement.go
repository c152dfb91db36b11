// Package trace contiene los casos de uso que componen el ledger y el motor
// de consultas para las estaciones de escaneo y el dashboard.
package trace

import (
	"context"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
)

// RegisterMovementUseCase registra un avistamiento enviado por una estación.
// La herencia de atributos y la sección crítica viven en el store; aquí solo
// se valida la entrada y se normalizan los centinelas.
type RegisterMovementUseCase struct {
	ledger    repository.LedgerRepository
	locations map[string]struct{}
}

// NewRegisterMovementUseCase construye el caso de uso. locations es el
// conjunto cerrado de estaciones válidas (configuración del proceso).
func NewRegisterMovementUseCase(ledger repository.LedgerRepository, locations []string) *RegisterMovementUseCase {
	set := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		set[loc] = struct{}{}
	}
	return &RegisterMovementUseCase{ledger: ledger, locations: set}
}

// Register valida y persiste el escaneo, devolviendo el evento ya enriquecido
// por la regla de herencia. Quantity se acepta como texto opaco: un valor no
// numérico se almacena igual y vale cero al agregar (política documentada).
func (uc *RegisterMovementUseCase) Register(ctx context.Context, in dto.ScanRequest) (*entity.MovementEvent, error) {
	if in.ItemID == "" || in.Location == "" {
		return nil, domain.ErrInvalidInput
	}
	if _, ok := uc.locations[in.Location]; !ok {
		return nil, domain.ErrInvalidInput
	}

	model := in.Model
	if model == "" {
		model = entity.UnknownAttribute
	}
	substance := in.Substance
	if substance == "" {
		substance = entity.UnknownAttribute
	}

	return uc.ledger.Append(ctx, in.ItemID, in.Location, in.Quantity, model, substance)
}
