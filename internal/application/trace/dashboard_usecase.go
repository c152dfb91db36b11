package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	dtrace "github.com/jhoicas/Trazabilidad-api/internal/domain/trace"
)

// queryDateLayout formato de los parámetros from/to del dashboard.
const queryDateLayout = "2006-01-02"

// DashboardUseCase deriva las vistas del operador (estado actual, línea de
// tiempo, tabla ubicación × cantidad) a partir de un snapshot fresco del
// ledger. No hay vista materializada: cada consulta relee la historia
// completa, a cambio de eliminar bugs de invalidación de caché.
type DashboardUseCase struct {
	ledger    repository.LedgerRepository
	locations []string
}

// NewDashboardUseCase construye el caso de uso. locations en el orden del
// proceso; la tabla de resumen lo respeta fila a fila.
func NewDashboardUseCase(ledger repository.LedgerRepository, locations []string) *DashboardUseCase {
	return &DashboardUseCase{ledger: ledger, locations: locations}
}

// GetStatus devuelve el último avistamiento del objetivo. domain.ErrNotFound
// cuando el filtro no selecciona ningún evento.
func (uc *DashboardUseCase) GetStatus(ctx context.Context, q dto.TraceQuery) (*dto.StatusDTO, error) {
	subset, err := uc.targetSubset(ctx, q)
	if err != nil {
		return nil, err
	}
	status := dtrace.CurrentStatus(subset)
	if status == nil {
		return nil, domain.ErrNotFound
	}
	return &dto.StatusDTO{
		ItemID:    status.Event.ItemID,
		Location:  status.Event.Location,
		Timestamp: status.Event.FormatTimestamp(),
		Quantity:  status.Quantity,
		Model:     status.Event.Model,
		Substance: status.Event.Substance,
	}, nil
}

// GetTimeline devuelve el subconjunto objetivo ordenado cronológicamente
// (orden de inserción para timestamps iguales). Lista vacía no es error.
func (uc *DashboardUseCase) GetTimeline(ctx context.Context, q dto.TraceQuery) ([]dto.MovementEventDTO, error) {
	subset, err := uc.targetSubset(ctx, q)
	if err != nil {
		return nil, err
	}
	ordered := dtrace.Timeline(subset)
	out := make([]dto.MovementEventDTO, 0, len(ordered))
	for _, ev := range ordered {
		out = append(out, toEventDTO(ev))
	}
	return out, nil
}

// GetSummary devuelve la tabla ubicación × cantidad del objetivo y, cuando el
// filtro efectivo fue por modelo, el desglose por ítem en orden de primera
// aparición.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, q dto.TraceQuery) (*dto.TraceSummaryDTO, error) {
	subset, err := uc.targetSubset(ctx, q)
	if err != nil {
		return nil, err
	}

	summary := &dto.TraceSummaryDTO{
		TotalEvents: len(subset),
		Totals:      uc.locationTotals(subset),
	}

	// El desglose por ítem solo aplica cuando el objetivo es un modelo
	// (item_id manda sobre model por política fija del motor).
	if q.ItemID == "" && q.Model != "" {
		order, groups := dtrace.GroupByItem(subset)
		for _, itemID := range order {
			group := groups[itemID]
			item := dto.ItemSummaryDTO{
				ItemID: itemID,
				Totals: uc.locationTotals(group),
			}
			if st := dtrace.CurrentStatus(group); st != nil {
				item.LastLocation = st.Event.Location
			}
			summary.Items = append(summary.Items, item)
		}
	}
	return summary, nil
}

// targetSubset lee el snapshot y aplica filtros en el orden fijo: rango de
// fechas primero, luego identidad (item_id sobre model).
func (uc *DashboardUseCase) targetSubset(ctx context.Context, q dto.TraceQuery) (entity.Snapshot, error) {
	from, to, err := parseDateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}
	snap, err := uc.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	snap = dtrace.FilterByDateRange(snap, from, to)
	return dtrace.ResolveTarget(snap, q.ItemID, q.Model), nil
}

func (uc *DashboardUseCase) locationTotals(snap entity.Snapshot) []dto.LocationTotalDTO {
	totals := dtrace.QuantityByLocation(snap, uc.locations)
	out := make([]dto.LocationTotalDTO, 0, len(uc.locations))
	for _, loc := range uc.locations {
		out = append(out, dto.LocationTotalDTO{Location: loc, Quantity: totals[loc]})
	}
	return out
}

// parseDateRange interpreta from/to como días calendario locales; vacío = sin
// límite. Una fecha que no parsea es ErrInvalidInput (aquí sí se valida: es un
// parámetro del operador, no dato de campo).
func parseDateRange(fromRaw, toRaw string) (from, to *time.Time, err error) {
	if fromRaw != "" {
		t, perr := time.ParseInLocation(queryDateLayout, fromRaw, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("%w: from=%q", domain.ErrInvalidInput, fromRaw)
		}
		from = &t
	}
	if toRaw != "" {
		t, perr := time.ParseInLocation(queryDateLayout, toRaw, time.Local)
		if perr != nil {
			return nil, nil, fmt.Errorf("%w: to=%q", domain.ErrInvalidInput, toRaw)
		}
		to = &t
	}
	return from, to, nil
}

func toEventDTO(ev entity.MovementEvent) dto.MovementEventDTO {
	return dto.MovementEventDTO{
		Timestamp: ev.FormatTimestamp(),
		ItemID:    ev.ItemID,
		Location:  ev.Location,
		Quantity:  ev.Quantity,
		Model:     ev.Model,
		Substance: ev.Substance,
	}
}
