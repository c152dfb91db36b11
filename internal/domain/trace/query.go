// Package trace contiene el motor de consultas del ledger de movimientos
// (servicio de dominio, funciones puras sin I/O).
//
// Todas las operaciones reciben un entity.Snapshot ya leído y devuelven datos
// derivados; nunca mutan la entrada ni tocan el ledger. Entradas idénticas
// producen salidas idénticas, lo que permite testearlas sin store vivo.
package trace

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// Status último avistamiento del subconjunto objetivo, con la cantidad ya
// coaccionada a entero no negativo para presentación.
type Status struct {
	Event    entity.MovementEvent
	Quantity int64
}

// FilterByDateRange retiene los eventos con timestamp >= from (si from no es
// nil) y timestamp < to + 1 día a granularidad de día calendario (si to no es
// nil): "hasta este día" incluye el día completo, que es lo que espera el
// operador. Límite ausente = sin restricción.
func FilterByDateRange(snap entity.Snapshot, from, to *time.Time) entity.Snapshot {
	var limit time.Time
	if to != nil {
		limit = startOfDay(*to).AddDate(0, 0, 1)
	}

	out := make(entity.Snapshot, 0, len(snap))
	for _, ev := range snap {
		if from != nil && ev.Timestamp.Before(*from) {
			continue
		}
		if to != nil && !ev.Timestamp.Before(limit) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// ResolveTarget selecciona el subconjunto objetivo con prioridad fija:
// item_id manda si viene informado (aunque model no coincida con nada); model
// se consulta solo cuando item_id está vacío; ambos vacíos = sin filtro.
// La prioridad es política deliberada, no negociable por llamada.
func ResolveTarget(snap entity.Snapshot, itemID, model string) entity.Snapshot {
	switch {
	case itemID != "":
		return filter(snap, func(ev entity.MovementEvent) bool { return ev.ItemID == itemID })
	case model != "":
		return filter(snap, func(ev entity.MovementEvent) bool { return ev.Model == model })
	default:
		return snap.Clone()
	}
}

// CurrentStatus devuelve el evento de mayor timestamp del subconjunto, o nil
// si está vacío. Empates de timestamp los gana la fila posterior en orden de
// inserción (el orden del archivo es la autoridad para "más reciente").
func CurrentStatus(snap entity.Snapshot) *Status {
	var best *entity.MovementEvent
	for i := range snap {
		if best == nil || !snap[i].Timestamp.Before(best.Timestamp) {
			best = &snap[i]
		}
	}
	if best == nil {
		return nil
	}
	return &Status{Event: *best, Quantity: CoerceQuantity(best.Quantity).IntPart()}
}

// Timeline devuelve el subconjunto ordenado ascendente por timestamp, estable
// para timestamps iguales (se preserva el orden de inserción).
func Timeline(snap entity.Snapshot) entity.Snapshot {
	out := snap.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// QuantityByLocation suma las cantidades coaccionadas del subconjunto por
// ubicación. Toda ubicación configurada aparece en el resultado: cero cubre
// tanto "sin eventos" como "suma cero"; distinguirlos al renderizar es asunto
// de la capa de presentación, no de este motor.
func QuantityByLocation(snap entity.Snapshot, locations []string) map[string]int64 {
	totals := make(map[string]decimal.Decimal, len(locations))
	for _, loc := range locations {
		totals[loc] = decimal.Zero
	}
	for _, ev := range snap {
		sum, ok := totals[ev.Location]
		if !ok {
			continue // ubicación fuera del conjunto configurado
		}
		totals[ev.Location] = sum.Add(CoerceQuantity(ev.Quantity))
	}

	out := make(map[string]int64, len(locations))
	for loc, sum := range totals {
		out[loc] = sum.IntPart()
	}
	return out
}

// GroupByItem particiona el subconjunto por item_id cuando el objetivo es un
// modelo y no un ítem concreto. Devuelve los IDs en orden de primera aparición
// para que la sub-agregación por ítem sea determinista.
func GroupByItem(snap entity.Snapshot) ([]string, map[string]entity.Snapshot) {
	order := make([]string, 0)
	groups := make(map[string]entity.Snapshot)
	for _, ev := range snap {
		if _, ok := groups[ev.ItemID]; !ok {
			order = append(order, ev.ItemID)
		}
		groups[ev.ItemID] = append(groups[ev.ItemID], ev)
	}
	return order, groups
}

// LatestOriginEvent localiza el último registro del ítem en la estación de
// origen; el store lo usa para la herencia de atributos y el generador de
// etiquetas para pre-rellenar el último model conocido. Empates de timestamp
// los gana la fila posterior en orden de inserción.
func LatestOriginEvent(snap entity.Snapshot, itemID, origin string) (entity.MovementEvent, bool) {
	var best entity.MovementEvent
	found := false
	for _, ev := range snap {
		if ev.ItemID != itemID || ev.Location != origin {
			continue
		}
		if !found || !ev.Timestamp.Before(best.Timestamp) {
			best, found = ev, true
		}
	}
	return best, found
}

// CoerceQuantity interpreta el texto de cantidad almacenado. Política lossy
// documentada: texto no numérico o negativo vale cero para agregación (el
// texto original queda intacto en el evento); nunca se lanza error porque la
// usabilidad del dashboard pesa más que la validación estricta sobre datos de
// campo ruidosos.
func CoerceQuantity(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func filter(snap entity.Snapshot, keep func(entity.MovementEvent) bool) entity.Snapshot {
	out := make(entity.Snapshot, 0, len(snap))
	for _, ev := range snap {
		if keep(ev) {
			out = append(out, ev)
		}
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
