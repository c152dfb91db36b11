package entity

import "time"

// TimestampLayout formato de los timestamps persistidos en el ledger.
// Ancho fijo y con ceros a la izquierda, de modo que el orden lexicográfico
// del texto coincide con el orden cronológico (precisión de segundos).
const TimestampLayout = "2006-01-02T15:04:05"

// UnknownAttribute centinela para model/substance cuando el ítem aún no tiene
// registro en la ubicación de origen. Se persiste tal cual; no es un error.
const UnknownAttribute = "-"

// Ubicaciones por defecto del proceso productivo, en orden de avance.
// El conjunto real y su orden son configuración de despliegue (ver pkg/config).
var DefaultLocations = []string{"Office", "Incoming", "QC", "FG", "Shipment"}

// DefaultOriginLocation estación donde se fijan los atributos descriptivos.
const DefaultOriginLocation = "Office"

// MovementEvent una fila del ledger: un avistamiento de un ítem físico en una
// estación. Inmutable una vez persistido; el ledger nunca reordena ni borra.
type MovementEvent struct {
	Timestamp time.Time
	ItemID    string
	Location  string
	Quantity  string // texto opaco tal como lo envió la estación; la coerción numérica es del motor de consultas
	Model     string
	Substance string
}

// FormatTimestamp serializa el timestamp con el layout fijo del ledger.
func (e MovementEvent) FormatTimestamp() string {
	return e.Timestamp.Format(TimestampLayout)
}

// Snapshot lectura ordenada y completa del ledger en un instante dado.
// Es la entrada de todas las operaciones del motor de consultas; se descarta
// tras cada consulta (no hay vistas materializadas).
type Snapshot []MovementEvent

// Clone copia superficial del snapshot; los motores de consulta ordenan sobre
// la copia para no mutar la entrada.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}
