// Package csvledger implementa repository.LedgerRepository sobre un archivo
// CSV append-only compartido entre procesos.
//
// El archivo es el único recurso mutable compartido del sistema: cada estación
// de escaneo corre como proceso independiente y todas escriben sobre la misma
// ruta. La exclusión se hace con un lock consultivo de archivo
// (`<ledger>.lock`, vía gofrs/flock), efectivo entre procesos:
//
//   - Append toma el lock exclusivo, relee el log completo para resolver la
//     herencia de atributos y escribe la fila nueva, todo como una sola
//     sección crítica (leer-resolver-escribir nunca se parte en dos locks).
//   - ReadAll toma el lock compartido, por lo que nunca observa una fila a
//     medio escribir.
//
// La espera por el lock está acotada; al agotarse se devuelve
// domain.ErrLockTimeout en lugar de colgar una estación interactiva.
package csvledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/repository"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/trace"
)

// Ensure Store implements repository.LedgerRepository.
var _ repository.LedgerRepository = (*Store)(nil)

// header columnas fijas del CSV, en orden de persistencia. Se escribe una sola
// vez al crear el archivo y se valida en cada lectura.
var header = []string{"timestamp", "item_id", "location", "quantity", "model", "substance"}

const (
	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 25 * time.Millisecond
)

// Config configuración explícita del store. La ruta del ledger es un valor de
// construcción, no estado global del proceso.
type Config struct {
	// Path ruta del CSV compartido (ej. srv/data/trace_log.csv).
	Path string
	// Origin estación de origen cuyos registros fijan model/substance.
	Origin string
	// LockTimeout espera máxima por el lock; cero aplica el default de 5s.
	LockTimeout time.Duration
	// Clock inyectable para tests; nil usa time.Now.
	Clock func() time.Time
}

// Store ledger de movimientos sobre CSV con lock de archivo entre procesos.
type Store struct {
	path        string
	lockPath    string
	origin      string
	lockTimeout time.Duration
	clock       func() time.Time
}

// New construye el store. No toca el disco: el archivo y su directorio se
// crean de forma transparente en el primer Append.
func New(cfg Config) *Store {
	timeout := cfg.LockTimeout
	if timeout <= 0 {
		timeout = defaultLockTimeout
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	origin := cfg.Origin
	if origin == "" {
		origin = entity.DefaultOriginLocation
	}
	return &Store{
		path:        cfg.Path,
		lockPath:    lockPathFor(cfg.Path),
		origin:      origin,
		lockTimeout: timeout,
		clock:       clock,
	}
}

// Origin devuelve la estación de origen configurada.
func (s *Store) Origin() string { return s.origin }

// lockPathFor deriva la ruta del lock reemplazando la extensión por .lock
// (mismo convenio para todos los procesos que comparten el ledger).
func lockPathFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".lock"
}

// Append construye el evento con el timestamp local (precisión de segundos),
// aplica la regla de herencia y persiste la fila, todo bajo el lock exclusivo.
//
// Regla de herencia: si location no es la estación de origen, model/substance
// del evento se sobreescriben con los del último registro de origen del mismo
// ítem en el log actual; si el ítem no tiene registro de origen todavía, se
// sustituye el centinela "-" (condición de negocio registrada, no un error).
func (s *Store) Append(ctx context.Context, itemID, location, quantity, model, substance string) (*entity.MovementEvent, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio del ledger: %w", err)
	}

	fl := flock.New(s.lockPath)
	if err := s.acquire(ctx, fl.TryLockContext); err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	// Lectura dentro de la sección crítica: ningún otro Append puede
	// intercalarse entre este scan y la escritura de la fila.
	snap, err := s.readLocked()
	if err != nil {
		return nil, err
	}

	if location != s.origin {
		if origin, ok := trace.LatestOriginEvent(snap, itemID, s.origin); ok {
			model, substance = origin.Model, origin.Substance
		} else {
			model, substance = entity.UnknownAttribute, entity.UnknownAttribute
		}
	}

	ev := entity.MovementEvent{
		Timestamp: s.clock().Truncate(time.Second),
		ItemID:    itemID,
		Location:  location,
		Quantity:  quantity,
		Model:     model,
		Substance: substance,
	}
	if err := s.appendLocked(ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ReadAll devuelve el snapshot completo bajo el lock compartido. Si el archivo
// aún no existe devuelve un snapshot vacío.
func (s *Store) ReadAll(ctx context.Context) (entity.Snapshot, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio del ledger: %w", err)
	}

	fl := flock.New(s.lockPath)
	if err := s.acquire(ctx, fl.TryRLockContext); err != nil {
		return nil, err
	}
	defer func() { _ = fl.Unlock() }()

	return s.readLocked()
}

// acquire espera el lock con reintentos hasta agotar el plazo configurado.
func (s *Store) acquire(ctx context.Context, try func(context.Context, time.Duration) (bool, error)) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := try(waitCtx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", domain.ErrLockTimeout, s.lockPath)
		}
		return fmt.Errorf("adquirir lock %s: %w", s.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", domain.ErrLockTimeout, s.lockPath)
	}
	return nil
}

// readLocked parsea el CSV completo. Solo debe llamarse con el lock tomado.
//
// Un archivo inexistente o vacío es un ledger sin eventos; cualquier otra
// anomalía (cabecera distinta, fila con columnas de más o de menos, timestamp
// que no parsea) es domain.ErrCorruptLedger: se reporta tal cual y nunca se
// descarta ni trunca historia para "repararla".
func (s *Store) readLocked() (entity.Snapshot, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("abrir ledger %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptLedger, s.path, err)
	}
	if len(records) == 0 {
		return entity.Snapshot{}, nil
	}
	for i, col := range header {
		if records[0][i] != col {
			return nil, fmt.Errorf("%w: cabecera inesperada %q en %s", domain.ErrCorruptLedger, records[0], s.path)
		}
	}

	snap := make(entity.Snapshot, 0, len(records)-1)
	for _, rec := range records[1:] {
		ts, err := time.ParseInLocation(entity.TimestampLayout, rec[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp %q en %s", domain.ErrCorruptLedger, rec[0], s.path)
		}
		snap = append(snap, entity.MovementEvent{
			Timestamp: ts,
			ItemID:    rec[1],
			Location:  rec[2],
			Quantity:  rec[3],
			Model:     rec[4],
			Substance: rec[5],
		})
	}
	return snap, nil
}

// appendLocked escribe la fila al final del archivo, creándolo con cabecera si
// no existe. Solo debe llamarse con el lock exclusivo tomado.
func (s *Store) appendLocked(ev entity.MovementEvent) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("abrir ledger %s: %w", s.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("escribir cabecera: %w", err)
		}
	}
	record := []string{
		ev.FormatTimestamp(),
		ev.ItemID,
		ev.Location,
		ev.Quantity,
		ev.Model,
		ev.Substance,
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("escribir fila: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("volcar fila: %w", err)
	}
	// Durabilidad: la fila debe estar en disco antes de soltar el lock.
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync ledger: %w", err)
	}
	return nil
}
