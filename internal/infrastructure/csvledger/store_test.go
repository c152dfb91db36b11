package csvledger_test

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/csvledger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testOrigin = "Office"

// newTestStore construye un store sobre un directorio temporal con un reloj
// sintético que avanza un segundo por evento (timestamps deterministas y
// estrictamente crecientes).
func newTestStore(t *testing.T) (*csvledger.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trace_log.csv")
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	tick := 0
	store := csvledger.New(csvledger.Config{
		Path:        path,
		Origin:      testOrigin,
		LockTimeout: 2 * time.Second,
		Clock: func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		},
	})
	return store, path
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación e inicialización
// ──────────────────────────────────────────────────────────────────────────────

// El primer Append crea directorio, archivo y cabecera de forma transparente.
func TestAppend_CreaLedgerConCabecera(t *testing.T) {
	store, path := newTestStore(t)
	ctx := context.Background()

	ev, err := store.Append(ctx, "WO-1", testOrigin, "5", "M1", "S1")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "M1", ev.Model, "en el origen los atributos del caller son autoritativos")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "cabecera + una fila")
	assert.Equal(t, []string{"timestamp", "item_id", "location", "quantity", "model", "substance"}, records[0])
	assert.Equal(t, "WO-1", records[1][1])
}

// ReadAll sobre una ruta inexistente devuelve un snapshot vacío, no un error.
func TestReadAll_SinArchivoDevuelveVacio(t *testing.T) {
	store, _ := newTestStore(t)

	snap, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap)
}

// ──────────────────────────────────────────────────────────────────────────────
// Regla de herencia de atributos
// ──────────────────────────────────────────────────────────────────────────────

// Un evento fuera del origen hereda model/substance del último registro de
// origen del ítem, ignorando lo que mande el caller.
func TestAppend_HerenciaDesdeOrigen(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "WO-1", testOrigin, "5", "M1", "S1")
	require.NoError(t, err)

	ev, err := store.Append(ctx, "WO-1", "QC", "3", "IGNORADO", "IGNORADO")
	require.NoError(t, err)
	assert.Equal(t, "M1", ev.Model, "model debe heredarse del registro de origen")
	assert.Equal(t, "S1", ev.Substance, "substance debe heredarse del registro de origen")

	// La fila persistida también lleva los valores heredados.
	snap, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "M1", snap[1].Model)
	assert.Equal(t, "S1", snap[1].Substance)
}

// Sin registro de origen previo, se sustituye el centinela "-" y el append
// tiene éxito: es una condición de negocio registrada, no un error.
func TestAppend_SinOrigenUsaCentinela(t *testing.T) {
	store, _ := newTestStore(t)

	ev, err := store.Append(context.Background(), "WO-9", "FG", "2", "Mx", "Sx")
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownAttribute, ev.Model)
	assert.Equal(t, entity.UnknownAttribute, ev.Substance)
}

// Un segundo registro de origen actualiza los atributos: los appends
// posteriores heredan siempre del último registro de origen.
func TestAppend_ReherenciaConOrigenActualizado(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "WO-1", testOrigin, "5", "M1", "S1")
	require.NoError(t, err)
	_, err = store.Append(ctx, "WO-1", "QC", "3", "-", "-")
	require.NoError(t, err)
	_, err = store.Append(ctx, "WO-1", testOrigin, "5", "M2", "S2")
	require.NoError(t, err)

	ev, err := store.Append(ctx, "WO-1", "FG", "2", "-", "-")
	require.NoError(t, err)
	assert.Equal(t, "M2", ev.Model, "debe heredar del origen más reciente, no del primero")
	assert.Equal(t, "S2", ev.Substance)
}

// La herencia es por ítem: el origen de otro ítem no contamina.
func TestAppend_HerenciaPorItem(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "WO-1", testOrigin, "5", "M1", "S1")
	require.NoError(t, err)

	ev, err := store.Append(ctx, "WO-2", "QC", "1", "-", "-")
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownAttribute, ev.Model)
}

// ──────────────────────────────────────────────────────────────────────────────
// Atomicidad bajo escritores concurrentes
// ──────────────────────────────────────────────────────────────────────────────

// N appends concurrentes desde dos instancias independientes del store (el
// equivalente en-proceso de dos estaciones distintas sobre la misma ruta):
// ReadAll posterior devuelve exactamente N filas bien formadas, sin pérdidas,
// duplicados ni filas a medio escribir.
func TestAppend_AtomicidadConcurrente(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace_log.csv")
	newStore := func() *csvledger.Store {
		return csvledger.New(csvledger.Config{
			Path:        path,
			Origin:      testOrigin,
			LockTimeout: 10 * time.Second,
		})
	}
	storeA, storeB := newStore(), newStore()

	const n = 24
	ctx := context.Background()
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := storeA
			if i%2 == 1 {
				store = storeB
			}
			_, err := store.Append(ctx, fmt.Sprintf("WO-%d", i), testOrigin, "1", "M", "S")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	snap, err := storeA.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap, n, "ninguna fila perdida ni duplicada")

	seen := make(map[string]bool, n)
	for _, ev := range snap {
		assert.False(t, seen[ev.ItemID], "item duplicado: %s", ev.ItemID)
		seen[ev.ItemID] = true
		assert.Equal(t, testOrigin, ev.Location)
		assert.Equal(t, "1", ev.Quantity)
		assert.False(t, ev.Timestamp.IsZero(), "fila a medio escribir")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Errores: lock ocupado y ledger corrupto
// ──────────────────────────────────────────────────────────────────────────────

// Con el lock exclusivo tomado por "otro proceso", Append y ReadAll devuelven
// ErrLockTimeout al agotar la espera acotada en lugar de colgarse.
func TestStore_LockTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace_log.csv")
	store := csvledger.New(csvledger.Config{
		Path:        path,
		Origin:      testOrigin,
		LockTimeout: 150 * time.Millisecond,
	})

	// Simula otro proceso sosteniendo el lock exclusivo.
	holder := flock.New(filepath.Join(filepath.Dir(path), "trace_log.lock"))
	require.NoError(t, holder.Lock())
	defer func() { _ = holder.Unlock() }()

	_, err := store.Append(context.Background(), "WO-1", testOrigin, "1", "M", "S")
	require.ErrorIs(t, err, domain.ErrLockTimeout)

	_, err = store.ReadAll(context.Background())
	require.ErrorIs(t, err, domain.ErrLockTimeout)
}

// Un log existente que no parsea es fatal: ErrCorruptLedger, nunca
// auto-reparación ni descarte silencioso de historia.
func TestReadAll_LedgerCorrupto(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"cabecera inesperada", "ts,work_order,loc,qty,model,substance\n"},
		{"columnas de menos", "timestamp,item_id,location,quantity,model,substance\n2026-03-10T08:00:01,WO-1,QC\n"},
		{"timestamp ilegible", "timestamp,item_id,location,quantity,model,substance\nayer,WO-1,QC,3,M1,S1\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "trace_log.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			store := csvledger.New(csvledger.Config{Path: path, Origin: testOrigin})

			_, err := store.ReadAll(context.Background())
			require.ErrorIs(t, err, domain.ErrCorruptLedger)

			// Append tampoco debe "arreglar" el archivo: falla al releer.
			_, err = store.Append(context.Background(), "WO-2", "QC", "1", "-", "-")
			require.ErrorIs(t, err, domain.ErrCorruptLedger)

			after, rerr := os.ReadFile(path)
			require.NoError(t, rerr)
			assert.Equal(t, tc.content, string(after), "la historia existente no debe tocarse")
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia y orden
// ──────────────────────────────────────────────────────────────────────────────

// Los timestamps persistidos usan el layout fijo de ancho constante, de modo
// que el orden lexicográfico del texto coincide con el cronológico.
func TestAppend_TimestampFormatoFijo(t *testing.T) {
	store, path := newTestStore(t)

	ev, err := store.Append(context.Background(), "WO-1", testOrigin, "5", "M1", "S1")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), ev.Timestamp.Format(entity.TimestampLayout))
	assert.Len(t, ev.FormatTimestamp(), len("2006-01-02T15:04:05"))
}

// ReadAll preserva el orden de inserción del archivo, que es la autoridad
// para "más reciente" (no el reloj de pared de cada estación).
func TestReadAll_OrdenDeInsercion(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, loc := range []string{testOrigin, "Incoming", "QC", "FG"} {
		_, err := store.Append(ctx, "WO-1", loc, "1", "M1", "S1")
		require.NoError(t, err)
	}

	snap, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 4)
	locs := make([]string, 0, len(snap))
	for _, ev := range snap {
		locs = append(locs, ev.Location)
	}
	assert.Equal(t, []string{testOrigin, "Incoming", "QC", "FG"}, locs)
}
