package labels_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/application/dto"
	"github.com/jhoicas/Trazabilidad-api/internal/application/labels"
	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────────────────────────────────────

type fakeLedger struct {
	snap entity.Snapshot
}

func (f *fakeLedger) Append(context.Context, string, string, string, string, string) (*entity.MovementEvent, error) {
	panic("el caso de uso de etiquetas no escribe en el ledger")
}

func (f *fakeLedger) ReadAll(context.Context) (entity.Snapshot, error) {
	return f.snap.Clone(), nil
}

type capturePDF struct {
	batchID string
	labels  []labels.LabelData
}

func (c *capturePDF) GenerateLabelsPDF(_ context.Context, batchID string, toPrint []labels.LabelData) ([]byte, error) {
	c.batchID = batchID
	c.labels = toPrint
	return []byte("%PDF-fake"), nil
}

func fixedClock(ts string) func() time.Time {
	parsed, err := time.ParseInLocation(entity.TimestampLayout, ts, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return parsed }
}

func originEvent(ts, itemID, model, substance string) entity.MovementEvent {
	parsed, _ := time.ParseInLocation(entity.TimestampLayout, ts, time.Local)
	return entity.MovementEvent{Timestamp: parsed, ItemID: itemID, Location: "Office", Quantity: "5", Model: model, Substance: substance}
}

// ──────────────────────────────────────────────────────────────────────────────
// Reimpresión de un ítem existente
// ──────────────────────────────────────────────────────────────────────────────

// Con item_id, model/substance se pre-rellenan desde el último registro de
// origen del ledger; lo que mande el request se ignora.
func TestGenerate_ReimpresionPreRellenaDesdeOrigen(t *testing.T) {
	ledger := &fakeLedger{snap: entity.Snapshot{
		originEvent("2026-03-10T08:00:00", "WO-20260310-0001", "M1", "S1"),
		originEvent("2026-03-10T09:00:00", "WO-20260310-0001", "M2", "S2"),
	}}
	pdf := &capturePDF{}
	uc := labels.NewUseCase(ledger, pdf, "Office", fixedClock("2026-03-10T10:00:00"))

	out, batch, err := uc.Generate(context.Background(), dto.LabelRequest{
		ItemID: "WO-20260310-0001", Model: "IGNORADO", Substance: "IGNORADO",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)
	assert.Equal(t, []string{"WO-20260310-0001"}, batch.WorkOrders)
	require.Len(t, pdf.labels, 1)
	assert.Equal(t, "M2", pdf.labels[0].Model, "debe usarse el último registro de origen")
	assert.Equal(t, "S2", pdf.labels[0].Substance)
}

// Ítem desconocido para el ledger: se usan los valores del request y, en su
// ausencia, el centinela "-".
func TestGenerate_ReimpresionSinOrigenUsaCentinela(t *testing.T) {
	pdf := &capturePDF{}
	uc := labels.NewUseCase(&fakeLedger{}, pdf, "Office", fixedClock("2026-03-10T10:00:00"))

	_, _, err := uc.Generate(context.Background(), dto.LabelRequest{ItemID: "WO-X"})
	require.NoError(t, err)
	require.Len(t, pdf.labels, 1)
	assert.Equal(t, entity.UnknownAttribute, pdf.labels[0].Model)
	assert.Equal(t, entity.UnknownAttribute, pdf.labels[0].Substance)
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes de trabajo nuevas con contador diario
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerate_ContadorDiarioContinuaDesdeElLedger(t *testing.T) {
	// Dos órdenes de hoy ya escaneadas en origen y una de ayer (no cuenta).
	ledger := &fakeLedger{snap: entity.Snapshot{
		originEvent("2026-03-09T15:00:00", "WO-20260309-0001", "M1", "S1"),
		originEvent("2026-03-10T08:00:00", "WO-20260310-0001", "M1", "S1"),
		originEvent("2026-03-10T08:30:00", "WO-20260310-0002", "M1", "S1"),
	}}
	pdf := &capturePDF{}
	uc := labels.NewUseCase(ledger, pdf, "Office", fixedClock("2026-03-10T10:00:00"))

	_, batch, err := uc.Generate(context.Background(), dto.LabelRequest{Model: "M1", Substance: "S1", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"WO-20260310-0003", "WO-20260310-0004"}, batch.WorkOrders)
	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, batch.BatchID, pdf.batchID)
}

func TestGenerate_ValidaOrdenesNuevas(t *testing.T) {
	uc := labels.NewUseCase(&fakeLedger{}, &capturePDF{}, "Office", fixedClock("2026-03-10T10:00:00"))
	ctx := context.Background()

	_, _, err := uc.Generate(ctx, dto.LabelRequest{Model: "M1", Count: 1})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "substance obligatoria para órdenes nuevas")

	_, _, err = uc.Generate(ctx, dto.LabelRequest{Model: "M1", Substance: "S1", Count: 51})
	require.ErrorIs(t, err, domain.ErrInvalidInput, "lote por encima del máximo")
}

func TestGenerate_CountPorDefectoEsUno(t *testing.T) {
	pdf := &capturePDF{}
	uc := labels.NewUseCase(&fakeLedger{}, pdf, "Office", fixedClock("2026-03-10T10:00:00"))

	_, batch, err := uc.Generate(context.Background(), dto.LabelRequest{Model: "M1", Substance: "S1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"WO-20260310-0001"}, batch.WorkOrders)
}
