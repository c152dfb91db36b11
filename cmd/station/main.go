// Estación de terminal: bucle interactivo de escaneo por teclado/lector serie
// para puestos sin cámara. Corre como proceso independiente y escribe sobre el
// mismo CSV que la API, serializado por el lock de archivo.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/entity"
	"github.com/jhoicas/Trazabilidad-api/internal/infrastructure/csvledger"
	"github.com/jhoicas/Trazabilidad-api/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		location  string
		model     string
		substance string
	)

	cmd := &cobra.Command{
		Use:   "station",
		Short: "Bucle de escaneo de una estación del proceso",
		Long: "Registra avistamientos en el ledger compartido desde la terminal.\n" +
			"En la estación de origen se piden model y substance por ítem (si no se\n" +
			"fijaron por flag); en el resto solo la cantidad, porque los atributos se\n" +
			"heredan del último registro de origen.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("cargar configuración: %w", err)
			}
			if location == "" {
				return errors.New("--location es obligatorio")
			}
			valid := false
			for _, loc := range cfg.Trace.Locations {
				if loc == location {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("location %q no está en TRACE_LOCATIONS %v", location, cfg.Trace.Locations)
			}

			store := csvledger.New(csvledger.Config{
				Path:        cfg.Ledger.Path,
				Origin:      cfg.Trace.Origin,
				LockTimeout: cfg.Ledger.LockTimeout(),
			})
			return runLoop(cmd.Context(), store, cfg.Trace.Origin, location, model, substance)
		},
	}

	cmd.Flags().StringVarP(&location, "location", "l", "", "estación de este puesto (ej. Office, QC, FG)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model fijo de la estación de origen (se pregunta si falta)")
	cmd.Flags().StringVarP(&substance, "substance", "s", "", "substance fija de la estación de origen (se pregunta si falta)")
	return cmd
}

// runLoop pide ítems hasta que el operador escribe 'q'. Un ErrLockTimeout no
// tumba la estación: se informa y se sigue con el siguiente escaneo.
func runLoop(ctx context.Context, store *csvledger.Store, origin, location, fixedModel, fixedSubstance string) error {
	in := bufio.NewScanner(os.Stdin)
	fmt.Printf("Station %s — ledger compartido listo\n", location)

	for {
		itemID := prompt(in, "Scan barcode / QR (or 'q' to quit): ")
		if itemID == "" {
			continue
		}
		if strings.EqualFold(itemID, "q") {
			return nil
		}

		model, substance := fixedModel, fixedSubstance
		if location == origin {
			if model == "" {
				model = prompt(in, "Model/Part No: ")
			}
			if substance == "" {
				substance = prompt(in, "Raw Mtrl Substance: ")
			}
		} else {
			// Aguas abajo los atributos se heredan; el valor enviado da igual.
			model, substance = entity.UnknownAttribute, entity.UnknownAttribute
		}
		quantity := prompt(in, "Quantity: ")

		ev, err := store.Append(ctx, itemID, location, quantity, model, substance)
		if err != nil {
			if errors.Is(err, domain.ErrLockTimeout) {
				fmt.Println("Ledger ocupado; reintente el escaneo.")
				continue
			}
			return err
		}
		fmt.Printf("Logged: %s | %s | qty=%s | model=%s | substance=%s\n",
			ev.FormatTimestamp(), ev.ItemID, ev.Quantity, ev.Model, ev.Substance)
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		return "q" // EOF cierra la estación
	}
	return strings.TrimSpace(in.Text())
}
