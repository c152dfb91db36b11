package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo).
type Config struct {
	App    AppConfig
	HTTP   HTTPConfig
	Ledger LedgerConfig
	Trace  TraceConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LedgerConfig ubicación y plazos del ledger CSV compartido.
// La ruta es un valor explícito que se pasa al store en su construcción; todos
// los procesos (API y estaciones de terminal) deben apuntar a la misma ruta,
// acordada en el despliegue.
type LedgerConfig struct {
	Path          string
	LockTimeoutMS int
}

// LockTimeout espera máxima por el lock de archivo.
func (c LedgerConfig) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutMS) * time.Millisecond
}

// TraceConfig configuración del proceso productivo: el conjunto cerrado y
// ordenado de estaciones y cuál de ellas es el origen.
type TraceConfig struct {
	Origin    string
	Locations []string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde
// archivo). Las env vars tienen prioridad. Nombres esperados: APP_ENV,
// HTTP_PORT, LEDGER_PATH, TRACE_ORIGIN, TRACE_LOCATIONS, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "trazabilidad-api"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8050),
		},
		Ledger: LedgerConfig{
			Path:          getString(v, "LEDGER_PATH", "srv/data/trace_log.csv"),
			LockTimeoutMS: getInt(v, "LEDGER_LOCK_TIMEOUT_MS", 5000),
		},
		Trace: TraceConfig{
			Origin:    getString(v, "TRACE_ORIGIN", "Office"),
			Locations: getList(v, "TRACE_LOCATIONS", []string{"Office", "Incoming", "QC", "FG", "Shipment"}),
		},
	}

	// La estación de origen debe pertenecer al conjunto configurado.
	found := false
	for _, loc := range cfg.Trace.Locations {
		if loc == cfg.Trace.Origin {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("TRACE_ORIGIN %q no está en TRACE_LOCATIONS %v", cfg.Trace.Origin, cfg.Trace.Locations)
	}

	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

// getList lee una lista separada por comas; espacios alrededor se descartan.
func getList(v *viper.Viper, key string, def []string) []string {
	if !v.IsSet(key) {
		return def
	}
	parts := strings.Split(v.GetString(key), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
