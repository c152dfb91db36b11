package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound      = errors.New("recurso no encontrado")
	ErrInvalidInput  = errors.New("entrada inválida")
	ErrLockTimeout   = errors.New("no se pudo adquirir el lock del ledger dentro del plazo")
	ErrCorruptLedger = errors.New("ledger corrupto o ilegible")
)
