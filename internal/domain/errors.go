package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// Motor de inventario y flujos de órdenes.
	ErrInvalidTransition  = errors.New("transición de estado no permitida")
	ErrConcurrentUpdate   = errors.New("el stock fue modificado por otra operación, intente de nuevo")
	ErrTrackingRequired   = errors.New("el producto exige lote, serial o vencimiento")
	ErrOverReceipt        = errors.New("la cantidad recibida supera lo pendiente de la orden")
	ErrOverShipment       = errors.New("la cantidad despachada supera lo reservado de la línea")
	ErrSelfApproval       = errors.New("quien solicita no puede aprobar su propia solicitud")
	ErrReservedStock      = errors.New("la operación dejaría el stock por debajo de lo reservado")
)
