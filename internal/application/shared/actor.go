// Package shared agrupa piezas comunes de los casos de uso: actor, auditoría, numeración,
// política de aprobación y publicación de eventos.
package shared

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
)

// Actor usuario autenticado que ejecuta la operación (viene del JWT).
type Actor struct {
	CompanyID string
	UserID    string
	Role      string
}

// Can indica si el rol del actor tiene el permiso.
func (a Actor) Can(permission string) bool {
	return rbac.HasPermission(a.Role, permission)
}

// Require devuelve ErrForbidden si el actor no tiene el permiso.
func (a Actor) Require(permission string) error {
	if !a.Can(permission) {
		return domain.ErrForbidden
	}
	return nil
}

// NewID genera un identificador nuevo.
func NewID() string {
	return uuid.New().String()
}

// Now reloj de los casos de uso (UTC). Reemplazable en tests.
var Now = func() time.Time {
	return time.Now().UTC()
}
