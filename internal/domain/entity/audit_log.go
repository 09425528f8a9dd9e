package entity

import (
	"encoding/json"
	"time"
)

// AuditLog registro append-only de cada operación que modifica datos.
type AuditLog struct {
	ID         string
	CompanyID  string
	UserID     string
	Action     string // ej. sales_order.confirm
	EntityType string
	EntityID   string
	Details    json.RawMessage
	CreatedAt  time.Time
}
