package shared

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
)

// Audit escribe una fila de auditoría dentro de la transacción en curso.
func Audit(ctx context.Context, r ports.TxRepos, actor Actor, action, entityType, entityID string, details any) error {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("audit details: %w", err)
		}
		raw = b
	}
	return r.AuditLogs.Create(ctx, &entity.AuditLog{
		ID:         NewID(),
		CompanyID:  actor.CompanyID,
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    raw,
		CreatedAt:  Now(),
	})
}

// Prefijos de numeración de documentos.
const (
	PrefixPurchaseOrder = "PO"
	PrefixSalesOrder    = "SO"
	PrefixShipment      = "SH"
	PrefixGoodsReceipt  = "GR"
	PrefixAssembly      = "AS"
	PrefixAdjustment    = "AJ"
	PrefixTransfer      = "TR"
)

// NextNumber devuelve el siguiente consecutivo formateado, ej. SO-000001.
func NextNumber(ctx context.Context, r ports.TxRepos, companyID, prefix string) (string, error) {
	n, err := r.Sequences.Next(ctx, companyID, prefix)
	if err != nil {
		return "", fmt.Errorf("next %s number: %w", prefix, err)
	}
	return fmt.Sprintf("%s-%06d", prefix, n), nil
}
