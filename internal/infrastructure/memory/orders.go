package memory

import (
	"context"
	"time"

	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/repository"
)

var (
	_ repository.SalesOrderRepository    = (*SalesOrderRepo)(nil)
	_ repository.ShipmentRepository      = (*ShipmentRepo)(nil)
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.GoodsReceiptRepository  = (*ReceiptRepo)(nil)
	_ repository.KitRepository           = (*KitRepo)(nil)
	_ repository.AssemblyRepository      = (*AssemblyRepo)(nil)
	_ repository.ApprovalRepository      = (*ApprovalRepo)(nil)
	_ repository.AuditLogRepository      = (*AuditLogRepo)(nil)
	_ repository.SequenceRepository      = (*SequenceRepo)(nil)
)

// SalesOrderRepo órdenes de venta en memoria.
type SalesOrderRepo struct{ *db }

func (r *SalesOrderRepo) Create(_ context.Context, o *entity.SalesOrder) error {
	defer r.lock()()
	r.state().salesOrders[o.ID] = copySalesOrder(*o)
	return nil
}

func (r *SalesOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.SalesOrder, error) {
	defer r.lock()()
	if o, ok := r.state().salesOrders[id]; ok && o.CompanyID == companyID {
		return ptr(copySalesOrder(o)), nil
	}
	return nil, nil
}

func (r *SalesOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *SalesOrderRepo) Update(_ context.Context, o *entity.SalesOrder) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.salesOrders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	st.salesOrders[o.ID] = copySalesOrder(*o)
	return nil
}

func (r *SalesOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.SalesOrder, error) {
	defer r.lock()()
	var list []*entity.SalesOrder
	for _, o := range r.state().salesOrders {
		if o.CompanyID == f.CompanyID && (f.Status == "" || o.Status == f.Status) {
			list = append(list, ptr(copySalesOrder(o)))
		}
	}
	newestFirst(list, func(o *entity.SalesOrder) time.Time { return o.CreatedAt }, func(o *entity.SalesOrder) string { return o.ID })
	return page(list, f.Limit, f.Offset), nil
}

// ShipmentRepo despachos en memoria.
type ShipmentRepo struct{ *db }

func (r *ShipmentRepo) Create(_ context.Context, s *entity.Shipment) error {
	defer r.lock()()
	r.state().shipments[s.ID] = copyShipment(*s)
	return nil
}

func (r *ShipmentRepo) GetByID(_ context.Context, companyID, id string) (*entity.Shipment, error) {
	defer r.lock()()
	if s, ok := r.state().shipments[id]; ok && s.CompanyID == companyID {
		return ptr(copyShipment(s)), nil
	}
	return nil, nil
}

func (r *ShipmentRepo) ListBySalesOrder(_ context.Context, companyID, salesOrderID string) ([]*entity.Shipment, error) {
	defer r.lock()()
	var list []*entity.Shipment
	for _, s := range r.state().shipments {
		if s.CompanyID == companyID && s.SalesOrderID == salesOrderID {
			list = append(list, ptr(copyShipment(s)))
		}
	}
	byCreated(list, func(s *entity.Shipment) time.Time { return s.CreatedAt }, func(s *entity.Shipment) string { return s.Number })
	return list, nil
}

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct{ *db }

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	r.state().purchaseOrders[o.ID] = copyPurchaseOrder(*o)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	if o, ok := r.state().purchaseOrders[id]; ok && o.CompanyID == companyID {
		return ptr(copyPurchaseOrder(o)), nil
	}
	return nil, nil
}

func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, companyID, id)
}

func (r *PurchaseOrderRepo) Update(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.purchaseOrders[o.ID]; !ok {
		return domain.ErrNotFound
	}
	st.purchaseOrders[o.ID] = copyPurchaseOrder(*o)
	return nil
}

func (r *PurchaseOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.PurchaseOrder, error) {
	defer r.lock()()
	var list []*entity.PurchaseOrder
	for _, o := range r.state().purchaseOrders {
		if o.CompanyID == f.CompanyID && (f.Status == "" || o.Status == f.Status) {
			list = append(list, ptr(copyPurchaseOrder(o)))
		}
	}
	newestFirst(list, func(o *entity.PurchaseOrder) time.Time { return o.CreatedAt }, func(o *entity.PurchaseOrder) string { return o.ID })
	return page(list, f.Limit, f.Offset), nil
}

// ReceiptRepo recepciones en memoria.
type ReceiptRepo struct{ *db }

func (r *ReceiptRepo) Create(_ context.Context, g *entity.GoodsReceipt) error {
	defer r.lock()()
	r.state().receipts[g.ID] = copyReceipt(*g)
	return nil
}

func (r *ReceiptRepo) ListByPurchaseOrder(_ context.Context, companyID, purchaseOrderID string) ([]*entity.GoodsReceipt, error) {
	defer r.lock()()
	var list []*entity.GoodsReceipt
	for _, g := range r.state().receipts {
		if g.CompanyID == companyID && g.PurchaseOrderID == purchaseOrderID {
			list = append(list, ptr(copyReceipt(g)))
		}
	}
	byCreated(list, func(g *entity.GoodsReceipt) time.Time { return g.CreatedAt }, func(g *entity.GoodsReceipt) string { return g.Number })
	return list, nil
}

// KitRepo kits en memoria. Un kit por producto.
type KitRepo struct{ *db }

func (r *KitRepo) Create(_ context.Context, k *entity.Kit) error {
	defer r.lock()()
	st := r.state()
	for _, existing := range st.kits {
		if existing.CompanyID == k.CompanyID && existing.ProductID == k.ProductID {
			return domain.ErrDuplicate
		}
	}
	st.kits[k.ID] = copyKit(*k)
	return nil
}

func (r *KitRepo) GetByID(_ context.Context, companyID, id string) (*entity.Kit, error) {
	defer r.lock()()
	if k, ok := r.state().kits[id]; ok && k.CompanyID == companyID {
		return ptr(copyKit(k)), nil
	}
	return nil, nil
}

func (r *KitRepo) GetByProduct(_ context.Context, companyID, productID string) (*entity.Kit, error) {
	defer r.lock()()
	for _, k := range r.state().kits {
		if k.CompanyID == companyID && k.ProductID == productID {
			return ptr(copyKit(k)), nil
		}
	}
	return nil, nil
}

func (r *KitRepo) List(_ context.Context, companyID string) ([]*entity.Kit, error) {
	defer r.lock()()
	var list []*entity.Kit
	for _, k := range r.state().kits {
		if k.CompanyID == companyID {
			list = append(list, ptr(copyKit(k)))
		}
	}
	byCreated(list, func(k *entity.Kit) time.Time { return k.CreatedAt }, func(k *entity.Kit) string { return k.ID })
	return list, nil
}

// AssemblyRepo órdenes de ensamble en memoria.
type AssemblyRepo struct{ *db }

func (r *AssemblyRepo) Create(_ context.Context, o *entity.AssemblyOrder) error {
	defer r.lock()()
	r.state().assemblies[o.ID] = *o
	return nil
}

func (r *AssemblyRepo) ListByKit(_ context.Context, companyID, kitID string) ([]*entity.AssemblyOrder, error) {
	defer r.lock()()
	var list []*entity.AssemblyOrder
	for _, o := range r.state().assemblies {
		if o.CompanyID == companyID && o.KitID == kitID {
			list = append(list, ptr(o))
		}
	}
	newestFirst(list, func(o *entity.AssemblyOrder) time.Time { return o.CreatedAt }, func(o *entity.AssemblyOrder) string { return o.Number })
	return list, nil
}

// ApprovalRepo solicitudes de aprobación en memoria.
type ApprovalRepo struct{ *db }

func (r *ApprovalRepo) Create(_ context.Context, a *entity.ApprovalRequest) error {
	defer r.lock()()
	r.state().approvals[a.ID] = *a
	return nil
}

func (r *ApprovalRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.ApprovalRequest, error) {
	defer r.lock()()
	if a, ok := r.state().approvals[id]; ok && a.CompanyID == companyID {
		return &a, nil
	}
	return nil, nil
}

func (r *ApprovalRepo) Update(_ context.Context, a *entity.ApprovalRequest) error {
	defer r.lock()()
	st := r.state()
	if _, ok := st.approvals[a.ID]; !ok {
		return domain.ErrNotFound
	}
	st.approvals[a.ID] = *a
	return nil
}

func (r *ApprovalRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.ApprovalRequest, error) {
	defer r.lock()()
	var list []*entity.ApprovalRequest
	for _, a := range r.state().approvals {
		if a.CompanyID == f.CompanyID && (f.Status == "" || a.Status == f.Status) {
			list = append(list, ptr(a))
		}
	}
	newestFirst(list, func(a *entity.ApprovalRequest) time.Time { return a.CreatedAt }, func(a *entity.ApprovalRequest) string { return a.ID })
	return page(list, f.Limit, f.Offset), nil
}

func (r *ApprovalRepo) ListPendingForEntity(_ context.Context, companyID, entityType, entityID string) ([]*entity.ApprovalRequest, error) {
	defer r.lock()()
	var list []*entity.ApprovalRequest
	for _, a := range r.state().approvals {
		if a.CompanyID == companyID && a.EntityType == entityType && a.EntityID == entityID && a.Status == entity.ApprovalPending {
			list = append(list, ptr(a))
		}
	}
	byCreated(list, func(a *entity.ApprovalRequest) time.Time { return a.CreatedAt }, func(a *entity.ApprovalRequest) string { return a.ID })
	return list, nil
}

// AuditLogRepo bitácora en memoria.
type AuditLogRepo struct{ *db }

func (r *AuditLogRepo) Create(_ context.Context, l *entity.AuditLog) error {
	defer r.lock()()
	st := r.state()
	st.audit = append(st.audit, *l)
	return nil
}

func (r *AuditLogRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	defer r.lock()()
	var list []*entity.AuditLog
	audit := r.state().audit
	for i := len(audit) - 1; i >= 0; i-- {
		l := audit[i]
		if l.CompanyID != f.CompanyID {
			continue
		}
		if (f.UserID != "" && l.UserID != f.UserID) ||
			(f.EntityType != "" && l.EntityType != f.EntityType) ||
			(f.EntityID != "" && l.EntityID != f.EntityID) {
			continue
		}
		if (f.From != nil && l.CreatedAt.Before(*f.From)) || (f.To != nil && l.CreatedAt.After(*f.To)) {
			continue
		}
		list = append(list, ptr(l))
	}
	return page(list, f.Limit, f.Offset), nil
}

// SequenceRepo consecutivos en memoria.
type SequenceRepo struct{ *db }

func (r *SequenceRepo) Next(_ context.Context, companyID, prefix string) (int64, error) {
	defer r.lock()()
	st := r.state()
	key := companyID + "/" + prefix
	st.sequences[key]++
	return st.sequences[key], nil
}
