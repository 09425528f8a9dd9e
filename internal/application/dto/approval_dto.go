package dto

import "time"

// ReviewApprovalRequest body para aprobar o rechazar.
type ReviewApprovalRequest struct {
	Comment string `json:"comment"`
}

// ApprovalResponse salida de una solicitud de aprobación.
type ApprovalResponse struct {
	ID          string     `json:"id"`
	EntityType  string     `json:"entity_type"`
	EntityID    string     `json:"entity_id"`
	Summary     string     `json:"summary"`
	Status      string     `json:"status"`
	RequestedBy string     `json:"requested_by"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// ApprovalListResponse lista de solicitudes.
type ApprovalListResponse struct {
	Items []ApprovalResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
