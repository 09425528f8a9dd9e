package usecase

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
)

// UserUseCase administración de usuarios de la empresa.
type UserUseCase struct {
	store ports.Store
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(store ports.Store) *UserUseCase {
	return &UserUseCase{store: store}
}

// Create da de alta un usuario en la empresa del actor.
func (uc *UserUseCase) Create(ctx context.Context, actor shared.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: email y password (mínimo 8) son obligatorios", domain.ErrInvalidInput)
	}
	if !rbac.IsValidRole(in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, in.Role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var user *entity.User
	err = uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		existing, err := r.Users.GetByEmail(ctx, in.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailAlreadyExists
		}
		now := shared.Now()
		name := in.Name
		if name == "" {
			name = in.Email
		}
		user = &entity.User{
			ID:           shared.NewID(),
			CompanyID:    actor.CompanyID,
			Email:        in.Email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         in.Role,
			Status:       entity.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "user.create", "user", user.ID, map[string]string{"email": user.Email, "role": user.Role})
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// GetByID obtiene un usuario de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	user, err := uc.store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil || user.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}
	return entityToUserResponse(user), nil
}

// Update cambia nombre, rol o estado. Un usuario no puede cambiar su propio rol ni desactivarse.
func (uc *UserUseCase) Update(ctx context.Context, actor shared.Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if in.Role != nil && !rbac.IsValidRole(*in.Role) {
		return nil, fmt.Errorf("%w: rol %q", domain.ErrInvalidInput, *in.Role)
	}
	if id == actor.UserID && (in.Role != nil || in.Status != nil) {
		return nil, fmt.Errorf("%w: no puede cambiar su propio rol o estado", domain.ErrForbidden)
	}
	var user *entity.User
	err := uc.store.Run(ctx, func(ctx context.Context, r ports.TxRepos) error {
		var err error
		user, err = r.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if user == nil || user.CompanyID != actor.CompanyID {
			return domain.ErrUserNotFound
		}
		if in.Name != nil {
			user.Name = *in.Name
		}
		if in.Role != nil {
			user.Role = *in.Role
		}
		if in.Status != nil {
			switch *in.Status {
			case entity.UserStatusActive, entity.UserStatusInactive, entity.UserStatusSuspended:
				user.Status = *in.Status
			default:
				return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, *in.Status)
			}
		}
		user.UpdatedAt = shared.Now()
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		return shared.Audit(ctx, r, actor, "user.update", "user", user.ID, in)
	})
	if err != nil {
		return nil, err
	}
	return entityToUserResponse(user), nil
}

// List usuarios de la empresa.
func (uc *UserUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.UserListResponse, error) {
	list, err := uc.store.Repos().Users.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *entityToUserResponse(u))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func entityToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:          u.ID,
		CompanyID:   u.CompanyID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Status:      u.Status,
		Permissions: rbac.Permissions(u.Role),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
