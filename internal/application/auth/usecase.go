package auth

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Bodega-api/internal/application/dto"
	"github.com/jhoicas/Bodega-api/internal/application/ports"
	"github.com/jhoicas/Bodega-api/internal/application/shared"
	"github.com/jhoicas/Bodega-api/internal/domain"
	"github.com/jhoicas/Bodega-api/internal/domain/entity"
	"github.com/jhoicas/Bodega-api/internal/domain/rbac"
	"github.com/jhoicas/Bodega-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro inicial y login.
type AuthUseCase struct {
	store  ports.Store
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(store ports.Store, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{store: store, jwtCfg: jwtCfg}
}

// RegisterUser crea el primer usuario de una empresa, siempre con rol admin.
// Los demás usuarios los da de alta un administrador. Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || len(in.Password) < 8 || in.CompanyID == "" {
		return nil, domain.ErrInvalidInput
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
		company, err := r.Companies.GetByID(ctx, in.CompanyID)
		if err != nil {
			return err
		}
		if company == nil {
			return domain.ErrNotFound // empresa no existe
		}
		current, err := r.Users.ListByCompany(ctx, company.ID, 1, 0)
		if err != nil {
			return err
		}
		if len(current) > 0 {
			return domain.ErrForbidden
		}
		now := shared.Now()
		name := in.Name
		if name == "" {
			name = in.Email
		}
		user = &entity.User{
			ID:           shared.NewID(),
			CompanyID:    company.ID,
			Email:        in.Email,
			PasswordHash: string(hash),
			Name:         name,
			Role:         entity.RoleAdmin,
			Status:       entity.UserStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return shared.Audit(ctx, r, shared.Actor{CompanyID: company.ID, UserID: user.ID, Role: user.Role},
			"auth.register", "user", user.ID, map[string]string{"email": user.Email})
	})
	if err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera JWT y retorna token + usuario.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.store.Repos().Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes, jwt.Identity{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
	})
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
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
