package service

import (
	"context"
	"errors"
	"time"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrCredencialesInvalidas = errors.New("usuario o contraseña incorrectos")
	ErrTokenInvalido         = errors.New("token inválido o expirado")
	ErrUsernameDuplicado     = errors.New("ya existe un usuario con ese username")
)

// Claims embeds the user identity and role in the JWT payload. The role travels
// in the token so route gating never needs a user lookup.
type Claims struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Rol      model.Rol `json:"rol"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	ValidateToken(tokenString string) (*Claims, error)

	CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error)
	ObtenerUsuario(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	DesactivarUsuario(ctx context.Context, id uuid.UUID) error
	ReactivarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo            repository.UsuarioRepository
	jwtSecret       []byte
	tokenDuration   time.Duration
	refreshDuration time.Duration
}

func NewAuthService(repo repository.UsuarioRepository, jwtSecret string, expirationHours, refreshHours int) AuthService {
	return &authService{
		repo:            repo,
		jwtSecret:       []byte(jwtSecret),
		tokenDuration:   time.Duration(expirationHours) * time.Hour,
		refreshDuration: time.Duration(refreshHours) * time.Hour,
	}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	u, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		// Same error for unknown user and bad password.
		return nil, ErrCredencialesInvalidas
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		log.Warn().Str("username", req.Username).Msg("intento de login fallido")
		return nil, ErrCredencialesInvalidas
	}
	return s.buildLoginResponse(u)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrTokenInvalido
	}
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil || !u.Activo {
		return nil, ErrTokenInvalido
	}
	return s.buildLoginResponse(u)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalido
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalido
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}

func (s *authService) buildLoginResponse(u *model.Usuario) (*dto.LoginResponse, error) {
	access, err := s.firmarToken(u, s.tokenDuration)
	if err != nil {
		return nil, err
	}
	refresh, err := s.firmarToken(u, s.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenDuration.Seconds()),
		User:         buildUsuarioResponse(u),
	}, nil
}

func (s *authService) firmarToken(u *model.Usuario, vigencia time.Duration) (string, error) {
	ahora := time.Now()
	claims := Claims{
		UserID:   u.ID.String(),
		Username: u.Username,
		Rol:      u.Rol,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(ahora),
			ExpiresAt: jwt.NewNumericDate(ahora.Add(vigencia)),
			Subject:   u.ID.String(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *authService) CrearUsuario(ctx context.Context, req dto.CrearUsuarioRequest) (*dto.UsuarioResponse, error) {
	if existente, err := s.repo.FindByUsername(ctx, req.Username); err == nil && existente != nil {
		return nil, ErrUsernameDuplicado
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.Usuario{
		Username:     req.Username,
		Nombre:       req.Nombre,
		Email:        req.Email,
		PasswordHash: string(hash),
		Rol:          model.Rol(req.Rol),
		Activo:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	resp := buildUsuarioResponse(u)
	return &resp, nil
}

func (s *authService) ObtenerUsuario(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildUsuarioResponse(u)
	return &resp, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	var (
		usuarios []model.Usuario
		err      error
	)
	if incluirInactivos {
		usuarios, err = s.repo.ListAll(ctx)
	} else {
		usuarios, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	out := make([]dto.UsuarioResponse, 0, len(usuarios))
	for i := range usuarios {
		out = append(out, buildUsuarioResponse(&usuarios[i]))
	}
	return out, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != "" {
		u.Nombre = req.Nombre
	}
	if req.Email != nil {
		u.Email = req.Email
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	if req.Rol != "" {
		u.Rol = model.Rol(req.Rol)
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	resp := buildUsuarioResponse(u)
	return &resp, nil
}

func (s *authService) DesactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("usuario no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) ReactivarUsuario(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("usuario no encontrado")
	}
	return s.repo.Reactivar(ctx, id)
}

func buildUsuarioResponse(u *model.Usuario) dto.UsuarioResponse {
	return dto.UsuarioResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Nombre:   u.Nombre,
		Email:    u.Email,
		Rol:      string(u.Rol),
		Activo:   u.Activo,
	}
}
