package service

import (
	"context"
	"errors"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var ErrCategoriaDuplicada = errors.New("ya existe una categoría con ese nombre")

type CategoriaService interface {
	Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error)
	ObtenerPorSlug(ctx context.Context, s string) (*dto.CategoriaResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Crear(ctx context.Context, req dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	if existente, err := s.repo.ObtenerPorNombre(ctx, req.Nombre); err == nil && existente != nil {
		return nil, ErrCategoriaDuplicada
	}

	c := &model.Categoria{
		Nombre: req.Nombre,
		// The slug is generated exactly once. Actualizar never touches it.
		Slug:        slug.Make(req.Nombre),
		Descripcion: req.Descripcion,
		Activo:      true,
	}
	if err := s.repo.Crear(ctx, c); err != nil {
		return nil, err
	}
	resp := buildCategoriaResponse(c)
	return &resp, nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.Listar(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(categorias))
	for i := range categorias {
		out = append(out, buildCategoriaResponse(&categorias[i]))
	}
	return out, nil
}

func (s *categoriaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildCategoriaResponse(c)
	return &resp, nil
}

func (s *categoriaService) ObtenerPorSlug(ctx context.Context, slugVal string) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorSlug(ctx, slugVal)
	if err != nil {
		return nil, err
	}
	resp := buildCategoriaResponse(c)
	return &resp, nil
}

func (s *categoriaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.ObtenerPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil && *req.Nombre != c.Nombre {
		if otro, err := s.repo.ObtenerPorNombre(ctx, *req.Nombre); err == nil && otro != nil && otro.ID != c.ID {
			return nil, ErrCategoriaDuplicada
		}
		c.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		c.Descripcion = req.Descripcion
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Actualizar(ctx, c); err != nil {
		return nil, err
	}
	resp := buildCategoriaResponse(c)
	return &resp, nil
}

func (s *categoriaService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.ObtenerPorID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("categoría no encontrada")
		}
		return err
	}
	return s.repo.Desactivar(ctx, id)
}

func buildCategoriaResponse(c *model.Categoria) dto.CategoriaResponse {
	return dto.CategoriaResponse{
		ID:          c.ID,
		Nombre:      c.Nombre,
		Slug:        c.Slug,
		Descripcion: c.Descripcion,
		Activo:      c.Activo,
	}
}
