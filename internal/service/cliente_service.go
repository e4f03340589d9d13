package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
)

var ErrDocumentoDuplicado = errors.New("ya existe un cliente con ese número de documento")

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	ObtenerPorDocumento(ctx context.Context, numeroDocumento string) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	tipo := model.TipoDocumento(req.TipoDocumento)
	// The format check gates persistence: a malformed DNI or RUC never reaches
	// the table, so sales can trust the snapshot they take.
	if !model.ValidarDocumento(tipo, req.NumeroDocumento) {
		return nil, fmt.Errorf("%w: %s %q", ErrDocumentoInvalido, tipo, req.NumeroDocumento)
	}
	if existente, err := s.repo.FindByDocumento(ctx, req.NumeroDocumento); err == nil && existente != nil {
		return nil, ErrDocumentoDuplicado
	}

	c := &model.Cliente{
		TipoDocumento:   tipo,
		NumeroDocumento: req.NumeroDocumento,
		Nombre:          req.Nombre,
		Email:           req.Email,
		Telefono:        req.Telefono,
		Direccion:       req.Direccion,
		Activo:          true,
	}
	if req.FechaNacimiento != nil {
		fecha, err := time.Parse("2006-01-02", *req.FechaNacimiento)
		if err != nil {
			return nil, errors.New("fecha_nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		c.FechaNacimiento = &fecha
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := buildClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) ObtenerPorDocumento(ctx context.Context, numeroDocumento string) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByDocumento(ctx, numeroDocumento)
	if err != nil {
		return nil, err
	}
	resp := buildClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, buildClienteResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		c.Nombre = *req.Nombre
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Telefono != nil {
		c.Telefono = req.Telefono
	}
	if req.Direccion != nil {
		c.Direccion = req.Direccion
	}
	if req.FechaNacimiento != nil {
		fecha, err := time.Parse("2006-01-02", *req.FechaNacimiento)
		if err != nil {
			return nil, errors.New("fecha_nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		c.FechaNacimiento = &fecha
	}
	if req.Activo != nil {
		c.Activo = *req.Activo
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := buildClienteResponse(c)
	return &resp, nil
}

func (s *clienteService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("cliente no encontrado")
	}
	return s.repo.SoftDelete(ctx, id)
}

func buildClienteResponse(c *model.Cliente) dto.ClienteResponse {
	var fecha *string
	if c.FechaNacimiento != nil {
		v := c.FechaNacimiento.Format("2006-01-02")
		fecha = &v
	}
	return dto.ClienteResponse{
		ID:              c.ID.String(),
		TipoDocumento:   string(c.TipoDocumento),
		NumeroDocumento: c.NumeroDocumento,
		Nombre:          c.Nombre,
		Email:           c.Email,
		Telefono:        c.Telefono,
		Direccion:       c.Direccion,
		FechaNacimiento: fecha,
		Activo:          c.Activo,
	}
}
