package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// precioCacheTTL bounds staleness of the public price endpoint after a price
// change that raced the invalidation.
const precioCacheTTL = 5 * time.Minute

func precioCacheKey(sku string) string { return "precio:" + sku }

type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error

	// ConsultarPrecio serves the public price check, cache-aside over Redis.
	ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPrecioResponse, error)
}

type productoService struct {
	repo          repository.ProductoRepository
	categoriaRepo repository.CategoriaRepository
	rdb           *redis.Client // nil in unit tests: cache becomes a no-op
}

func NewProductoService(repo repository.ProductoRepository, categoriaRepo repository.CategoriaRepository, rdb *redis.Client) ProductoService {
	return &productoService{repo: repo, categoriaRepo: categoriaRepo, rdb: rdb}
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if existente, err := s.repo.FindBySKU(ctx, req.SKU); err == nil && existente != nil {
		return nil, ErrSKUDuplicado
	}

	categoriaID, err := uuid.Parse(req.CategoriaID)
	if err != nil {
		return nil, fmt.Errorf("categoria_id inválido: %s", req.CategoriaID)
	}
	categoria, err := s.categoriaRepo.ObtenerPorID(ctx, categoriaID)
	if err != nil {
		return nil, errors.New("categoría no encontrada")
	}
	if !categoria.Activo {
		return nil, errors.New("la categoría está inactiva")
	}

	p := &model.Producto{
		SKU:         req.SKU,
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Imagen:      req.Imagen,
		Precio:      req.Precio,
		Stock:       req.Stock,
		StockMinimo: req.StockMinimo,
		CategoriaID: categoria.ID,
		Activo:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	p.Categoria = categoria
	resp := buildProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, buildProductoResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		p.Nombre = *req.Nombre
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.Imagen != nil {
		p.Imagen = req.Imagen
	}
	if req.Precio != nil {
		p.Precio = *req.Precio
	}
	if req.StockMinimo != nil {
		p.StockMinimo = *req.StockMinimo
	}
	if req.CategoriaID != nil {
		categoriaID, err := uuid.Parse(*req.CategoriaID)
		if err != nil {
			return nil, fmt.Errorf("categoria_id inválido: %s", *req.CategoriaID)
		}
		if _, err := s.categoriaRepo.ObtenerPorID(ctx, categoriaID); err != nil {
			return nil, errors.New("categoría no encontrada")
		}
		p.CategoriaID = categoriaID
		p.Categoria = nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidarPrecio(ctx, p.SKU)
	resp := buildProductoResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidarPrecio(ctx, p.SKU)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return errors.New("producto no encontrado")
	}
	return s.repo.Reactivar(ctx, id)
}

func (s *productoService) ConsultarPrecio(ctx context.Context, sku string) (*dto.ConsultaPrecioResponse, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, precioCacheKey(sku)).Result()
		if err == nil {
			var resp dto.ConsultaPrecioResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("sku", sku).Msg("cache de precios no disponible")
		}
	}

	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	categoria := ""
	if p.Categoria != nil {
		categoria = p.Categoria.Nombre
	}
	resp := &dto.ConsultaPrecioResponse{
		Nombre:          p.Nombre,
		Precio:          p.Precio,
		StockDisponible: p.Stock,
		Categoria:       categoria,
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, precioCacheKey(sku), payload, precioCacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("sku", sku).Msg("no se pudo cachear el precio")
			}
		}
	}
	return resp, nil
}

func (s *productoService) invalidarPrecio(ctx context.Context, sku string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, precioCacheKey(sku)).Err(); err != nil {
		log.Warn().Err(err).Str("sku", sku).Msg("no se pudo invalidar el cache de precio")
	}
}

func buildProductoResponse(p *model.Producto) dto.ProductoResponse {
	categoria := ""
	if p.Categoria != nil {
		categoria = p.Categoria.Nombre
	}
	return dto.ProductoResponse{
		ID:          p.ID.String(),
		SKU:         p.SKU,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Imagen:      p.Imagen,
		Precio:      p.Precio,
		Stock:       p.Stock,
		StockMinimo: p.StockMinimo,
		StockBajo:   p.StockBajo(),
		CategoriaID: p.CategoriaID.String(),
		Categoria:   categoria,
		Activo:      p.Activo,
	}
}
