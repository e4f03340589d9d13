package service

import (
	"context"
	"sync"
	"time"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory stubs. The *gorm.DB they receive is always nil (runTx short-
// circuits when the repo's DB() is nil), so transactional methods just mutate
// the maps directly.

type stubProductoRepo struct {
	mu        sync.Mutex
	productos map[uuid.UUID]*model.Producto
}

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (s *stubProductoRepo) agregar(p *model.Producto) *model.Producto {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.productos[p.ID] = p
	return p
}

func (s *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	s.agregar(p)
	return nil
}

func (s *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *p
	return &copia, nil
}

func (s *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubProductoRepo) FindBySKU(_ context.Context, sku string) (*model.Producto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.productos {
		if p.SKU == sku && p.Activo {
			copia := *p
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Producto
	for _, p := range s.productos {
		if p.Activo {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (s *stubProductoRepo) ListStockBajo(_ context.Context) ([]model.Producto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Producto
	for _, p := range s.productos {
		if p.Activo && p.Stock <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.productos[p.ID] = p
	return nil
}

func (s *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (s *stubProductoRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.productos[id]; ok {
		p.Activo = true
	}
	return nil
}

func (s *stubProductoRepo) AjustarStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (s *stubProductoRepo) DescontarStockSeguroTx(_ *gorm.DB, id uuid.UUID, cantidad int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if p.Stock < cantidad {
		return repository.ErrStockInsuficiente
	}
	p.Stock -= cantidad
	return nil
}

func (s *stubProductoRepo) DB() *gorm.DB { return nil }

type stubCategoriaRepo struct {
	mu         sync.Mutex
	categorias map[uuid.UUID]*model.Categoria
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
}

func (s *stubCategoriaRepo) Crear(_ context.Context, c *model.Categoria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.categorias[c.ID] = c
	return nil
}

func (s *stubCategoriaRepo) Listar(_ context.Context) ([]model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Categoria
	for _, c := range s.categorias {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCategoriaRepo) ObtenerPorID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (s *stubCategoriaRepo) ObtenerPorNombre(_ context.Context, nombre string) (*model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categorias {
		if c.Nombre == nombre {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoriaRepo) ObtenerPorSlug(_ context.Context, slug string) (*model.Categoria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categorias {
		if c.Slug == slug {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCategoriaRepo) Actualizar(_ context.Context, c *model.Categoria) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categorias[c.ID] = c
	return nil
}

func (s *stubCategoriaRepo) Desactivar(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.categorias[id]; ok {
		c.Activo = false
	}
	return nil
}

type stubClienteRepo struct {
	mu       sync.Mutex
	clientes map[uuid.UUID]*model.Cliente
}

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: make(map[uuid.UUID]*model.Cliente)}
}

func (s *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.clientes[c.ID] = c
	return nil
}

func (s *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *c
	return &copia, nil
}

func (s *stubClienteRepo) FindByDocumento(_ context.Context, numero string) (*model.Cliente, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clientes {
		if c.NumeroDocumento == numero {
			copia := *c
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Cliente
	for _, c := range s.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (s *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientes[c.ID] = c
	return nil
}

func (s *stubClienteRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clientes[id]; ok {
		c.Activo = false
	}
	return nil
}

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas map[uuid.UUID]*model.Venta
}

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (s *stubVentaRepo) CreateTx(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	copia := *v
	copia.Items = append([]model.VentaItem(nil), v.Items...)
	s.ventas[v.ID] = &copia
	return nil
}

func (s *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *v
	copia.Items = append([]model.VentaItem(nil), v.Items...)
	return &copia, nil
}

func (s *stubVentaRepo) FindByNumeroFactura(_ context.Context, numero string) (*model.Venta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ventas {
		if v.NumeroFactura == numero {
			copia := *v
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Venta
	for _, v := range s.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (s *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, desde, hacia model.EstadoVenta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ventas[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v.Estado != desde {
		return repository.ErrEstadoModificado
	}
	v.Estado = hacia
	return nil
}

func (s *stubVentaRepo) UpdateTotalesTx(_ *gorm.DB, venta *model.Venta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ventas[venta.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Subtotal = venta.Subtotal
	v.Total = venta.Total
	return nil
}

func (s *stubVentaRepo) CreateItemTx(_ *gorm.DB, item *model.VentaItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	v, ok := s.ventas[item.VentaID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Items = append(v.Items, *item)
	return nil
}

func (s *stubVentaRepo) DeleteItemTx(_ *gorm.DB, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ventas {
		for i, it := range v.Items {
			if it.ID == itemID {
				v.Items = append(v.Items[:i], v.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubVentaRepo) FindItemByID(_ context.Context, itemID uuid.UUID) (*model.VentaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.ventas {
		for _, it := range v.Items {
			if it.ID == itemID {
				copia := it
				return &copia, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVentaRepo) DB() *gorm.DB { return nil }

type stubMovimientoRepo struct {
	mu          sync.Mutex
	movimientos []model.MovimientoStock
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)

func newStubMovimientoRepo() *stubMovimientoRepo { return &stubMovimientoRepo{} }

func (s *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.movimientos = append(s.movimientos, *m)
	return nil
}

func (s *stubMovimientoRepo) List(_ context.Context, filter repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range s.movimientos {
		if filter.ProductoID != nil && m.ProductoID != *filter.ProductoID {
			continue
		}
		if filter.Tipo != "" && m.Tipo != filter.Tipo {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (s *stubMovimientoRepo) porTipo(tipo string) []model.MovimientoStock {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.MovimientoStock
	for _, m := range s.movimientos {
		if m.Tipo == tipo {
			out = append(out, m)
		}
	}
	return out
}

type stubUsuarioRepo struct {
	mu       sync.Mutex
	usuarios map[uuid.UUID]*model.Usuario
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (s *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.usuarios[u.ID] = u
	return nil
}

func (s *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.usuarios {
		if u.Username == username && u.Activo {
			copia := *u
			return &copia, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copia := *u
	return &copia, nil
}

func (s *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Usuario
	for _, u := range s.usuarios {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Usuario
	for _, u := range s.usuarios {
		out = append(out, *u)
	}
	return out, nil
}

func (s *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usuarios[u.ID] = u
	return nil
}

func (s *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.usuarios[id]; ok {
		u.Activo = false
	}
	return nil
}

func (s *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.usuarios[id]; ok {
		u.Activo = true
	}
	return nil
}
