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
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FacturaDispatcher enqueues post-sale jobs (PDF render, email). A nil
// dispatcher is valid — unit tests and the seed commands run without Redis.
type FacturaDispatcher interface {
	DispatchFactura(ctx context.Context, ventaID uuid.UUID) error
}

// VentaService implements the sale lifecycle: registration with atomic stock
// debits, item edits while the sale is pendiente, and state transitions with
// stock restitution on cancellation.
type VentaService interface {
	RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ObtenerPorNumeroFactura(ctx context.Context, numero string) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	AgregarItem(ctx context.Context, ventaID uuid.UUID, req dto.AgregarItemRequest) (*dto.VentaResponse, error)
	EliminarItem(ctx context.Context, ventaID, itemID uuid.UUID) (*dto.VentaResponse, error)
	CambiarEstado(ctx context.Context, ventaID uuid.UUID, req dto.CambiarEstadoVentaRequest) (*dto.VentaResponse, error)
}

type ventaService struct {
	ventaRepo      repository.VentaRepository
	productoRepo   repository.ProductoRepository
	clienteRepo    repository.ClienteRepository
	inventario     InventarioService
	dispatcher     FacturaDispatcher
	prefijoFactura string
	stockNegativo  bool
}

func NewVentaService(
	ventaRepo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	inventario InventarioService,
	dispatcher FacturaDispatcher,
	prefijoFactura string,
	permitirStockNegativo bool,
) VentaService {
	return &ventaService{
		ventaRepo:      ventaRepo,
		productoRepo:   productoRepo,
		clienteRepo:    clienteRepo,
		inventario:     inventario,
		dispatcher:     dispatcher,
		prefijoFactura: prefijoFactura,
		stockNegativo:  permitirStockNegativo,
	}
}

func (s *ventaService) RegistrarVenta(ctx context.Context, vendedorID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	ahora := time.Now()

	venta := &model.Venta{
		NumeroFactura: model.GenerarNumeroFactura(s.prefijoFactura, ahora),
		VendedorID:    vendedorID,
		FechaVenta:    ahora,
		Impuesto:      req.Impuesto,
		Descuento:     req.Descuento,
		MetodoPago:    model.MetodoPago(req.MetodoPago),
		Estado:        model.VentaPendiente,
		Notas:         req.Notas,
	}

	// Snapshot the customer identity; the sale survives later edits or
	// deactivation of the customer row.
	if req.ClienteNumeroDocumento != nil && *req.ClienteNumeroDocumento != "" {
		cliente, err := s.clienteRepo.FindByDocumento(ctx, *req.ClienteNumeroDocumento)
		if err != nil {
			return nil, fmt.Errorf("cliente con documento %s no encontrado", *req.ClienteNumeroDocumento)
		}
		if !cliente.Activo {
			return nil, errors.New("el cliente está inactivo")
		}
		venta.ClienteNumeroDocumento = &cliente.NumeroDocumento
		venta.ClienteTipoDocumento = &cliente.TipoDocumento
		venta.ClienteNombre = &cliente.Nombre
	}

	// Resolve every line before touching the database: product must exist and
	// be active, unit price is snapshotted from the catalog.
	subtotal := decimal.Zero
	for _, it := range req.Items {
		productoID, err := uuid.Parse(it.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("producto_id inválido: %s", it.ProductoID)
		}
		producto, err := s.productoRepo.FindByID(ctx, productoID)
		if err != nil {
			return nil, fmt.Errorf("producto %s no encontrado", it.ProductoID)
		}
		if !producto.Activo {
			return nil, fmt.Errorf("el producto %s está inactivo", producto.SKU)
		}
		item := model.VentaItem{
			ProductoID:     producto.ID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: producto.Precio,
		}
		item.CalcularPrecioTotal()
		subtotal = subtotal.Add(item.PrecioTotal)
		venta.Items = append(venta.Items, item)
	}
	venta.Subtotal = subtotal
	venta.CalcularTotal()

	err := runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.ventaRepo.CreateTx(ctx, tx, venta); err != nil {
			return err
		}
		for _, item := range venta.Items {
			refID := venta.ID
			err := s.inventario.AplicarDeltaTx(tx, item.ProductoID, -item.Cantidad, s.stockNegativo,
				"venta", "venta "+venta.NumeroFactura, &refID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("numero_factura", venta.NumeroFactura).
		Str("total", venta.Total.StringFixed(2)).
		Int("items", len(venta.Items)).
		Msg("venta registrada")

	s.dispatchFactura(ctx, venta.ID)
	return s.toResponse(ctx, venta.ID)
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	return s.toResponse(ctx, id)
}

func (s *ventaService) ObtenerPorNumeroFactura(ctx context.Context, numero string) (*dto.VentaResponse, error) {
	venta, err := s.ventaRepo.FindByNumeroFactura(ctx, numero)
	if err != nil {
		return nil, err
	}
	resp := buildVentaResponse(venta)
	return &resp, nil
}

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.ventaRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, buildVentaResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *ventaService) AgregarItem(ctx context.Context, ventaID uuid.UUID, req dto.AgregarItemRequest) (*dto.VentaResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, err
	}
	if venta.Estado != model.VentaPendiente {
		return nil, ErrVentaNoEditable
	}

	productoID, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("producto_id inválido: %s", req.ProductoID)
	}
	producto, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return nil, fmt.Errorf("producto %s no encontrado", req.ProductoID)
	}
	if !producto.Activo {
		return nil, fmt.Errorf("el producto %s está inactivo", producto.SKU)
	}

	item := &model.VentaItem{
		VentaID:        venta.ID,
		ProductoID:     producto.ID,
		Cantidad:       req.Cantidad,
		PrecioUnitario: producto.Precio,
	}
	item.CalcularPrecioTotal()

	venta.Subtotal = venta.Subtotal.Add(item.PrecioTotal)
	venta.CalcularTotal()

	err = runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.ventaRepo.CreateItemTx(tx, item); err != nil {
			return err
		}
		refID := venta.ID
		err := s.inventario.AplicarDeltaTx(tx, item.ProductoID, -item.Cantidad, s.stockNegativo,
			"edicion_item", "item agregado a "+venta.NumeroFactura, &refID)
		if err != nil {
			return err
		}
		return s.ventaRepo.UpdateTotalesTx(tx, venta)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, venta.ID)
}

func (s *ventaService) EliminarItem(ctx context.Context, ventaID, itemID uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, err
	}
	if venta.Estado != model.VentaPendiente {
		return nil, ErrVentaNoEditable
	}

	item, err := s.ventaRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, errors.New("item no encontrado")
	}
	if item.VentaID != venta.ID {
		return nil, errors.New("el item no pertenece a la venta")
	}

	venta.Subtotal = venta.Subtotal.Sub(item.PrecioTotal)
	venta.CalcularTotal()

	err = runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		if err := s.ventaRepo.DeleteItemTx(tx, item.ID); err != nil {
			return err
		}
		// Credit the stock back — mirror image of the debit at add time.
		refID := venta.ID
		err := s.inventario.AplicarDeltaTx(tx, item.ProductoID, item.Cantidad, true,
			"edicion_item", "item eliminado de "+venta.NumeroFactura, &refID)
		if err != nil {
			return err
		}
		return s.ventaRepo.UpdateTotalesTx(tx, venta)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, venta.ID)
}

func (s *ventaService) CambiarEstado(ctx context.Context, ventaID uuid.UUID, req dto.CambiarEstadoVentaRequest) (*dto.VentaResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, err
	}
	destino := model.EstadoVenta(req.Estado)
	if !venta.Estado.PuedeTransicionarA(destino) {
		return nil, fmt.Errorf("%w: %s → %s", ErrTransicionInvalida, venta.Estado, destino)
	}

	err = runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		// CAS first: if another request already moved the sale, stop before
		// touching stock so restitution happens exactly once.
		if err := s.ventaRepo.UpdateEstadoTx(tx, venta.ID, venta.Estado, destino); err != nil {
			if errors.Is(err, repository.ErrEstadoModificado) {
				return fmt.Errorf("%w: la venta ya no está %s", ErrTransicionInvalida, venta.Estado)
			}
			return err
		}
		if destino == model.VentaCancelada {
			motivo := "anulación de venta " + venta.NumeroFactura
			if req.Motivo != nil && *req.Motivo != "" {
				motivo = *req.Motivo
			}
			for _, item := range venta.Items {
				refID := venta.ID
				err := s.inventario.AplicarDeltaTx(tx, item.ProductoID, item.Cantidad, true,
					"anulacion", motivo, &refID)
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Str("estado_anterior", string(venta.Estado)).
		Str("estado_nuevo", string(destino)).
		Msg("estado de venta actualizado")

	return s.toResponse(ctx, venta.ID)
}

func (s *ventaService) dispatchFactura(ctx context.Context, ventaID uuid.UUID) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.DispatchFactura(ctx, ventaID); err != nil {
		// The sale is already committed; a queue hiccup must not fail it.
		log.Error().Err(err).Str("venta_id", ventaID.String()).Msg("no se pudo encolar la factura")
	}
}

func (s *ventaService) toResponse(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.ventaRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildVentaResponse(venta)
	return &resp, nil
}

func buildVentaResponse(v *model.Venta) dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, it := range v.Items {
		nombre := ""
		if it.Producto != nil {
			nombre = it.Producto.Nombre
		}
		items = append(items, dto.ItemVentaResponse{
			ID:             it.ID.String(),
			ProductoID:     it.ProductoID.String(),
			Producto:       nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			PrecioTotal:    it.PrecioTotal,
		})
	}
	var tipoDoc *string
	if v.ClienteTipoDocumento != nil {
		t := string(*v.ClienteTipoDocumento)
		tipoDoc = &t
	}
	return dto.VentaResponse{
		ID:                     v.ID.String(),
		NumeroFactura:          v.NumeroFactura,
		ClienteNombre:          v.ClienteNombre,
		ClienteTipoDocumento:   tipoDoc,
		ClienteNumeroDocumento: v.ClienteNumeroDocumento,
		VendedorID:             v.VendedorID.String(),
		FechaVenta:             v.FechaVenta.Format(time.RFC3339),
		Items:                  items,
		Subtotal:               v.Subtotal,
		Impuesto:               v.Impuesto,
		Descuento:              v.Descuento,
		Total:                  v.Total,
		MetodoPago:             string(v.MetodoPago),
		Estado:                 string(v.Estado),
		Notas:                  v.Notas,
	}
}
