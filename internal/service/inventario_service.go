package service

import (
	"context"
	"errors"
	"time"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService owns every stock mutation. Deltas are always expressed as
// signed quantities applied at the storage layer, paired with an immutable
// MovimientoStock audit row inside the caller's transaction.
type InventarioService interface {
	// AplicarDeltaTx applies a signed stock delta plus its audit row within tx.
	// When permitirNegativo is false, a debit that would underflow is rejected
	// with repository.ErrStockInsuficiente and nothing is written.
	AplicarDeltaTx(tx *gorm.DB, productoID uuid.UUID, delta int, permitirNegativo bool, tipo, motivo string, referenciaID *uuid.UUID) error

	// AjustarStockManual applies a supervisor-initiated delta in its own transaction.
	AjustarStockManual(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error

	ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error)
	ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error)
}

type inventarioService struct {
	productoRepo   repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(productoRepo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{productoRepo: productoRepo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) AplicarDeltaTx(tx *gorm.DB, productoID uuid.UUID, delta int, permitirNegativo bool, tipo, motivo string, referenciaID *uuid.UUID) error {
	// In-tx read so the before/after snapshot is consistent with the delta.
	producto, err := s.productoRepo.FindByIDTx(tx, productoID)
	if err != nil {
		return err
	}
	if delta < 0 && !permitirNegativo {
		if err := s.productoRepo.DescontarStockSeguroTx(tx, productoID, -delta); err != nil {
			return err
		}
	} else {
		if err := s.productoRepo.AjustarStockTx(tx, productoID, delta); err != nil {
			return err
		}
	}
	mov := &model.MovimientoStock{
		ProductoID:    productoID,
		Tipo:          tipo,
		Cantidad:      delta,
		StockAnterior: producto.Stock,
		StockNuevo:    producto.Stock + delta,
		Motivo:        motivo,
		ReferenciaID:  referenciaID,
	}
	return s.movimientoRepo.CreateTx(tx, mov)
}

func (s *inventarioService) AjustarStockManual(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error {
	p, err := s.productoRepo.FindByID(ctx, productoID)
	if err != nil {
		return errors.New("producto no encontrado")
	}
	if !p.Activo {
		return errors.New("el producto está inactivo")
	}
	return runTx(ctx, s.productoRepo.DB(), func(tx *gorm.DB) error {
		// Manual adjustments may always go negative — the supervisor is
		// reconciling against a physical count.
		return s.AplicarDeltaTx(tx, productoID, delta, true, "ajuste_manual", motivo, nil)
	})
}

func (s *inventarioService) ObtenerAlertas(ctx context.Context) ([]dto.AlertaStockResponse, error) {
	productos, err := s.productoRepo.ListStockBajo(ctx)
	if err != nil {
		return nil, err
	}
	alertas := make([]dto.AlertaStockResponse, 0, len(productos))
	for _, p := range productos {
		alertas = append(alertas, dto.AlertaStockResponse{
			ProductoID:  p.ID.String(),
			SKU:         p.SKU,
			Nombre:      p.Nombre,
			Stock:       p.Stock,
			StockMinimo: p.StockMinimo,
		})
	}
	return alertas, nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter repository.MovimientoStockFilter) (*dto.MovimientoStockListResponse, error) {
	movimientos, total, err := s.movimientoRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovimientoStockResponse, 0, len(movimientos))
	for _, m := range movimientos {
		nombre := ""
		if m.Producto != nil {
			nombre = m.Producto.Nombre
		}
		var ref *string
		if m.ReferenciaID != nil {
			v := m.ReferenciaID.String()
			ref = &v
		}
		items = append(items, dto.MovimientoStockResponse{
			ID:            m.ID.String(),
			ProductoID:    m.ProductoID.String(),
			Producto:      nombre,
			Tipo:          m.Tipo,
			Cantidad:      m.Cantidad,
			StockAnterior: m.StockAnterior,
			StockNuevo:    m.StockNuevo,
			Motivo:        m.Motivo,
			ReferenciaID:  ref,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		})
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	return &dto.MovimientoStockListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}
