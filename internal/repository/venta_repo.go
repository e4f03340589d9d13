package repository

import (
	"context"
	"errors"

	"tiendaweb/internal/dto"
	"tiendaweb/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrEstadoModificado is reported by UpdateEstadoTx when the sale left the
// expected state between the caller's read and the write.
var ErrEstadoModificado = errors.New("la venta cambió de estado de forma concurrente")

type VentaRepository interface {
	// CreateTx persists the sale together with its items. Must run inside the
	// same transaction as the stock debits.
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByNumeroFactura(ctx context.Context, numero string) (*model.Venta, error)
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// UpdateEstadoTx moves the sale from desde to hacia with a compare-and-swap
	// on the current state; ErrEstadoModificado when the guard touches no rows.
	UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, desde, hacia model.EstadoVenta) error
	UpdateTotalesTx(tx *gorm.DB, v *model.Venta) error

	// Item lifecycle — always inside a transaction paired with a stock delta.
	CreateItemTx(tx *gorm.DB, item *model.VentaItem) error
	DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.VentaItem, error)

	// DB exposes the DB for transaction creation in the service layer.
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) FindByNumeroFactura(ctx context.Context, numero string) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").
		Where("numero_factura = ?", numero).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("estado = ?", filter.Estado)
	}
	if filter.Fecha != "" {
		q = q.Where("DATE(fecha_venta) = ?", filter.Fecha)
	} else {
		// Default: today
		q = q.Where("DATE(fecha_venta) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").
		Order("fecha_venta DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) UpdateEstadoTx(tx *gorm.DB, id uuid.UUID, desde, hacia model.EstadoVenta) error {
	res := tx.Model(&model.Venta{}).
		Where("id = ? AND estado = ?", id, desde).
		Update("estado", hacia)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEstadoModificado
	}
	return nil
}

// UpdateTotalesTx rewrites the aggregate money columns after item add/remove.
func (r *ventaRepo) UpdateTotalesTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Model(&model.Venta{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"subtotal": v.Subtotal,
		"total":    v.Total,
	}).Error
}

func (r *ventaRepo) CreateItemTx(tx *gorm.DB, item *model.VentaItem) error {
	return tx.Create(item).Error
}

func (r *ventaRepo) DeleteItemTx(tx *gorm.DB, itemID uuid.UUID) error {
	return tx.Delete(&model.VentaItem{}, "id = ?", itemID).Error
}

func (r *ventaRepo) FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.VentaItem, error) {
	var item model.VentaItem
	err := r.db.WithContext(ctx).Preload("Producto").First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}
