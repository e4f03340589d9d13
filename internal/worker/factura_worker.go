package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"tiendaweb/internal/infra"
	"tiendaweb/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// FacturaJob renders the invoice PDF for a committed sale and, when the
// customer has an email on file, chains an EmailJob.
type FacturaJob struct {
	VentaID  string `json:"venta_id"`
	Attempts int    `json:"attempts"`
}

type EmailJob struct {
	VentaID       string `json:"venta_id"`
	NumeroFactura string `json:"numero_factura"`
	Destinatario  string `json:"destinatario"`
	RutaPDF       string `json:"ruta_pdf"`
	Attempts      int    `json:"attempts"`
}

// FacturaWorker is the queue-facing side of the invoice pipeline. It also
// implements service.FacturaDispatcher so the sale flow can enqueue jobs
// without importing this package's internals.
type FacturaWorker struct {
	pool        *Pool
	ventaRepo   repository.VentaRepository
	clienteRepo repository.ClienteRepository
	pdf         *infra.FacturaPDF
}

func NewFacturaWorker(pool *Pool, ventaRepo repository.VentaRepository, clienteRepo repository.ClienteRepository, pdf *infra.FacturaPDF) *FacturaWorker {
	return &FacturaWorker{pool: pool, ventaRepo: ventaRepo, clienteRepo: clienteRepo, pdf: pdf}
}

// DispatchFactura enqueues the PDF render for a sale.
func (w *FacturaWorker) DispatchFactura(ctx context.Context, ventaID uuid.UUID) error {
	return w.pool.Enqueue(ctx, QueueFactura, FacturaJob{VentaID: ventaID.String()})
}

// Handle processes one FacturaJob payload.
func (w *FacturaWorker) Handle(ctx context.Context, payload []byte) error {
	var job FacturaJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("payload de factura inválido: %w", err)
	}
	ventaID, err := uuid.Parse(job.VentaID)
	if err != nil {
		return fmt.Errorf("venta_id inválido: %w", err)
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("venta %s no encontrada: %w", job.VentaID, err)
	}

	ruta, err := w.pdf.Generar(venta)
	if err != nil {
		return err
	}
	log.Info().Str("numero_factura", venta.NumeroFactura).Str("ruta", ruta).Msg("factura PDF generada")

	// Chain the email only when the customer exists and has an address.
	if venta.ClienteNumeroDocumento == nil {
		return nil
	}
	cliente, err := w.clienteRepo.FindByDocumento(ctx, *venta.ClienteNumeroDocumento)
	if err != nil || cliente.Email == nil || *cliente.Email == "" {
		return nil
	}
	return w.pool.Enqueue(ctx, QueueEmail, EmailJob{
		VentaID:       venta.ID.String(),
		NumeroFactura: venta.NumeroFactura,
		Destinatario:  *cliente.Email,
		RutaPDF:       ruta,
	})
}
