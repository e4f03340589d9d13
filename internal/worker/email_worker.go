package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"tiendaweb/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailWorker sends invoice emails. The SMTP relay sits behind a circuit
// breaker so a dead relay fails jobs fast into retry/DLQ instead of making
// every worker block on timeouts.
type EmailWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker}
}

// Handle processes one EmailJob payload.
func (w *EmailWorker) Handle(ctx context.Context, payload []byte) error {
	var job EmailJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("payload de email inválido: %w", err)
	}
	if !w.mailer.Configurado() {
		log.Debug().Str("numero_factura", job.NumeroFactura).Msg("SMTP no configurado, email omitido")
		return nil
	}

	err := w.breaker.Execute(func() error {
		return w.mailer.EnviarFactura(job.Destinatario, job.NumeroFactura, job.RutaPDF)
	})
	if err != nil {
		return fmt.Errorf("enviar factura %s a %s: %w", job.NumeroFactura, job.Destinatario, err)
	}
	log.Info().Str("numero_factura", job.NumeroFactura).Str("destinatario", job.Destinatario).Msg("factura enviada por email")
	return nil
}
