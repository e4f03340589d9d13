package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"tiendaweb/internal/model"

	"github.com/go-pdf/fpdf"
)

// FacturaPDF renders sale invoices to disk.
type FacturaPDF struct {
	outputDir string
}

func NewFacturaPDF(outputDir string) *FacturaPDF {
	return &FacturaPDF{outputDir: outputDir}
}

// Generar writes the invoice PDF for a sale and returns the file path.
func (g *FacturaPDF) Generar(venta *model.Venta) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de facturas: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Factura "+venta.NumeroFactura, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "FACTURA")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Número: %s", venta.NumeroFactura))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Fecha: %s", venta.FechaVenta.Format("02/01/2006 15:04")))
	pdf.Ln(7)
	if venta.ClienteNombre != nil {
		pdf.Cell(0, 7, fmt.Sprintf("Cliente: %s", *venta.ClienteNombre))
		pdf.Ln(7)
	}
	if venta.ClienteTipoDocumento != nil && venta.ClienteNumeroDocumento != nil {
		pdf.Cell(0, 7, fmt.Sprintf("%s: %s", *venta.ClienteTipoDocumento, *venta.ClienteNumeroDocumento))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	// Item table
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 8, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "P. Unit.", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range venta.Items {
		nombre := item.ProductoID.String()
		if item.Producto != nil {
			nombre = item.Producto.Nombre
		}
		pdf.CellFormat(90, 8, nombre, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, fmt.Sprintf("%d", item.Cantidad), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, item.PrecioUnitario.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, item.PrecioTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(150, 7, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, venta.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, "Impuesto", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, venta.Impuesto.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(150, 7, "Descuento", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, venta.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 9, "TOTAL", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 9, venta.Total.StringFixed(2), "", 1, "R", false, 0, "")

	ruta := filepath.Join(g.outputDir, venta.NumeroFactura+".pdf")
	if err := pdf.OutputFileAndClose(ruta); err != nil {
		return "", fmt.Errorf("escribir pdf %s: %w", ruta, err)
	}
	return ruta, nil
}
