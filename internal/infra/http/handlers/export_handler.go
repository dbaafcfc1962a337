package handlers

import (
	"encoding/csv"
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/fitness-sales/internal/entity"
)

// ExportHandler streams completed sales as the accounting CSV.
type ExportHandler struct {
	Sales entity.SaleRepository
}

func NewExportHandler(sales entity.SaleRepository) *ExportHandler {
	return &ExportHandler{Sales: sales}
}

func (h *ExportHandler) Handle(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Sales.ListCompleted(r.Context())
	if err != nil {
		log.Printf("❌ [EXPORT] failed to list completed sales: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"sale_id", "order_id", "time", "email", "phone", "name", "products"})
	for _, row := range rows {
		cw.Write([]string{
			row.SaleID,
			row.OrderID,
			row.Time.Format(time.RFC3339),
			row.Email,
			row.Phone,
			row.Name,
			row.Products,
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		log.Printf("❌ [EXPORT] CSV flush failed: %v", err)
	}
}
