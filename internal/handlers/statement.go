package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/dto"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/phpdave11/gofpdf"
)

// StatementHandler renders a PDF account statement from the user's
// transaction history.
type StatementHandler struct {
	svc *service.UserService
}

// NewStatementHandler returns a new StatementHandler.
func NewStatementHandler(svc *service.UserService) *StatementHandler {
	return &StatementHandler{svc: svc}
}

// Statement godoc
// @Summary      Download a PDF account statement
// @Tags         users
// @Produce      application/pdf
// @Param        id   path  string  true  "User ID"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /users/{id}/statement [get]
func (h *StatementHandler) Statement(c *gin.Context) {
	u, txns, err := h.svc.GetInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := renderStatement(&buf, u, txns); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="statement-`+u.ID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func renderStatement(buf *bytes.Buffer, u dom.User, txns []dom.Transaction) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Account Statement")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, u.Name+" <"+u.Email+">")
	pdf.Ln(6)
	pdf.Cell(0, 8, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(0, 8, "Current balance: "+dto.FormatMinor(u.Balance)+" COP")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	widths := []float64{26, 30, 22, 30, 30, 24, 20}
	headers := []string{"Date", "Fund", "Kind", "Amount", "Balance after", "Status", "Reason"}
	for i, hdr := range headers {
		pdf.CellFormat(widths[i], 7, hdr, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, t := range txns {
		cells := []string{
			t.Date.Format("2006-01-02"),
			t.FundID,
			t.Kind,
			dto.FormatMinor(t.Amount),
			dto.FormatMinor(t.BalanceAfter),
			t.Status,
			t.Reason,
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(buf)
}
