package reports

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const paymentsSheet = "Payments"

var paymentHeaders = []string{
	"Receipt", "File", "Client", "Date", "Type", "Method", "Status",
	"Amount", "Principal", "Fee", "Reference",
}

// WritePaymentsXLSX renders the payment report as a single-sheet workbook
// with a totals row under the completed-payment columns.
func WritePaymentsXLSX(w io.Writer, rep *PaymentReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", paymentsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range paymentHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(paymentsSheet, cell, h)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(paymentsSheet, 1, 1, bold)
	}

	for i, p := range rep.Payments {
		row := i + 2
		values := []any{
			p.ReceiptNumber, p.FileNumber, p.ClientName, p.PaymentDate.Format("2006-01-02"),
			string(p.PaymentType), string(p.PaymentMethod), string(p.Status),
			p.Amount.InexactFloat64(), p.PrincipalAmount.InexactFloat64(), p.FeeAmount.InexactFloat64(),
			p.Reference,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(paymentsSheet, cell, v)
		}
	}

	total := len(rep.Payments) + 2
	f.SetCellValue(paymentsSheet, fmt.Sprintf("G%d", total), "Completed total")
	f.SetCellValue(paymentsSheet, fmt.Sprintf("H%d", total), rep.Collected.InexactFloat64())
	f.SetCellValue(paymentsSheet, fmt.Sprintf("I%d", total), rep.Principal.InexactFloat64())
	f.SetCellValue(paymentsSheet, fmt.Sprintf("J%d", total), rep.Fees.InexactFloat64())
	f.SetColWidth(paymentsSheet, "A", "C", 22)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
