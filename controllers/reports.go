package controllers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"realestate-crm/reports"
	"realestate-crm/repository"

	"github.com/gofiber/fiber/v2"
)

type ReportOps interface {
	Overdue(ctx context.Context, asOf time.Time) (*reports.OverdueReport, error)
	Payments(ctx context.Context, p repository.Period) (*reports.PaymentReport, error)
	Summary(ctx context.Context) (*reports.Summary, error)
	DealerCommissions(ctx context.Context, p repository.Period) (*reports.CommissionReport, error)
	Expenses(ctx context.Context, p repository.Period) (*reports.ExpenseReport, error)
}

type ReportController struct {
	Reports ReportOps
	Now     func() time.Time
}

func (rc *ReportController) now() time.Time {
	if rc.Now != nil {
		return rc.Now()
	}
	return time.Now()
}

// Overdue reports open installments past due as of ?as_of (default today).
func (rc *ReportController) Overdue(c *fiber.Ctx) error {
	asOf, err := queryDate(c, "as_of", rc.now())
	if err != nil {
		return err
	}
	out, err := rc.Reports.Overdue(c.UserContext(), asOf)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (rc *ReportController) Payments(c *fiber.Ctx) error {
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	out, err := rc.Reports.Payments(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (rc *ReportController) Summary(c *fiber.Ctx) error {
	out, err := rc.Reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (rc *ReportController) Dealers(c *fiber.Ctx) error {
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	out, err := rc.Reports.DealerCommissions(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

func (rc *ReportController) Expenses(c *fiber.Ctx) error {
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	out, err := rc.Reports.Expenses(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ExportPayments streams the payment report as an XLSX download.
func (rc *ReportController) ExportPayments(c *fiber.Ctx) error {
	p, err := queryPeriod(c)
	if err != nil {
		return err
	}
	rep, err := rc.Reports.Payments(c.UserContext(), p)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := reports.WritePaymentsXLSX(&buf, rep); err != nil {
		return err
	}
	name := fmt.Sprintf("payments_%s.xlsx", rc.now().Format("20060102_150405"))
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}
