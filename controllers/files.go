package controllers

import (
	"context"

	"realestate-crm/middlewares"
	"realestate-crm/models"
	"realestate-crm/repository"
	"realestate-crm/services"
	"realestate-crm/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// FileOps is the file lifecycle as the HTTP layer uses it.
type FileOps interface {
	CreateFile(ctx context.Context, in services.NewFile) (*services.FileDetail, error)
	ConvertDeal(ctx context.Context, dealID uint, plan services.Plan) (*services.FileDetail, error)
	GetFile(ctx context.Context, id uint) (*services.FileDetail, error)
	ListFiles(ctx context.Context, filter repository.FileFilter) ([]models.PropertyFile, int64, error)
	Payments(ctx context.Context, fileID uint) ([]models.Payment, error)
	SetStatus(ctx context.Context, id uint, to models.FileStatus) (*models.PropertyFile, error)
	WaiveInstallment(ctx context.Context, id uint) (*services.FileDetail, error)
	DiscountInstallment(ctx context.Context, id uint, amount decimal.Decimal) (*services.FileDetail, error)
	ApplyLateFees(ctx context.Context, fileID uint) (*services.FileDetail, int, error)
	RefreshOverdue(ctx context.Context) (int, error)
}

type PaymentOps interface {
	Post(ctx context.Context, in services.PostPayment) (*services.Receipt, error)
	Confirm(ctx context.Context, id uint) (*services.Receipt, error)
	Bounce(ctx context.Context, id uint, reason string) (*models.Payment, error)
	Reverse(ctx context.Context, id uint, reason string) (*services.Receipt, error)
}

// Invalidator drops cached aggregates after money moves.
type Invalidator interface {
	InvalidateSummary(ctx context.Context)
}

// FileController serves files, installments and payments. The services run
// their own transactions, so these routes are mounted outside RequestTx.
type FileController struct {
	Files    FileOps
	Payments PaymentOps
	Cache    Invalidator
}

func (fc *FileController) changed(c *fiber.Ctx) {
	if fc.Cache != nil {
		fc.Cache.InvalidateSummary(c.UserContext())
	}
}

type planDTO struct {
	DownPayment  decimal.Decimal  `json:"down_payment" validate:"gte=0"`
	Installments int              `json:"total_installments" validate:"required,min=1,max=600"`
	Frequency    models.Frequency `json:"frequency" validate:"required,enum"`
	StartDate    string           `json:"start_date" validate:"required,datetime=2006-01-02"`
}

type fileDTO struct {
	ClientID    uint            `json:"client_id" validate:"required"`
	DealerID    *uint           `json:"dealer_id"`
	Asset       models.AssetRef `json:"asset"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"gt=0"`
	planDTO
}

func (p planDTO) plan() (services.Plan, error) {
	start, err := bodyDate(p.StartDate, zeroTime)
	if err != nil {
		return services.Plan{}, err
	}
	return services.Plan{
		DownPayment:  p.DownPayment,
		Installments: p.Installments,
		Frequency:    p.Frequency,
		StartDate:    start,
	}, nil
}

// CreateFile opens a file without a deal.
func (fc *FileController) CreateFile(c *fiber.Ctx) error {
	var dto fileDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	plan, err := dto.plan()
	if err != nil {
		return err
	}
	out, err := fc.Files.CreateFile(c.UserContext(), services.NewFile{
		ClientID:     dto.ClientID,
		DealerID:     dto.DealerID,
		Asset:        dto.Asset,
		TotalAmount:  dto.TotalAmount,
		DownPayment:  plan.DownPayment,
		Installments: plan.Installments,
		Frequency:    plan.Frequency,
		StartDate:    plan.StartDate,
	})
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ConvertDeal turns a confirmed deal into a file with its schedule.
func (fc *FileController) ConvertDeal(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto planDTO
	if err := middlewares.BindAndValidate(c, &dto); err != nil {
		return err
	}
	plan, err := dto.plan()
	if err != nil {
		return err
	}
	out, err := fc.Files.ConvertDeal(c.UserContext(), id, plan)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (fc *FileController) ListFiles(c *fiber.Ctx) error {
	filter := repository.FileFilter{}
	filter.Limit, filter.Offset = utils.Page(c.Query("limit"), c.Query("offset"))
	if s := models.FileStatus(c.Query("status")); s != "" {
		if !s.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		filter.Status = s
	}
	for key, dst := range map[string]*uint{"client_id": &filter.ClientID, "dealer_id": &filter.DealerID} {
		id, err := optionalID(c, key)
		if err != nil {
			return err
		}
		if id != nil {
			*dst = *id
		}
	}
	if kind := c.Query("asset_kind"); kind != "" {
		id, err := optionalID(c, "asset_id")
		if err != nil {
			return err
		}
		ref := models.AssetRef{Kind: models.AssetKind(kind)}
		if id != nil {
			ref.ID = *id
		}
		if err := ref.Validate(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		filter.Asset = &ref
	}

	files, total, err := fc.Files.ListFiles(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": files, "total": total, "limit": filter.Limit, "offset": filter.Offset})
}

func (fc *FileController) GetFile(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := fc.Files.GetFile(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

type fileStatusDTO struct {
	Status models.FileStatus `json:"status" validate:"required,enum"`
}

func (fc *FileController) SetStatus(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var dto fileStatusDTO
	if err := bind(c, &dto); err != nil {
		return err
	}
	out, err := fc.Files.SetStatus(c.UserContext(), id, dto.Status)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.JSON(out)
}

func (fc *FileController) ListPayments(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	payments, err := fc.Files.Payments(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": payments, "total": len(payments)})
}

// ApplyLateFees charges the configured late fee on the file's overdue
// installments.
func (fc *FileController) ApplyLateFees(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, n, err := fc.Files.ApplyLateFees(c.UserContext(), id)
	if err != nil {
		return err
	}
	if n > 0 {
		fc.changed(c)
	}
	return c.JSON(fiber.Map{"file": out, "charged": n})
}

func (fc *FileController) WaiveInstallment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	out, err := fc.Files.WaiveInstallment(c.UserContext(), id)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.JSON(out)
}

type discountDTO struct {
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"gte=0"`
}

func (fc *FileController) DiscountInstallment(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in discountDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	out, err := fc.Files.DiscountInstallment(c.UserContext(), id, in.DiscountAmount)
	if err != nil {
		return err
	}
	fc.changed(c)
	return c.JSON(out)
}

func (fc *FileController) RefreshOverdue(c *fiber.Ctx) error {
	n, err := fc.Files.RefreshOverdue(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"updated": n})
}
