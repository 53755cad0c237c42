package routes

import (
	"github.com/gofiber/fiber/v2"

	"realestate-crm/controllers"
	"realestate-crm/middlewares"
)

// Deps are the service-backed controllers. CRUD handlers are package funcs.
type Deps struct {
	Files   *controllers.FileController
	Reports *controllers.ReportController
}

type crud struct {
	create, list, get, update, remove fiber.Handler
}

// resource mounts the five CRUD routes under prefix inside a request transaction.
func resource(api fiber.Router, prefix string, h crud) fiber.Router {
	r := api.Group(prefix, middlewares.RequestTx())
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/:id", h.get)
	r.Put("/:id", h.update)
	r.Delete("/:id", h.remove)
	return r
}

// Register wires all HTTP routes.
func Register(app *fiber.App, d Deps) {
	api := app.Group("/api")

	// Idempotency guard FIRST (not tied to request TX)
	api.Use(middlewares.Idempotency())

	// File lifecycle and payments run their own serialized transactions,
	// so they are registered before any RequestTx group.
	fc := d.Files
	api.Post("/deals/:id/convert", fc.ConvertDeal)
	api.Post("/files", fc.CreateFile)
	api.Get("/files", fc.ListFiles)
	api.Get("/files/:id", fc.GetFile)
	api.Put("/files/:id/status", fc.SetStatus)
	api.Get("/files/:id/payments", fc.ListPayments)
	api.Post("/files/:id/payments", fc.PostPayment)
	api.Post("/files/:id/late-fees", fc.ApplyLateFees)
	api.Put("/payments/:id/confirm", fc.ConfirmPayment)
	api.Put("/payments/:id/bounce", fc.BouncePayment)
	api.Put("/payments/:id/reverse", fc.ReversePayment)
	api.Post("/installments/refresh-overdue", fc.RefreshOverdue)
	api.Put("/installments/:id/waive", fc.WaiveInstallment)
	api.Put("/installments/:id/discount", fc.DiscountInstallment)

	// Reports (read-only)
	rc := d.Reports
	api.Get("/reports/overdue", rc.Overdue)
	api.Get("/reports/payments/export", rc.ExportPayments)
	api.Get("/reports/payments", rc.Payments)
	api.Get("/reports/summary", rc.Summary)
	api.Get("/reports/dealers", rc.Dealers)
	api.Get("/reports/expenses", rc.Expenses)

	// Inventory
	resource(api, "/societies", crud{controllers.CreateSociety, controllers.GetSocieties, controllers.GetSociety, controllers.UpdateSociety, controllers.DeleteSociety})
	resource(api, "/blocks", crud{controllers.CreateBlock, controllers.GetBlocks, controllers.GetBlock, controllers.UpdateBlock, controllers.DeleteBlock})
	resource(api, "/streets", crud{controllers.CreateStreet, controllers.GetStreets, controllers.GetStreet, controllers.UpdateStreet, controllers.DeleteStreet})
	resource(api, "/plots", crud{controllers.CreatePlot, controllers.GetPlots, controllers.GetPlot, controllers.UpdatePlot, controllers.DeletePlot})
	resource(api, "/properties", crud{controllers.CreateProperty, controllers.GetProperties, controllers.GetProperty, controllers.UpdateProperty, controllers.DeleteProperty})

	// CRM
	resource(api, "/clients", crud{controllers.CreateClient, controllers.GetClients, controllers.GetClient, controllers.UpdateClient, controllers.DeleteClient})
	leads := resource(api, "/leads", crud{controllers.CreateLead, controllers.GetLeads, controllers.GetLead, controllers.UpdateLead, controllers.DeleteLead})
	leads.Post("/:id/convert", controllers.ConvertLead)
	dealers := resource(api, "/dealers", crud{controllers.CreateDealer, controllers.GetDealers, controllers.GetDealer, controllers.UpdateDealer, controllers.DeleteDealer})
	dealers.Get("/:id/commissions", controllers.GetDealerCommissions)
	deals := resource(api, "/deals", crud{controllers.CreateDeal, controllers.GetDeals, controllers.GetDeal, controllers.UpdateDeal, controllers.DeleteDeal})
	deals.Put("/:id/status", controllers.UpdateDealStatus)

	// Expenses
	resource(api, "/expenses", crud{controllers.CreateExpense, controllers.GetExpenses, controllers.GetExpense, controllers.UpdateExpense, controllers.DeleteExpense})
}
