package database

import (
	"fmt"

	"realestate-crm/models"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Migrate applies every pending migration in one transaction per step.
func Migrate(db *gorm.DB) error {
	opts := *gormigrate.DefaultOptions
	opts.UseTransaction = true
	m := gormigrate.New(db, &opts, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20250105_01_create_inventory",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Society{}, &models.Block{}, &models.Street{}, &models.Plot{}, &models.Property{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("properties", "plots", "streets", "blocks", "societies")
			},
		},
		{
			ID: "20250105_02_create_crm",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Client{}, &models.Dealer{}, &models.Lead{}, &models.Deal{}, &models.Expense{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("expenses", "deals", "leads", "dealers", "clients")
			},
		},
		{
			ID: "20250106_create_files",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.PropertyFile{}, &models.Installment{}, &models.Payment{}, &models.IdempotencyKey{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("idempotency_keys", "payments", "installments", "property_files")
			},
		},
		{
			ID:      "20250110_constraints_and_indexes",
			Migrate: constraints,
		},
	}
}

// constraints adds what struct tags cannot express. Every statement is
// idempotent so the step can be re-run by hand.
func constraints(tx *gorm.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_deals_asset ON deals (asset_kind, asset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_files_asset ON property_files (asset_kind, asset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_asset ON expenses (asset_kind, asset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_interest ON leads (interest_asset_kind, interest_asset_id)`,
		`CREATE INDEX IF NOT EXISTS idx_installments_open_due ON installments (due_date) WHERE status IN ('pending', 'overdue')`,
		// one open file per asset
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_files_open_asset ON property_files (asset_kind, asset_id) WHERE status IN ('active', 'defaulted')`,
	}
	for _, stmt := range indexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index migration failed on: %s - %w", stmt, err)
		}
	}

	checks := []struct{ table, name, expr string }{
		{"deals", "chk_deals_asset_kind", `asset_kind IN ('plot', 'property')`},
		{"deals", "chk_deals_amount_pos", `amount > 0`},
		{"property_files", "chk_files_asset_kind", `asset_kind IN ('plot', 'property')`},
		{"property_files", "chk_files_down_payment", `down_payment >= 0 AND down_payment < total_amount`},
		{"property_files", "chk_files_balance", `paid_amount <= total_amount AND remaining_amount >= 0`},
		{"property_files", "chk_files_status", `status IN ('active', 'completed', 'cancelled', 'defaulted')`},
		{"installments", "chk_installments_amounts", `amount > 0 AND paid_amount >= 0 AND late_fee >= 0 AND discount_amount >= 0`},
		{"installments", "chk_installments_status", `status IN ('pending', 'paid', 'overdue', 'waived')`},
		{"payments", "chk_payments_amount_nonneg", `amount >= 0 AND principal_amount >= 0 AND fee_amount >= 0`},
		{"payments", "chk_payments_status", `status IN ('completed', 'pending', 'bounced', 'reversed')`},
		{"expenses", "chk_expenses_asset_kind", `asset_kind IS NULL OR asset_kind IN ('plot', 'property')`},
		{"expenses", "chk_expenses_amount_nonneg", `amount >= 0`},
		{"dealers", "chk_dealers_rate", `commission_rate >= 0 AND commission_rate <= 100`},
	}
	for _, c := range checks {
		if err := tx.Exec(addCheck(c.table, c.name, c.expr)).Error; err != nil {
			return fmt.Errorf("check constraint %s failed: %w", c.name, err)
		}
	}
	return nil
}

func addCheck(table, name, expr string) string {
	return fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
	END IF;
END $$;`, table, name, table, name, expr)
}
