package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	billingModel "polopay_backend/internals/features/billing/installments/model"
	authModel "polopay_backend/internals/features/users/auth/model"
)

// Models lists every table owned by this service, in dependency order.
func Models() []any {
	return []any{
		&authModel.UserModel{},
		&authModel.UserSessionModel{},
		&billingModel.InstallmentPlanModel{},
		&billingModel.InstallmentDiscountModel{},
		&billingModel.InstallmentSplitModel{},
		&billingModel.InstallmentPaymentModel{},
		&billingModel.InstallmentEventModel{},
		&billingModel.GatewayWebhookEventModel{},
	}
}

// Migrate creates or updates the schema. It is run once per deployment
// (panelctl migrate, or DB_AUTO_MIGRATE=true at boot), never per request.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	log.Info().Int("tables", len(Models())).Msg("schema migrated")
	return nil
}
