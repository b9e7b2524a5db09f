// Package businessflow contains the business logic for commission reconciliation
package businessflow

import (
	"context"
	"log"

	"github.com/painel-vendas/backend/models"
	"github.com/painel-vendas/backend/repository"
	"github.com/painel-vendas/backend/utils"
)

// CommissionReconciler keeps the commission row of a sale in sync with the
// sale amount. It is invoked inside the sale transaction so a sale is never
// visible without its commission.
type CommissionReconciler interface {
	Reconcile(ctx context.Context, sale *models.Sale) error
}

// CommissionReconcilerImpl implements the commission reconciliation logic
type CommissionReconcilerImpl struct {
	accountRepo    repository.AccountRepository
	commissionRepo repository.CommissionRepository
}

// NewCommissionReconciler creates a new commission reconciler instance
func NewCommissionReconciler(
	accountRepo repository.AccountRepository,
	commissionRepo repository.CommissionRepository,
) CommissionReconciler {
	return &CommissionReconcilerImpl{
		accountRepo:    accountRepo,
		commissionRepo: commissionRepo,
	}
}

// Reconcile gets or creates the commission for a sale. A new commission
// captures the seller's current rate; an existing one keeps the percentage
// captured when the sale was first recorded and only recomputes the value.
// Sellers without a configured rate are skipped without error.
func (cr *CommissionReconcilerImpl) Reconcile(ctx context.Context, sale *models.Sale) error {
	seller, err := cr.accountRepo.ByID(ctx, sale.SellerID)
	if err != nil {
		return err
	}
	if seller == nil {
		log.Printf("commission reconcile skipped: seller %d not found for sale %d", sale.SellerID, sale.ID)
		return nil
	}

	commission, err := cr.commissionRepo.BySaleID(ctx, sale.ID)
	if err != nil {
		return err
	}

	if commission == nil {
		if seller.CommissionRate == nil {
			log.Printf("commission reconcile skipped: seller %d has no commission rate", seller.ID)
			return nil
		}

		commission = &models.Commission{
			SellerID:   sale.SellerID,
			SaleID:     sale.ID,
			Percentage: *seller.CommissionRate,
			Value:      models.CommissionValue(sale.TotalAmount, *seller.CommissionRate),
			Paid:       false,
		}
		return cr.commissionRepo.Save(ctx, commission)
	}

	// Percentage stays as captured at the originating sale
	commission.Recalculate(sale.TotalAmount)
	commission.ApplyPaidTransition(commission.Paid, utils.UTCNow())
	return cr.commissionRepo.Update(ctx, commission)
}
