package order

import (
	"context"
	"errors"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// AddNote appends a note that is not tied to a status change.
func (uc *DefaultOrderUsecase) AddNote(ctx context.Context, orderID int64, text string) error {
	if err := uc.OrderRepo.AddNote(ctx, orderID, text); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return domain.NotFoundError(err)
		}
		return err
	}
	return nil
}

func (uc *DefaultOrderUsecase) ListNotes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	return uc.OrderRepo.ListNotes(ctx, orderID)
}
