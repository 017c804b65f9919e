package publisher

import (
	"errors"

	"github.com/LavaJover/pickup-settlement-service/internal/domain"
)

// FanoutPublisher hands each event to every sink and joins their errors.
type FanoutPublisher []domain.OrderEventPublisher

func (f FanoutPublisher) PublishOrderEvent(event domain.OrderEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishOrderEvent(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
