package discount

import "joyeria-be/internal/apperr"

var (
	ErrDiscountNotFound   = apperr.New(apperr.ErrNotFound, "discount not found")
	ErrPercentageTooLarge = apperr.Validation("percentage value must be <= 100")
	ErrInvalidDateRange   = apperr.Validation("startDate must not be after endDate")
	ErrProductsRequired   = apperr.Validation("non-generic discount needs at least one productId")
	ErrUnknownProduct     = apperr.New(apperr.ErrNotFound, "one or more products do not exist")
)
