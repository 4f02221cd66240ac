package storage

import (
	"context"
	"errors"

	"bread-calculator/internal/apperr"
	"bread-calculator/internal/arithmetic"
	"bread-calculator/internal/models"
	"bread-calculator/internal/validation"

	"gorm.io/gorm"
)

// compute validates the operands and evaluates them. Nothing is written
// unless it succeeds.
func compute(a, b float64, calcType models.CalculationType) (float64, error) {
	if err := validation.Calculation(a, b, calcType); err != nil {
		return 0, err
	}
	result, err := arithmetic.Evaluate(calcType, a, b)
	if err != nil {
		switch {
		case errors.Is(err, arithmetic.ErrNonFiniteResult):
			return 0, apperr.Validation("result: out of range for a 64-bit float")
		case errors.Is(err, arithmetic.ErrDivisionByZero), errors.Is(err, arithmetic.ErrUnsupportedOperation):
			return 0, apperr.Validation("%s", err.Error())
		}
		return 0, apperr.Internal("evaluate calculation", err)
	}
	return result, nil
}

// CreateCalculation computes and stores a calculation. owner may be nil.
func (s *Store) CreateCalculation(ctx context.Context, a, b float64, calcType models.CalculationType, owner *int64) (*models.Calculation, error) {
	result, err := compute(a, b, calcType)
	if err != nil {
		return nil, err
	}

	calc := models.Calculation{
		A:      a,
		B:      b,
		Type:   calcType,
		Result: &result,
		UserID: owner,
	}
	if err := s.db.WithContext(ctx).Create(&calc).Error; err != nil {
		return nil, apperr.Internal("create calculation", err)
	}
	return &calc, nil
}

func (s *Store) GetCalculation(ctx context.Context, id int64, owner *int64) (*models.Calculation, error) {
	var calc models.Calculation
	err := s.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("id = ?", id).
		First(&calc).Error
	if err != nil {
		return nil, notFoundOr(err, "calculation")
	}
	return &calc, nil
}

// ListCalculations returns calculations in insertion order.
func (s *Store) ListCalculations(ctx context.Context, owner *int64, offset, limit int) ([]models.Calculation, error) {
	calcs := make([]models.Calculation, 0)
	err := s.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&calcs).Error
	if err != nil {
		return nil, apperr.Internal("list calculations", err)
	}
	return calcs, nil
}

// UpdateCalculation replaces a, b, type and the recomputed result in one
// transaction.
func (s *Store) UpdateCalculation(ctx context.Context, id int64, a, b float64, calcType models.CalculationType, owner *int64) (*models.Calculation, error) {
	result, err := compute(a, b, calcType)
	if err != nil {
		return nil, err
	}

	var calc models.Calculation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(ownedBy(owner)).Where("id = ?", id).First(&calc).Error; err != nil {
			return err
		}
		res := tx.Model(&calc).Updates(map[string]interface{}{
			"a":      a,
			"b":      b,
			"type":   calcType,
			"result": result,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// deleted between the read and the write
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "calculation")
	}

	calc.A = a
	calc.B = b
	calc.Type = calcType
	calc.Result = &result
	return &calc, nil
}

// DeleteCalculation reports whether a row was removed.
func (s *Store) DeleteCalculation(ctx context.Context, id int64, owner *int64) (bool, error) {
	res := s.db.WithContext(ctx).
		Scopes(ownedBy(owner)).
		Where("id = ?", id).
		Delete(&models.Calculation{})
	if res.Error != nil {
		return false, apperr.Internal("delete calculation", res.Error)
	}
	return res.RowsAffected > 0, nil
}
