package earnings

import (
	"context"
	"fmt"

	"github.com/m04kA/Turf-BookingService/pkg/dbmetrics"
	"github.com/m04kA/Turf-BookingService/pkg/psqlbuilder"
)

// Repository накопительные итоги заработка владельцев и комиссий платформы.
// Обновления best-effort: подтверждение бронирования не блокируется и не
// откатывается из-за ошибок здесь, расхождения чинит внешняя сверка.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория заработков
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// AddOwnerEarning прибавляет сумму к накопленному заработку владельца
func (r *Repository) AddOwnerEarning(ctx context.Context, ownerID int64, amount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("owner_earnings").
		Columns("owner_id", "total_earned", "total_penalty").
		Values(ownerID, amount, 0).
		Suffix(`ON CONFLICT (owner_id)
			DO UPDATE SET total_earned = owner_earnings.total_earned + EXCLUDED.total_earned,
			              updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddOwnerEarning - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddOwnerEarning - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// AddOwnerPenalty прибавляет штраф к накопленным штрафам владельца.
// Фактическое удержание из выплат — внешняя забота расчетного контура,
// здесь только учет.
func (r *Repository) AddOwnerPenalty(ctx context.Context, ownerID int64, amount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("owner_earnings").
		Columns("owner_id", "total_earned", "total_penalty").
		Values(ownerID, 0, amount).
		Suffix(`ON CONFLICT (owner_id)
			DO UPDATE SET total_penalty = owner_earnings.total_penalty + EXCLUDED.total_penalty,
			              updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddOwnerPenalty - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddOwnerPenalty - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}

// AddPlatformFee прибавляет комиссию к итогу платформы (одна строка-аккумулятор)
func (r *Repository) AddPlatformFee(ctx context.Context, amount float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("platform_earnings").
		Columns("id", "total_fees").
		Values(1, amount).
		Suffix(`ON CONFLICT (id)
			DO UPDATE SET total_fees = platform_earnings.total_fees + EXCLUDED.total_fees,
			              updated_at = NOW()`).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddPlatformFee - build upsert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: AddPlatformFee - execute upsert: %v", ErrExecQuery, err)
	}

	return nil
}
