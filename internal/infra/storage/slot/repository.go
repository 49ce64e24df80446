package slot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/Turf-BookingService/internal/domain"
	"github.com/m04kA/Turf-BookingService/pkg/dbmetrics"
	"github.com/m04kA/Turf-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий для работы со слотами.
// Все переходы статуса выполняются условными UPDATE'ами: изменение
// применяется только если текущий статус соответствует ожидаемому,
// а результат проверяется по количеству затронутых строк. Чтение с
// последующей проверкой статуса в коде приложения здесь намеренно
// не используется.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает один слот
func (r *Repository) Create(ctx context.Context, s *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("slots").
		Columns(
			"facility_id",
			"owner_id",
			"date",
			"start_time",
			"end_time",
			"price",
			"status",
		).
		Values(
			s.FacilityID,
			s.OwnerID,
			s.Date,
			s.StartTime,
			s.EndTime,
			s.Price,
			domain.SlotAvailable,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	s.Status = domain.SlotAvailable
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	return s, nil
}

// CreateBatch создает несколько слотов одним INSERT.
// Используется для массовой генерации слотов владельцем на день.
func (r *Repository) CreateBatch(ctx context.Context, slots []*domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	insertBuilder := psqlbuilder.Insert("slots").
		Columns(
			"facility_id",
			"owner_id",
			"date",
			"start_time",
			"end_time",
			"price",
			"status",
		)

	for _, s := range slots {
		insertBuilder = insertBuilder.Values(
			s.FacilityID,
			s.OwnerID,
			s.Date,
			s.StartTime,
			s.EndTime,
			s.Price,
			domain.SlotAvailable,
		)
	}

	query, args, err := insertBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: CreateBatch - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: CreateBatch - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	slots, err := r.GetByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, ErrSlotNotFound
	}
	return slots[0], nil
}

// GetByIDs получает слоты по списку ID.
// Внутри транзакции добавляет FOR UPDATE: чтение кандидатов на захват
// блокирует строки до конца транзакции.
func (r *Repository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"facility_id",
		"owner_id",
		"date",
		"start_time",
		"end_time",
		"price",
		"status",
		"held_by",
		"held_until",
		"is_booked",
		"created_at",
		"updated_at",
	).
		From("slots").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// GetByFacilityAndDate получает слоты площадки на дату
func (r *Repository) GetByFacilityAndDate(ctx context.Context, facilityID int64, date time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"owner_id",
		"date",
		"start_time",
		"end_time",
		"price",
		"status",
		"held_by",
		"held_until",
		"is_booked",
		"created_at",
		"updated_at",
	).
		From("slots").
		Where(squirrel.Eq{"facility_id": facilityID, "date": date}).
		OrderBy("start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityAndDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityAndDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanSlots(rows)
}

// HasOverlap проверяет пересечение интервала [startTime, endTime) с
// существующими слотами площадки на дату
func (r *Repository) HasOverlap(ctx context.Context, facilityID int64, date time.Time, startTime, endTime string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("slots").
		Where(squirrel.Eq{"facility_id": facilityID, "date": date}).
		Where(squirrel.Lt{"start_time": endTime}).
		Where(squirrel.Gt{"end_time": startTime}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: HasOverlap - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("%w: HasOverlap - scan count: %v", ErrScanRow, err)
	}

	return count > 0, nil
}

// ClaimForUser атомарно захватывает слоты для пользователя (available -> held).
// Условие захвата в самом UPDATE: слот свободен, удержан этим же
// пользователем (идемпотентный повторный захват) или удержание истекло.
// Возвращает количество захваченных строк — вызывающий код обязан
// сравнить его с len(ids) и откатить транзакцию при несовпадении.
func (r *Repository) ClaimForUser(ctx context.Context, ids []int64, userID int64, heldUntil, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("status", domain.SlotHeld).
		Set("held_by", userID).
		Set("held_until", heldUntil).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Or{
			squirrel.Eq{"status": domain.SlotAvailable},
			squirrel.And{
				squirrel.Eq{"status": domain.SlotHeld},
				squirrel.Eq{"held_by": userID},
			},
			squirrel.And{
				squirrel.Eq{"status": domain.SlotHeld},
				squirrel.Lt{"held_until": now},
			},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ClaimForUser - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ClaimForUser - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ClaimForUser - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// MarkBooked атомарно переводит удержанные пользователем слоты в booked.
// Условие held + held_by = userID гарантирует, что подтверждение оплаты
// не забронирует слот, который успел освободиться или перейти к другому.
func (r *Repository) MarkBooked(ctx context.Context, ids []int64, userID int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("status", domain.SlotBooked).
		Set("is_booked", true).
		Set("held_by", nil).
		Set("held_until", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.SlotHeld, "held_by": userID}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: MarkBooked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: MarkBooked - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: MarkBooked - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// ReleaseIfClaimed возвращает слот в available (из held или booked).
// Ноль затронутых строк — не ошибка: к моменту отмены бронирования
// истекшее удержание уже могло быть снято sweeper'ом или перехвачено
// конкурирующим захватом, отмена от этого не становится невозможной.
func (r *Repository) ReleaseIfClaimed(ctx context.Context, id int64) error {
	_, err := r.releaseByIDs(ctx, []int64{id})
	return err
}

// ReleaseMany возвращает несколько слотов в available
func (r *Repository) ReleaseMany(ctx context.Context, ids []int64) error {
	_, err := r.releaseByIDs(ctx, ids)
	return err
}

func (r *Repository) releaseByIDs(ctx context.Context, ids []int64) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("status", domain.SlotAvailable).
		Set("is_booked", false).
		Set("held_by", nil).
		Set("held_until", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": []domain.SlotStatus{domain.SlotHeld, domain.SlotBooked}}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: releaseByIDs - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: releaseByIDs - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: releaseByIDs - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// ReleaseExpiredHolds освобождает слоты с истекшим удержанием.
// Вызывается фоновым sweeper'ом; конкурирующий ClaimForUser сам
// трактует истекшее удержание как свободный слот, поэтому sweep —
// это уборка, а не единственная защита от брошенных корзин.
func (r *Repository) ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("status", domain.SlotAvailable).
		Set("held_by", nil).
		Set("held_until", nil).
		Set("updated_at", now).
		Where(squirrel.Eq{"status": domain.SlotHeld}).
		Where(squirrel.Lt{"held_until": now}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredHolds - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredHolds - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ReleaseExpiredHolds - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// UpdatePrice обновляет цену слота.
// Цена уже созданных бронирований не пересчитывается: TotalAmount
// фиксируется в момент бронирования.
func (r *Repository) UpdatePrice(ctx context.Context, id int64, price float64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("price", price).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdatePrice - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdatePrice - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdatePrice - get rows affected: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func (r *Repository) scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)

	for rows.Next() {
		var s domain.Slot
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&s.ID,
			&s.FacilityID,
			&s.OwnerID,
			&s.Date,
			&s.StartTime,
			&s.EndTime,
			&s.Price,
			&s.Status,
			&s.HeldBy,
			&s.HeldUntil,
			&s.IsBooked,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}

		s.CreatedAt = createdAt.Time
		s.UpdatedAt = updatedAt.Time

		slots = append(slots, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
