package booking

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

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает бронирование. TotalAmount передается уже зафиксированным
// по цене слота на момент резервирования и дальше не пересчитывается.
func (r *Repository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"user_id",
			"slot_id",
			"facility_id",
			"owner_id",
			"status",
			"total_amount",
			"gateway_order_id",
		).
		Values(
			b.UserID,
			b.SlotID,
			b.FacilityID,
			b.OwnerID,
			b.Status,
			b.TotalAmount,
			b.GatewayOrderID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time

	return b, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	return bookings[0], nil
}

// GetByGatewayOrderID получает все бронирования, входящие в один платежный
// ордер (мультислотовая покупка делит один gateway_order_id)
func (r *Repository) GetByGatewayOrderID(ctx context.Context, orderID string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"gateway_order_id": orderID}).
		OrderBy("id ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGatewayOrderID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByGatewayOrderID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByUserID получает историю бронирований пользователя,
// опционально фильтруя по статусу
func (r *Repository) GetByUserID(ctx context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := r.selectBookings().
		Where(squirrel.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByFacilityWithFilter получает бронирования площадки с фильтрацией
// по дате слота и статусу
func (r *Repository) GetByFacilityWithFilter(ctx context.Context, filter domain.FacilityBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"b.id",
		"b.user_id",
		"b.slot_id",
		"b.facility_id",
		"b.owner_id",
		"b.status",
		"b.total_amount",
		"b.gateway_order_id",
		"b.gateway_payment_id",
		"b.refund_amount",
		"b.refund_percent",
		"b.penalty_applied",
		"b.cancellation_reason",
		"b.cancelled_at",
		"b.created_at",
		"b.updated_at",
	).
		From("bookings b").
		Where(squirrel.Eq{"b.facility_id": filter.FacilityID}).
		OrderBy("b.created_at DESC")

	if filter.Date != nil {
		selectBuilder = selectBuilder.
			Join("slots s ON s.id = b.slot_id").
			Where(squirrel.Eq{"s.date": *filter.Date})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"b.status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByFacilityWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// SetGatewayOrder привязывает внешний платежный ордер к бронированиям
// одной попытки резервирования
func (r *Repository) SetGatewayOrder(ctx context.Context, ids []int64, orderID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("gateway_order_id", orderID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SetGatewayOrder - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SetGatewayOrder - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SetGatewayOrder - get rows affected: %v", ErrExecQuery, err)
	}

	if affected != int64(len(ids)) {
		return fmt.Errorf("%w: SetGatewayOrder - expected %d rows, updated %d", ErrExecQuery, len(ids), affected)
	}

	return nil
}

// ConfirmPending атомарно переводит бронирования pending -> confirmed.
// Условие по статусу делает подтверждение идемпотентным: повторный
// callback шлюза не затронет уже подтвержденные строки.
// Возвращает количество обновленных строк.
func (r *Repository) ConfirmPending(ctx context.Context, ids []int64, paymentID string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("gateway_payment_id", paymentID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ConfirmPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ConfirmPending - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ConfirmPending - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// CancelParams параметры условной отмены бронирования
type CancelParams struct {
	Status             domain.BookingStatus
	RefundAmount       float64
	RefundPercent      int
	PenaltyApplied     float64
	CancellationReason *string
	CancelledAt        time.Time
}

// Cancel условно отменяет бронирование: обновление применяется только
// если бронирование еще в pending или confirmed. Терминальный статус
// не перезаписывается (un-cancel невозможен).
func (r *Repository) Cancel(ctx context.Context, id int64, params CancelParams) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", params.Status).
		Set("refund_amount", params.RefundAmount).
		Set("refund_percent", params.RefundPercent).
		Set("penalty_applied", params.PenaltyApplied).
		Set("cancellation_reason", params.CancellationReason).
		Set("cancelled_at", params.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []domain.BookingStatus{domain.StatusPending, domain.StatusConfirmed}}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if affected == 0 {
		return ErrAlreadyTerminal
	}

	return nil
}

// CountMonthlyCancellations считает отмены актора в его роли за текущий
// календарный месяц (окно от первого числа, не скользящие 30 дней).
// Квота считается по денормализованным user_id/owner_id на бронировании —
// один канонический запрос для обеих ролей. Для владельца owner_id
// покрывает все его площадки.
func (r *Repository) CountMonthlyCancellations(ctx context.Context, role domain.CancellationRole, actorID int64, monthStart time.Time) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	actorColumn := "user_id"
	if role == domain.RoleOwner {
		actorColumn = "owner_id"
	}

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{actorColumn: actorID}).
		Where(squirrel.Eq{"status": role.CancelledStatus()}).
		Where(squirrel.GtOrEq{"cancelled_at": monthStart}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountMonthlyCancellations - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountMonthlyCancellations - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// ExpireOrphanedPending переводит в expired pending-бронирования, чей
// слот им больше не принадлежит: available (удержание снято), booked
// (слот подтвержден другим бронированием) или held другим пользователем
// (перехвачен после истечения удержания). Так на слот никогда не
// остается двух нетерминальных бронирований. Поздний verify по такому
// бронированию упрется в условный UPDATE ConfirmPending и не пройдет.
func (r *Repository) ExpireOrphanedPending(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusExpired).
		Set("cancelled_at", now).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		Where(squirrel.Expr(
			`slot_id IN (
				SELECT id FROM slots
				WHERE status = ? OR status = ?
				   OR (status = ? AND held_by IS DISTINCT FROM bookings.user_id)
			)`,
			domain.SlotAvailable, domain.SlotBooked, domain.SlotHeld,
		)).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOrphanedPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOrphanedPending - execute update: %v", ErrExecQuery, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpireOrphanedPending - get rows affected: %v", ErrExecQuery, err)
	}

	return affected, nil
}

// Delete физически удаляет бронирование.
// Используется только для компенсации неудачного создания платежного
// ордера: pending-строки без ордера не несут истории. Для отмененных
// бронирований всегда использовать Cancel.
func (r *Repository) Delete(ctx context.Context, ids []int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.StatusPending}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}

func (r *Repository) selectBookings() squirrel.SelectBuilder {
	return psqlbuilder.Select(
		"id",
		"user_id",
		"slot_id",
		"facility_id",
		"owner_id",
		"status",
		"total_amount",
		"gateway_order_id",
		"gateway_payment_id",
		"refund_amount",
		"refund_percent",
		"penalty_applied",
		"cancellation_reason",
		"cancelled_at",
		"created_at",
		"updated_at",
	).From("bookings")
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var b domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&b.ID,
			&b.UserID,
			&b.SlotID,
			&b.FacilityID,
			&b.OwnerID,
			&b.Status,
			&b.TotalAmount,
			&b.GatewayOrderID,
			&b.GatewayPaymentID,
			&b.RefundAmount,
			&b.RefundPercent,
			&b.PenaltyApplied,
			&b.CancellationReason,
			&b.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		b.CreatedAt = createdAt.Time
		b.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
