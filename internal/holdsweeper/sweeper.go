package holdsweeper

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	ReleaseExpiredHolds(ctx context.Context, now time.Time) (int64, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	ExpireOrphanedPending(ctx context.Context, now time.Time) (int64, error)
}

// Metrics счетчики фонового освобождения
type Metrics interface {
	ObserveSweeperReleased(count int64)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Sweeper фоновая задача уборки брошенных корзин: освобождает слоты
// с истекшим удержанием и переводит осиротевшие pending-бронирования
// в терминальный expired. Ленивое освобождение в момент захвата
// остается первой линией, sweep добивает хвосты, чтобы на слоте не
// оставалось двух нетерминальных бронирований.
type Sweeper struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	metrics      Metrics
	timeProvider TimeProvider
	interval     time.Duration
	logger       Logger

	scheduler gocron.Scheduler
}

// New создает sweeper с заданным периодом обхода
func New(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	metrics Metrics,
	timeProvider TimeProvider,
	interval time.Duration,
	logger Logger,
) *Sweeper {
	return &Sweeper{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		metrics:      metrics,
		timeProvider: timeProvider,
		interval:     interval,
		logger:       logger,
	}
}

// Start запускает периодический обход. Остановка через Stop.
func (s *Sweeper) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.sweep(ctx)
		}),
	)
	if err != nil {
		return err
	}

	scheduler.Start()
	s.scheduler = scheduler
	s.logger.Info("HoldSweeper: started with interval %s", s.interval)
	return nil
}

// Stop останавливает планировщик, дожидаясь текущего обхода
func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}

func (s *Sweeper) sweep(ctx context.Context) {
	now := s.timeProvider.Now()

	released, err := s.slotRepo.ReleaseExpiredHolds(ctx, now)
	if err != nil {
		s.logger.Error("HoldSweeper: release failed: %v", err)
		return
	}
	if released > 0 {
		s.metrics.ObserveSweeperReleased(released)
		s.logger.Info("HoldSweeper: released %d expired holds", released)
	}

	// Бронирования освобожденных слотов закрываются следом: без этого
	// повторный захват слота дал бы второе нетерминальное бронирование
	expired, err := s.bookingRepo.ExpireOrphanedPending(ctx, now)
	if err != nil {
		s.logger.Error("HoldSweeper: expire pending failed: %v", err)
		return
	}
	if expired > 0 {
		s.logger.Info("HoldSweeper: expired %d orphaned pending bookings", expired)
	}
}
