package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const bookingColumns = `id, item_id, booker_id, start_date, end_date, status`

// Колонки DATETIME драйвер отдает как time.Time, сканируем напрямую.
func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	if err := row.Scan(&b.ID, &b.ItemID, &b.BookerID, &b.Start, &b.End, &b.Status); err != nil {
		return nil, err
	}
	b.Start = b.Start.UTC()
	b.End = b.End.UTC()
	return &b, nil
}

// overlapCondition: интервал пересекается, если любой его конец попадает
// внутрь подтвержденного бронирования этой вещи.
const overlapCondition = `item_id = ? AND status = 'APPROVED'
          AND ((? BETWEEN start_date AND end_date) OR (? BETWEEN start_date AND end_date))`

// HasApprovedOverlap проверяет пересечение интервала [start, end] с
// подтвержденными бронированиями вещи.
func (db *DB) HasApprovedOverlap(ctx context.Context, itemID int64, start, end time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE ` + overlapCondition + `)`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, fmtTime(start), fmtTime(end)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check approved overlap: %w", err)
	}
	return exists, nil
}

// CreateBooking создает бронирование в одной транзакции с повторной
// проверкой пересечения, чтобы закрыть гонку check-then-act.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM bookings WHERE ` + overlapCondition + `)`
	err = tx.QueryRowContext(ctx, checkQuery, booking.ItemID, fmtTime(booking.Start), fmtTime(booking.End)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check overlap in tx: %w", err)
	}
	if exists {
		return ErrTimeCross
	}

	insertQuery := `INSERT INTO bookings (item_id, booker_id, start_date, end_date, status) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insertQuery,
		booking.ItemID, booking.BookerID, fmtTime(booking.Start), fmtTime(booking.End), booking.Status)
	if err != nil {
		return fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id in tx: %w", err)
	}
	booking.ID = id

	return tx.Commit()
}

// UpdateBookingStatusChecked переводит бронирование из WAITING в новый статус.
// При переводе в APPROVED пересечение перепроверяется в той же транзакции.
func (db *DB) UpdateBookingStatusChecked(ctx context.Context, booking *models.Booking, status models.BookingStatus) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if status == models.StatusApproved {
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM bookings WHERE ` + overlapCondition + `)`
		err = tx.QueryRowContext(ctx, checkQuery, booking.ItemID, fmtTime(booking.Start), fmtTime(booking.End)).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check overlap in tx: %w", err)
		}
		if exists {
			return ErrTimeCross
		}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE id = ? AND status = 'WAITING'`, status, booking.ID)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConcurrentModification
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	booking.Status = status
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

// GetBookingForUser возвращает бронирование, видимое пользователю:
// он либо бронирующий, либо владелец вещи.
func (db *DB) GetBookingForUser(ctx context.Context, bookingID, userID int64) (*models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.id = ? AND (b.booker_id = ? OR i.owner_id = ?)`
	booking, err := scanBooking(db.QueryRowContext(ctx, query, bookingID, userID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking for user: %w", err)
	}
	return booking, nil
}

// GetBookingsByFilter выполняет предикат фильтра состояния.
// Сортировка — по убыванию начала бронирования.
func (db *DB) GetBookingsByFilter(ctx context.Context, filter models.BookingFilter, page *models.Page) ([]models.Booking, error) {
	var conditions []string
	var args []any

	if bookerID, ok := filter.Scope.BookerID(); ok {
		conditions = append(conditions, `b.booker_id = ?`)
		args = append(args, bookerID)
	}
	if ownerID, ok := filter.Scope.OwnerID(); ok {
		conditions = append(conditions, `i.owner_id = ?`)
		args = append(args, ownerID)
	}
	if filter.StartBefore != nil {
		conditions = append(conditions, `b.start_date <= ?`)
		args = append(args, fmtTime(*filter.StartBefore))
	}
	if filter.StartAfter != nil {
		conditions = append(conditions, `b.start_date > ?`)
		args = append(args, fmtTime(*filter.StartAfter))
	}
	if filter.EndBefore != nil {
		conditions = append(conditions, `b.end_date < ?`)
		args = append(args, fmtTime(*filter.EndBefore))
	}
	if filter.EndAfter != nil {
		conditions = append(conditions, `b.end_date >= ?`)
		args = append(args, fmtTime(*filter.EndAfter))
	}
	if filter.Status != nil {
		conditions = append(conditions, `b.status = ?`)
		args = append(args, *filter.Status)
	}

	query := `SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE ` + strings.Join(conditions, ` AND `) + `
              ORDER BY b.start_date DESC`
	if page != nil {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Limit(), page.Offset())
	}

	return db.queryBookings(ctx, query, args...)
}

// GetApprovedBookingsByOwner возвращает подтвержденные бронирования всех
// вещей владельца по возрастанию начала (для агрегации last/next одним запросом).
func (db *DB) GetApprovedBookingsByOwner(ctx context.Context, ownerID int64) ([]models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE i.owner_id = ? AND b.status = 'APPROVED'
              ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, ownerID)
}

// GetApprovedBookingsForItem возвращает подтвержденные бронирования вещи,
// если она принадлежит владельцу, по возрастанию начала.
func (db *DB) GetApprovedBookingsForItem(ctx context.Context, itemID, ownerID int64) ([]models.Booking, error) {
	query := `SELECT b.id, b.item_id, b.booker_id, b.start_date, b.end_date, b.status
              FROM bookings b JOIN items i ON i.id = b.item_id
              WHERE b.item_id = ? AND i.owner_id = ? AND b.status = 'APPROVED'
              ORDER BY b.start_date ASC`
	return db.queryBookings(ctx, query, itemID, ownerID)
}

// HasFinishedBooking проверяет, было ли у пользователя завершенное
// бронирование вещи (конец раньше указанного момента).
func (db *DB) HasFinishedBooking(ctx context.Context, itemID, bookerID int64, before time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE item_id = ? AND booker_id = ? AND end_date < ?)`
	var exists bool
	err := db.QueryRowContext(ctx, query, itemID, bookerID, fmtTime(before)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return exists, nil
}

// GetAllBookings возвращает все бронирования по возрастанию начала (для экспорта).
func (db *DB) GetAllBookings(ctx context.Context) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_date ASC`
	return db.queryBookings(ctx, query)
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
