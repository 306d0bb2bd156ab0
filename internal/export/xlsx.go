package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Бронирования"

var columns = []string{"ID", "Вещь", "Бронирующий", "Начало", "Конец", "Статус"}

// BookingExporter выгружает бронирования в XLSX.
type BookingExporter struct {
	repo   domain.Repository
	dir    string
	logger zerolog.Logger
}

func NewBookingExporter(repo domain.Repository, logger *zerolog.Logger) *BookingExporter {
	return &BookingExporter{
		repo:   repo,
		logger: logger.With().Str("component", "export").Logger(),
	}
}

// KeepCopies включает сохранение копии каждой выгрузки в каталог dir.
func (e *BookingExporter) KeepCopies(dir string) {
	e.dir = dir
}

// Bookings собирает книгу со всеми бронированиями, по одному на строку.
func (e *BookingExporter) Bookings(ctx context.Context) ([]byte, error) {
	bookings, err := e.repo.GetAllBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting bookings: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, booking := range bookings {
		writeBookingRow(f, row+2, &booking)
	}

	_ = f.SetColWidth(sheetName, "A", "C", 15)
	_ = f.SetColWidth(sheetName, "D", "E", 22)
	_ = f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("error writing workbook: %w", err)
	}

	data := buf.Bytes()
	if e.dir != "" {
		name := filepath.Join(e.dir, fmt.Sprintf("bookings-%s.xlsx", time.Now().Format("2006-01-02-150405")))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			e.logger.Warn().Err(err).Str("file", name).Msg("failed to keep export copy")
		}
	}

	e.logger.Info().Int("bookings", len(bookings)).Msg("bookings exported")
	return data, nil
}

func writeBookingRow(f *excelize.File, row int, booking *models.Booking) {
	values := []any{
		booking.ID,
		booking.ItemID,
		booking.BookerID,
		booking.Start.Format(time.DateTime),
		booking.End.Format(time.DateTime),
		string(booking.Status),
	}
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheetName, cell, value)
	}
}
