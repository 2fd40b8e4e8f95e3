package export

import (
	"fmt"
	"io"

	"hotelbooking/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Bookings"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dateLayout  = "2006-01-02"
)

var columns = []struct {
	title string
	width float64
}{
	{"ID", 8},
	{"Room", 10},
	{"Room type", 14},
	{"Guest", 24},
	{"Email", 28},
	{"Phone", 16},
	{"Check-in", 12},
	{"Check-out", 12},
	{"Guests", 8},
	{"Nights", 8},
	{"Price/night", 12},
	{"Total", 12},
	{"Status", 12},
	{"Special requests", 40},
	{"Created", 20},
}

// WriteBookings renders bookings as a single-sheet workbook into w.
func WriteBookings(w io.Writer, bookings []domain.Booking) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, col.title)
		_ = f.SetCellStyle(SheetName, cell, cell, headerStyle)

		name, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(SheetName, name, name, col.width)
	}

	for r, b := range bookings {
		row := r + 2
		var roomNumber, roomType string
		if b.Room != nil {
			roomNumber, roomType = b.Room.RoomNumber, b.Room.RoomType
		}

		values := []any{
			b.ID,
			roomNumber,
			roomType,
			b.GuestName,
			b.GuestEmail,
			b.GuestPhone,
			b.CheckInDate.Format(dateLayout),
			b.CheckOutDate.Format(dateLayout),
			b.NumberOfGuests,
			b.NumberOfNights,
			b.PricePerNight,
			b.TotalPrice,
			string(b.Status),
			b.SpecialRequests,
			b.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
