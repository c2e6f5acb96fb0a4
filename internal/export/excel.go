package export

import (
	"fmt"
	"io"

	"spotbook/internal/models"

	"github.com/xuri/excelize/v2"
)

// WriteSpotSchedule renders an owner's booking schedule for one spot as an
// xlsx workbook: one row per booking, renter identity included (owner view).
func WriteSpotSchedule(w io.Writer, spot *models.Spot, bookings []*models.BookingWithRenter) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s / %s, %s", spot.Name, spot.City, spot.State))

	headers := []string{"Booking ID", "Renter", "Check-in", "Check-out", "Nights"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	for row, b := range bookings {
		nights := int(b.EndDate.Sub(b.StartDate).Hours() / 24)
		values := []interface{}{
			b.ID,
			fmt.Sprintf("%s %s", b.Renter.FirstName, b.Renter.LastName),
			b.StartDate.Format(models.DateFormat),
			b.EndDate.Format(models.DateFormat),
			nights,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+3)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "E", 18)
	_ = f.MergeCell(sheetName, "A1", "E1")

	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", style)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

// FileName builds the attachment name for a spot's schedule export.
func FileName(spotID int64) string {
	return fmt.Sprintf("spot_%d_bookings.xlsx", spotID)
}
