// Package excel decodes uploaded seat-chart spreadsheets into seat proposals
// and renders an exam's seats back to an XLSX attachment.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kayra/examseat/internal/app/models"
	"github.com/kayra/examseat/internal/app/models/dto"
	"github.com/kayra/examseat/internal/pkg/helpers"
)

// SheetName is the single sheet both directions use.
const SheetName = "座位信息"

// Availability tokens. A string cell matching the allow-list (case folded)
// reads as available; any other non-blank value reads as occupied.
var availableTokens = map[string]bool{
	"true": true,
	"是":    true,
	"可用":   true,
}

// ImportSeats reads seat proposals from the first sheet of an XLSX file.
// Row 0 is a header and is skipped; fully blank rows and rows whose first
// cell does not parse as an integer are skipped rather than failing the
// decode. Zero surviving rows is reported as an empty (non-nil) slice; the
// caller decides that an empty file is an error.
func ImportSeats(r io.Reader) ([]dto.SeatProposal, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []dto.SeatProposal{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet rows: %w", err)
	}

	proposals := []dto.SeatProposal{}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if rowBlank(row) {
			continue
		}

		seatNumber, ok := parseSeatNumber(cell(row, 0))
		if !ok {
			continue
		}

		proposals = append(proposals, dto.SeatProposal{
			SeatNumber:  seatNumber,
			StudentName: strings.TrimSpace(cell(row, 1)),
			Available:   parseAvailable(cell(row, 2)),
		})
	}

	return proposals, nil
}

// ExportSeats renders one exam's seats as an XLSX file: a summary cell, a
// bold header row, then one row per seat in the order the caller supplied.
func ExportSeats(exam *models.Exam, seats []*models.Seat) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	summary := fmt.Sprintf("考试信息：%s - %s - %s %s",
		exam.Subject, exam.Room, helpers.FormatDate(exam.ExamDate), exam.TimeRange())
	if err := f.SetCellValue(SheetName, "A1", summary); err != nil {
		return nil, fmt.Errorf("failed to write summary row: %w", err)
	}

	headers := []string{"座位号", "学生姓名", "是否可用"}
	for i, h := range headers {
		cellRef, _ := excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(SheetName, cellRef, h); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(SheetName, "A2", "C2", headerStyle)
	}

	for i, seat := range seats {
		rowNum := i + 3
		_ = f.SetCellValue(SheetName, fmt.Sprintf("A%d", rowNum), seat.SeatNumber)
		_ = f.SetCellValue(SheetName, fmt.Sprintf("B%d", rowNum), seat.StudentName)

		available := "否"
		if seat.Available {
			available = "是"
		}
		_ = f.SetCellValue(SheetName, fmt.Sprintf("C%d", rowNum), available)
	}

	fitColumns(f, exam, seats)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize spreadsheet: %w", err)
	}
	return buf, nil
}

// fitColumns widens each column to its longest value. excelize has no
// auto-size, so the width is estimated from rune counts.
func fitColumns(f *excelize.File, exam *models.Exam, seats []*models.Seat) {
	widths := []int{
		len([]rune("座位号")),
		len([]rune("学生姓名")),
		len([]rune("是否可用")),
	}
	for _, seat := range seats {
		if w := len(strconv.Itoa(seat.SeatNumber)); w > widths[0] {
			widths[0] = w
		}
		if w := len([]rune(seat.StudentName)); w > widths[1] {
			widths[1] = w
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		// Wide (CJK) characters take roughly two cells each.
		_ = f.SetColWidth(SheetName, col, col, float64(w*2+2))
	}
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func rowBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseSeatNumber accepts an integer string or a numeric cell value that
// excelize rendered with a fractional part (e.g. "3.0").
func parseSeatNumber(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n, true
	}

	if v, err := strconv.ParseFloat(value, 64); err == nil && v == math.Trunc(v) {
		return int(v), true
	}

	return 0, false
}

func parseAvailable(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true // missing cell defaults to available
	}
	return availableTokens[strings.ToLower(value)]
}
