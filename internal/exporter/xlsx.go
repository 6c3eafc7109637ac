package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"chainpulse/pkg/contracts/domain"
)

const (
	chainSheet        = "Chain"
	openInterestSheet = "Open Interest"
)

// WriteChainXLSX builds a workbook with a Chain sheet and an Open Interest
// sheet and writes it to w.
func WriteChainXLSX(w io.Writer, snapshot *domain.ChainSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("nil snapshot")
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(chainSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(openInterestSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	if err := writeChainSheet(f, snapshot); err != nil {
		return err
	}
	if err := writeOpenInterestSheet(f, snapshot); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeChainSheet(f *excelize.File, snapshot *domain.ChainSnapshot) error {
	for col, header := range chainHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to resolve cell: %w", err)
		}
		if err := f.SetCellValue(chainSheet, cell, header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, contract := range snapshot.Contracts {
		row := contractRow(contract)
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to resolve cell: %w", err)
			}
			if err := f.SetCellValue(chainSheet, cell, value); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}
	return nil
}

func writeOpenInterestSheet(f *excelize.File, snapshot *domain.ChainSnapshot) error {
	if err := f.SetCellValue(openInterestSheet, "A1", "strike"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellValue(openInterestSheet, "B1", "total_open_interest"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, entry := range snapshot.OpenInterest {
		strikeCell := fmt.Sprintf("A%d", i+2)
		totalCell := fmt.Sprintf("B%d", i+2)
		if err := f.SetCellValue(openInterestSheet, strikeCell, entry.Strike.String()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
		if err := f.SetCellValue(openInterestSheet, totalCell, entry.TotalOpenInterest); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	return nil
}
