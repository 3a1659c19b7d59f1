// Package export builds the xlsx workbooks served by the export endpoints.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"expedientes/internal/expediente"
	"expedientes/internal/indicio"
)

const (
	sheetExpedientes = "Expedientes"
	sheetInformacion = "Información del Expediente"
	sheetIndicios    = "Indicios"

	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04"
)

// ListFilename names the full-listing workbook, ISO date embedded.
func ListFilename(now time.Time) string {
	return fmt.Sprintf("expedientes_%s.xlsx", now.Format(dateLayout))
}

// DetailFilename names the single-case workbook, ISO date embedded.
func DetailFilename(id int64, now time.Time) string {
	return fmt.Sprintf("expediente_%d_%s.xlsx", id, now.Format(dateLayout))
}

// ListWorkbook renders the case-file listing as a one-sheet workbook.
func ListWorkbook(expedientes []expediente.Expediente) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetExpedientes); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeExpedientesSheet(f, sheetExpedientes, expedientes); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf, nil
}

// DetailWorkbook renders one case file and its evidence as a two-sheet
// workbook.
func DetailWorkbook(e *expediente.Expediente, indicios []indicio.Indicio) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetInformacion); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := writeInformacionSheet(f, e); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetIndicios); err != nil {
		return nil, fmt.Errorf("export: add sheet: %w", err)
	}
	if err := writeIndiciosSheet(f, indicios); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf, nil
}

func writeExpedientesSheet(f *excelize.File, sheet string, expedientes []expediente.Expediente) error {
	header := []any{
		"ID", "Código", "Título", "Descripción", "Estado",
		"Técnico", "Aprobador", "Justificación", "Activo", "Fecha Creación",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: header row: %w", err)
	}

	for i, e := range expedientes {
		row := []any{
			e.ID, e.Codigo, e.Titulo, e.Descripcion, string(e.Estado),
			e.TecnicoUsername, deref(e.AprobadorUsername), deref(e.Justificacion),
			activoLabel(e.Activo), e.FechaCreacion.Format(timeLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("export: data row: %w", err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 8); err != nil {
		return fmt.Errorf("export: column width: %w", err)
	}
	return f.SetColWidth(sheet, "B", "J", 22)
}

func writeInformacionSheet(f *excelize.File, e *expediente.Expediente) error {
	rows := [][]any{
		{"Campo", "Valor"},
		{"ID", e.ID},
		{"Código", e.Codigo},
		{"Título", e.Titulo},
		{"Descripción", e.Descripcion},
		{"Estado", string(e.Estado)},
		{"Técnico", e.TecnicoUsername},
		{"Aprobador", deref(e.AprobadorUsername)},
		{"Justificación", deref(e.Justificacion)},
		{"Activo", activoLabel(e.Activo)},
		{"Fecha Creación", e.FechaCreacion.Format(timeLayout)},
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetInformacion, cell, &rows[i]); err != nil {
			return fmt.Errorf("export: info row: %w", err)
		}
	}
	return f.SetColWidth(sheetInformacion, "A", "B", 30)
}

func writeIndiciosSheet(f *excelize.File, indicios []indicio.Indicio) error {
	header := []any{"ID", "Descripción", "Peso", "Color", "Tamaño", "Activo", "Fecha Creación"}
	if err := f.SetSheetRow(sheetIndicios, "A1", &header); err != nil {
		return fmt.Errorf("export: header row: %w", err)
	}

	for i, ind := range indicios {
		row := []any{
			ind.ID, ind.Descripcion, derefFloat(ind.Peso), deref(ind.Color),
			deref(ind.Tamano), activoLabel(ind.Activo), ind.FechaCreacion.Format(timeLayout),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetIndicios, cell, &row); err != nil {
			return fmt.Errorf("export: data row: %w", err)
		}
	}
	return f.SetColWidth(sheetIndicios, "A", "G", 20)
}

func activoLabel(activo bool) string {
	if activo {
		return "Sí"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}
