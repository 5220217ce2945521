package export

import (
	"fmt"
	"strings"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
	"github.com/xuri/excelize/v2"
)

// Exported column headers, in sheet order
var columns = []string{
	"Nombre", "URL", "Dominio", "Email", "Teléfono", "CIF/NIF",
	"Estado", "Pestaña", "Keyword", "Fecha encontrado", "Notas", "Descripción",
}

var columnWidths = []float64{35, 45, 30, 30, 18, 15, 15, 15, 25, 18, 12, 50}

// Tab names shown to the operator per bucket
var bucketTitles = map[models.Bucket]string{
	models.BucketNew:         "Leads Nuevos",
	models.BucketLeads:       "Leads",
	models.BucketDoubts:      "Dudas",
	models.BucketDiscarded:   "Descartados",
	models.BucketMarketplace: "Marketplaces",
}

// BucketTitle returns the display name of a bucket, for sheet tabs
// and file names.
func BucketTitle(bucket models.Bucket) string {
	if title, ok := bucketTitles[bucket]; ok {
		return title
	}
	return string(bucket)
}

// Workbook builds a styled xlsx with one sheet of leads.
func Workbook(sheetName string, leads []models.Lead) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := writeSheet(f, f.GetSheetName(0), sheetName, leads); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// WorkbookAll builds a styled xlsx with one sheet per bucket.
func WorkbookAll(byBucket map[models.Bucket][]models.Lead) (*excelize.File, error) {
	f := excelize.NewFile()
	first := true
	for _, bucket := range models.AllBuckets() {
		title := BucketTitle(bucket)
		var name string
		if first {
			name = f.GetSheetName(0)
			first = false
		} else {
			if _, err := f.NewSheet(title); err != nil {
				f.Close()
				return nil, err
			}
			name = title
		}
		if err := writeSheet(f, name, title, byBucket[bucket]); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, current, title string, leads []models.Lead) error {
	if current != title {
		if err := f.SetSheetName(current, title); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1E40AF"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return err
	}
	rowStyle, err := f.NewStyle(&excelize.Style{Border: thinBorders()})
	if err != nil {
		return err
	}
	zebraStyle, err := f.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EFF6FF"}},
		Border: thinBorders(),
	})
	if err != nil {
		return err
	}

	for i, header := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(title, cell, header); err != nil {
			return err
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(title, col, col, columnWidths[i]); err != nil {
			return err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(title, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	for i, lead := range leads {
		row := i + 2
		values := []interface{}{
			lead.Name,
			lead.URL,
			lead.Domain,
			lead.Email,
			lead.Phone,
			lead.CIF,
			statusName(lead),
			BucketTitle(lead.Bucket),
			lead.KeywordText,
			lead.FoundAt.Format("02/01/2006"),
			joinNotes(lead.Notes),
			lead.Snippet,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := f.SetCellValue(title, cell, value); err != nil {
				return err
			}
		}
		style := rowStyle
		if row%2 == 0 {
			style = zebraStyle
		}
		if err := f.SetCellStyle(title,
			fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", lastCol, row), style); err != nil {
			return err
		}
	}

	return f.SetPanes(title, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func thinBorders() []excelize.Border {
	borders := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "right", "top", "bottom"} {
		borders = append(borders, excelize.Border{Type: side, Color: "D1D5DB", Style: 1})
	}
	return borders
}

func statusName(lead models.Lead) string {
	if lead.Status != nil {
		return lead.Status.Name
	}
	return ""
}

func joinNotes(notes []models.Note) string {
	if len(notes) == 0 {
		return ""
	}
	parts := make([]string, len(notes))
	for i, note := range notes {
		parts[i] = note.Content
	}
	return strings.Join(parts, " | ")
}
