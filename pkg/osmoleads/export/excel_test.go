package export

import (
	"testing"
	"time"

	"github.com/Mario1988123/Osmoleads/pkg/osmoleads/models"
)

func sampleLeads() []models.Lead {
	status := &models.LeadStatus{Name: "Cliente"}
	return []models.Lead{
		{
			Name:        "Aguas del Sur",
			URL:         "https://aguasdelsur.es",
			Domain:      "aguasdelsur.es",
			Email:       "info@aguasdelsur.es",
			Phone:       "+34 612 34 56 78",
			CIF:         "B12345678",
			Bucket:      models.BucketLeads,
			KeywordText: "osmosis inversa",
			FoundAt:     time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC),
			Status:      status,
			Notes:       []models.Note{{Content: "llamar"}, {Content: "pidió precios"}},
		},
		{
			Name:    "Filtros Norte",
			Domain:  "filtrosnorte.es",
			Bucket:  models.BucketLeads,
			FoundAt: time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC),
		},
	}
}

func TestWorkbook(t *testing.T) {
	f, err := Workbook("Leads", sampleLeads())
	if err != nil {
		t.Fatalf("Workbook failed: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetName(0); got != "Leads" {
		t.Errorf("Expected sheet name Leads, got %q", got)
	}

	header, err := f.GetCellValue("Leads", "A1")
	if err != nil {
		t.Fatalf("GetCellValue failed: %v", err)
	}
	if header != "Nombre" {
		t.Errorf("Expected header Nombre, got %q", header)
	}

	name, _ := f.GetCellValue("Leads", "A2")
	if name != "Aguas del Sur" {
		t.Errorf("Expected first row name, got %q", name)
	}
	status, _ := f.GetCellValue("Leads", "G2")
	if status != "Cliente" {
		t.Errorf("Expected status Cliente, got %q", status)
	}
	notes, _ := f.GetCellValue("Leads", "K2")
	if notes != "llamar | pidió precios" {
		t.Errorf("Expected joined notes, got %q", notes)
	}
	date, _ := f.GetCellValue("Leads", "J2")
	if date != "14/03/2025" {
		t.Errorf("Expected formatted date, got %q", date)
	}

	// Lead without status or notes renders empty cells
	status, _ = f.GetCellValue("Leads", "G3")
	if status != "" {
		t.Errorf("Expected empty status, got %q", status)
	}
}

func TestWorkbookAll(t *testing.T) {
	byBucket := map[models.Bucket][]models.Lead{
		models.BucketLeads: sampleLeads(),
	}

	f, err := WorkbookAll(byBucket)
	if err != nil {
		t.Fatalf("WorkbookAll failed: %v", err)
	}
	defer f.Close()

	expected := []string{"Leads Nuevos", "Leads", "Dudas", "Descartados", "Marketplaces"}
	sheets := f.GetSheetList()
	if len(sheets) != len(expected) {
		t.Fatalf("Expected %d sheets, got %d: %v", len(expected), len(sheets), sheets)
	}
	for i, want := range expected {
		if sheets[i] != want {
			t.Errorf("Sheet %d: expected %q, got %q", i, want, sheets[i])
		}
	}

	// The empty buckets still carry their headers
	header, _ := f.GetCellValue("Dudas", "A1")
	if header != "Nombre" {
		t.Errorf("Expected header on empty sheet, got %q", header)
	}

	name, _ := f.GetCellValue("Leads", "A2")
	if name != "Aguas del Sur" {
		t.Errorf("Expected lead row on Leads sheet, got %q", name)
	}
}

func TestBucketTitle(t *testing.T) {
	if got := BucketTitle(models.BucketNew); got != "Leads Nuevos" {
		t.Errorf("Expected 'Leads Nuevos', got %q", got)
	}
	if got := BucketTitle("whatever"); got != "whatever" {
		t.Errorf("Expected fallback to the literal, got %q", got)
	}
}
