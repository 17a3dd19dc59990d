package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Default input file names, mirrored from config.Default so fixtures can be
// used without importing the config package.
const (
	AlcoholFile    = "alkohol2024.csv"
	FireFile       = "pozary2024.csv"
	AreaFile       = "powierzchnia_geodezyjna2024.xlsx"
	PopulationFile = "powierzchnia_i_ludnosc2024.xlsx"
)

// Sheet is one worksheet of a generated workbook.
type Sheet struct {
	Name string
	Rows [][]any
}

// WriteCSV writes records to path as comma separated UTF-8 text.
func WriteCSV(t *testing.T, path string, records [][]string) string {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteWorkbook writes the sheets, in order, to an XLSX file at path.
func WriteWorkbook(t *testing.T, path string, sheets ...Sheet) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("add sheet %q: %v", sheet.Name, err)
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				t.Fatalf("write row %d of %q: %v", r+1, sheet.Name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return path
}

// AlcoholRecords is a small licence register with two voivodeships.
func AlcoholRecords() [][]string {
	return [][]string{
		{"Numer zezwolenia", "Nazwa firmy", "Kod pocztowy", "Miejscowość", "Adres", "Województwo", "Data ważności"},
		{"335/22", "TOAST", "00-001", "Warszawa", "ul. Puławska 336", "WOJ. MAZOWIECKIE", "2024-01-03"},
		{"340/22", "BETA Sp. z o.o.", "58-100", "Świdnica", "ul. Opiesińska 30 A", "WOJ. DOLNOŚLĄSKIE", "2024-01-03"},
		{"347/22", "AMBRA S.A.", "02-819", "Warszawa", "ul. Puławska 336", "WOJ. MAZOWIECKIE", "2024-01-03"},
	}
}

// FireRecords lists fire service events for five gminas in four powiats.
func FireRecords() [][]string {
	return [][]string{
		{"TERYT", "Województwo", "Powiat", "Gmina", "OGÓŁEM Liczba zdarzeń", "RAZEM 1. Obiekty użyteczności publicznej"},
		{"0201011", "dolnośląskie", "bolesławiecki", "Bolesławiec", "79", "2"},
		{"0201022", "dolnośląskie", "bolesławiecki", "Gromadka", "66", "1"},
		{"0264011", "dolnośląskie", "Wrocław", "Wrocław", "900", "30"},
		{"1415011", "mazowieckie", "garwoliński", "Garwolin", "120", "3"},
		{"1465011", "mazowieckie", "Warszawa", "Warszawa", "4000", "100"},
	}
}

// PopulationSheets mirrors the population workbook: the data table is the
// third sheet, below three title rows.
func PopulationSheets() []Sheet {
	return []Sheet{
		{Name: "Tabl. I", Rows: [][]any{{"Spis tablic"}}},
		{Name: "Tabl. II", Rows: [][]any{{"Ludność według płci"}}},
		{Name: "Tabl. III", Rows: [][]any{
			{"TABL. III. POWIERZCHNIA I LUDNOŚĆ W PRZEKROJU TERYTORIALNYM"},
			{"Stan w dniu 31 XII 2023"},
			{"Dane bez podziału na gminy"},
			{"WYSZCZEGÓLNIENIE", "Powiaty", "Powierzchnia w km²", "Ludność 2022", "Ludność 2023"},
			{"WOJ. DOLNOŚLĄSKIE", "", 19947, 2891321, 2886643},
			{"", "  bolesławiecki", 1303, 88876, 88514},
			{"", "  Wrocław", 293, 674132, 674312},
			{"WOJ. MAZOWIECKIE", "", 35559, 5514699, 5516467},
			{"", "  garwoliński", 1284, 107000, 106512},
			{"", "  m. st. Warszawa", 517, 1861975, 1862345},
		}},
	}
}

// AreaSheets mirrors the geodetic area workbook: one sheet, four title rows,
// and a name column mixing voivodeship and powiat rows.
func AreaSheets() []Sheet {
	return []Sheet{
		{Name: "Tabl. 1", Rows: [][]any{
			{"Powierzchnia geodezyjna kraju według województw i powiatów"},
			{"Stan w dniu 1 I 2024"},
			{"w ha"},
			{""},
			{"Kod", "Nazwa jednostki", "Ogółem", "Użytki rolne"},
			{"02", "WOJ. DOLNOŚLĄSKIE", 1994670, 1100000},
			{"0201", "Powiat bolesławiecki", 130341, 60000},
			{"0264", "Powiat m. Wrocław", 29282, 9000},
			{"14", "WOJ. MAZOWIECKIE", 3555847, 2300000},
			{"1415", "Powiat garwoliński", 128420, 80000},
			{"1465", "Powiat m. St. Warszawa", 51724, 12000},
		}},
	}
}

// WriteInputDir writes all four datasets with their default names into a
// fresh temporary directory and returns it.
func WriteInputDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteCSV(t, filepath.Join(dir, AlcoholFile), AlcoholRecords())
	WriteCSV(t, filepath.Join(dir, FireFile), FireRecords())
	WriteWorkbook(t, filepath.Join(dir, PopulationFile), PopulationSheets()...)
	WriteWorkbook(t, filepath.Join(dir, AreaFile), AreaSheets()...)
	return dir
}

// MustExist fails the test unless every path exists.
func MustExist(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
}
