package dataprocessing

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/frame"
	"regionstats/internal/shared/testutil"
)

func newTestLoader(t *testing.T) (*Loader, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewLoader(logger, EncodingAuto), handler
}

func strs(t *testing.T, f *frame.Frame, name string) []string {
	t.Helper()
	c, err := f.Col(name)
	require.NoError(t, err)
	return c.Strings()
}

func nums(t *testing.T, f *frame.Frame, name string) []float64 {
	t.Helper()
	c, err := f.Col(name)
	require.NoError(t, err)
	return c.Numbers()
}

func TestProcessAlcoholData(t *testing.T) {
	loader, handler := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), "input.csv"), [][]string{
		{"Numer zezwolenia", "Nazwa firmy", "Kod pocztowy", "Miejscowość", "Adres", "Województwo", "Data ważności"},
		{"335/22", "SŁAWOMIR OPIŁA  TOAST", "27-200", "Starachowice", "ul. inż. Władysława Rogowskiego 7 ", "WOJ. ŚWIĘTOKRZYSKIE", "2024-01-03"},
		{"340/22", "PRZEDSIĘBIORSTWO WIELOBRANŻOWE \"BETA\"", "98-220", "Zduńska Wola", "ul. Opiesińska 30 A ", "WOJ. ŁÓDZKIE", "2024-01-03"},
		{"345/22", "ARHELAN Sp. z o.o.", "17-100", "Bielsk Podlaski", "Aleja Józefa Piłsudskiego 45", "WOJ. PODLASKIE", "2024-01-14"},
		{"347/22", "\"AMBRA\" SPÓŁKA AKCYJNA", "02-819", "Warszawa", "ul. Puławska 336 ", "WOJ. MAZOWIECKIE", "2024-01-03"},
		{"352/22", "\" JOTMAR\" Sp. z o.o.", "64-510", "Wronki", "ul. Mickiewicza  26 ", "WOJ. WIELKOPOLSKIE", "2024-01-03"},
	})

	result, err := loader.ProcessAlcoholData(context.Background(), path)
	require.NoError(t, err)

	rows, cols := result.Shape()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 0, result.NullCount())
	assert.Equal(t, []string{ColVoivodeship, ColSellers}, result.Names())
	assert.Equal(t,
		[]string{"świętokrzyskie", "łódzkie", "podlaskie", "mazowieckie", "wielkopolskie"},
		strs(t, result, ColVoivodeship))
	assert.Empty(t, handler.GetRecordsByLevel(slog.LevelWarn))

	_, err = loader.ProcessAlcoholData(context.Background(), "wrong_path.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessAlcoholData_CountsAndMissing(t *testing.T) {
	loader, handler := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), "input.csv"), [][]string{
		{"Numer zezwolenia", "Województwo"},
		{"1", "WOJ. PODLASKIE"},
		{"2", "WOJ. MAZOWIECKIE"},
		{"3", ""},
		{"4", "WOJ. MAZOWIECKIE"},
		{"5", "WOJ. ŁÓDZKIE"},
	})

	result, err := loader.ProcessAlcoholData(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"mazowieckie", "podlaskie", "łódzkie"}, strs(t, result, ColVoivodeship),
		"descending by count, ties in first-seen order")
	assert.Equal(t, []float64{2, 1, 1}, nums(t, result, ColSellers))
	testutil.AssertLogContains(t, handler, slog.LevelWarn, "missing values")
	testutil.AssertLogAttr(t, handler, "missing_cells", int64(1))
}

func TestProcessAlcoholData_MissingColumn(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), "input.csv"), [][]string{
		{"Numer zezwolenia", "Miejscowość"},
		{"1", "Wronki"},
	})

	_, err := loader.ProcessAlcoholData(context.Background(), path)
	assert.ErrorIs(t, err, frame.ErrMissingColumn)
}

func TestProcessFireData(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), "input.csv"), [][]string{
		{"TERYT", "Województwo", "Powiat", "Gmina", "OGÓŁEM Liczba zdarzeń", "RAZEM 1. Obiekty użyteczności publicznej", "101. Administracyjno-biurowe, banki"},
		{"20101", "dolnośląskie", "bolesławiecki", "Bolesławiec", "79", "2", "0"},
		{"20102", "dolnośląskie", "bolesławiecki", "Bolesławiec", "75", "1", "0"},
		{"20103", "dolnośląskie", "bolesławiecki", "Gromadka", "66", "1", "0"},
		{"20104", "dolnośląskie", "bolesławiecki", "Nowogrodziec", "155", "0", "0"},
		{"20105", "dolnośląskie", "bolesławiecki", "Osiecznica", "41", "0", "0"},
	})

	result, err := loader.ProcessFireData(context.Background(), path)
	require.NoError(t, err)

	rows, cols := result.Shape()
	assert.Equal(t, 1, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 0, result.NullCount())
	assert.Equal(t, []string{ColVoivodeship, ColPowiat, ColEvents}, result.Names())
	assert.Equal(t, []float64{416}, nums(t, result, ColEvents))

	_, err = loader.ProcessFireData(context.Background(), "wrong_path.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessFireData_GroupsAndSorts(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), testutil.FireFile), testutil.FireRecords())

	result, err := loader.ProcessFireData(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"dolnośląskie", "dolnośląskie", "mazowieckie", "mazowieckie"}, strs(t, result, ColVoivodeship))
	assert.Equal(t, []string{"Wrocław", "bolesławiecki", "Warszawa", "garwoliński"}, strs(t, result, ColPowiat))
	assert.Equal(t, []float64{900, 145, 4000, 120}, nums(t, result, ColEvents))
}

func TestProcessFireData_TooFewColumns(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteCSV(t, filepath.Join(t.TempDir(), "input.csv"), [][]string{
		{"TERYT", "Województwo", "Powiat"},
		{"20101", "dolnośląskie", "bolesławiecki"},
	})

	_, err := loader.ProcessFireData(context.Background(), path)
	assert.Error(t, err)
}

func TestProcessPopulationData(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteWorkbook(t, filepath.Join(t.TempDir(), testutil.PopulationFile), testutil.PopulationSheets()...)

	result, err := loader.ProcessPopulationData(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{ColVoivodeship, ColPowiat, ColPopulation}, result.Names())
	assert.Equal(t, 0, result.NullCount())
	assert.Equal(t, []string{"dolnośląskie", "dolnośląskie", "mazowieckie", "mazowieckie"}, strs(t, result, ColVoivodeship))
	assert.Equal(t, []string{"bolesławiecki", "Wrocław", "garwoliński", "Warszawa"}, strs(t, result, ColPowiat))
	assert.Equal(t, []float64{88514, 674312, 106512, 1862345}, nums(t, result, ColPopulation))

	_, err = loader.ProcessPopulationData(context.Background(), "wrong_path.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessPopulationData_MissingSheet(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteWorkbook(t, filepath.Join(t.TempDir(), "one_sheet.xlsx"), testutil.AreaSheets()...)

	_, err := loader.ProcessPopulationData(context.Background(), path)
	assert.Error(t, err)
}

func TestProcessAreaData(t *testing.T) {
	loader, _ := newTestLoader(t)
	path := testutil.WriteWorkbook(t, filepath.Join(t.TempDir(), testutil.AreaFile), testutil.AreaSheets()...)

	result, err := loader.ProcessAreaData(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{ColVoivodeship, ColPowiat, ColArea}, result.Names())
	assert.Equal(t, 0, result.NullCount())
	assert.Equal(t, []string{"dolnośląskie", "dolnośląskie", "mazowieckie", "mazowieckie"}, strs(t, result, ColVoivodeship))
	assert.Equal(t, []string{"bolesławiecki", "Wrocław", "garwoliński", "Warszawa"}, strs(t, result, ColPowiat))
	assert.Equal(t, []float64{130341, 29282, 128420, 51724}, nums(t, result, ColArea))

	_, err = loader.ProcessAreaData(context.Background(), "wrong_path.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNormalizeAreaPowiat(t *testing.T) {
	tests := map[string]string{
		"Powiat bolesławiecki":   "bolesławiecki",
		"Powiat m. Wrocław":      "Wrocław",
		"Powiat m. St. Warszawa": "Warszawa",
		"Powiat  jeleniogórski ": "jeleniogórski",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeAreaPowiat(in), in)
	}
}
