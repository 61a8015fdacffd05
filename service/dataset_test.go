package service

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/propscore/leadscore/backend/model"
)

func generateTestDataset(t *testing.T, n int, seed uint64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leads.csv")
	if err := NewDatasetGenerator(seed).Generate(path, n); err != nil {
		t.Fatalf("Failed to generate dataset: %v", err)
	}
	return path
}

func TestGenerateRowCountAndHeader(t *testing.T) {
	path := generateTestDataset(t, 50, 1)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open dataset: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}

	if len(rows) != 51 {
		t.Fatalf("Expected 51 rows (header + 50), got %d", len(rows))
	}
	for i, name := range DatasetHeader {
		if rows[0][i] != name {
			t.Errorf("Expected column %d to be %s, got %s", i, name, rows[0][i])
		}
	}
}

func TestGenerateRowsPassValidation(t *testing.T) {
	path := generateTestDataset(t, 100, 2)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open dataset: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}

	atoi := func(s string) int {
		v, err := strconv.Atoi(s)
		if err != nil {
			t.Fatalf("Expected integer, got %q", s)
		}
		return v
	}

	for n, row := range rows[1:] {
		lead := model.LeadInput{
			PhoneNumber:         row[0],
			Email:               row[1],
			CreditScore:         atoi(row[2]),
			AgeGroup:            row[3],
			FamilyBackground:    row[4],
			Income:              atoi(row[5]),
			PropertyType:        row[6],
			Budget:              atoi(row[7]),
			Location:            row[8],
			PreviousInquiries:   atoi(row[9]),
			TimeOnMarket:        atoi(row[10]),
			ResponseTimeMinutes: atoi(row[11]),
			Comments:            row[12],
			Consent:             true,
		}
		if err := lead.Validate(); err != nil {
			t.Fatalf("Row %d failed validation on %s: %s", n+1, err.Field, err.Message)
		}

		label := atoi(row[13])
		if label != 0 && label != 1 {
			t.Fatalf("Row %d has non-binary label %d", n+1, label)
		}
	}
}

func TestGenerateDeterministicUnderSeed(t *testing.T) {
	pathA := generateTestDataset(t, 30, 42)
	pathB := generateTestDataset(t, 30, 42)

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatalf("Failed to read dataset: %v", err)
	}

	if string(a) != string(b) {
		t.Error("Expected identical datasets for the same seed")
	}
}

func TestGenerateSeedsDiffer(t *testing.T) {
	a, _ := os.ReadFile(generateTestDataset(t, 30, 1))
	b, _ := os.ReadFile(generateTestDataset(t, 30, 2))

	if string(a) == string(b) {
		t.Error("Expected different datasets for different seeds")
	}
}
