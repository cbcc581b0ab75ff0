package bulk

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/diet-service/internal/models"
	"github.com/SAP-F-2025/diet-service/internal/repositories"
	"github.com/SAP-F-2025/diet-service/internal/repositories/memory"
)

func newTestService(t *testing.T) (*Service, *memory.Repository) {
	t.Helper()
	repo, err := memory.New()
	if err != nil {
		t.Fatalf("memory.New() error = %v", err)
	}
	svc, err := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, repo
}

func TestResources(t *testing.T) {
	svc, _ := newTestService(t)
	want := "diets,foods,meal_plans,nutritions,profiles,submissions,users"
	if got := strings.Join(svc.Resources(), ","); got != want {
		t.Errorf("Resources() = %s, want %s", got, want)
	}
}

func TestExportCSV(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	weight := 61.5
	user := &models.User{
		UserID:      "jane",
		Email:       "jane@example.com",
		Password:    "hash",
		Weight:      &weight,
		Role:        models.RoleManager,
		DateOfBirth: time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := repo.Users().Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	data, err := svc.ExportCSV(ctx, "users")
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("ExportCSV() = %q, want header and one row", data)
	}
	if !strings.HasPrefix(lines[0], "user_id,email,password,first_name,last_name,weight,body_fat,") {
		t.Errorf("header = %s", lines[0])
	}
	for _, cell := range []string{"jane", "61.5", "1990-01-02T00:00:00Z"} {
		if !strings.Contains(lines[1], cell) {
			t.Errorf("row %q lacks %q", lines[1], cell)
		}
	}
	if !strings.Contains(lines[1], "61.5,,") {
		t.Errorf("nil body_fat should be an empty cell: %q", lines[1])
	}

	if _, err := svc.ExportCSV(ctx, "secrets"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("ExportCSV(unknown) error = %v, want ErrUnknownResource", err)
	}
}

func TestNutritionRoundTrip(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	original := &models.Nutrition{
		Vitamins:   models.NewNutrientVector(map[string]float64{"vitamin_c": 12.5}),
		Minerals:   models.NewNutrientVector(map[string]float64{"iron": 3}),
		AminoAcids: models.NewNutrientVector(nil),
	}
	if err := repo.Nutritions().Create(ctx, original); err != nil {
		t.Fatal(err)
	}
	data, err := svc.ExportCSV(ctx, "nutritions")
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}

	if _, err := repo.Nutritions().Delete(ctx, repositories.Filter{"nutrition_id": original.NutritionID}); err != nil {
		t.Fatal(err)
	}
	result, err := svc.ImportCSV(ctx, "nutritions", data)
	if err != nil || result.HasErrors {
		t.Fatalf("ImportCSV() = %+v, %v", result, err)
	}

	restored, err := repo.Nutritions().FindOne(ctx, repositories.Filter{"nutrition_id": original.NutritionID})
	if err != nil {
		t.Fatalf("restored nutrition: %v", err)
	}
	if restored.Vitamins.Data()["vitamin_c"] != 12.5 || restored.Minerals.Data()["iron"] != 3 {
		t.Errorf("restored = %v / %v", restored.Vitamins.Data(), restored.Minerals.Data())
	}
}

func TestImportCSV(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		wantErrors bool
		wantNames  []string
	}{
		{
			name:      "upserts rows",
			data:      "diet_id,name,description,photo_url\n1,paleo,,\n4,vegan,plants,https://x\n",
			wantNames: []string{"paleo", "vegan"},
		},
		{
			name:       "bad cell writes nothing",
			data:       "diet_id,name\n1,paleo\nx,vegan\n",
			wantErrors: true,
			wantNames:  []string{"keto"},
		},
		{
			name:       "unknown column",
			data:       "diet_id,flavour\n1,sweet\n",
			wantErrors: true,
			wantNames:  []string{"keto"},
		},
		{
			name:       "missing key column",
			data:       "name\npaleo\n",
			wantErrors: true,
			wantNames:  []string{"keto"},
		},
		{
			name:       "short row",
			data:       "diet_id,name\n1\n",
			wantErrors: true,
			wantNames:  []string{"keto"},
		},
		{
			name:       "empty input",
			data:       "",
			wantErrors: true,
			wantNames:  []string{"keto"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t)
			ctx := context.Background()
			if err := repo.Diets().Create(ctx, &models.Diet{Name: "keto"}); err != nil {
				t.Fatal(err)
			}

			result, err := svc.ImportCSV(ctx, "diets", []byte(tt.data))
			if err != nil {
				t.Fatalf("ImportCSV() error = %v", err)
			}
			if result.HasErrors != tt.wantErrors {
				t.Errorf("HasErrors = %v, want %v (%v)", result.HasErrors, tt.wantErrors, result.Errors)
			}

			diets, err := repo.Diets().All(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(diets) != len(tt.wantNames) {
				t.Fatalf("diets = %+v, want %v", diets, tt.wantNames)
			}
			for i, name := range tt.wantNames {
				if diets[i].Name != name {
					t.Errorf("diets[%d] = %q, want %q", i, diets[i].Name, name)
				}
			}
		})
	}
}

func TestImportCSV_AdvancesKeys(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if _, err := svc.ImportCSV(ctx, "diets", []byte("diet_id,name\n7,paleo\n")); err != nil {
		t.Fatal(err)
	}
	next := &models.Diet{Name: "vegan"}
	if err := repo.Diets().Create(ctx, next); err != nil {
		t.Fatalf("Create() after import error = %v", err)
	}
	if next.DietID != 8 {
		t.Errorf("DietID = %d, want 8", next.DietID)
	}
}

func TestExportXLSX(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	if err := repo.Diets().Create(ctx, &models.Diet{Name: "keto", PhotoURL: "https://x"}); err != nil {
		t.Fatal(err)
	}

	data, err := svc.ExportXLSX(ctx, "diets")
	if err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("diets")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want header and one row", rows)
	}
	if rows[0][0] != "diet_id" || rows[1][1] != "keto" || rows[1][3] != "https://x" {
		t.Errorf("rows = %v", rows)
	}
}
