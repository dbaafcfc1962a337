package document

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/google/uuid"

	"github.com/xavierca1/fitness-sales/internal/usecase"
)

// Generator renders nutrition plans into the produced-files directory.
type Generator struct {
	Dir string
}

func NewGenerator(producedDir string) *Generator {
	return &Generator{Dir: filepath.Join(producedDir, "nutrition")}
}

var nutritionTemplate = template.Must(template.New("nutrition").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Personal nutrition plan</title></head>
<body style="font-family: Arial, sans-serif; max-width: 640px; margin: auto;">
	<h1>Personal nutrition plan</h1>

	<h2>Your profile</h2>
	<p>Age: {{.Profile.Age}} &middot; Height: {{.Profile.Height}} cm &middot; Weight: {{.Profile.Weight}} kg &middot; Goal: {{.Profile.Purpose}}</p>

	<h2>Daily budget</h2>
	<table border="1" cellpadding="6" cellspacing="0">
		<tr><th>Calories</th><th>Proteins</th><th>Fats</th><th>Carbs</th></tr>
		<tr><td>{{.CPFC.Calories}} kcal</td><td>{{.CPFC.Proteins}} g</td><td>{{.CPFC.Fats}} g</td><td>{{.CPFC.Carbs}} g</td></tr>
	</table>

	<h2>Meal plan</h2>
	<h3>Breakfast</h3>
	{{template "meal" .Diet.Breakfast}}
	<h3>First snack</h3>
	{{template "meal" .Diet.Snack1}}
	<h3>Lunch</h3>
	{{template "meal" .Diet.Lunch}}
	<h3>Second snack</h3>
	{{template "meal" .Diet.Snack2}}
	<h3>Dinner</h3>
	{{template "meal" .Diet.Dinner}}

	<p>Component weights are raw (before cooking). You can swap the porridge,
	protein source or nuts for an equivalent of similar calories.</p>
</body>
</html>
{{define "meal"}}<ul>
	{{- if .PorridgeGrams}}<li>Porridge: {{.PorridgeGrams}} g</li>{{end}}
	{{- if .ProteinGrams}}<li>Meat / fish / poultry: {{.ProteinGrams}} g</li>{{end}}
	{{- if .Eggs}}<li>Eggs: {{.Eggs}} pcs</li>{{end}}
	{{- if .NutsGrams}}<li>Nuts: {{.NutsGrams}} g</li>{{end}}
	{{- if .ChocolateGrams}}<li>Milk chocolate: {{.ChocolateGrams}} g</li>{{end}}
</ul>{{end}}`))

type nutritionDocument struct {
	CPFC    usecase.CPFC
	Diet    usecase.Diet
	Profile usecase.NutritionProfile
}

// CreateNutrition writes the rendered plan to disk and returns its path.
func (g *Generator) CreateNutrition(cpfc usecase.CPFC, diet usecase.Diet, profile usecase.NutritionProfile) (string, error) {
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create nutrition directory: %w", err)
	}

	path := filepath.Join(g.Dir, uuid.New().String()+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create nutrition document: %w", err)
	}
	defer f.Close()

	data := nutritionDocument{CPFC: cpfc, Diet: diet, Profile: profile}
	if err := nutritionTemplate.Execute(f, data); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to render nutrition document: %w", err)
	}

	log.Printf("📄 [DOCS] nutrition plan written to %s", path)
	return path, nil
}
