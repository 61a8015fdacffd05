package service

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/propscore/leadscore/backend/model"
)

// DatasetHeader is the column order of the generated training CSV.
var DatasetHeader = []string{
	"phone_number", "email", "credit_score", "age_group", "family_background",
	"income", "property_type", "budget", "location", "previous_inquiries",
	"time_on_market", "response_time_minutes", "comments", "high_intent",
}

// DatasetGenerator produces synthetic lead records with the correlations the
// classifier is meant to pick up: credit and income rise with age, budget
// tracks income, and fast responders on fresh listings skew high-intent.
type DatasetGenerator struct {
	rng *rand.Rand
}

func NewDatasetGenerator(seed uint64) *DatasetGenerator {
	return &DatasetGenerator{rng: rand.New(rand.NewSource(seed))}
}

var (
	ageGroupWeights = []float64{0.15, 0.40, 0.30, 0.15}
	familyWeights   = []float64{0.30, 0.25, 0.30, 0.10, 0.05}
	propertyWeights = []float64{0.40, 0.30, 0.10, 0.05, 0.15}
	locationWeights = []float64{0.50, 0.40, 0.10}

	commentTemplates = []string{
		"Looking for a %s in %s area.",
		"Need a %s for my family.",
		"Interested in properties around my budget.",
		"Require financing options for %s.",
		"Currently renting, want to buy a %s.",
		"Relocating to %s area soon.",
		"Investment opportunity in %s area.",
		"Need property with good schools nearby.",
	}

	highIntentSignals = []string{
		"urgent", "need immediately", "ready to purchase",
		"pre-approved loan", "cash buyer", "looking to close quickly",
		"very interested", "perfect match", "dream home", "must have",
	}

	lowIntentSignals = []string{
		"just browsing", "not sure yet", "might consider",
		"too expensive", "not interested", "just checking",
		"maybe next year", "not ready", "need to think", "too small",
	}
)

// Generate writes n synthetic lead rows to a CSV at path.
func (g *DatasetGenerator) Generate(path string, n int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create dataset directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(DatasetHeader); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		if err := w.Write(g.row(i)); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func (g *DatasetGenerator) row(i int) []string {
	phone := fmt.Sprintf("+91-%d", 7000000000+g.rng.Int63n(3000000000))
	email := fmt.Sprintf("lead%05d@example.com", i+1)

	ageGroup := g.choice(model.AgeGroups, ageGroupWeights)
	family := g.choice(model.FamilyBackgrounds, familyWeights)

	// Credit score rises with age group.
	creditMu := map[string]float64{
		"18-25": 200, "26-35": 300, "36-50": 350, "51+": 400,
	}[ageGroup]
	creditScore := clampInt(300+int(g.normal(creditMu, 50)), 300, 850)

	// Income tracks age and credit.
	incomeMult := map[string]func() float64{
		"18-25": func() float64 { return g.normal(1.0, 0.2) },
		"26-35": func() float64 { return g.normal(1.5, 0.3) },
		"36-50": func() float64 { return g.normal(2.5, 0.5) },
		"51+":   func() float64 { return g.normal(3.0, 0.7) },
	}[ageGroup]()
	incomeMult *= float64(creditScore) / 600
	income := clampInt(int(100000*incomeMult), 100000, 1000000)

	propertyType := g.choice(model.PropertyTypes, propertyWeights)
	budget := int(float64(income) * g.normal(5, 1))
	if budget < 0 {
		budget = 0
	}
	location := g.choice(model.Locations, locationWeights)

	previousInquiries := int(distuv.Poisson{Lambda: 2, Src: g.rng}.Rand())
	timeOnMarket := maxInt(1, int(distuv.Exponential{Rate: 1.0 / 30, Src: g.rng}.Rand()))
	responseTime := maxInt(1, int(distuv.Exponential{Rate: 1.0 / 60, Src: g.rng}.Rand()))

	// Latent intent from financial and behavioral factors, thresholded at 60.
	intent := (float64(income)/1000000)*30 +
		(float64(creditScore)-300)/550*20 +
		maxFloat(0, 10-float64(previousInquiries))*2 +
		maxFloat(0, 10-float64(responseTime)/10)*1.5 +
		maxFloat(0, 10-float64(timeOnMarket)/10)*1.5
	highIntent := 0
	if intent > 60 {
		highIntent = 1
	}

	comment := g.comment(propertyType, location)
	if highIntent == 1 && g.rng.Float64() < 0.7 {
		comment += " " + highIntentSignals[g.rng.Intn(len(highIntentSignals))] + "."
	} else if highIntent == 0 && g.rng.Float64() < 0.5 {
		comment += " " + lowIntentSignals[g.rng.Intn(len(lowIntentSignals))] + "."
	}

	return []string{
		phone, email,
		strconv.Itoa(creditScore), ageGroup, family,
		strconv.Itoa(income), propertyType, strconv.Itoa(budget), location,
		strconv.Itoa(previousInquiries), strconv.Itoa(timeOnMarket),
		strconv.Itoa(responseTime), comment, strconv.Itoa(highIntent),
	}
}

func (g *DatasetGenerator) comment(propertyType, location string) string {
	idx := g.rng.Intn(len(commentTemplates))
	tpl := commentTemplates[idx]
	switch idx {
	case 0:
		return fmt.Sprintf(tpl, lower(propertyType), lower(location))
	case 1, 3, 4:
		return fmt.Sprintf(tpl, lower(propertyType))
	case 5, 6:
		return fmt.Sprintf(tpl, lower(location))
	default:
		return tpl
	}
}

func (g *DatasetGenerator) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.rng}.Rand()
}

func (g *DatasetGenerator) choice(values []string, weights []float64) string {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := g.rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func lower(s string) string {
	out := []rune(s)
	if len(out) > 0 && out[0] >= 'A' && out[0] <= 'Z' {
		out[0] += 'a' - 'A'
	}
	return string(out)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
