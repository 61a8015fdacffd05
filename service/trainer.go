package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/montanaflynn/stats"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/propscore/leadscore/backend/model"
)

// TrainOptions tunes the offline model fit.
type TrainOptions struct {
	Epochs       int
	LearningRate float64
	TestFraction float64
	Seed         uint64
}

func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Epochs:       100,
		LearningRate: 0.1,
		TestFraction: 0.2,
		Seed:         42,
	}
}

// TrainReport summarizes a training run against the held-out split.
type TrainReport struct {
	TrainSamples int
	TestSamples  int
	Accuracy     float64
	Precision    float64
	Recall       float64
}

// TrainModel fits a standardized logistic model on a generated lead CSV and
// writes the artifact the serving process loads. Training is an offline
// command; the running service never learns or updates the model.
func TrainModel(dataPath, artifactPath string, opts TrainOptions) (*TrainReport, error) {
	records, labels, err := readDataset(dataPath)
	if err != nil {
		return nil, err
	}
	if len(records) < 10 {
		return nil, fmt.Errorf("dataset too small: %d rows", len(records))
	}

	// Shuffled holdout split.
	rng := rand.New(rand.NewSource(opts.Seed))
	order := rng.Perm(len(records))
	testN := int(float64(len(records)) * opts.TestFraction)
	testIdx, trainIdx := order[:testN], order[testN:]

	artifact := buildArtifactSkeleton(records, trainIdx)

	encoder, err := newLogisticClassifier(artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature encoder: %w", err)
	}

	encoded := make([]*mat.VecDense, len(records))
	for i, rec := range records {
		x, err := encoder.encode(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		encoded[i] = x
	}

	dim := encoded[0].Len()
	weights := mat.NewVecDense(dim, nil)
	intercept := 0.0

	// Per-row gradient descent on log loss.
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for _, i := range trainIdx {
			p := sigmoid(mat.Dot(weights, encoded[i]) + intercept)
			g := p - labels[i]
			weights.AddScaledVec(weights, -opts.LearningRate*g, encoded[i])
			intercept -= opts.LearningRate * g
		}
	}

	artifact.Weights = weights.RawVector().Data
	artifact.Intercept = intercept

	report := evaluate(weights, intercept, encoded, labels, testIdx)
	report.TrainSamples = len(trainIdx)
	report.TestSamples = len(testIdx)

	if err := writeArtifact(artifactPath, artifact); err != nil {
		return nil, err
	}

	return report, nil
}

func evaluate(weights *mat.VecDense, intercept float64, encoded []*mat.VecDense, labels []float64, testIdx []int) *TrainReport {
	var tp, fp, fn, correct float64
	for _, i := range testIdx {
		p := sigmoid(mat.Dot(weights, encoded[i]) + intercept)
		pred := 0.0
		if p >= 0.5 {
			pred = 1.0
		}
		if pred == labels[i] {
			correct++
		}
		switch {
		case pred == 1 && labels[i] == 1:
			tp++
		case pred == 1 && labels[i] == 0:
			fp++
		case pred == 0 && labels[i] == 1:
			fn++
		}
	}

	report := &TrainReport{}
	if len(testIdx) > 0 {
		report.Accuracy = correct / float64(len(testIdx))
	}
	if tp+fp > 0 {
		report.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		report.Recall = tp / (tp + fn)
	}
	return report
}

// buildArtifactSkeleton computes standardization parameters from the training
// split and fixes the one-hot levels to the model enumerations. Weights are
// zeroed; the fit fills them in.
func buildArtifactSkeleton(records []model.FeatureRecord, trainIdx []int) ModelArtifact {
	numericNames := []string{
		"credit_score", "income", "budget", "previous_inquiries",
		"time_on_market", "response_time_minutes",
	}

	numeric := make([]NumericFeature, 0, len(numericNames))
	for _, name := range numericNames {
		col := make([]float64, 0, len(trainIdx))
		for _, i := range trainIdx {
			v, _ := records[i].Numeric(name)
			col = append(col, v)
		}
		mean, _ := stats.Mean(col)
		std, _ := stats.StandardDeviation(col)
		if std == 0 {
			std = 1
		}
		numeric = append(numeric, NumericFeature{Name: name, Mean: mean, Std: std})
	}

	categorical := []CategoricalFeature{
		{Name: "age_group", Values: model.AgeGroups},
		{Name: "family_background", Values: model.FamilyBackgrounds},
		{Name: "property_type", Values: model.PropertyTypes},
		{Name: "location", Values: model.Locations},
	}

	dim := len(numeric)
	for _, cf := range categorical {
		dim += len(cf.Values)
	}

	return ModelArtifact{
		Numeric:     numeric,
		Categorical: categorical,
		Weights:     make([]float64, dim),
	}
}

func readDataset(path string) ([]model.FeatureRecord, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("dataset has no data rows")
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, name := range DatasetHeader {
		if _, ok := col[name]; !ok {
			return nil, nil, fmt.Errorf("dataset missing column %q", name)
		}
	}

	records := make([]model.FeatureRecord, 0, len(rows)-1)
	labels := make([]float64, 0, len(rows)-1)

	for n, row := range rows[1:] {
		intAt := func(name string) (int, error) {
			return strconv.Atoi(row[col[name]])
		}

		creditScore, err := intAt("credit_score")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad credit_score: %w", n+1, err)
		}
		income, err := intAt("income")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad income: %w", n+1, err)
		}
		budget, err := intAt("budget")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad budget: %w", n+1, err)
		}
		inquiries, err := intAt("previous_inquiries")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad previous_inquiries: %w", n+1, err)
		}
		timeOnMarket, err := intAt("time_on_market")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad time_on_market: %w", n+1, err)
		}
		responseTime, err := intAt("response_time_minutes")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad response_time_minutes: %w", n+1, err)
		}
		label, err := intAt("high_intent")
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: bad high_intent: %w", n+1, err)
		}

		records = append(records, model.FeatureRecord{
			CreditScore:         creditScore,
			Income:              income,
			Budget:              budget,
			PreviousInquiries:   inquiries,
			TimeOnMarket:        timeOnMarket,
			ResponseTimeMinutes: responseTime,
			AgeGroup:            row[col["age_group"]],
			FamilyBackground:    row[col["family_background"]],
			PropertyType:        row[col["property_type"]],
			Location:            row[col["location"]],
		})
		labels = append(labels, float64(label))
	}

	return records, labels, nil
}

func writeArtifact(path string, artifact ModelArtifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}
