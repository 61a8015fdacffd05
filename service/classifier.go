package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/propscore/leadscore/backend/model"
)

// ErrModelNotLoaded is returned when scoring is attempted without a loaded
// classifier artifact. Callers surface it as a 503, not a crash.
var ErrModelNotLoaded = errors.New("model not loaded")

// PredictionError wraps a failure raised during a single inference attempt.
type PredictionError struct {
	Cause error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("error predicting score: %v", e.Cause)
}

func (e *PredictionError) Unwrap() error {
	return e.Cause
}

// Classifier is the opaque model boundary: given a feature record, produce
// the probability of high intent. Implementations may be swapped freely;
// the scoring pipeline depends on nothing else.
type Classifier interface {
	Predict(rec model.FeatureRecord) (float64, error)
	FeatureNames() []string
}

// NumericFeature carries the standardization parameters for one numeric column.
type NumericFeature struct {
	Name string  `json:"name"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// CategoricalFeature lists the one-hot levels for one categorical column,
// in artifact order.
type CategoricalFeature struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ModelArtifact is the serialized form of the trained classifier: feature
// manifest, standardization parameters and logistic coefficients.
type ModelArtifact struct {
	Numeric     []NumericFeature     `json:"numeric_features"`
	Categorical []CategoricalFeature `json:"categorical_features"`
	Weights     []float64            `json:"weights"`
	Intercept   float64              `json:"intercept"`
}

// LogisticClassifier scores a feature record with a standardized logistic
// model loaded once from an artifact. Read-only after construction.
type LogisticClassifier struct {
	artifact ModelArtifact
	weights  *mat.VecDense
	names    []string
}

// NewLogisticClassifier parses an artifact and verifies its feature manifest
// against the fields a FeatureRecord carries. A mismatch is an integration
// error caught here, at startup, never per request.
func NewLogisticClassifier(data []byte) (*LogisticClassifier, error) {
	var artifact ModelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	return newLogisticClassifier(artifact)
}

func newLogisticClassifier(artifact ModelArtifact) (*LogisticClassifier, error) {
	var probe model.FeatureRecord
	names := make([]string, 0, len(artifact.Numeric)+len(artifact.Categorical))

	for _, nf := range artifact.Numeric {
		if _, ok := probe.Numeric(nf.Name); !ok {
			return nil, fmt.Errorf("artifact references unknown numeric feature %q", nf.Name)
		}
		if nf.Std <= 0 {
			return nil, fmt.Errorf("artifact has non-positive std for feature %q", nf.Name)
		}
		names = append(names, nf.Name)
	}
	for _, cf := range artifact.Categorical {
		if _, ok := probe.Categorical(cf.Name); !ok {
			return nil, fmt.Errorf("artifact references unknown categorical feature %q", cf.Name)
		}
		for _, v := range cf.Values {
			names = append(names, cf.Name+"="+v)
		}
	}

	if len(names) == 0 {
		return nil, errors.New("artifact has no features")
	}
	if len(artifact.Weights) != len(names) {
		return nil, fmt.Errorf("artifact has %d weights for %d features", len(artifact.Weights), len(names))
	}

	return &LogisticClassifier{
		artifact: artifact,
		weights:  mat.NewVecDense(len(artifact.Weights), artifact.Weights),
		names:    names,
	}, nil
}

// FeatureNames returns the ordered encoded feature manifest.
func (c *LogisticClassifier) FeatureNames() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Predict returns the probability of high intent in [0,1]. A single
// synchronous attempt; failures are wrapped in PredictionError.
func (c *LogisticClassifier) Predict(rec model.FeatureRecord) (float64, error) {
	x, err := c.encode(rec)
	if err != nil {
		return 0, &PredictionError{Cause: err}
	}

	z := mat.Dot(c.weights, x) + c.artifact.Intercept
	return sigmoid(z), nil
}

// encode builds the standardized one-hot feature vector in manifest order.
// A categorical value absent from the artifact's levels encodes as all
// zeroes, matching how the original model treats unknown categories.
func (c *LogisticClassifier) encode(rec model.FeatureRecord) (*mat.VecDense, error) {
	values := make([]float64, 0, len(c.names))

	for _, nf := range c.artifact.Numeric {
		v, ok := rec.Numeric(nf.Name)
		if !ok {
			return nil, fmt.Errorf("feature record missing numeric feature %q", nf.Name)
		}
		values = append(values, (v-nf.Mean)/nf.Std)
	}
	for _, cf := range c.artifact.Categorical {
		v, ok := rec.Categorical(cf.Name)
		if !ok {
			return nil, fmt.Errorf("feature record missing categorical feature %q", cf.Name)
		}
		for _, level := range cf.Values {
			if v == level {
				values = append(values, 1)
			} else {
				values = append(values, 0)
			}
		}
	}

	return mat.NewVecDense(len(values), values), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
