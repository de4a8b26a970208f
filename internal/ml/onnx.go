// Package ml wraps ONNX Runtime inference for the trained sizing models.
// Each artifact ships a size classifier and a vault regressor exported to
// ONNX, plus the standard scalers fitted alongside them.
package ml

import (
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"iclvault/pkg/errors"
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment initializes the ONNX runtime environment once per
// process.
func initEnvironment() error {
	envOnce.Do(func() {
		envErr = onnxruntime.InitializeEnvironment()
	})
	return envErr
}

func newSession(modelPath string, outputNames []string) (*onnxruntime.DynamicAdvancedSession, error) {
	if err := initEnvironment(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	session, err := onnxruntime.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, outputNames, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}
	return session, nil
}

// ClassifierModel runs the lens-size classifier. The exported graph has
// one input "input" (shape [1, num_features]) and two outputs: "output"
// (predicted class index, int64) and "probabilities" (float64, one per
// class).
type ClassifierModel struct {
	session    *onnxruntime.DynamicAdvancedSession
	numClasses int
}

// LoadClassifier loads a classifier ONNX model from file.
func LoadClassifier(modelPath string, numClasses int) (*ClassifierModel, error) {
	session, err := newSession(modelPath, []string{"output", "probabilities"})
	if err != nil {
		return nil, err
	}
	return &ClassifierModel{session: session, numClasses: numClasses}, nil
}

// Probabilities runs inference and returns the per-class probability
// vector in class order.
func (m *ClassifierModel) Probabilities(features []float64) ([]float64, error) {
	if m.session == nil {
		return nil, errors.New("classifier session is nil")
	}

	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	classOutput := make([]int64, 1)
	classTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1), classOutput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create class output tensor")
	}
	defer classTensor.Destroy()

	probOutput := make([]float64, m.numClasses)
	probShape := onnxruntime.NewShape(1, int64(m.numClasses))
	probTensor, err := onnxruntime.NewTensor(probShape, probOutput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create probabilities output tensor")
	}
	defer probTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{classTensor, probTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}

	probs := make([]float64, m.numClasses)
	copy(probs, probOutput)
	return probs, nil
}

// Destroy cleans up the classifier session.
func (m *ClassifierModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}

// RegressorModel runs the vault regressor. The exported graph has one
// input "input" and one output "output" (float64, shape [1]).
type RegressorModel struct {
	session *onnxruntime.DynamicAdvancedSession
}

// LoadRegressor loads a regressor ONNX model from file.
func LoadRegressor(modelPath string) (*RegressorModel, error) {
	session, err := newSession(modelPath, []string{"output"})
	if err != nil {
		return nil, err
	}
	return &RegressorModel{session: session}, nil
}

// Predict runs inference and returns the point estimate.
func (m *RegressorModel) Predict(features []float64) (float64, error) {
	if m.session == nil {
		return 0, errors.New("regressor session is nil")
	}

	inputShape := onnxruntime.NewShape(1, int64(len(features)))
	inputTensor, err := onnxruntime.NewTensor(inputShape, features)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	output := make([]float64, 1)
	outputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1), output)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create output tensor")
	}
	defer outputTensor.Destroy()

	inputs := []onnxruntime.Value{inputTensor}
	outputs := []onnxruntime.Value{outputTensor}
	if err := m.session.Run(inputs, outputs); err != nil {
		return 0, errors.Wrap(err, "inference failed")
	}

	return output[0], nil
}

// Destroy cleans up the regressor session.
func (m *RegressorModel) Destroy() {
	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
