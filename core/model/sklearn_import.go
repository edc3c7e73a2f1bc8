package model

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ezoic/bikecast/pkg/errors"
)

// SupportedFormatVersion is the only interchange format version accepted.
const SupportedFormatVersion = "1.0"

// SKLearnModelSpec はscikit-learnモデルのメタデータ
type SKLearnModelSpec struct {
	Name           string `json:"name"`                      // モデル名 (e.g., "LinearRegression")
	FormatVersion  string `json:"format_version"`            // フォーマットバージョン
	SKLearnVersion string `json:"sklearn_version,omitempty"` // scikit-learnのバージョン
}

// SKLearnLinearRegressionParams は線形回帰モデルのパラメータ
//
// FeatureNames mirrors scikit-learn's feature_names_in_ and fixes the column
// order the coefficients apply to.
type SKLearnLinearRegressionParams struct {
	Coefficients []float64 `json:"coefficients"`            // 係数（重み）
	Intercept    float64   `json:"intercept"`               // 切片
	NFeatures    int       `json:"n_features"`              // 特徴量の数
	FeatureNames []string  `json:"feature_names,omitempty"` // 特徴量名
}

// SKLearnModel はscikit-learnからエクスポートされたモデル
type SKLearnModel struct {
	ModelSpec SKLearnModelSpec `json:"model_spec"`
	Params    json.RawMessage  `json:"params"`
}

// LoadSKLearnModelFromFile はファイルからscikit-learnモデルを読み込む
//
// 使用例:
//
//	model, err := model.LoadSKLearnModelFromFile("bike_rentals.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
func LoadSKLearnModelFromFile(filename string) (*SKLearnModel, error) {
	file, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadSKLearnModelFromReader(file)
}

// LoadSKLearnModelFromReader はReaderからscikit-learnモデルを読み込む
func LoadSKLearnModelFromReader(r io.Reader) (*SKLearnModel, error) {
	var model SKLearnModel
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&model); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	// バージョン検証
	if model.ModelSpec.FormatVersion == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "format_version is required")
	}

	if model.ModelSpec.FormatVersion != SupportedFormatVersion {
		return nil, errors.NewValueError("LoadSKLearnModel",
			fmt.Sprintf("unsupported format version: %s", model.ModelSpec.FormatVersion))
	}

	if model.ModelSpec.Name == "" {
		return nil, errors.NewValueError("LoadSKLearnModel", "model name is required")
	}

	return &model, nil
}

// LoadLinearRegressionParams はLinearRegressionのパラメータを読み込む
func LoadLinearRegressionParams(model *SKLearnModel) (*SKLearnLinearRegressionParams, error) {
	if model.ModelSpec.Name != "LinearRegression" {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("expected LinearRegression, got %s", model.ModelSpec.Name))
	}

	var params SKLearnLinearRegressionParams
	if err := json.Unmarshal(model.Params, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	if len(params.Coefficients) == 0 {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			"coefficients cannot be empty")
	}

	if params.NFeatures != len(params.Coefficients) {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("n_features (%d) does not match coefficients length (%d)",
				params.NFeatures, len(params.Coefficients)))
	}

	if len(params.FeatureNames) > 0 && len(params.FeatureNames) != params.NFeatures {
		return nil, errors.NewValueError("LoadLinearRegressionParams",
			fmt.Sprintf("feature_names length (%d) does not match n_features (%d)",
				len(params.FeatureNames), params.NFeatures))
	}

	for i, c := range params.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.NewValueError("LoadLinearRegressionParams",
				fmt.Sprintf("coefficient %d is not finite", i))
		}
	}

	return &params, nil
}

// ExportSKLearnModel はモデルをscikit-learn互換のJSON形式でエクスポート
func ExportSKLearnModel(modelName string, params interface{}, w io.Writer) error {
	model := SKLearnModel{
		ModelSpec: SKLearnModelSpec{
			Name:          modelName,
			FormatVersion: SupportedFormatVersion,
		},
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}
	model.Params = paramsJSON

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&model); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}
