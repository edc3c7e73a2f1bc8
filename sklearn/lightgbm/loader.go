package lightgbm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	bcErrors "github.com/ezoic/bikecast/pkg/errors"
	"github.com/ezoic/bikecast/pkg/log"
)

// LoadFromFile loads a LightGBM model from a text file
func LoadFromFile(filePath string) (*Model, error) {
	// Clean the file path to prevent path traversal attacks
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromString loads a LightGBM model from string format
func LoadFromString(modelStr string) (*Model, error) {
	return LoadFromReader(strings.NewReader(modelStr))
}

// LoadFromReader loads a LightGBM model from an io.Reader
func LoadFromReader(reader io.Reader) (*Model, error) {
	scanner := bufio.NewScanner(reader)
	// tree lines (leaf_value, threshold) can be long for deep trees
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	m := NewModel()
	maxFeatureIdx := -1

	var currentTree *Tree
	treeParams := make(map[string]string)

	flush := func() error {
		if currentTree == nil {
			return nil
		}
		if err := finalizeTree(currentTree, treeParams); err != nil {
			return err
		}
		m.Trees = append(m.Trees, *currentTree)
		currentTree = nil
		treeParams = make(map[string]string)
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if line == "end of trees" {
			break
		}

		if line == "average_output" {
			m.AverageOutput = true
			continue
		}

		if strings.HasPrefix(line, "Tree=") {
			if err := flush(); err != nil {
				return nil, err
			}
			treeIdx, err := strconv.Atoi(strings.TrimPrefix(line, "Tree="))
			if err != nil {
				return nil, fmt.Errorf("invalid tree index: %w", err)
			}
			currentTree = &Tree{TreeIndex: treeIdx}
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if currentTree != nil {
			treeParams[key] = value
			continue
		}

		switch key {
		case "version":
			m.Version = value
		case "num_class":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid num_class: %w", err)
			}
			m.NumClass = n
		case "max_feature_idx":
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("invalid max_feature_idx: %w", err)
			}
			maxFeatureIdx = n
		case "objective":
			// e.g. "regression" or "tweedie tweedie_variance_power:1.5"
			if fields := strings.Fields(value); len(fields) > 0 {
				m.Objective = ObjectiveType(fields[0])
			}
		case "feature_names":
			m.Names = strings.Fields(value)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading model: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	m.NumFeatures = maxFeatureIdx + 1
	if err := m.validate(); err != nil {
		return nil, err
	}

	m.State.SetFitted()
	m.State.SetDimensions(m.NumFeatures, 0)

	m.logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.PhaseKey, log.PhaseStartup,
		log.FeaturesKey, m.NumFeatures,
		"trees", len(m.Trees),
		"objective", string(m.Objective),
	)

	return m, nil
}

func (m *Model) validate() error {
	const op = "lightgbm.Load"
	if m.NumClass != 1 {
		return bcErrors.NewValueError(op, fmt.Sprintf("only single-output regression is supported, num_class=%d", m.NumClass))
	}
	if m.Objective == "" {
		m.Objective = RegressionL2
	}
	if !m.Objective.supported() {
		return bcErrors.NewValueError(op, fmt.Sprintf("unsupported objective %q", m.Objective))
	}
	if m.NumFeatures <= 0 {
		return bcErrors.NewValueError(op, "max_feature_idx is required")
	}
	if len(m.Names) > 0 && len(m.Names) != m.NumFeatures {
		return bcErrors.NewValueError(op, fmt.Sprintf("feature_names has %d entries, max_feature_idx implies %d",
			len(m.Names), m.NumFeatures))
	}
	if len(m.Trees) == 0 {
		return bcErrors.NewModelError(op, "no trees", bcErrors.ErrEmptyData)
	}
	for _, t := range m.Trees {
		for _, n := range t.Nodes {
			if n.SplitFeature < 0 || n.SplitFeature >= m.NumFeatures {
				return bcErrors.NewValueError(op, fmt.Sprintf("tree %d splits on feature %d outside [0,%d)",
					t.TreeIndex, n.SplitFeature, m.NumFeatures))
			}
		}
	}
	return nil
}

// finalizeTree parses the tree parameters and constructs the tree nodes
func finalizeTree(tree *Tree, params map[string]string) error {
	const op = "lightgbm.finalizeTree"

	numLeaves, err := strconv.Atoi(params["num_leaves"])
	if err != nil || numLeaves < 1 {
		return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: invalid num_leaves %q", tree.TreeIndex, params["num_leaves"]))
	}
	tree.NumLeaves = numLeaves

	if params["is_linear"] == "1" {
		return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: linear trees are not supported", tree.TreeIndex))
	}

	if v, ok := params["shrinkage"]; ok {
		tree.ShrinkageRate, _ = strconv.ParseFloat(v, 64)
	}

	leafValues, err := parseFloatArray(params["leaf_value"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: leaf_value", tree.TreeIndex)
	}
	if len(leafValues) != numLeaves {
		return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: %d leaf values for %d leaves",
			tree.TreeIndex, len(leafValues), numLeaves))
	}
	tree.LeafValues = leafValues

	// constant tree
	if numLeaves == 1 {
		return nil
	}

	internal := numLeaves - 1
	splitFeatures, err := parseIntArray(params["split_feature"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: split_feature", tree.TreeIndex)
	}
	thresholds, err := parseFloatArray(params["threshold"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: threshold", tree.TreeIndex)
	}
	leftChildren, err := parseIntArray(params["left_child"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: left_child", tree.TreeIndex)
	}
	rightChildren, err := parseIntArray(params["right_child"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: right_child", tree.TreeIndex)
	}
	decisionTypes, err := parseIntArray(params["decision_type"])
	if err != nil {
		return bcErrors.Wrapf(err, "tree %d: decision_type", tree.TreeIndex)
	}
	if len(decisionTypes) == 0 {
		decisionTypes = make([]int, internal)
	}

	for name, n := range map[string]int{
		"split_feature": len(splitFeatures),
		"threshold":     len(thresholds),
		"left_child":    len(leftChildren),
		"right_child":   len(rightChildren),
		"decision_type": len(decisionTypes),
	} {
		if n != internal {
			return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: %s has %d entries, expected %d",
				tree.TreeIndex, name, n, internal))
		}
	}

	tree.Nodes = make([]Node, internal)
	for i := 0; i < internal; i++ {
		dt := decisionTypes[i]
		if dt&1 != 0 {
			return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: categorical splits are not supported", tree.TreeIndex))
		}
		for _, child := range []int{leftChildren[i], rightChildren[i]} {
			if child >= internal || (child < 0 && ^child >= numLeaves) {
				return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: child index %d out of range", tree.TreeIndex, child))
			}
			// children always follow their parent, so traversal cannot loop
			if child >= 0 && child <= i {
				return bcErrors.NewValueError(op, fmt.Sprintf("tree %d: node %d points back to node %d", tree.TreeIndex, i, child))
			}
		}
		tree.Nodes[i] = Node{
			SplitFeature: splitFeatures[i],
			Threshold:    thresholds[i],
			LeftChild:    leftChildren[i],
			RightChild:   rightChildren[i],
			DefaultLeft:  dt&(1<<1) != 0,
			MissingType:  MissingType((dt >> 2) & 3),
		}
	}

	return nil
}

// parseIntArray parses a space-separated string of integers
func parseIntArray(s string) ([]int, error) {
	parts := strings.Fields(s)
	result := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// parseFloatArray parses a space-separated string of floats
func parseFloatArray(s string) ([]float64, error) {
	parts := strings.Fields(s)
	result := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}
