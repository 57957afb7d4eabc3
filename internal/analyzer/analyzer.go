package analyzer

import (
	"fmt"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

// DefaultMaxDepth is the nesting bound used when none is configured.
const DefaultMaxDepth = 1000

// Analyzer computes structural statistics of JSON documents.
type Analyzer struct {
	// maxDepth bounds recursion; zero disables the bound
	maxDepth int
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{maxDepth: DefaultMaxDepth}
}

// NewAnalyzerWithMaxDepth creates an Analyzer with a custom nesting bound.
func NewAnalyzerWithMaxDepth(maxDepth int) *Analyzer {
	return &Analyzer{maxDepth: maxDepth}
}

// Analyze walks root once and returns its type, element count, nesting
// depth, scalar histogram and top-level keys.
func (a *Analyzer) Analyze(root models.Value) (models.AnalysisResult, error) {
	result := models.AnalysisResult{
		Type:          root.Kind(),
		TypeHistogram: make(map[models.Kind]int),
		Keys:          []string{},
	}
	if !root.Kind().IsScalar() {
		result.Count = root.Len()
	}
	if root.Kind() == models.KindObject {
		result.Keys = root.Keys()
	}

	depth, err := a.walk(root, 0, result.TypeHistogram)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	result.Depth = depth
	return result, nil
}

// walk returns the nesting depth of node and adds its scalar leaves to hist.
// level is the number of containers above node.
func (a *Analyzer) walk(node models.Value, level int, hist map[models.Kind]int) (int, error) {
	kind := node.Kind()
	if kind.IsScalar() {
		hist[kind]++
		return 0, nil
	}
	if a.maxDepth > 0 && level+1 > a.maxDepth {
		return 0, errors.NewLimitError(
			fmt.Sprintf("nesting deeper than %d levels", a.maxDepth),
			errors.ErrDepthExceeded,
		)
	}

	deepest := 0
	for i := 0; i < node.Len(); i++ {
		var child models.Value
		if kind == models.KindArray {
			child = node.At(i)
		} else {
			child = node.MemberAt(i).Value
		}
		d, err := a.walk(child, level+1, hist)
		if err != nil {
			return 0, err
		}
		deepest = max(deepest, d)
	}
	return deepest + 1, nil
}
