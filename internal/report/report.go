// Package report turns analysis and validation results into text or JSON
// for the command line.
package report

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mcncl/jsonkit/internal/errors"
	"github.com/mcncl/jsonkit/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// MaxKeys is the number of root keys listed in text reports.
const MaxKeys = 5

// analysisDTO is the JSON shape of an analysis.
type analysisDTO struct {
	Type          string         `json:"type"`
	Count         *int           `json:"count,omitempty"`
	Depth         int            `json:"depth"`
	TypeHistogram map[string]int `json:"type_histogram"`
	Keys          []string       `json:"keys"`
}

type positionDTO struct {
	Offset int64 `json:"offset"`
	Line   int   `json:"line"`
	Column int   `json:"column"`
}

type validationDTO struct {
	Valid    bool         `json:"valid"`
	Message  string       `json:"message"`
	Position *positionDTO `json:"position,omitempty"`
}

// Analysis renders r in the given format.
func Analysis(r models.AnalysisResult, format string) (string, error) {
	switch format {
	case FormatJSON:
		return AnalysisJSON(r)
	case FormatText, "":
		return AnalysisText(r), nil
	default:
		return "", unknownFormat(format)
	}
}

// AnalysisText renders r as labelled lines.
func AnalysisText(r models.AnalysisResult) string {
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	sb.WriteString(p.Sprintf("Type: %s\n", r.Type.DisplayName()))
	if r.HasCount() {
		sb.WriteString(p.Sprintf("Properties/Items: %d\n", r.Count))
	}
	sb.WriteString(p.Sprintf("Max Depth: %d\n", r.Depth))
	sb.WriteString("Data Types: " + histogram(p, r.TypeHistogram) + "\n")
	if len(r.Keys) > 0 {
		keys := r.Keys
		more := ""
		if len(keys) > MaxKeys {
			keys, more = keys[:MaxKeys], "..."
		}
		sb.WriteString("Keys: " + strings.Join(keys, ", ") + more + "\n")
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func histogram(p *message.Printer, hist map[models.Kind]int) string {
	var parts []string
	for _, k := range models.ScalarKinds {
		if n := hist[k]; n > 0 {
			parts = append(parts, p.Sprintf("%s: %d", k.String(), n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// AnalysisJSON renders r as a JSON object.
func AnalysisJSON(r models.AnalysisResult) (string, error) {
	dto := analysisDTO{
		Type:          r.Type.DisplayName(),
		Depth:         r.Depth,
		TypeHistogram: make(map[string]int, len(r.TypeHistogram)),
		Keys:          r.Keys,
	}
	if r.HasCount() {
		count := r.Count
		dto.Count = &count
	}
	for k, n := range r.TypeHistogram {
		dto.TypeHistogram[k.String()] = n
	}
	if dto.Keys == nil {
		dto.Keys = []string{}
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return "", errors.NewOutputError("failed to encode analysis", err)
	}
	return string(data), nil
}

// Validation renders v in the given format.
func Validation(v models.ValidationResult, format string) (string, error) {
	switch format {
	case FormatJSON:
		return ValidationJSON(v)
	case FormatText, "":
		return ValidationText(v), nil
	default:
		return "", unknownFormat(format)
	}
}

// ValidationText returns "Valid JSON" or "Invalid: <reason>".
func ValidationText(v models.ValidationResult) string {
	if v.Valid {
		return "Valid JSON"
	}
	return "Invalid: " + v.Message
}

// ValidationJSON renders v as a JSON object.
func ValidationJSON(v models.ValidationResult) (string, error) {
	dto := validationDTO{Valid: v.Valid, Message: v.Message}
	if v.Position != nil {
		dto.Position = &positionDTO{
			Offset: v.Position.Offset,
			Line:   v.Position.Line,
			Column: v.Position.Column,
		}
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return "", errors.NewOutputError("failed to encode validation result", err)
	}
	return string(data), nil
}

// Characters returns a size status such as "1,234 characters".
func Characters(n int) string {
	p := message.NewPrinter(language.English)
	if n == 1 {
		return "1 character"
	}
	return p.Sprintf("%d characters", n)
}

func unknownFormat(format string) error {
	return errors.NewConfigurationError(
		fmt.Sprintf("unknown output format %q, expected %s or %s", format, FormatText, FormatJSON),
		errors.ErrInvalidSetting,
	)
}
