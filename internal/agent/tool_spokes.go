package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/llm"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/logging"
	"github.com/loamlabs/loamlabs-shop-tech-agent/internal/spokecalc"
)

const spokeToolName = "calculate_spoke_lengths"

// SpokeLengthTool delegates spoke-length math to the calculation service.
type SpokeLengthTool struct {
	calc spokecalc.Client
	log  *logging.Logger
}

// NewSpokeLengthTool creates the spoke calculation tool.
func NewSpokeLengthTool(calc spokecalc.Client, log *logging.Logger) *SpokeLengthTool {
	return &SpokeLengthTool{calc: calc, log: log.Sub("spokes")}
}

func (t *SpokeLengthTool) Definition() llm.ToolDefinition {
	num := func(desc string) map[string]any {
		return map[string]any{"type": "number", "description": desc}
	}
	return llm.ToolDefinition{
		Name:        spokeToolName,
		Description: "Calculate left and right spoke lengths in millimeters from hub and rim geometry. All seven measurements are required and must be positive.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"erd":          num("Rim effective rim diameter in mm"),
				"pcdLeft":      num("Left flange pitch circle diameter in mm"),
				"pcdRight":     num("Right flange pitch circle diameter in mm"),
				"flangeLeft":   num("Left flange distance from hub center in mm"),
				"flangeRight":  num("Right flange distance from hub center in mm"),
				"spokeCount":   num("Total spoke count, e.g. 28 or 32"),
				"crossPattern": num("Lacing cross pattern, e.g. 2 or 3"),
			},
			"required": []string{"erd", "pcdLeft", "pcdRight", "flangeLeft", "flangeRight", "spokeCount", "crossPattern"},
		},
	}
}

// spokeArgs takes every field as float64 so models sending "32.0" for the
// spoke count still parse.
type spokeArgs struct {
	ERD          float64 `json:"erd"`
	PCDLeft      float64 `json:"pcdLeft"`
	PCDRight     float64 `json:"pcdRight"`
	FlangeLeft   float64 `json:"flangeLeft"`
	FlangeRight  float64 `json:"flangeRight"`
	SpokeCount   float64 `json:"spokeCount"`
	CrossPattern float64 `json:"crossPattern"`
}

func (t *SpokeLengthTool) Execute(ctx context.Context, args json.RawMessage) (ToolOutcome, error) {
	var parsed spokeArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return ToolOutcome{}, fmt.Errorf("parse spoke arguments: %w", err)
	}

	params := spokecalc.Params{
		ERD:          parsed.ERD,
		PCDLeft:      parsed.PCDLeft,
		PCDRight:     parsed.PCDRight,
		FlangeLeft:   parsed.FlangeLeft,
		FlangeRight:  parsed.FlangeRight,
		SpokeCount:   int(math.Round(parsed.SpokeCount)),
		CrossPattern: int(math.Round(parsed.CrossPattern)),
	}
	if err := params.Validate(); err != nil {
		return ToolOutcome{Text: fmt.Sprintf("Invalid geometry: %v. Ask the customer to double-check the measurement.", err)}, nil
	}

	result, err := t.calc.Calculate(ctx, params)
	if err != nil {
		t.log.Error().Err(err).Msg("spoke calculation failed")
		return ToolOutcome{Text: "The spoke length calculator is unavailable right now. Apologize and suggest trying again shortly."}, nil
	}

	return ToolOutcome{Text: fmt.Sprintf(
		"Calculated Lengths: Left %.1fmm, Right %.1fmm. Recommend rounding to the nearest available spoke size.",
		result.Left, result.Right)}, nil
}
