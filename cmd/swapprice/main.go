package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/pricer"
)

// PricingInput defines the JSON input schema for forward swap valuation.
type PricingInput struct {
	TaskID string `json:"task_id,omitempty"`

	ValuationDate     string             `json:"valuation_date"`
	Curve             map[string]float64 `json:"curve"`
	DiscountCurve     map[string]float64 `json:"discount_curve,omitempty"`
	StartOffsetMonths int                `json:"start_offset_months"`
	MaturityYears     int                `json:"maturity_years"`
	FixedRate         float64            `json:"fixed_rate"`
	Notional          float64            `json:"notional"`
	FixedFrequency    int                `json:"fixed_frequency"`
	FloatFrequency    int                `json:"float_frequency"`
	FloatIndexMonths  int                `json:"float_index_months"`
	FixedSpreadBP     float64            `json:"fixed_spread_bp"`
	FloatMarginBP     float64            `json:"float_margin_bp"`
	ConvexityFixedBP  float64            `json:"convexity_fixed_bp"`
	ConvexityFloatBP  float64            `json:"convexity_float_bp"`
	UseOISDiscounting bool               `json:"use_ois_discounting"`
}

// PricingOutput defines the JSON output schema.
type PricingOutput struct {
	TaskID     string  `json:"task_id,omitempty"`
	SwapValue  float64 `json:"swap_value"`
	FixedLegPV float64 `json:"fixed_leg_pv"`
	FloatLegPV float64 `json:"float_leg_pv"`
	ParRate    float64 `json:"par_rate"`
	ParRatePct float64 `json:"par_rate_pct"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Error      string  `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (optional; if set, ignores stdin)")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		usage()
		return
	}

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			usage()
			os.Exit(2)
		}
	}

	inputBytes, err := readInput(path)
	if err != nil {
		writeError(fmt.Sprintf("failed to read input: %v", err))
		return
	}

	inputs, isArray, err := parseInputs(inputBytes)
	if err != nil {
		writeError(fmt.Sprintf("failed to parse JSON input: %v", err))
		return
	}

	hadError := false
	outputs := make([]PricingOutput, 0, len(inputs))
	for _, in := range inputs {
		out, err := priceSwap(in)
		if err != nil {
			hadError = true
			outputs = append(outputs, PricingOutput{
				TaskID: in.TaskID,
				Error:  err.Error(),
			})
			continue
		}
		outputs = append(outputs, *out)
	}

	if isArray {
		outputBytes, _ := json.Marshal(outputs)
		fmt.Println(string(outputBytes))
	} else {
		outputBytes, _ := json.Marshal(outputs[0])
		fmt.Println(string(outputBytes))
	}

	if hadError {
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  swapprice < input.json")
	fmt.Println("  swapprice -input /path/to/input.json")
	fmt.Println()
	fmt.Println("Read JSON input, value a forward starting interest rate swap, output JSON to stdout.")
	fmt.Println()
	fmt.Println("Example input:")
	fmt.Println(`  {`)
	fmt.Println(`    "valuation_date": "2026-08-21",`)
	fmt.Println(`    "start_offset_months": 12,`)
	fmt.Println(`    "maturity_years": 5,`)
	fmt.Println(`    "fixed_rate": 0.042,`)
	fmt.Println(`    "notional": 10000000,`)
	fmt.Println(`    "curve": {"1Y": 0.0395, "2Y": 0.0401, "5Y": 0.0428, ...}`)
	fmt.Println(`  }`)
	fmt.Println()
	fmt.Println("Rates are decimals (0.0428 == 4.28%). Omitted notional defaults to")
	fmt.Println("10,000,000 and leg frequencies default to semi-annual fixed against")
	fmt.Println("quarterly floating. Omitted valuation_date prices as of today.")
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]PricingInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}

	if trimmed[0] == '[' {
		var inputs []PricingInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}

	var input PricingInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []PricingInput{input}, false, nil
}

func writeError(msg string) {
	output := PricingOutput{Error: msg}
	outputBytes, _ := json.Marshal(output)
	fmt.Println(string(outputBytes))
	os.Exit(1)
}

func buildCurve(points map[string]float64) (*pricer.ZeroCurve, error) {
	rates := make(map[int]float64, len(points))
	for label, rate := range points {
		months, err := market.ParseTenor(label)
		if err != nil {
			return nil, fmt.Errorf("invalid curve tenor %q: %v", label, err)
		}
		rates[months] = rate
	}
	return pricer.NewZeroCurve(rates)
}

func priceSwap(input PricingInput) (*PricingOutput, error) {
	valuation := time.Now().UTC()
	if input.ValuationDate != "" {
		var err error
		valuation, err = time.Parse("2006-01-02", input.ValuationDate)
		if err != nil {
			return nil, fmt.Errorf("invalid valuation_date: %v", err)
		}
	}

	if len(input.Curve) == 0 {
		return nil, fmt.Errorf("curve is required")
	}
	projection, err := buildCurve(input.Curve)
	if err != nil {
		return nil, err
	}

	var discount *pricer.ZeroCurve
	if len(input.DiscountCurve) > 0 {
		discount, err = buildCurve(input.DiscountCurve)
		if err != nil {
			return nil, err
		}
	}

	notional := input.Notional
	if notional == 0 {
		notional = 10_000_000
	}
	fixedFreq := input.FixedFrequency
	if fixedFreq == 0 {
		fixedFreq = 2
	}
	floatFreq := input.FloatFrequency
	if floatFreq == 0 {
		floatFreq = 4
	}

	res, err := pricer.New(valuation).PriceForwardSwap(pricer.ForwardSwapParams{
		StartOffsetMonths: input.StartOffsetMonths,
		MaturityYears:     input.MaturityYears,
		FixedRate:         input.FixedRate,
		Notional:          notional,
		Projection:        projection,
		Discount:          discount,
		UseOISDiscounting: input.UseOISDiscounting,
		FixedFrequency:    fixedFreq,
		FloatFrequency:    floatFreq,
		FloatIndexMonths:  input.FloatIndexMonths,
		FixedSpreadBP:     input.FixedSpreadBP,
		FloatMarginBP:     input.FloatMarginBP,
		ConvexityFixedBP:  input.ConvexityFixedBP,
		ConvexityFloatBP:  input.ConvexityFloatBP,
	})
	if err != nil {
		return nil, err
	}

	return &PricingOutput{
		TaskID:     input.TaskID,
		SwapValue:  res.SwapValue,
		FixedLegPV: res.FixedLegPV,
		FloatLegPV: res.FloatLegPV,
		ParRate:    res.ParRate,
		ParRatePct: res.ParRatePercent,
		StartDate:  res.StartDate.Format("2006-01-02"),
		EndDate:    res.EndDate.Format("2006-01-02"),
	}, nil
}
