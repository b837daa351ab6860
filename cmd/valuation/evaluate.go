package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/godilite/valuation-server/internal/app"
	"github.com/godilite/valuation-server/internal/valuation"
)

type evaluationOutput struct {
	Result       valuation.ValuationResult            `json:"result"`
	Tier         valuation.Tier                       `json:"tier"`
	Shape        string                               `json:"shape"`
	ValueDrivers map[valuation.Driver]valuation.Grade `json:"value_drivers"`
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a raw assessment document without storing it",
	Long: `Evaluate reads a JSON or HJSON assessment document and prints the
valuation result. Comments, unquoted keys and trailing commas are accepted.

Examples:
  valuation evaluate --input assessment.hjson
  cat assessment.json | valuation evaluate --input -`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().String("input", "-", `assessment document path, or "-" for stdin`)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("input")

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	in, err := parseDocument(data)
	if err != nil {
		return err
	}

	engine, err := app.NewEngine(cfg)
	if err != nil {
		return eris.Wrap(err, "load reference data")
	}

	ev, err := engine.Evaluate(in)
	if err != nil {
		return eris.Wrap(err, "evaluate")
	}

	return writeJSON(cmd.OutOrStdout(), evaluationOutput{
		Result:       ev.Result,
		Tier:         ev.Tier,
		Shape:        ev.Shape.String(),
		ValueDrivers: ev.ValueDrivers,
	})
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, eris.Wrap(err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// parseDocument accepts HJSON, a superset of JSON, and hands the canonical
// JSON form to the input parser.
func parseDocument(data []byte) (valuation.RawAssessmentInput, error) {
	var doc map[string]any
	if err := hjson.Unmarshal(data, &doc); err != nil {
		return valuation.RawAssessmentInput{}, fmt.Errorf("%w: %v", valuation.ErrMalformedInput, err)
	}
	canonical, err := json.Marshal(doc)
	if err != nil {
		return valuation.RawAssessmentInput{}, fmt.Errorf("%w: %v", valuation.ErrMalformedInput, err)
	}
	return valuation.ParseRawInput(canonical)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "write output")
	}
	return nil
}
