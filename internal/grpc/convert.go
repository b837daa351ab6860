package grpc

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/valuation-server/internal/valuation"
)

// EvaluationView is the wire form of an unpersisted evaluation.
type EvaluationView struct {
	Result       valuation.ValuationResult             `json:"result"`
	Tier         valuation.Tier                        `json:"tier"`
	Shape        string                                `json:"shape"`
	ValueDrivers map[valuation.Driver]valuation.Grade `json:"value_drivers"`
}

func newEvaluationView(ev valuation.Evaluation) EvaluationView {
	return EvaluationView{
		Result:       ev.Result,
		Tier:         ev.Tier,
		Shape:        ev.Shape.String(),
		ValueDrivers: ev.ValueDrivers,
	}
}

// decodeInput converts a request document into a raw submission.
func decodeInput(doc *structpb.Struct) (valuation.RawAssessmentInput, error) {
	if doc == nil {
		return valuation.RawAssessmentInput{}, nil
	}
	data, err := protojson.Marshal(doc)
	if err != nil {
		return valuation.RawAssessmentInput{}, fmt.Errorf("%w: %v", valuation.ErrMalformedInput, err)
	}
	return valuation.ParseRawInput(data)
}

// encodeDocument converts any JSON-serialisable value into a Struct.
func encodeDocument(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return out, nil
}

// fingerprint is a stable hash of the coerced submission and the reference
// data version. Inputs that differ only in formatting or key order share a
// cache entry; a new multiples table never does.
func fingerprint(in valuation.RawAssessmentInput, refVersion string) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("fingerprint input: %w", err)
	}
	d := xxhash.New()
	_, _ = d.WriteString(refVersion)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(data)
	return fmt.Sprintf("%016x", d.Sum64()), nil
}
