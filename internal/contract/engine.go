package contract

import (
	"encoding/json"
	"log/slog"
)

// Interpretation paths, recorded on Result.Path for operational visibility.
const (
	PathDirect   = "direct"
	PathRepaired = "repaired"
	PathFallback = "fallback"
)

// Result is the outcome of interpreting one completion. Every interpretation
// produces a value; UsedFallback distinguishes salvaged payloads from the
// deterministic placeholder.
type Result struct {
	Raw          json.RawMessage
	UsedFallback bool
	Path         string
	Reason       string
}

// Decode unmarshals the interpreted payload into out.
func (r Result) Decode(out any) error {
	return json.Unmarshal(r.Raw, out)
}

// Engine orchestrates extraction, parsing, repair, and validation of model
// completions. Malformed input is an expected, common case: Interpret never
// returns an error, it terminates in either the parsed value or the shape's
// fallback.
type Engine struct {
	repairer  Repairer
	validator *Validator
	logger    *slog.Logger
}

// NewEngine builds an Engine around the given validator and repair budget.
func NewEngine(validator *Validator, repairer Repairer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		repairer:  repairer,
		validator: validator,
		logger:    logger,
	}
}

// Interpret extracts the JSON payload from a raw completion, repairs it if it
// does not parse, validates it against shape, and falls back to the shape's
// deterministic placeholder when any step cannot be satisfied.
func (e *Engine) Interpret(raw string, shape Shape) Result {
	candidate, found := Extract(raw, shape.Kind)
	if !found {
		e.logger.Warn("no JSON payload in completion", "shape", shape.Kind.String())
		return e.fallback(shape, "no "+shape.Kind.String()+" found in completion")
	}

	path := PathDirect
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		repaired := e.repairer.Repair(candidate, shape.Kind)
		if err := json.Unmarshal([]byte(repaired), &value); err != nil {
			e.logger.Warn("completion unparseable after repair", "error", err)
			return e.fallback(shape, "unparseable after repair")
		}
		candidate = repaired
		path = PathRepaired
	}

	if err := e.validator.Validate(value, shape); err != nil {
		// Well-formed JSON that violates the schema means the model
		// ignored its instructions; log louder than a parse failure.
		e.logger.Warn("completion failed schema validation", "error", err, "path", path)
		return e.fallback(shape, "schema validation failed: "+err.Error())
	}

	e.logger.Debug("completion interpreted", "path", path)
	return Result{Raw: json.RawMessage(candidate), Path: path}
}

func (e *Engine) fallback(shape Shape, reason string) Result {
	raw, err := json.Marshal(shape.Fallback)
	if err != nil {
		// Fallback values are built from plain structs; this only fires
		// on a programming error.
		e.logger.Error("marshal fallback value", "error", err)
		raw = []byte("null")
	}
	return Result{Raw: raw, UsedFallback: true, Path: PathFallback, Reason: reason}
}
