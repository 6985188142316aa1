// Package readiness compares what a machine has against what a project
// needs. Evaluation is pure: identical measurements and requirements
// always produce identical verdicts, emitted in canonical resource kind
// order regardless of probe completion order.
package readiness

import (
	"fmt"
	"time"

	"github.com/jamesainslie/canrun/pkg/canrun/types"
)

// Evaluate produces one verdict per resource kind, in canonical order.
//
// A kind with no requirement is OK no matter what its probe returned. A
// kind whose requirement cannot be checked because the probe failed or
// never ran degrades to unknown. Otherwise available is compared against
// the required and recommended thresholds. The recommended bound is
// inclusive: a machine sitting exactly at it still warns.
func Evaluate(
	measurements map[types.ResourceKind]types.Measurement,
	requirements map[types.ResourceKind]types.Requirement,
) []types.Verdict {
	kinds := types.Kinds()
	verdicts := make([]types.Verdict, 0, len(kinds))
	for _, kind := range kinds {
		m, probed := measurements[kind]
		req, demanded := requirements[kind]
		verdicts = append(verdicts, verdict(kind, m, probed && m.OK(), req, demanded))
	}
	return verdicts
}

func verdict(kind types.ResourceKind, m types.Measurement, measured bool, req types.Requirement, demanded bool) types.Verdict {
	v := types.Verdict{
		Kind:     kind,
		Status:   types.StatusOK,
		Measured: measured,
	}
	if measured {
		v.Available = m.Available
	}
	if !demanded {
		return v
	}

	v.Required = req.Required
	v.Recommended = req.Recommended

	if !measured {
		v.Status = types.StatusUnknown
		if m.Err != "" {
			v.Message = "cannot verify: " + m.Err
		} else {
			v.Message = "cannot verify: no measurement"
		}
		return v
	}

	switch {
	case v.Available < req.Required:
		v.Status = types.StatusFail
		v.Message = fmt.Sprintf("short by %s", types.FormatQuantity(kind, req.Required-v.Available))
	case req.Recommended > 0 && v.Available <= req.Recommended:
		v.Status = types.StatusWarning
		v.Message = fmt.Sprintf("at or below the recommended %s",
			types.FormatQuantity(kind, req.Recommended))
	}
	return v
}

// Assemble builds the final report from verdicts. Ready is true iff no
// verdict failed; warning and unknown verdicts surface as warning lines
// without blocking readiness. When the machine is not ready, Suggestion
// names the first failing kind and its shortfall.
func Assemble(verdicts []types.Verdict, platform types.PlatformInfo, elapsed time.Duration) types.Report {
	report := types.Report{
		Verdicts:    verdicts,
		Ready:       true,
		Platform:    platform,
		GeneratedAt: time.Now().UTC(),
		Elapsed:     elapsed,
	}

	for _, v := range verdicts {
		switch v.Status {
		case types.StatusFail:
			report.Ready = false
		case types.StatusWarning, types.StatusUnknown:
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %s", v.Kind.Label(), v.Message))
		}
	}

	if !report.Ready {
		report.Suggestion = suggestion(verdicts)
	}
	return report
}

// suggestion describes the first failing verdict in canonical order.
func suggestion(verdicts []types.Verdict) string {
	for _, v := range verdicts {
		if v.Status != types.StatusFail {
			continue
		}
		return fmt.Sprintf("needs %s more %s (%s available, %s required)",
			types.FormatQuantity(v.Kind, v.Required-v.Available),
			v.Kind.Label(),
			types.FormatQuantity(v.Kind, v.Available),
			types.FormatQuantity(v.Kind, v.Required))
	}
	return ""
}
