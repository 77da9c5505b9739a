package extractor

import (
	"fmt"

	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

// flagEncoding maps the two literal values of a Y/N field to booleans.
// Matching is exact and case-sensitive.
type flagEncoding struct {
	trueValue  string
	falseValue string
}

func (e flagEncoding) decode(value string) (bool, error) {
	switch value {
	case e.trueValue:
		return true, nil
	case e.falseValue:
		return false, nil
	}
	return false, fmt.Errorf("value %q is neither %q nor %q", value, e.trueValue, e.falseValue)
}

var (
	// enabledEncoding applies to hop <enabled> in both kinds.
	enabledEncoding = flagEncoding{trueValue: "Y", falseValue: "N"}

	// errorRuleEncoding applies to transformation <error><is_enabled>.
	errorRuleEncoding = flagEncoding{trueValue: "Y", falseValue: "N"}

	// evaluationEncoding applies to job hop <evaluation>; it is inverted:
	// an unconditional-failure hop ("N") is the error route.
	evaluationEncoding = flagEncoding{trueValue: "N", falseValue: "Y"}
)

// variant holds every tag-name decision for one document kind.
type variant struct {
	kind         kettle.Kind
	namePath     string // path from the root to the document name
	stepTag      string // searched at any depth
	hopContainer string
	hopTag       string

	// Transformation-only passes. Empty disables the pass.
	errorRulePath  string
	connectionTag  string
	errorRouteFrom string // hop field decoded through evaluationEncoding, job only
}

var variants = map[kettle.Kind]variant{
	kettle.KindTransformation: {
		kind:          kettle.KindTransformation,
		namePath:      "info/name",
		stepTag:       "step",
		hopContainer:  "order",
		hopTag:        "hop",
		errorRulePath: "step_error_handling/error",
		connectionTag: "connection",
	},
	kettle.KindJob: {
		kind:           kettle.KindJob,
		namePath:       "name",
		stepTag:        "entry",
		hopContainer:   "hops",
		hopTag:         "hop",
		errorRouteFrom: "evaluation",
	},
}

// variantFor selects the variant for a root tag. Tags match exactly.
func variantFor(rootTag string) (variant, bool) {
	kind, err := kettle.ParseKind(rootTag)
	if err != nil {
		return variant{}, false
	}
	v, ok := variants[kind]
	return v, ok
}
