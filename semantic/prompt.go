package semantic

import (
	"fmt"
	"slices"

	"github.com/ezrec/lpu/isa"
)

// Operation is the micro-prompt and response strategy of a semantic opcode.
type Operation struct {
	Template string   // Sprintf template, operands as %[1]s and %[2]s.
	Strategy Strategy // Response strategy.
	Labels   []string // Upper case answers judged true.
}

// Operations maps each semantic opcode to its micro-prompt.
var Operations = map[isa.Opcode]Operation{
	isa.OP_MOR: {
		Template: "Transform it into the following format:\n%[1]s\n\nTransformed Output:",
	},
	isa.OP_PRJ: {
		Template: "Project how it might evolve based on this direction or trend:\n%[1]s\n\nProjected Output:",
	},
	isa.OP_DST: {
		Template: "Distill it down following the goal or criteria:\n%[1]s\n\nDistilled Result:",
	},
	isa.OP_COR: {
		Template: "Find the correlation with:\n%[1]s\n\nRelational Analysis:",
	},
	isa.OP_AUD: {
		Template: "Does it comply with:\n%[1]s\n\nYES/NO:",
		Strategy: STRATEGY_JUDGE,
		Labels:   []string{"YES"},
	},
	isa.OP_HAL: {
		Template: "Does \"%[1]s\" ring true with reality, or is it a hollow hallucination? Answer REAL or HOLLOW.",
		Strategy: STRATEGY_JUDGE,
		Labels:   []string{"REAL"},
	},
	isa.OP_SIM: {
		Strategy: STRATEGY_EMBED,
	},
	isa.OP_EQV: {
		Template: "Relation: \"%[1]s\" vs \"%[2]s\". Label: [IDENTICAL, SYNONYMOUS, RELATED, DISPARATE]. Result:",
		Strategy: STRATEGY_JUDGE,
		Labels:   []string{"IDENTICAL", "SYNONYMOUS", "RELATED"},
	},
	isa.OP_INT: {
		Template: "Does the hidden intent behind \"%[1]s\" align with the goal of \"%[2]s\"? Answer TRUE or FALSE.",
		Strategy: STRATEGY_JUDGE,
		Labels:   []string{"TRUE"},
	},
	isa.OP_INF: {
		Template: "Identify the pattern, sequence, or narrative trajectory in \"%[1]s\". Project this trajectory forward by the amount specified in \"%[2]s\".",
	},
	isa.OP_ADT: {
		Template: "Hold the data in \"%[1]s\" against the criteria \"%[2]s\". List any fractures where the data fails to comply.",
	},
	isa.OP_ADD: {
		Template: "Merge the essence, attributes, and presence of \"%[1]s\" and \"%[2]s\" into a single form.",
	},
	isa.OP_SUB: {
		Template: "Strip the essence, attributes, and presence of \"%[2]s\" away from \"%[1]s\", leaving only the remainder.",
	},
	isa.OP_MUL: {
		Template: "Magnify the intensity, scale, and influence of \"%[1]s\" using the defining traits of \"%[2]s\".",
	},
	isa.OP_DIV: {
		Template: "Deconstruct the complex concept \"%[1]s\" into the specific units of \"%[2]s\". List only the resulting components.",
	},
}

// NewRequest renders the micro-prompt of a semantic opcode.
func NewRequest(op isa.Opcode, messages []isa.Message, operands ...string) (req Request, err error) {
	operation, ok := Operations[op]
	if !ok {
		err = ErrNotSemantic
		return
	}

	info, _ := op.Info()
	if len(operands) != len(info.Operands)-1 {
		err = ErrOperandCount
		return
	}

	req = Request{
		Operation: op,
		Messages:  slices.Clone(messages),
		Operands:  slices.Clone(operands),
		Strategy:  operation.Strategy,
		Labels:    operation.Labels,
	}

	if len(operation.Template) != 0 {
		args := make([]any, len(operands))
		for n, operand := range operands {
			args[n] = operand
		}
		req.Prompt = fmt.Sprintf(operation.Template, args...)
	}

	return
}
