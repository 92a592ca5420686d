package document

import (
	"bytes"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"
)

// InstructionKind is the upper-case keyword of a build instruction, collapsed
// to Other for keywords that never carry a script or change shell state.
type InstructionKind string

const (
	From        InstructionKind = "FROM"
	Shell       InstructionKind = "SHELL"
	Run         InstructionKind = "RUN"
	Cmd         InstructionKind = "CMD"
	Entrypoint  InstructionKind = "ENTRYPOINT"
	Healthcheck InstructionKind = "HEALTHCHECK"
	Other       InstructionKind = "OTHER"
)

// Heredoc is a here-document attached to an instruction.
type Heredoc struct {
	Name    string
	Content string
}

// Instruction is one build instruction.
type Instruction struct {
	Index   int
	Kind    InstructionKind
	Keyword string
	Line    int

	// Args holds the JSON array elements for exec form, or the single
	// unparsed command string for shell form.
	Args     []string
	JSONForm bool
	Flags    []string
	Heredocs []Heredoc

	// Sub is the nested `CMD` of a HEALTHCHECK.
	Sub *Instruction
}

// Text returns the shell-form command text.
func (i Instruction) Text() string {
	return strings.Join(i.Args, " ")
}

func instructionKind(keyword string) InstructionKind {
	switch k := InstructionKind(strings.ToUpper(keyword)); k {
	case From, Shell, Run, Cmd, Entrypoint, Healthcheck:
		return k
	}
	return Other
}

func parseDockerfile(data []byte) ([]Instruction, error) {
	result, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	instructions := make([]Instruction, 0, len(result.AST.Children))
	for i, node := range result.AST.Children {
		instructions = append(instructions, fromParserNode(i, node))
	}
	return instructions, nil
}

func fromParserNode(index int, node *parser.Node) Instruction {
	inst := Instruction{
		Index:    index,
		Kind:     instructionKind(node.Value),
		Keyword:  strings.ToUpper(node.Value),
		Line:     node.StartLine,
		JSONForm: node.Attributes["json"],
		Flags:    node.Flags,
	}

	if inst.Kind == Healthcheck {
		// The parser nests the check type (CMD or NONE) as the first argument
		// and the command after it; the JSON attribute belongs to the command.
		if node.Next != nil {
			sub := Instruction{
				Index:    index,
				Kind:     instructionKind(node.Next.Value),
				Keyword:  strings.ToUpper(node.Next.Value),
				Line:     node.StartLine,
				JSONForm: inst.JSONForm,
				Args:     nodeValues(node.Next.Next),
			}
			inst.Sub = &sub
			inst.Args = []string{sub.Keyword}
			inst.JSONForm = false
		}
		return inst
	}

	inst.Args = nodeValues(node.Next)
	for _, h := range node.Heredocs {
		inst.Heredocs = append(inst.Heredocs, Heredoc{Name: h.Name, Content: h.Content})
	}
	return inst
}

func nodeValues(n *parser.Node) []string {
	var values []string
	for ; n != nil; n = n.Next {
		values = append(values, n.Value)
	}
	return values
}
