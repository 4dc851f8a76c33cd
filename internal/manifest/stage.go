// Package manifest turns a resolved dependency set into an ordered sequence
// of build stages and renders them as Dockerfile text. Generation and
// serialization are pure transformations of the set; nothing here performs
// I/O.
package manifest

import (
	"fmt"
	"strings"

	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

// Kind is the instruction type of one stage record.
type Kind int

const (
	KindArg Kind = iota
	KindEnv
	KindRun
	KindCopy
	KindWorkdir
	KindEntrypoint
	KindCmd
)

func (k Kind) keyword() string {
	switch k {
	case KindArg:
		return "ARG"
	case KindEnv:
		return "ENV"
	case KindRun:
		return "RUN"
	case KindCopy:
		return "COPY"
	case KindWorkdir:
		return "WORKDIR"
	case KindEntrypoint:
		return "ENTRYPOINT"
	case KindCmd:
		return "CMD"
	}
	return ""
}

// Instruction is one typed record inside a stage. For the block kinds
// (arg, env, run) Args holds one entry per output line and the serializer
// applies the continuation convention; for the single-line kinds Args holds
// the instruction operands.
type Instruction struct {
	Kind Kind
	// Comment is rendered as '#'-prefixed lines above the instruction.
	// Embedded newlines split into multiple comment lines.
	Comment string
	Args    []string
}

// Stage is one logical phase of the manifest.
type Stage struct {
	Name string
	// BaseRef is a prior stage name or an external image reference
	// (distinguished by the ':' of an image tag).
	BaseRef      string
	Comment      string
	Instructions []Instruction
}

// Manifest is the ordered stage sequence plus the dependency set that
// parameterized it. It is never mutated after serialization.
type Manifest struct {
	Stages []Stage
	Set    *resolve.Set
}

// Validate checks the structural invariants the serializer relies on: every
// stage bases on an external image or a previously declared stage, every
// copy --from references a declared stage, and every block instruction has
// at least one entry.
func (m *Manifest) Validate() error {
	declared := make(map[string]bool)

	for _, stage := range m.Stages {
		if stage.Name == "" {
			return fmt.Errorf("manifest stage with empty name")
		}
		if !strings.Contains(stage.BaseRef, ":") && !declared[stage.BaseRef] {
			return fmt.Errorf("stage %q references undeclared base %q", stage.Name, stage.BaseRef)
		}

		for _, ins := range stage.Instructions {
			if len(ins.Args) == 0 {
				return fmt.Errorf("stage %q has an empty %s instruction", stage.Name, ins.Kind.keyword())
			}
			if ins.Kind == KindCopy {
				if from, ok := copySourceStage(ins); ok && !declared[from] {
					return fmt.Errorf("stage %q copies from undeclared stage %q", stage.Name, from)
				}
			}
		}

		declared[stage.Name] = true
	}

	return nil
}

func copySourceStage(ins Instruction) (string, bool) {
	for _, arg := range ins.Args {
		if rest, ok := strings.CutPrefix(arg, "--from="); ok {
			return rest, true
		}
	}
	return "", false
}
