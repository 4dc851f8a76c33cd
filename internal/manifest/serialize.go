package manifest

import (
	"fmt"
	"strings"
)

// continuation joins the lines of a multi-line instruction block. Every line
// of a block except the last carries it.
const continuation = " \\"

var header = strings.Join([]string{
	"#",
	"# NOTE: THIS DOCKERFILE IS GENERATED VIA \"docker-perseus\".",
	"#",
	"# PLEASE DO NOT EDIT IT DIRECTLY.",
	"#",
}, "\n")

// Serialize renders the manifest to Dockerfile text. The output is a pure
// function of the manifest: same stages in, same bytes out.
func Serialize(m *Manifest) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")

	for _, stage := range m.Stages {
		b.WriteString("\n")
		writeComment(&b, stage.Comment)
		fmt.Fprintf(&b, "FROM %s AS %s\n", stage.BaseRef, stage.Name)

		for _, ins := range stage.Instructions {
			b.WriteString("\n")
			writeInstruction(&b, ins)
		}
	}

	return b.String()
}

func writeComment(b *strings.Builder, comment string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(comment, "\n") {
		b.WriteString("# ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func writeInstruction(b *strings.Builder, ins Instruction) {
	writeComment(b, ins.Comment)

	switch ins.Kind {
	case KindArg, KindEnv, KindRun:
		writeBlock(b, ins.Kind.keyword(), ins.Args)
	case KindCopy, KindWorkdir:
		fmt.Fprintf(b, "%s %s\n", ins.Kind.keyword(), strings.Join(ins.Args, " "))
	case KindEntrypoint, KindCmd:
		fmt.Fprintf(b, "%s %s\n", ins.Kind.keyword(), execForm(ins.Args))
	}
}

// writeBlock renders a multi-entry instruction: the keyword on the first
// line, one tab-indented entry per following line, continuation markers on
// all but the last.
func writeBlock(b *strings.Builder, keyword string, args []string) {
	b.WriteString(keyword)
	b.WriteString(" ")
	b.WriteString(args[0])
	for _, arg := range args[1:] {
		b.WriteString(continuation)
		b.WriteString("\n\t")
		b.WriteString(arg)
	}
	b.WriteString("\n")
}

func execForm(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = `"` + arg + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
