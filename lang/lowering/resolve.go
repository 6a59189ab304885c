package lowering

import "github.com/mna/dyl/lang/compiler"

// Resolve substitutes every symbolic label operand in insns for the
// concrete instruction address it was bound to, producing the
// instruction list lang/compiler's codec and lang/machine's interpreter
// operate on. It fails if any label used was never bound to a position.
func Resolve(ctx *Context, insns []UnresolvedInstruction) ([]compiler.Instruction, error) {
	out := make([]compiler.Instruction, len(insns))
	for i, u := range insns {
		insn, err := u.resolve(&ctx.Labels)
		if err != nil {
			return nil, err
		}
		out[i] = insn
	}
	return out, nil
}
