package lowering

import "github.com/mna/dyl/lang/compiler"

// UnresolvedInstruction is an instruction that may still carry symbolic
// label ids in place of concrete instruction addresses.
type UnresolvedInstruction interface {
	resolve(lc *LabelContext) (compiler.Instruction, error)
}

// resolvedInsn wraps an instruction that has no symbolic operand at all
// (every opcode except goto, cond_jmp and call).
type resolvedInsn struct{ insn compiler.Instruction }

func (r resolvedInsn) resolve(*LabelContext) (compiler.Instruction, error) { return r.insn, nil }

func emitted(insn compiler.Instruction) UnresolvedInstruction { return resolvedInsn{insn} }

type unresolvedGoto struct{ label uint32 }

func (u unresolvedGoto) resolve(lc *LabelContext) (compiler.Instruction, error) {
	addr, err := lc.Resolve(u.label)
	if err != nil {
		return nil, err
	}
	return compiler.GotoInsn{Addr: addr}, nil
}

type unresolvedCondJmp struct{ neg, null, pos uint32 }

func (u unresolvedCondJmp) resolve(lc *LabelContext) (compiler.Instruction, error) {
	neg, err := lc.Resolve(u.neg)
	if err != nil {
		return nil, err
	}
	null, err := lc.Resolve(u.null)
	if err != nil {
		return nil, err
	}
	pos, err := lc.Resolve(u.pos)
	if err != nil {
		return nil, err
	}
	return compiler.CondJmpInsn{Neg: neg, Null: null, Pos: pos}, nil
}

type unresolvedCall struct{ label uint32 }

func (u unresolvedCall) resolve(lc *LabelContext) (compiler.Instruction, error) {
	addr, err := lc.Resolve(u.label)
	if err != nil {
		return nil, err
	}
	return compiler.CallInsn{Addr: addr}, nil
}
