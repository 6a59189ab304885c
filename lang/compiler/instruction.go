package compiler

// Instruction is a resolved (address operands are concrete instruction
// indices) instruction: the form consumed by Encode and by the VM.
type Instruction interface {
	Opcode() Opcode
}

// PushIInsn pushes the integer n.
type PushIInsn struct{ N int32 }

// AddIInsn pops two integers and pushes their sum.
type AddIInsn struct{}

// FStopInsn halts execution with the single value left on the stack.
type FStopInsn struct{}

// PushCopyInsn clones the value at depth K from the top of the stack (depth
// 0 is the top before the clone is pushed) and pushes the clone.
type PushCopyInsn struct{ K uint16 }

// CallInsn pushes the return address and jumps to Addr.
type CallInsn struct{ Addr uint32 }

// RetInsn reads the InstructionPointer at offset IPOffset from the top,
// truncates the stack by Shrink, and jumps to that address.
type RetInsn struct {
	Shrink   uint16
	IPOffset uint16
}

// ResVInsn pushes N zero integers.
type ResVInsn struct{ N uint16 }

// PopCopyInsn pops the top value and writes it over the slot at offset K
// from the new top.
type PopCopyInsn struct{ K uint16 }

// GotoInsn unconditionally jumps to Addr.
type GotoInsn struct{ Addr uint32 }

// CondJmpInsn pops an integer and jumps to Neg, Null or Pos depending on
// its sign.
type CondJmpInsn struct {
	Neg, Null, Pos uint32
}

// NegInsn pops an integer and pushes its negation.
type NegInsn struct{}

// MulInsn pops two integers and pushes their product.
type MulInsn struct{}

// PopInsn drops N additional slots (on top of the one already implicitly
// consumed by the instructions that use Pop for cleanup).
type PopInsn struct{ N uint16 }

func (PushIInsn) Opcode() Opcode    { return PushI }
func (AddIInsn) Opcode() Opcode     { return AddI }
func (FStopInsn) Opcode() Opcode    { return FStop }
func (PushCopyInsn) Opcode() Opcode { return PushCopy }
func (CallInsn) Opcode() Opcode     { return Call }
func (RetInsn) Opcode() Opcode      { return Ret }
func (ResVInsn) Opcode() Opcode     { return ResV }
func (PopCopyInsn) Opcode() Opcode  { return PopCopy }
func (GotoInsn) Opcode() Opcode     { return Goto }
func (CondJmpInsn) Opcode() Opcode  { return CondJmp }
func (NegInsn) Opcode() Opcode      { return Neg }
func (MulInsn) Opcode() Opcode      { return Mul }
func (PopInsn) Opcode() Opcode      { return Pop }
