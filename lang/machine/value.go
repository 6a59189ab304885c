package machine

import "fmt"

// Value is a runtime value that lives on the interpreter's operand
// stack. It is a closed, two-variant union: an Integer holds a program
// result or an arithmetic operand; an InstructionPointer holds a
// return address pushed by `call` and consumed by `ret`. The two never
// convert into one another; an opcode that expects one and finds the
// other is a TypeMismatch.
type Value interface {
	fmt.Stringer
	kind() ValueKind
}

// ValueKind names a Value's runtime type, used to report a
// TypeMismatch error without reflection.
type ValueKind uint8

const (
	IntegerKind ValueKind = iota
	InstructionPointerKind
)

func (k ValueKind) String() string {
	switch k {
	case IntegerKind:
		return "integer"
	case InstructionPointerKind:
		return "instruction pointer"
	default:
		return fmt.Sprintf("illegal value kind (%d)", uint8(k))
	}
}

// Integer is a signed 32-bit program value: the operand and result
// type of push_i, add_i, neg, mul and cond_jmp, and the value left on
// the stack when f_stop halts the machine.
type Integer int32

func (i Integer) String() string  { return fmt.Sprintf("%d", int32(i)) }
func (i Integer) kind() ValueKind { return IntegerKind }

// InstructionPointer is a return address, as pushed by `call` and read
// back by `ret`. It is never a valid operand to add_i, mul, neg or
// cond_jmp.
type InstructionPointer uint32

func (ip InstructionPointer) String() string  { return fmt.Sprintf("*%d*", uint32(ip)) }
func (ip InstructionPointer) kind() ValueKind { return InstructionPointerKind }

// asInteger narrows v to Integer, returning a TypeMismatch
// RuntimeError attributed to pc otherwise.
func asInteger(pc uint32, v Value) (Integer, error) {
	i, ok := v.(Integer)
	if !ok {
		return 0, &RuntimeError{Kind: RuntimeTypeMismatch, PC: pc, Expected: IntegerKind, Found: v}
	}
	return i, nil
}

// asInstructionPointer narrows v to InstructionPointer, returning a
// TypeMismatch RuntimeError attributed to pc otherwise.
func asInstructionPointer(pc uint32, v Value) (InstructionPointer, error) {
	ip, ok := v.(InstructionPointer)
	if !ok {
		return 0, &RuntimeError{Kind: RuntimeTypeMismatch, PC: pc, Expected: InstructionPointerKind, Found: v}
	}
	return ip, nil
}
