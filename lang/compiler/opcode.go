// Package compiler implements the dyl instruction set and its big-endian
// wire codec: a closed set of 13 opcodes, each with a stable numeric ID, a
// fixed wire size, and total Encode/Decode operations.
package compiler

import "fmt"

// Opcode identifies an instruction kind. The numeric value is the first
// byte of the instruction's wire encoding and indexes directly into
// opcodeNames, opcodeSizes and decodeTable: the three arrays must stay in
// lockstep, which TestOpcodeTableDensity in codec_test.go asserts.
type Opcode uint8

const (
	PushI Opcode = iota
	AddI
	FStop
	PushCopy
	Call
	Ret
	ResV
	PopCopy
	Goto
	CondJmp
	Neg
	Mul
	Pop

	numOpcodes
)

// opcodeNames holds each opcode's display name, as returned by String.
var opcodeNames = [numOpcodes]string{
	PushI:    "push_i",
	AddI:     "add_i",
	FStop:    "f_stop",
	PushCopy: "push_copy",
	Call:     "call",
	Ret:      "ret",
	ResV:     "res_v",
	PopCopy:  "pop_copy",
	Goto:     "goto",
	CondJmp:  "cond_jmp",
	Neg:      "neg",
	Mul:      "mul",
	Pop:      "pop",
}

// opcodeSizes holds each opcode's total wire size in bytes (opcode byte
// included).
var opcodeSizes = [numOpcodes]int{
	PushI:    5,
	AddI:     1,
	FStop:    1,
	PushCopy: 3,
	Call:     5,
	Ret:      5,
	ResV:     3,
	PopCopy:  3,
	Goto:     5,
	CondJmp:  13,
	Neg:      1,
	Mul:      1,
	Pop:      3,
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", uint8(op))
}

// Size returns op's total wire size in bytes, or 0 if op is not a valid
// opcode.
func (op Opcode) Size() int {
	if int(op) < len(opcodeSizes) {
		return opcodeSizes[op]
	}
	return 0
}
