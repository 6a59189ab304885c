package compiler

import (
	"encoding/binary"
	"fmt"
)

// DecodingError reports why Decode could not produce an Instruction.
type DecodingError struct {
	// Opcode is the offending byte when Kind is unknown opcode; zero
	// otherwise.
	Opcode byte
	Kind   DecodingErrorKind
}

// DecodingErrorKind classifies a DecodingError.
type DecodingErrorKind int8

const (
	// UnknownOpcode means the leading byte does not name a valid Opcode.
	UnknownOpcode DecodingErrorKind = iota
	// UnexpectedEOF means fewer bytes were available than the opcode's
	// declared size requires.
	UnexpectedEOF
)

func (e *DecodingError) Error() string {
	switch e.Kind {
	case UnknownOpcode:
		return fmt.Sprintf("compiler: unknown opcode byte 0x%02x", e.Opcode)
	default:
		return "compiler: unexpected end of input"
	}
}

type decodeFunc func(operands []byte) Instruction

var decodeTable = [numOpcodes]decodeFunc{
	PushI:    func(b []byte) Instruction { return PushIInsn{N: int32(getU32(b))} },
	AddI:     func(b []byte) Instruction { return AddIInsn{} },
	FStop:    func(b []byte) Instruction { return FStopInsn{} },
	PushCopy: func(b []byte) Instruction { return PushCopyInsn{K: getU16(b)} },
	Call:     func(b []byte) Instruction { return CallInsn{Addr: getU32(b)} },
	Ret: func(b []byte) Instruction {
		return RetInsn{Shrink: getU16(b[0:2]), IPOffset: getU16(b[2:4])}
	},
	ResV:    func(b []byte) Instruction { return ResVInsn{N: getU16(b)} },
	PopCopy: func(b []byte) Instruction { return PopCopyInsn{K: getU16(b)} },
	Goto:    func(b []byte) Instruction { return GotoInsn{Addr: getU32(b)} },
	CondJmp: func(b []byte) Instruction {
		return CondJmpInsn{
			Neg:  getU32(b[0:4]),
			Null: getU32(b[4:8]),
			Pos:  getU32(b[8:12]),
		}
	},
	Neg: func(b []byte) Instruction { return NegInsn{} },
	Mul: func(b []byte) Instruction { return MulInsn{} },
	Pop: func(b []byte) Instruction { return PopInsn{N: getU16(b)} },
}

// Decode reads a single instruction from the front of b. It returns the
// decoded instruction, the number of bytes consumed, the remaining tail of
// b, and a non-nil *DecodingError if b does not hold a complete, valid
// instruction.
func Decode(b []byte) (Instruction, int, []byte, error) {
	if len(b) == 0 {
		return nil, 0, b, &DecodingError{Kind: UnexpectedEOF}
	}
	op := Opcode(b[0])
	if int(op) >= len(decodeTable) {
		return nil, 0, b, &DecodingError{Opcode: b[0], Kind: UnknownOpcode}
	}
	size := op.Size()
	if len(b) < size {
		return nil, 0, b, &DecodingError{Kind: UnexpectedEOF}
	}
	insn := decodeTable[op](b[1:size])
	return insn, size, b[size:], nil
}

// FromBytes decodes every instruction in b in sequence. It fails on the
// first malformed instruction or on trailing bytes that do not form a
// complete instruction, wrapping the DecodingError with the byte
// offset of the failing instruction so the caller can name it (e.g.
// "failed to read instruction at byte 0x004A: ...").
func FromBytes(b []byte) ([]Instruction, error) {
	var insns []Instruction
	var offset int
	for len(b) > 0 {
		insn, n, rest, err := Decode(b)
		if err != nil {
			return nil, fmt.Errorf("failed to read instruction at byte 0x%04X: %w", offset, err)
		}
		insns = append(insns, insn)
		b = rest
		offset += n
	}
	return insns, nil
}

// Encode appends insn's wire encoding to dst and returns the extended
// slice.
func Encode(insn Instruction, dst []byte) []byte {
	dst = append(dst, byte(insn.Opcode()))
	switch insn := insn.(type) {
	case PushIInsn:
		dst = putU32(dst, uint32(insn.N))
	case AddIInsn, FStopInsn, NegInsn, MulInsn:
		// opcode byte only
	case PushCopyInsn:
		dst = putU16(dst, insn.K)
	case CallInsn:
		dst = putU32(dst, insn.Addr)
	case RetInsn:
		dst = putU16(dst, insn.Shrink)
		dst = putU16(dst, insn.IPOffset)
	case ResVInsn:
		dst = putU16(dst, insn.N)
	case PopCopyInsn:
		dst = putU16(dst, insn.K)
	case GotoInsn:
		dst = putU32(dst, insn.Addr)
	case CondJmpInsn:
		dst = putU32(dst, insn.Neg)
		dst = putU32(dst, insn.Null)
		dst = putU32(dst, insn.Pos)
	case PopInsn:
		dst = putU16(dst, insn.N)
	default:
		panic(fmt.Sprintf("compiler: unhandled instruction type %T", insn))
	}
	return dst
}

// EncodeMultiple encodes insns in order into a single byte slice.
func EncodeMultiple(insns []Instruction) []byte {
	var dst []byte
	for _, insn := range insns {
		dst = Encode(insn, dst)
	}
	return dst
}

func getU16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func getU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

func putU16(dst []byte, v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return append(dst, buf[:]...)
}

func putU32(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}
