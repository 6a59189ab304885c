package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func TestOpcodeTableDensity(t *testing.T) {
	// The opcode space must be dense and contiguous starting at 0: every
	// value in [0, numOpcodes) names a real opcode, and opcodeNames,
	// opcodeSizes and decodeTable all have exactly numOpcodes entries.
	assert.Len(t, opcodeNames, int(numOpcodes))
	assert.Len(t, opcodeSizes, int(numOpcodes))
	assert.Len(t, decodeTable, int(numOpcodes))
	for op := Opcode(0); op < numOpcodes; op++ {
		assert.NotEmpty(t, opcodeNames[op])
		assert.NotZero(t, opcodeSizes[op])
		assert.NotNil(t, decodeTable[op])
	}
}

func TestEncode(t *testing.T) {
	cases := []struct {
		name string
		insn Instruction
		want []byte
	}{
		{"push_i", PushIInsn{N: 42}, []byte{0, 0, 0, 0, 42}},
		{"add_i", AddIInsn{}, []byte{1}},
		{"f_stop", FStopInsn{}, []byte{2}},
		{"push_copy", PushCopyInsn{K: 300}, []byte{3, 1, 44}},
		{"call", CallInsn{Addr: 247}, []byte{4, 0, 0, 0, 247}},
		{"ret", RetInsn{Shrink: 2, IPOffset: 4}, []byte{5, 0, 2, 0, 4}},
		{"res_v", ResVInsn{N: 22}, []byte{6, 0, 22}},
		{"pop_copy", PopCopyInsn{K: 32}, []byte{7, 0, 32}},
		{"goto", GotoInsn{Addr: 444}, []byte{8, 0, 0, 1, 188}},
		{"cond_jmp", CondJmpInsn{Neg: 101, Null: 69, Pos: 13}, []byte{9, 0, 0, 0, 101, 0, 0, 0, 69, 0, 0, 0, 13}},
		{"neg", NegInsn{}, []byte{10}},
		{"mul", MulInsn{}, []byte{11}},
		{"pop", PopInsn{N: 10}, []byte{12, 0, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode(tc.insn, nil)
			assert.True(t, slices.Equal(tc.want, got), "got %v, want %v", got, tc.want)
		})
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name  string
		bytes []byte
		want  Instruction
	}{
		{"push_i", []byte{0, 0, 0, 0, 42}, PushIInsn{N: 42}},
		{"add_i", []byte{1}, AddIInsn{}},
		{"f_stop", []byte{2}, FStopInsn{}},
		{"push_copy", []byte{3, 1, 44}, PushCopyInsn{K: 300}},
		{"call", []byte{4, 0, 0, 0, 247}, CallInsn{Addr: 247}},
		{"ret", []byte{5, 0, 2, 0, 4}, RetInsn{Shrink: 2, IPOffset: 4}},
		{"res_v", []byte{6, 0, 22}, ResVInsn{N: 22}},
		{"pop_copy", []byte{7, 0, 32}, PopCopyInsn{K: 32}},
		{"goto", []byte{8, 0, 0, 1, 188}, GotoInsn{Addr: 444}},
		{"cond_jmp", []byte{9, 0, 0, 0, 101, 0, 0, 0, 69, 0, 0, 0, 13}, CondJmpInsn{Neg: 101, Null: 69, Pos: 13}},
		{"neg", []byte{10}, NegInsn{}},
		{"mul", []byte{11}, MulInsn{}},
		{"pop", []byte{12, 0, 10}, PopInsn{N: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			insn, n, rest, err := Decode(tc.bytes)
			require.NoError(t, err)
			assert.Equal(t, tc.want, insn)
			assert.Equal(t, len(tc.bytes), n)
			assert.Empty(t, rest)
		})
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, _, _, err := Decode([]byte{200})
	require.Error(t, err)
	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, UnknownOpcode, decErr.Kind)
}

func TestDecodeUnexpectedEOF(t *testing.T) {
	_, _, _, err := Decode([]byte{9, 0, 0})
	require.Error(t, err)
	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, UnexpectedEOF, decErr.Kind)
}

func TestFromBytesAndEncodeMultiple(t *testing.T) {
	insns := []Instruction{
		PushIInsn{N: 40},
		PushIInsn{N: 2},
		AddIInsn{},
		FStopInsn{},
	}
	encoded := EncodeMultiple(insns)

	decoded, err := FromBytes(encoded)
	require.NoError(t, err)
	assert.Equal(t, insns, decoded)
}

func TestFromBytesTrailingGarbage(t *testing.T) {
	// byte 0 is a complete AddI (size 1); byte 1 (200) is not a valid
	// opcode, so the failure must be reported at offset 0x0001.
	_, err := FromBytes([]byte{1, 200})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0x0001")

	var decErr *DecodingError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, UnknownOpcode, decErr.Kind)
}

func TestRoundTripAllOpcodes(t *testing.T) {
	insns := []Instruction{
		PushIInsn{N: -7},
		AddIInsn{},
		FStopInsn{},
		PushCopyInsn{K: 9},
		CallInsn{Addr: 1010},
		RetInsn{Shrink: 100, IPOffset: 34},
		ResVInsn{N: 3},
		PopCopyInsn{K: 2},
		GotoInsn{Addr: 1337},
		CondJmpInsn{Neg: 1221, Null: 92, Pos: 218},
		NegInsn{},
		MulInsn{},
		PopInsn{N: 111},
	}
	for _, insn := range insns {
		encoded := Encode(insn, nil)
		decoded, n, rest, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, insn, decoded)
		assert.Equal(t, len(encoded), n)
		assert.Empty(t, rest)
	}
}
