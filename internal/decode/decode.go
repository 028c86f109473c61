// Package decode implements the Fetch/Decode Unit: PC management,
// bit-slicing of the 32-bit instruction word, and the PC-indexed/PA-indexed
// decode caches.
//
// The bit-slicing helpers here generalize the teacher's DecodeOpcode/
// DecodeRA/DecodeRB/DecodeRC functions (pkg/vm/vm.go) from the RiSC-32
// 5-bit-register encoding to the Alpha 32-bit instruction formats.
package decode

import "github.com/alphacore/ev6/internal/grain"

// Instruction bit-slicing helpers, Alpha AXP encodings.

func Opcode(raw uint32) uint32 { return (raw >> 26) & 0x3F }
func Ra(raw uint32) uint32     { return (raw >> 21) & 0x1F }
func Rb(raw uint32) uint32     { return (raw >> 16) & 0x1F }
func Rc(raw uint32) uint32     { return raw & 0x1F }
func Function(raw uint32) uint32 { return (raw >> 5) & 0x7F }

// HasLiteral reports whether an Operate-format instruction uses an 8-bit
// literal (bit 12 set) instead of Rb.
func HasLiteral(raw uint32) bool { return raw&(1<<12) != 0 }

// Literal extracts the 8-bit zero-extended literal from bits [20:13].
func Literal(raw uint32) uint64 { return uint64((raw >> 13) & 0xFF) }

// MemDisp extracts the signed 16-bit memory-format displacement.
func MemDisp(raw uint32) int64 {
	return signExtend(uint64(raw&0xFFFF), 16)
}

// BranchDisp extracts the signed 21-bit branch-format displacement.
func BranchDisp(raw uint32) int64 {
	return signExtend(uint64(raw&0x1FFFFF), 21)
}

// PalFunction extracts the 26-bit CALL_PAL function code.
func PalFunction(raw uint32) uint32 { return raw & 0x3FFFFFF }

// HwDisp extracts the signed 12-bit displacement of the PAL-reserved
// HW_LD/HW_ST opcodes (the upper displacement bits carry access-mode
// qualifiers on real hardware).
func HwDisp(raw uint32) int64 {
	return signExtend(uint64(raw&0xFFF), 12)
}

// IprIndex extracts the 16-bit IPR selector of HW_MFPR/HW_MTPR.
func IprIndex(raw uint32) uint32 { return raw & 0xFFFF }

func signExtend(v uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(v<<shift) >> shift
}

// SemanticFlags mirrors the bitfield spec.md §3 describes on
// DecodedInstruction.
type SemanticFlags uint16

const (
	FlagIsBranch SemanticFlags = 1 << iota
	FlagIsMemory
	FlagWritesRegister
	FlagHasLiteral
	FlagIsCallPal
	FlagOverflowTrapEnabled
)

// Instruction is the fingerprint of one instruction after decode.
type Instruction struct {
	VA, PA   uint64
	Ra, Rb, Rc uint32
	Literal  uint64
	HasLit   bool
	BranchDisp int64
	MemDisp    int64
	Grain    grain.GrainId
	Flags    SemanticFlags
	Raw      uint32
}

// Decode builds an Instruction fingerprint from a raw word and its
// resolved grain id; the caller (Fetch/Decode Unit) is responsible for
// grain resolution since it alone holds the registry reference.
func Decode(raw uint32, va, pa uint64, id grain.GrainId, g *grain.Grain) Instruction {
	ins := Instruction{
		VA: va, PA: pa,
		Ra: Ra(raw), Rb: Rb(raw), Rc: Rc(raw),
		Grain: id,
		Raw:   raw,
	}
	switch g.Format {
	case grain.FormatOperate:
		if HasLiteral(raw) {
			ins.HasLit = true
			ins.Literal = Literal(raw)
			ins.Flags |= FlagHasLiteral
		}
		ins.Flags |= FlagWritesRegister
	case grain.FormatMemory:
		if raw>>26 == grain.OpcodeHWLD || raw>>26 == grain.OpcodeHWST {
			ins.MemDisp = HwDisp(raw)
		} else {
			ins.MemDisp = MemDisp(raw)
		}
		ins.Flags |= FlagIsMemory
	case grain.FormatBranch:
		ins.BranchDisp = BranchDisp(raw)
		ins.Flags |= FlagIsBranch
	case grain.FormatPAL:
		ins.Flags |= FlagIsCallPal
	}
	if isOverflowTrapVariant(g.Mnemonic) {
		ins.Flags |= FlagOverflowTrapEnabled
	}
	return ins
}

func isOverflowTrapVariant(mnemonic string) bool {
	n := len(mnemonic)
	return n >= 2 && mnemonic[n-2:] == "/V"
}
