package regfile

// IprId names an internal processor register reachable through
// HW_MFPR/HW_MTPR. Each IPR is modeled as a first-class entity with an
// explicit write hook rather than ad-hoc side effects scattered across
// execute units, per the Design Notes.
type IprId int

const (
	IprPalBase IprId = iota
	IprASN
	IprICTL
	IprPageTableBase
	IprSCBBase
	IprExcAddr
	IprFaultVA
	IprFEN
	IprIPL
	IprWHAMI
	IprASTEN
	IprASTSR
	IprSIRR
	IprCycleOffset
	IprITBTag
	IprITBPte
	IprDTBTag
	IprDTBPte
	IprTBIA
	IprTBIAP
	IprTBIS
)

// iprIndex maps the 16-bit selector field of HW_MFPR/HW_MTPR onto an
// IprId. The numbering follows the EV6 IPR index space shape (I-box
// registers low, M-box in the 0x2xx range) without reproducing every
// architectural slot, since only the registers the core models are
// reachable.
var iprIndex = map[uint32]IprId{
	0x100: IprITBTag,
	0x101: IprITBPte,
	0x106: IprExcAddr,
	0x109: IprPalBase,
	0x111: IprICTL,
	0x11B: IprIPL,
	0x200: IprDTBTag,
	0x201: IprDTBPte,
	0x203: IprFaultVA,
	0x20A: IprASN,
	0x20B: IprPageTableBase,
	0x20C: IprSCBBase,
	0x20D: IprWHAMI,
	0x20E: IprFEN,
	0x20F: IprCycleOffset,
	0x210: IprASTEN,
	0x211: IprASTSR,
	0x212: IprSIRR,
	0x213: IprTBIA,
	0x214: IprTBIAP,
	0x215: IprTBIS,
}

// IprFromIndex resolves a HW_MFPR/HW_MTPR selector to an IprId.
func IprFromIndex(index uint32) (IprId, bool) {
	id, ok := iprIndex[index]
	return id, ok
}

// WriteSideEffects describes what a CPU-external collaborator must do in
// response to an IPR write, since the register file itself cannot flush an
// I-cache or bump TLB epochs — those live in other packages. The caller
// (the pipeline, typically) inspects this value and invokes the relevant
// collaborator.
type WriteSideEffects struct {
	FlushICache    bool
	FlushNonGlobal bool // ASN change implicitly flushes non-global TLB entries
	MaybePostAST   bool

	// TBIA/TBIAP/TBIS write hooks: the pipeline applies the invalidation
	// to this CPU's TLBs and forwards a shootdown IPI to its peers.
	InvalidateTLBAll bool
	InvalidateTLBASN bool
	InvalidateTLBVA  bool
	InvalidateVA     uint64
	InvalidateASN    uint32

	// ITB/DTB fill: a write to *_PTE installs the staged tag+PTE pair
	// into the named TLB. The register file stages the tag; the pipeline
	// owns the TLBs and performs the install.
	InstallITB bool
	InstallDTB bool
	InstallVA  uint64
	InstallPTE uint64
}

// WriteIPR writes an IPR and returns the side effects the caller must
// apply. This centralizes the "IPR writes have significant side effects"
// behavior the Design Notes call out (PAL_BASE change flushes I-cache, ASN
// change flushes non-global TLB entries, ASTEN change may post an
// interrupt) instead of leaving it inline in the Integer ALU.
func (rf *RegisterFile) WriteIPR(id IprId, value uint64) WriteSideEffects {
	switch id {
	case IprPalBase:
		rf.cold.PalBase = value
		return WriteSideEffects{FlushICache: true}
	case IprASN:
		changed := rf.hot.ASN != uint32(value)
		old := rf.hot.ASN
		rf.hot.ASN = uint32(value)
		return WriteSideEffects{FlushNonGlobal: changed, InvalidateASN: old}
	case IprICTL:
		rf.cold.ICTL = value
		return WriteSideEffects{}
	case IprPageTableBase:
		rf.cold.PageTableBase = value
		return WriteSideEffects{}
	case IprSCBBase:
		rf.cold.SCBBase = value
		return WriteSideEffects{}
	case IprExcAddr:
		rf.cold.ExceptionAddr = value
		return WriteSideEffects{}
	case IprFaultVA:
		rf.cold.FaultVA = value
		return WriteSideEffects{}
	case IprFEN:
		rf.hot.FPEnabled = value&1 != 0
		return WriteSideEffects{}
	case IprIPL:
		rf.hot.IPL = uint8(value & 0x1F)
		return WriteSideEffects{}
	case IprASTEN:
		rf.cold.ASTEn = value
		return WriteSideEffects{MaybePostAST: true}
	case IprASTSR:
		rf.cold.ASTSr = value
		return WriteSideEffects{MaybePostAST: true}
	case IprSIRR:
		rf.cold.SIRR = value
		return WriteSideEffects{MaybePostAST: value != 0}
	case IprCycleOffset:
		rf.cold.CycleOffset = value
		return WriteSideEffects{}
	case IprITBTag:
		rf.cold.ITBTag = value
		return WriteSideEffects{}
	case IprITBPte:
		return WriteSideEffects{InstallITB: true, InstallVA: rf.cold.ITBTag, InstallPTE: value}
	case IprDTBTag:
		rf.cold.DTBTag = value
		return WriteSideEffects{}
	case IprDTBPte:
		return WriteSideEffects{InstallDTB: true, InstallVA: rf.cold.DTBTag, InstallPTE: value}
	case IprTBIA:
		return WriteSideEffects{InvalidateTLBAll: true}
	case IprTBIAP:
		return WriteSideEffects{InvalidateTLBASN: true, InvalidateASN: uint32(value)}
	case IprTBIS:
		return WriteSideEffects{InvalidateTLBVA: true, InvalidateVA: value}
	default:
		return WriteSideEffects{}
	}
}

// ReadIPR reads an IPR's current value.
func (rf *RegisterFile) ReadIPR(id IprId) uint64 {
	switch id {
	case IprPalBase:
		return rf.cold.PalBase
	case IprASN:
		return uint64(rf.hot.ASN)
	case IprICTL:
		return rf.cold.ICTL
	case IprPageTableBase:
		return rf.cold.PageTableBase
	case IprSCBBase:
		return rf.cold.SCBBase
	case IprExcAddr:
		return rf.cold.ExceptionAddr
	case IprFaultVA:
		return rf.cold.FaultVA
	case IprFEN:
		if rf.hot.FPEnabled {
			return 1
		}
		return 0
	case IprIPL:
		return uint64(rf.hot.IPL)
	case IprWHAMI:
		return rf.cold.WhoAmI
	case IprASTEN:
		return rf.cold.ASTEn
	case IprASTSR:
		return rf.cold.ASTSr
	case IprSIRR:
		return rf.cold.SIRR
	case IprCycleOffset:
		return rf.cold.CycleOffset
	case IprITBTag:
		return rf.cold.ITBTag
	case IprDTBTag:
		return rf.cold.DTBTag
	default:
		return 0
	}
}

// ICTLShadowEnabled reports whether the ICTL.SDE bit (bit 0, in this
// model) requests PAL shadow-register activation.
func (rf *RegisterFile) ICTLShadowEnabled() bool {
	return rf.cold.ICTL&1 != 0
}
