package execute

import (
	"github.com/alphacore/ev6/internal/decode"
	"github.com/alphacore/ev6/internal/grain"
	"github.com/alphacore/ev6/internal/regfile"
)

// PalFunctionHalt is the CALL_PAL function code reserved for HALT, the
// Alpha SRM convention of function 0x0000 requesting a processor halt
// rather than an ordinary PALcode entry.
const PalFunctionHalt uint32 = 0x0000

// PalFunctionIMB is the unprivileged instruction-memory-barrier CALL_PAL.
// The decode caches live in the emulator, not in guest-visible state, so
// IMB is completed in the core itself instead of vectoring into PALcode
// that could not reach them.
const PalFunctionIMB uint32 = 0x0086

// Predictor is a simple 2-bit saturating-counter branch predictor keyed by
// VA, giving the Branch/Control Unit somewhere to update history and a
// target cache, per spec.md §4.3.4.
type Predictor struct {
	history map[uint64]uint8 // 2-bit saturating counter per branch VA
	targets map[uint64]uint64
}

// NewPredictor constructs an empty predictor.
func NewPredictor() *Predictor {
	return &Predictor{history: make(map[uint64]uint8), targets: make(map[uint64]uint64)}
}

// Predict reports whether the branch at va is predicted taken.
func (p *Predictor) Predict(va uint64) bool {
	return p.history[va] >= 2
}

// PredictedTarget returns the last-known target for the branch at va.
func (p *Predictor) PredictedTarget(va uint64) (uint64, bool) {
	t, ok := p.targets[va]
	return t, ok
}

// Update adjusts the saturating counter and target cache after resolution.
func (p *Predictor) Update(va uint64, taken bool, target uint64) {
	c := p.history[va]
	if taken {
		if c < 3 {
			c++
		}
		p.targets[va] = target
	} else if c > 0 {
		c--
	}
	p.history[va] = c
}

// BranchUnit executes Branch-format instructions and CALL_PAL/JMP-family
// control transfers.
type BranchUnit struct {
	Registry  *grain.Registry
	Predictor *Predictor
}

// Execute dispatches a Branch-format slot. predictedTaken
// is what the pipeline's fetch stage already assumed when it continued
// fetching; a mismatch with the resolved outcome yields a misprediction
// flush.
func (u *BranchUnit) Execute(rf *regfile.RegisterFile, ins decode.Instruction, predictedTaken bool) BoxResult {
	g := u.Registry.Grain(ins.Grain)
	nextSeq := ins.VA + 4

	if g.Mnemonic == "CALL_PAL" {
		fn := decode.PalFunction(ins.Raw)
		switch fn {
		case PalFunctionHalt:
			return BoxResult{}.WithHalt()
		case PalFunctionIMB:
			return BoxResult{}.WithDecodeInvalidate()
		}
		return BoxResult{}.WithEnterPAL(fn)
	}

	if g.Mnemonic == "REI" {
		return BoxResult{}.WithREI()
	}

	if isJumpFamily(g.Mnemonic) {
		// JMP, JSR, RET, and JSR_COROUTINE share identical datapath
		// behavior (jump to Rb&^3, link Ra to the following instruction);
		// the architecture distinguishes them only for the branch
		// predictor's return-address stack and trace/disassembly, neither
		// of which this interpreter implements.
		target := rf.Read(ins.Rb) &^ 3
		result := BoxResult{}.WithWriteback(ins.Ra, nextSeq)
		u.Predictor.Update(ins.VA, true, target)
		if target != nextSeq {
			return result.WithMispredict(target)
		}
		return result
	}

	if g.Mnemonic == "BR" {
		target := uint64(int64(nextSeq) + ins.BranchDisp*4)
		u.Predictor.Update(ins.VA, true, target)
		return BoxResult{}.WithRedirect(target)
	}

	if g.Mnemonic == "BSR" {
		target := uint64(int64(nextSeq) + ins.BranchDisp*4)
		u.Predictor.Update(ins.VA, true, target)
		return BoxResult{}.WithWriteback(ins.Ra, nextSeq).WithRedirect(target)
	}

	// conditional branches keyed off Ra's value: integer predicates read
	// the R file, the FB* predicates read Fa and test the sign/zero shape
	// of its bit pattern (so -0.0 compares equal to zero without pulling
	// IEEE compare semantics into the control path).
	var taken bool
	if isFloatBranch(g.Mnemonic) {
		taken = evaluateFloatPredicate(g.Mnemonic, rf.ReadFloat(ins.Ra))
	} else {
		taken = evaluatePredicate(g.Mnemonic, rf.Read(ins.Ra))
	}
	target := uint64(int64(nextSeq) + ins.BranchDisp*4)
	u.Predictor.Update(ins.VA, taken, target)

	if taken == predictedTaken {
		if taken {
			return BoxResult{}.WithRedirect(target)
		}
		return BoxResult{}
	}
	if taken {
		return BoxResult{}.WithMispredict(target)
	}
	return BoxResult{}.WithMispredict(nextSeq)
}

func isJumpFamily(mnemonic string) bool {
	switch mnemonic {
	case "JMP", "JSR", "RET", "JSR_COROUTINE":
		return true
	default:
		return false
	}
}

func evaluatePredicate(mnemonic string, ra uint64) bool {
	switch mnemonic {
	case "BEQ":
		return ra == 0
	case "BNE":
		return ra != 0
	case "BLT":
		return int64(ra) < 0
	case "BLE":
		return int64(ra) <= 0
	case "BGE":
		return int64(ra) >= 0
	case "BGT":
		return int64(ra) > 0
	case "BLBC":
		return ra&1 == 0
	case "BLBS":
		return ra&1 != 0
	default:
		return false
	}
}

func isFloatBranch(mnemonic string) bool {
	switch mnemonic {
	case "FBEQ", "FBNE", "FBLT", "FBLE", "FBGE", "FBGT":
		return true
	default:
		return false
	}
}

func evaluateFloatPredicate(mnemonic string, faBits uint64) bool {
	isZero := faBits<<1 == 0 // +0.0 or -0.0
	negative := faBits>>63 == 1 && !isZero
	switch mnemonic {
	case "FBEQ":
		return isZero
	case "FBNE":
		return !isZero
	case "FBLT":
		return negative
	case "FBLE":
		return negative || isZero
	case "FBGE":
		return !negative
	case "FBGT":
		return !negative && !isZero
	default:
		return false
	}
}
