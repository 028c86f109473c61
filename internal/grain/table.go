package grain

// Opcode values, Alpha AXP architecture manual encoding (bits [31:26]).
const (
	OpcodeCallPal uint32 = 0x00
	OpcodeLDA     uint32 = 0x08
	OpcodeLDAH    uint32 = 0x09
	OpcodeLDBU    uint32 = 0x0A
	OpcodeLDQ_U   uint32 = 0x0B
	OpcodeLDWU    uint32 = 0x0C
	OpcodeSTW     uint32 = 0x0D
	OpcodeSTB     uint32 = 0x0E
	OpcodeSTQ_U   uint32 = 0x0F
	OpcodeINTA    uint32 = 0x10
	OpcodeINTL    uint32 = 0x11
	OpcodeINTS    uint32 = 0x12
	OpcodeINTM    uint32 = 0x13
	OpcodeITFP    uint32 = 0x14
	OpcodeFLTV    uint32 = 0x15
	OpcodeFLTI    uint32 = 0x16
	OpcodeFLTL    uint32 = 0x17
	OpcodeMISC    uint32 = 0x18
	OpcodeJMP     uint32 = 0x1A
	OpcodeFPTI    uint32 = 0x1C
	OpcodeLDL     uint32 = 0x28
	OpcodeLDQ     uint32 = 0x29
	OpcodeLDL_L   uint32 = 0x2A
	OpcodeLDQ_L   uint32 = 0x2B
	OpcodeSTL     uint32 = 0x2C
	OpcodeSTQ     uint32 = 0x2D
	OpcodeSTL_C   uint32 = 0x2E
	OpcodeSTQ_C   uint32 = 0x2F
	OpcodeBR      uint32 = 0x30
	OpcodeFBEQ    uint32 = 0x31
	OpcodeFBLT    uint32 = 0x32
	OpcodeFBLE    uint32 = 0x33
	OpcodeBSR     uint32 = 0x34
	OpcodeFBNE    uint32 = 0x35
	OpcodeFBGE    uint32 = 0x36
	OpcodeFBGT    uint32 = 0x37
	OpcodeBLBC    uint32 = 0x38
	OpcodeBEQ     uint32 = 0x39
	OpcodeBLT     uint32 = 0x3A
	OpcodeBLE     uint32 = 0x3B
	OpcodeBLBS    uint32 = 0x3C
	OpcodeBNE     uint32 = 0x3D
	OpcodeBGE     uint32 = 0x3E
	OpcodeBGT     uint32 = 0x3F

	// PAL-reserved opcode space: HW_MFPR/HW_LD/HW_MTPR/HW_ST and HW_REI,
	// decodable only in PAL mode (the pipeline raises OPCDEC otherwise).
	OpcodeHWMFPR uint32 = 0x19
	OpcodeHWLD   uint32 = 0x1B
	OpcodeHWMTPR uint32 = 0x1D
	OpcodeHWREI  uint32 = 0x1E
	OpcodeHWST   uint32 = 0x1F
)

// Function codes within the INTA (0x10) family — arithmetic.
const (
	FnAddL   uint32 = 0x00
	FnAddLV  uint32 = 0x40
	FnAddQ   uint32 = 0x20
	FnAddQV  uint32 = 0x60
	FnSubL   uint32 = 0x09
	FnSubLV  uint32 = 0x49
	FnSubQ   uint32 = 0x29
	FnSubQV  uint32 = 0x69
	FnCmpEq  uint32 = 0x2D
	FnCmpLt  uint32 = 0x4D
	FnCmpLe  uint32 = 0x6D
	FnCmpULt uint32 = 0x1D
	FnCmpULe uint32 = 0x3D
	FnCmpBGE uint32 = 0x0F
	FnS4AddL uint32 = 0x02
	FnS4SubL uint32 = 0x0B
	FnS8AddL uint32 = 0x12
	FnS8SubL uint32 = 0x1B
	FnS4AddQ uint32 = 0x22
	FnS4SubQ uint32 = 0x2B
	FnS8AddQ uint32 = 0x32
	FnS8SubQ uint32 = 0x3B
)

// Function codes within the INTL (0x11) family — logical.
const (
	FnAND     uint32 = 0x00
	FnBIC     uint32 = 0x08
	FnBIS     uint32 = 0x20
	FnORNOT   uint32 = 0x28
	FnXOR     uint32 = 0x40
	FnEQV     uint32 = 0x48
	FnCmovEq  uint32 = 0x24
	FnCmovNe  uint32 = 0x26
	FnCmovLt  uint32 = 0x44
	FnCmovGe  uint32 = 0x46
	FnCmovLe  uint32 = 0x64
	FnCmovGt  uint32 = 0x66
	FnCmovLbs uint32 = 0x14
	FnCmovLbc uint32 = 0x16
	FnAmask   uint32 = 0x61
	FnImplver uint32 = 0x6C
)

// Function codes within the INTS (0x12) family — shift and byte manip,
// Low and High field halves.
const (
	FnMskBL  uint32 = 0x02
	FnExtBL  uint32 = 0x06
	FnInsBL  uint32 = 0x0B
	FnMskWL  uint32 = 0x12
	FnExtWL  uint32 = 0x16
	FnInsWL  uint32 = 0x1B
	FnMskLL  uint32 = 0x22
	FnExtLL  uint32 = 0x26
	FnInsLL  uint32 = 0x2B
	FnMskQL  uint32 = 0x32
	FnExtQL  uint32 = 0x36
	FnInsQL  uint32 = 0x3B
	FnMskWH  uint32 = 0x52
	FnInsWH  uint32 = 0x57
	FnExtWH  uint32 = 0x5A
	FnMskLH  uint32 = 0x62
	FnInsLH  uint32 = 0x67
	FnExtLH  uint32 = 0x6A
	FnMskQH  uint32 = 0x72
	FnInsQH  uint32 = 0x77
	FnExtQH  uint32 = 0x7A
	FnZAP    uint32 = 0x30
	FnZAPNOT uint32 = 0x31
	FnSRL    uint32 = 0x34
	FnSLL    uint32 = 0x39
	FnSRA    uint32 = 0x3C
)

// Function codes within the INTM (0x13) family — multiply.
const (
	FnMulL   uint32 = 0x00
	FnMulLV  uint32 = 0x40
	FnMulQ   uint32 = 0x20
	FnMulQV  uint32 = 0x60
	FnUMulH  uint32 = 0x30
)

// Function codes within the ITFP (0x14) family — integer-to-FP moves and
// square root (the FIX extension, plus the VAX square roots).
const (
	FnItofS uint32 = 0x004
	FnItofF uint32 = 0x014
	FnItofT uint32 = 0x024
	FnSqrtF uint32 = 0x08A
	FnSqrtS uint32 = 0x08B
	FnSqrtG uint32 = 0x0AA
	FnSqrtT uint32 = 0x0AB
)

// Function codes within the FPTI (0x1C) family — FP-to-integer moves,
// sign extension (BWX), count instructions (CIX), and the motion-video
// byte/word min/max group (MVI).
const (
	FnSextB  uint32 = 0x00
	FnSextW  uint32 = 0x01
	FnCtpop  uint32 = 0x30
	FnPerr   uint32 = 0x31
	FnCtlz   uint32 = 0x32
	FnCttz   uint32 = 0x33
	FnUnpkBW uint32 = 0x34
	FnUnpkBL uint32 = 0x35
	FnPkWB   uint32 = 0x36
	FnPkLB   uint32 = 0x37
	FnMinSB8 uint32 = 0x38
	FnMinSW4 uint32 = 0x39
	FnMinUB8 uint32 = 0x3A
	FnMinUW4 uint32 = 0x3B
	FnMaxUB8 uint32 = 0x3C
	FnMaxUW4 uint32 = 0x3D
	FnMaxSB8 uint32 = 0x3E
	FnMaxSW4 uint32 = 0x3F
	FnFtoiT  uint32 = 0x70
	FnFtoiS  uint32 = 0x78
)

// Function codes within the MISC (0x18) family.
const (
	FnTrapB  uint32 = 0x0000
	FnExcB   uint32 = 0x0400
	FnMB     uint32 = 0x4000
	FnWMB    uint32 = 0x4400
	FnFetch  uint32 = 0x8000
	FnFetchM uint32 = 0xA000
	FnRPCC   uint32 = 0xC000
	FnRC     uint32 = 0xE000
	FnRS     uint32 = 0xF000
)

// Function codes within the FLTV (0x15) family — VAX F/G/D formats.
const (
	FnAddF   uint32 = 0x080
	FnSubF   uint32 = 0x081
	FnMulF   uint32 = 0x082
	FnDivF   uint32 = 0x083
	FnCvtDG  uint32 = 0x09E
	FnAddG   uint32 = 0x0A0
	FnSubG   uint32 = 0x0A1
	FnMulG   uint32 = 0x0A2
	FnDivG   uint32 = 0x0A3
	FnCmpGEq uint32 = 0x0A5
	FnCmpGLt uint32 = 0x0A6
	FnCmpGLe uint32 = 0x0A7
	FnCvtGF  uint32 = 0x0AC
	FnCvtGD  uint32 = 0x0AD
	FnCvtGQ  uint32 = 0x0AF
	FnCvtQF  uint32 = 0x0BC
	FnCvtQG  uint32 = 0x0BE
)

// Function codes within the FLTI (0x16) family — IEEE S/T formats.
const (
	FnAddS   uint32 = 0x080
	FnSubS   uint32 = 0x081
	FnMulS   uint32 = 0x082
	FnDivS   uint32 = 0x083
	FnAddT   uint32 = 0x0A0
	FnSubT   uint32 = 0x0A1
	FnMulT   uint32 = 0x0A2
	FnDivT   uint32 = 0x0A3
	FnCmpTUn uint32 = 0x0A4
	FnCmpTEq uint32 = 0x0A5
	FnCmpTLt uint32 = 0x0A6
	FnCmpTLe uint32 = 0x0A7
	FnCvtTS  uint32 = 0x0AC
	FnCvtTQ  uint32 = 0x0AF
	FnCvtQS  uint32 = 0x0BC
	FnCvtQT  uint32 = 0x0BE
)

// Function codes within the FLTL (0x17) family — FP data movement, FPCR
// access, and longword conversions.
const (
	FnCvtLQ   uint32 = 0x010
	FnCpyS    uint32 = 0x020
	FnCpySN   uint32 = 0x021
	FnCpySE   uint32 = 0x022
	FnMtFPCR  uint32 = 0x024
	FnMfFPCR  uint32 = 0x025
	FnFCmovEq uint32 = 0x02A
	FnFCmovNe uint32 = 0x02B
	FnFCmovLt uint32 = 0x02C
	FnFCmovGe uint32 = 0x02D
	FnFCmovLe uint32 = 0x02E
	FnFCmovGt uint32 = 0x02F
	FnCvtQL   uint32 = 0x030
)

// Function codes within JMP/JSR/RET/JSR_COROUTINE (opcode 0x1A), carried in
// bits [15:14] of the instruction word rather than a function field.
const (
	FnJMP           uint32 = 0
	FnJSR           uint32 = 1
	FnRET           uint32 = 2
	FnJSR_COROUTINE uint32 = 3
)

// canonicalGrains enumerates one grain per opcode/function variant named by
// spec.md §4.3 plus the PAL-reserved opcodes. Memory- and branch-format
// opcodes carry no function code (HasFunction is false) because the
// instruction word's low bits are a displacement, not a sub-opcode
// selector.
var canonicalGrains = []Grain{
	{Mnemonic: "LDA", Opcode: OpcodeLDA, Format: FormatOperate},
	{Mnemonic: "LDAH", Opcode: OpcodeLDAH, Format: FormatOperate},

	{Mnemonic: "ADDL", Opcode: OpcodeINTA, Function: FnAddL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ADDL/V", Opcode: OpcodeINTA, Function: FnAddLV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ADDQ", Opcode: OpcodeINTA, Function: FnAddQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ADDQ/V", Opcode: OpcodeINTA, Function: FnAddQV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SUBL", Opcode: OpcodeINTA, Function: FnSubL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SUBL/V", Opcode: OpcodeINTA, Function: FnSubLV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SUBQ", Opcode: OpcodeINTA, Function: FnSubQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SUBQ/V", Opcode: OpcodeINTA, Function: FnSubQV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPEQ", Opcode: OpcodeINTA, Function: FnCmpEq, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPLT", Opcode: OpcodeINTA, Function: FnCmpLt, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPLE", Opcode: OpcodeINTA, Function: FnCmpLe, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPULT", Opcode: OpcodeINTA, Function: FnCmpULt, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPULE", Opcode: OpcodeINTA, Function: FnCmpULe, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMPBGE", Opcode: OpcodeINTA, Function: FnCmpBGE, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S4ADDL", Opcode: OpcodeINTA, Function: FnS4AddL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S4SUBL", Opcode: OpcodeINTA, Function: FnS4SubL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S8ADDL", Opcode: OpcodeINTA, Function: FnS8AddL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S8SUBL", Opcode: OpcodeINTA, Function: FnS8SubL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S4ADDQ", Opcode: OpcodeINTA, Function: FnS4AddQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S4SUBQ", Opcode: OpcodeINTA, Function: FnS4SubQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S8ADDQ", Opcode: OpcodeINTA, Function: FnS8AddQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "S8SUBQ", Opcode: OpcodeINTA, Function: FnS8SubQ, HasFunction: true, Format: FormatOperate},

	{Mnemonic: "AND", Opcode: OpcodeINTL, Function: FnAND, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "BIC", Opcode: OpcodeINTL, Function: FnBIC, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "BIS", Opcode: OpcodeINTL, Function: FnBIS, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ORNOT", Opcode: OpcodeINTL, Function: FnORNOT, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "XOR", Opcode: OpcodeINTL, Function: FnXOR, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EQV", Opcode: OpcodeINTL, Function: FnEQV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVEQ", Opcode: OpcodeINTL, Function: FnCmovEq, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVNE", Opcode: OpcodeINTL, Function: FnCmovNe, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVLT", Opcode: OpcodeINTL, Function: FnCmovLt, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVGE", Opcode: OpcodeINTL, Function: FnCmovGe, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVLE", Opcode: OpcodeINTL, Function: FnCmovLe, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVGT", Opcode: OpcodeINTL, Function: FnCmovGt, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVLBS", Opcode: OpcodeINTL, Function: FnCmovLbs, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CMOVLBC", Opcode: OpcodeINTL, Function: FnCmovLbc, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "AMASK", Opcode: OpcodeINTL, Function: FnAmask, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "IMPLVER", Opcode: OpcodeINTL, Function: FnImplver, HasFunction: true, Format: FormatOperate},

	{Mnemonic: "MSKBL", Opcode: OpcodeINTS, Function: FnMskBL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTBL", Opcode: OpcodeINTS, Function: FnExtBL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSBL", Opcode: OpcodeINTS, Function: FnInsBL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKWL", Opcode: OpcodeINTS, Function: FnMskWL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTWL", Opcode: OpcodeINTS, Function: FnExtWL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSWL", Opcode: OpcodeINTS, Function: FnInsWL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKLL", Opcode: OpcodeINTS, Function: FnMskLL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTLL", Opcode: OpcodeINTS, Function: FnExtLL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSLL", Opcode: OpcodeINTS, Function: FnInsLL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKQL", Opcode: OpcodeINTS, Function: FnMskQL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTQL", Opcode: OpcodeINTS, Function: FnExtQL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSQL", Opcode: OpcodeINTS, Function: FnInsQL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKWH", Opcode: OpcodeINTS, Function: FnMskWH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSWH", Opcode: OpcodeINTS, Function: FnInsWH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTWH", Opcode: OpcodeINTS, Function: FnExtWH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKLH", Opcode: OpcodeINTS, Function: FnMskLH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSLH", Opcode: OpcodeINTS, Function: FnInsLH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTLH", Opcode: OpcodeINTS, Function: FnExtLH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MSKQH", Opcode: OpcodeINTS, Function: FnMskQH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "INSQH", Opcode: OpcodeINTS, Function: FnInsQH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "EXTQH", Opcode: OpcodeINTS, Function: FnExtQH, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ZAP", Opcode: OpcodeINTS, Function: FnZAP, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "ZAPNOT", Opcode: OpcodeINTS, Function: FnZAPNOT, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SRL", Opcode: OpcodeINTS, Function: FnSRL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SLL", Opcode: OpcodeINTS, Function: FnSLL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SRA", Opcode: OpcodeINTS, Function: FnSRA, HasFunction: true, Format: FormatOperate},

	{Mnemonic: "MULL", Opcode: OpcodeINTM, Function: FnMulL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MULL/V", Opcode: OpcodeINTM, Function: FnMulLV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MULQ", Opcode: OpcodeINTM, Function: FnMulQ, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MULQ/V", Opcode: OpcodeINTM, Function: FnMulQV, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "UMULH", Opcode: OpcodeINTM, Function: FnUMulH, HasFunction: true, Format: FormatOperate},

	{Mnemonic: "SEXTB", Opcode: OpcodeFPTI, Function: FnSextB, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "SEXTW", Opcode: OpcodeFPTI, Function: FnSextW, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CTPOP", Opcode: OpcodeFPTI, Function: FnCtpop, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "PERR", Opcode: OpcodeFPTI, Function: FnPerr, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CTLZ", Opcode: OpcodeFPTI, Function: FnCtlz, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "CTTZ", Opcode: OpcodeFPTI, Function: FnCttz, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "UNPKBW", Opcode: OpcodeFPTI, Function: FnUnpkBW, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "UNPKBL", Opcode: OpcodeFPTI, Function: FnUnpkBL, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "PKWB", Opcode: OpcodeFPTI, Function: FnPkWB, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "PKLB", Opcode: OpcodeFPTI, Function: FnPkLB, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MINSB8", Opcode: OpcodeFPTI, Function: FnMinSB8, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MINSW4", Opcode: OpcodeFPTI, Function: FnMinSW4, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MINUB8", Opcode: OpcodeFPTI, Function: FnMinUB8, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MINUW4", Opcode: OpcodeFPTI, Function: FnMinUW4, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MAXUB8", Opcode: OpcodeFPTI, Function: FnMaxUB8, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MAXUW4", Opcode: OpcodeFPTI, Function: FnMaxUW4, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MAXSB8", Opcode: OpcodeFPTI, Function: FnMaxSB8, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "MAXSW4", Opcode: OpcodeFPTI, Function: FnMaxSW4, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "FTOIT", Opcode: OpcodeFPTI, Function: FnFtoiT, HasFunction: true, Format: FormatOperate},
	{Mnemonic: "FTOIS", Opcode: OpcodeFPTI, Function: FnFtoiS, HasFunction: true, Format: FormatOperate},

	{Mnemonic: "TRAPB", Opcode: OpcodeMISC, Function: FnTrapB, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "EXCB", Opcode: OpcodeMISC, Function: FnExcB, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "MB", Opcode: OpcodeMISC, Function: FnMB, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "WMB", Opcode: OpcodeMISC, Function: FnWMB, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "FETCH", Opcode: OpcodeMISC, Function: FnFetch, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "FETCH_M", Opcode: OpcodeMISC, Function: FnFetchM, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "RPCC", Opcode: OpcodeMISC, Function: FnRPCC, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "RC", Opcode: OpcodeMISC, Function: FnRC, HasFunction: true, Format: FormatMemory},
	{Mnemonic: "RS", Opcode: OpcodeMISC, Function: FnRS, HasFunction: true, Format: FormatMemory},

	{Mnemonic: "LDBU", Opcode: OpcodeLDBU, Format: FormatMemory},
	{Mnemonic: "LDWU", Opcode: OpcodeLDWU, Format: FormatMemory},
	{Mnemonic: "STB", Opcode: OpcodeSTB, Format: FormatMemory},
	{Mnemonic: "STW", Opcode: OpcodeSTW, Format: FormatMemory},
	{Mnemonic: "LDL", Opcode: OpcodeLDL, Format: FormatMemory},
	{Mnemonic: "LDQ", Opcode: OpcodeLDQ, Format: FormatMemory},
	{Mnemonic: "LDL_L", Opcode: OpcodeLDL_L, Format: FormatMemory},
	{Mnemonic: "LDQ_L", Opcode: OpcodeLDQ_L, Format: FormatMemory},
	{Mnemonic: "STL", Opcode: OpcodeSTL, Format: FormatMemory},
	{Mnemonic: "STQ", Opcode: OpcodeSTQ, Format: FormatMemory},
	{Mnemonic: "STL_C", Opcode: OpcodeSTL_C, Format: FormatMemory},
	{Mnemonic: "STQ_C", Opcode: OpcodeSTQ_C, Format: FormatMemory},
	{Mnemonic: "LDQ_U", Opcode: OpcodeLDQ_U, Format: FormatMemory},
	{Mnemonic: "STQ_U", Opcode: OpcodeSTQ_U, Format: FormatMemory},
	{Mnemonic: "HW_LD", Opcode: OpcodeHWLD, Format: FormatMemory},
	{Mnemonic: "HW_ST", Opcode: OpcodeHWST, Format: FormatMemory},

	{Mnemonic: "ITOFS", Opcode: OpcodeITFP, Function: FnItofS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "ITOFF", Opcode: OpcodeITFP, Function: FnItofF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "ITOFT", Opcode: OpcodeITFP, Function: FnItofT, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SQRTF", Opcode: OpcodeITFP, Function: FnSqrtF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SQRTS", Opcode: OpcodeITFP, Function: FnSqrtS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SQRTG", Opcode: OpcodeITFP, Function: FnSqrtG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SQRTT", Opcode: OpcodeITFP, Function: FnSqrtT, HasFunction: true, Format: FormatFloat},

	{Mnemonic: "ADDF", Opcode: OpcodeFLTV, Function: FnAddF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SUBF", Opcode: OpcodeFLTV, Function: FnSubF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MULF", Opcode: OpcodeFLTV, Function: FnMulF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "DIVF", Opcode: OpcodeFLTV, Function: FnDivF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTDG", Opcode: OpcodeFLTV, Function: FnCvtDG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "ADDG", Opcode: OpcodeFLTV, Function: FnAddG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SUBG", Opcode: OpcodeFLTV, Function: FnSubG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MULG", Opcode: OpcodeFLTV, Function: FnMulG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "DIVG", Opcode: OpcodeFLTV, Function: FnDivG, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPGEQ", Opcode: OpcodeFLTV, Function: FnCmpGEq, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPGLT", Opcode: OpcodeFLTV, Function: FnCmpGLt, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPGLE", Opcode: OpcodeFLTV, Function: FnCmpGLe, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTGF", Opcode: OpcodeFLTV, Function: FnCvtGF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTGD", Opcode: OpcodeFLTV, Function: FnCvtGD, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTGQ", Opcode: OpcodeFLTV, Function: FnCvtGQ, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTQF", Opcode: OpcodeFLTV, Function: FnCvtQF, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTQG", Opcode: OpcodeFLTV, Function: FnCvtQG, HasFunction: true, Format: FormatFloat},

	{Mnemonic: "ADDS", Opcode: OpcodeFLTI, Function: FnAddS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SUBS", Opcode: OpcodeFLTI, Function: FnSubS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MULS", Opcode: OpcodeFLTI, Function: FnMulS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "DIVS", Opcode: OpcodeFLTI, Function: FnDivS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "ADDT", Opcode: OpcodeFLTI, Function: FnAddT, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "SUBT", Opcode: OpcodeFLTI, Function: FnSubT, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MULT", Opcode: OpcodeFLTI, Function: FnMulT, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "DIVT", Opcode: OpcodeFLTI, Function: FnDivT, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPTUN", Opcode: OpcodeFLTI, Function: FnCmpTUn, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPTEQ", Opcode: OpcodeFLTI, Function: FnCmpTEq, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPTLT", Opcode: OpcodeFLTI, Function: FnCmpTLt, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CMPTLE", Opcode: OpcodeFLTI, Function: FnCmpTLe, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTTS", Opcode: OpcodeFLTI, Function: FnCvtTS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTTQ", Opcode: OpcodeFLTI, Function: FnCvtTQ, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTQS", Opcode: OpcodeFLTI, Function: FnCvtQS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTQT", Opcode: OpcodeFLTI, Function: FnCvtQT, HasFunction: true, Format: FormatFloat},

	{Mnemonic: "CVTLQ", Opcode: OpcodeFLTL, Function: FnCvtLQ, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CPYS", Opcode: OpcodeFLTL, Function: FnCpyS, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CPYSN", Opcode: OpcodeFLTL, Function: FnCpySN, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CPYSE", Opcode: OpcodeFLTL, Function: FnCpySE, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MT_FPCR", Opcode: OpcodeFLTL, Function: FnMtFPCR, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "MF_FPCR", Opcode: OpcodeFLTL, Function: FnMfFPCR, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVEQ", Opcode: OpcodeFLTL, Function: FnFCmovEq, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVNE", Opcode: OpcodeFLTL, Function: FnFCmovNe, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVLT", Opcode: OpcodeFLTL, Function: FnFCmovLt, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVGE", Opcode: OpcodeFLTL, Function: FnFCmovGe, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVLE", Opcode: OpcodeFLTL, Function: FnFCmovLe, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "FCMOVGT", Opcode: OpcodeFLTL, Function: FnFCmovGt, HasFunction: true, Format: FormatFloat},
	{Mnemonic: "CVTQL", Opcode: OpcodeFLTL, Function: FnCvtQL, HasFunction: true, Format: FormatFloat},

	{Mnemonic: "BR", Opcode: OpcodeBR, Format: FormatBranch},
	{Mnemonic: "BSR", Opcode: OpcodeBSR, Format: FormatBranch},
	{Mnemonic: "BEQ", Opcode: OpcodeBEQ, Format: FormatBranch},
	{Mnemonic: "BNE", Opcode: OpcodeBNE, Format: FormatBranch},
	{Mnemonic: "BLT", Opcode: OpcodeBLT, Format: FormatBranch},
	{Mnemonic: "BLE", Opcode: OpcodeBLE, Format: FormatBranch},
	{Mnemonic: "BGE", Opcode: OpcodeBGE, Format: FormatBranch},
	{Mnemonic: "BGT", Opcode: OpcodeBGT, Format: FormatBranch},
	{Mnemonic: "BLBC", Opcode: OpcodeBLBC, Format: FormatBranch},
	{Mnemonic: "BLBS", Opcode: OpcodeBLBS, Format: FormatBranch},
	{Mnemonic: "FBEQ", Opcode: OpcodeFBEQ, Format: FormatBranch},
	{Mnemonic: "FBNE", Opcode: OpcodeFBNE, Format: FormatBranch},
	{Mnemonic: "FBLT", Opcode: OpcodeFBLT, Format: FormatBranch},
	{Mnemonic: "FBLE", Opcode: OpcodeFBLE, Format: FormatBranch},
	{Mnemonic: "FBGE", Opcode: OpcodeFBGE, Format: FormatBranch},
	{Mnemonic: "FBGT", Opcode: OpcodeFBGT, Format: FormatBranch},
	{Mnemonic: "JMP", Opcode: OpcodeJMP, Function: FnJMP, HasFunction: true, Format: FormatBranch},
	{Mnemonic: "JSR", Opcode: OpcodeJMP, Function: FnJSR, HasFunction: true, Format: FormatBranch},
	{Mnemonic: "RET", Opcode: OpcodeJMP, Function: FnRET, HasFunction: true, Format: FormatBranch},
	{Mnemonic: "JSR_COROUTINE", Opcode: OpcodeJMP, Function: FnJSR_COROUTINE, HasFunction: true, Format: FormatBranch},

	{Mnemonic: "CALL_PAL", Opcode: OpcodeCallPal, Format: FormatPAL},
	{Mnemonic: "HW_MFPR", Opcode: OpcodeHWMFPR, Format: FormatPAL},
	{Mnemonic: "HW_MTPR", Opcode: OpcodeHWMTPR, Format: FormatPAL},
	{Mnemonic: "REI", Opcode: OpcodeHWREI, Format: FormatPAL},
}
