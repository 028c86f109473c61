package fault

// VectorOffset returns the EV6 PAL-vector offset for a hardware exception
// class, the representative offsets spec.md §4.5 lists. CALL_PAL uses its
// own function-indexed formula instead and is not represented here.
func VectorOffset(c Class) uint64 {
	switch c {
	case ClassReset:
		return 0x000
	case ClassMachineCheck:
		return 0x080
	case ClassArithmetic:
		return 0x100
	case ClassInterrupt:
		return 0x180
	case ClassDTBMissSingle, ClassFaultOnRead, ClassFaultOnWrite, ClassFaultOnExecute:
		return 0x200
	case ClassDTBMissDouble:
		return 0x280
	case ClassITBMiss:
		return 0x300
	case ClassITBAcv, ClassDTBAcv:
		return 0x380
	case ClassUnalign:
		return 0x480
	case ClassOpcDec:
		return 0x500
	case ClassFen:
		return 0x580
	default:
		return 0x000
	}
}

// CallPalEntry computes the CALL_PAL entry vector for function code f,
// 0 <= f <= 0x7F, using the 64-byte stride spec.md §4.5 specifies.
func CallPalEntry(palBase uint64, f uint32) uint64 {
	return palBase + (uint64(f) << 6)
}
