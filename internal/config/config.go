// Package config loads the INI-style system configuration file spec.md
// §6.1 describes: the [System]/[MemoryMap]/[ROM]/[FloatingPoint]/[CACHE/*]
// sections the core (and its external collaborators) read at startup.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/alphacore/ev6/internal/tlb"
)

// MaxCPUs mirrors spec.md §3's CpuId bound.
const MaxCPUs = 4

// PageSize enumerates the recognized PTE-PageSize values.
type PageSize string

const (
	PageSize4K   PageSize = "4K"
	PageSize8K   PageSize = "8K"
	PageSize64K  PageSize = "64K"
	PageSize512K PageSize = "512K"
)

// Granularity converts the configured page size into the tlb package's
// Granularity enum.
func (p PageSize) Granularity() tlb.Granularity {
	switch p {
	case PageSize8K:
		return tlb.Gran8K
	case PageSize64K:
		return tlb.Gran64K
	case PageSize512K:
		return tlb.Gran512K
	default:
		return tlb.Gran4K
	}
}

// MemoryMap holds the [MemoryMap] section, the fixed physical layout
// collaborators (the SRM console, device models) rely on.
type MemoryMap struct {
	HwrpbBase    uint64
	HwrpbSize    uint64
	SrmBase      uint64
	SrmSize      uint64
	SrmInitialPC uint64
	RamBase      uint64
	MmioBase     uint64
	PciMemBase   uint64
	PciMemSize   uint64
}

// FloatingPoint holds the [FloatingPoint] section's advisory format hints.
type FloatingPoint struct {
	UseSSEForF bool
	UseSSEForG bool
	UseSSEForD bool
	UseSSEForS bool
	UseSSEForT bool
}

// CachePolicy holds one [CACHE/<name>] section's replacement-policy
// selector, e.g. [CACHE/ITLB], [CACHE/DTLB0].
type CachePolicy struct {
	Name   string
	Policy tlb.Policy
}

// SystemConfig is the typed, decoded configuration the System Coordinator
// and its collaborators consume.
type SystemConfig struct {
	CpuCount       int
	MemorySizeGB   int
	PlatformEV     int
	PTEPageSize    PageSize
	CPUFrequencyHz uint64

	MemoryMap     MemoryMap
	SrmRomVariant string
	FloatingPoint FloatingPoint
	CachePolicies []CachePolicy
}

// Default returns the configuration used when no file is supplied, mirroring
// the teacher's flag-default style (pkg/vm + the cmd/vm and cmd/interp
// flag defaults) but scaled up to the ES40 SMP topology.
func Default() SystemConfig {
	return SystemConfig{
		CpuCount:       1,
		MemorySizeGB:   1,
		PlatformEV:     6,
		PTEPageSize:    PageSize8K,
		CPUFrequencyHz: 500_000_000,
		MemoryMap: MemoryMap{
			HwrpbBase:    0x20000000,
			HwrpbSize:    0x4000,
			SrmBase:      0xFFFFFC0000000000,
			SrmSize:      0x400000,
			SrmInitialPC: 0xFFFFFC0000310000,
			RamBase:      0,
			MmioBase:     0x801FC000000,
			PciMemBase:   0x80000000000,
			PciMemSize:   0x20000000,
		},
		SrmRomVariant: "es40",
		FloatingPoint: FloatingPoint{UseSSEForS: true, UseSSEForT: true},
	}
}

// Load parses an INI file at path into a SystemConfig, applying Default()
// for anything the file omits.
func Load(path string) (SystemConfig, error) {
	cfg := Default()

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config: loading %q: %w", path, err)
	}

	if sec, err := f.GetSection("System"); err == nil {
		cfg.CpuCount = sec.Key("CpuCount").MustInt(cfg.CpuCount)
		cfg.MemorySizeGB = sec.Key("MemorySizeGB").MustInt(cfg.MemorySizeGB)
		cfg.PlatformEV = sec.Key("Platform-Ev").MustInt(cfg.PlatformEV)
		cfg.PTEPageSize = PageSize(sec.Key("PTE-PageSize").MustString(string(cfg.PTEPageSize)))
		cfg.CPUFrequencyHz = sec.Key("CPU_FREQUENCY_HZ").MustUint64(cfg.CPUFrequencyHz)
	}

	if sec, err := f.GetSection("MemoryMap"); err == nil {
		cfg.MemoryMap.HwrpbBase = sec.Key("HwrpbBase").MustUint64(cfg.MemoryMap.HwrpbBase)
		cfg.MemoryMap.HwrpbSize = sec.Key("HwrpbSize").MustUint64(cfg.MemoryMap.HwrpbSize)
		cfg.MemoryMap.SrmBase = sec.Key("SrmBase").MustUint64(cfg.MemoryMap.SrmBase)
		cfg.MemoryMap.SrmSize = sec.Key("SrmSize").MustUint64(cfg.MemoryMap.SrmSize)
		cfg.MemoryMap.SrmInitialPC = sec.Key("SrmInitialPC").MustUint64(cfg.MemoryMap.SrmInitialPC)
		cfg.MemoryMap.RamBase = sec.Key("RamBase").MustUint64(cfg.MemoryMap.RamBase)
		cfg.MemoryMap.MmioBase = sec.Key("MmioBase").MustUint64(cfg.MemoryMap.MmioBase)
		cfg.MemoryMap.PciMemBase = sec.Key("PciMemBase").MustUint64(cfg.MemoryMap.PciMemBase)
		cfg.MemoryMap.PciMemSize = sec.Key("PciMemSize").MustUint64(cfg.MemoryMap.PciMemSize)
	}

	if sec, err := f.GetSection("ROM"); err == nil {
		cfg.SrmRomVariant = sec.Key("SrmRomVariant").MustString(cfg.SrmRomVariant)
	}

	if sec, err := f.GetSection("FloatingPoint"); err == nil {
		cfg.FloatingPoint.UseSSEForF = sec.Key("UseSSEForF_Float").MustBool(cfg.FloatingPoint.UseSSEForF)
		cfg.FloatingPoint.UseSSEForG = sec.Key("UseSSEForG_Float").MustBool(cfg.FloatingPoint.UseSSEForG)
		cfg.FloatingPoint.UseSSEForD = sec.Key("UseSSEForD_Float").MustBool(cfg.FloatingPoint.UseSSEForD)
		cfg.FloatingPoint.UseSSEForS = sec.Key("UseSSEForS_Float").MustBool(cfg.FloatingPoint.UseSSEForS)
		cfg.FloatingPoint.UseSSEForT = sec.Key("UseSSEForT_Float").MustBool(cfg.FloatingPoint.UseSSEForT)
	}

	for _, sec := range f.Sections() {
		if !strings.HasPrefix(sec.Name(), "CACHE/") {
			continue
		}
		name := strings.TrimPrefix(sec.Name(), "CACHE/")
		cfg.CachePolicies = append(cfg.CachePolicies, CachePolicy{
			Name:   name,
			Policy: parsePolicy(sec.Key("Replacement").MustString("SRRIP")),
		})
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parsePolicy(s string) tlb.Policy {
	switch strings.ToUpper(s) {
	case "CLOCK":
		return tlb.PolicyCLOCK
	case "RANDOM":
		return tlb.PolicyRandom
	default:
		return tlb.PolicySRRIP
	}
}

func (c SystemConfig) validate() error {
	if c.CpuCount < 1 || c.CpuCount > MaxCPUs {
		return fmt.Errorf("config: CpuCount %d out of range 1..%d", c.CpuCount, MaxCPUs)
	}
	if c.PlatformEV != 5 && c.PlatformEV != 6 {
		return fmt.Errorf("config: Platform-Ev %d must be 5 or 6", c.PlatformEV)
	}
	switch c.PTEPageSize {
	case PageSize4K, PageSize8K, PageSize64K, PageSize512K:
	default:
		return fmt.Errorf("config: PTE-PageSize %q not recognized", c.PTEPageSize)
	}
	return nil
}
