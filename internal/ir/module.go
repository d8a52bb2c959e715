// Package ir builds a navigable intermediate representation of a compiled
// contract module. The IR is constructed once per run and never mutated
// afterwards; analyzers share it read-only.
package ir

import "fmt"

// OpClass is the coarse instruction classification analyzers key on.
type OpClass int

const (
	OpOther OpClass = iota
	OpStorageWrite
	OpStorageRead
	OpCall
	OpArith
	OpControl
	OpAbort
)

func (c OpClass) String() string {
	switch c {
	case OpStorageWrite:
		return "storage-write"
	case OpStorageRead:
		return "storage-read"
	case OpCall:
		return "call"
	case OpArith:
		return "arithmetic"
	case OpControl:
		return "control-flow"
	case OpAbort:
		return "abort"
	default:
		return "other"
	}
}

// HostClass classifies an imported host function by what it does to the
// contract environment. Anything unrecognized is HostUnknown and treated
// conservatively by analyzers.
type HostClass int

const (
	HostUnknown HostClass = iota
	HostStoragePut
	HostStorageGet
	HostStorageHas
	HostStorageDel
	HostAuth
	HostEvent
	HostUpgrade
	HostFail
)

// StorageClass is the durability class a storage instruction targets.
type StorageClass int

const (
	StorageUnknown StorageClass = iota
	StorageTemporary
	StoragePersistent
	StorageInstance
)

func (s StorageClass) String() string {
	switch s {
	case StorageTemporary:
		return "temporary"
	case StoragePersistent:
		return "persistent"
	case StorageInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Instruction is one decoded instruction. Operands hold decoded immediates
// (function index for calls, constant value for consts).
type Instruction struct {
	Offset   int // byte offset inside the code section entry
	Opcode   byte
	Mnemonic string
	Class    OpClass
	Operands []int64
	// Callee is set for call instructions: the static function index.
	Callee int
	// Host is set when Callee resolves to an imported host function.
	Host HostClass
	// Storage is set for storage host calls when the durability argument is
	// a literal constant at the call site.
	Storage StorageClass
	// SrcLine is the originating source line when source alignment
	// succeeded, 0 otherwise.
	SrcLine int
}

// Local is one local variable declaration group.
type Local struct {
	Count int
	Type  byte
}

// FuncType is one entry of the module's type table: parameter and result
// value types as raw valtype bytes (0x7f=i32, 0x7e=i64, ...).
type FuncType struct {
	Params  []byte
	Results []byte
}

// Function is one function in the module: imported or locally defined.
type Function struct {
	Index int
	Name  string // export or import name when known, else ""
	// TypeIndex points into Module.Types; -1 when the module carried no
	// usable type section.
	TypeIndex int
	Imported  bool
	// Import metadata (imported functions only).
	ImportModule string
	ImportName   string
	Host         HostClass
	// Body (local functions only).
	Locals       []Local
	Instructions []Instruction
	Exported     bool
	// Source span when source alignment succeeded.
	SrcFile  string
	SrcStart int
	SrcEnd   int
}

// Import is one imported symbol.
type Import struct {
	Module string
	Name   string
	Kind   byte
	Type   int // type index for function imports
}

// Export is one exported symbol.
type Export struct {
	Name string
	Kind byte
	Idx  int
}

// Module is the IR root: every function in index order, the export and
// import tables, and the resolved call graph.
type Module struct {
	Path      string
	Types     []FuncType
	Functions []Function
	Imports   []Import
	Exports   []Export
	// NumImported is the count of imported functions; local function bodies
	// start at this index.
	NumImported int
	// Calls maps caller function index to the ordered callee indices of its
	// direct call instructions. Indirect calls are not in this map.
	Calls map[int][]int
}

// SignatureOf returns the declared type of the function at index idx.
func (m *Module) SignatureOf(idx int) (FuncType, bool) {
	if idx < 0 || idx >= len(m.Functions) {
		return FuncType{}, false
	}
	t := m.Functions[idx].TypeIndex
	if t < 0 || t >= len(m.Types) {
		return FuncType{}, false
	}
	return m.Types[t], true
}

// FunctionByName returns the function exported or imported under name.
func (m *Module) FunctionByName(name string) (*Function, bool) {
	for i := range m.Functions {
		if m.Functions[i].Name == name {
			return &m.Functions[i], true
		}
	}
	return nil, false
}

// ExportedFunctions returns the entry points in index order.
func (m *Module) ExportedFunctions() []*Function {
	var out []*Function
	for i := range m.Functions {
		if m.Functions[i].Exported {
			out = append(out, &m.Functions[i])
		}
	}
	return out
}

// CalleesOf returns the direct callees of the function at index idx.
func (m *Module) CalleesOf(idx int) []int {
	return m.Calls[idx]
}

// InstrSite names one instruction site inside a function.
type InstrSite struct {
	Fn    *Function
	Instr *Instruction
}

// StorageWriteSites returns every storage-write instruction in the module.
func (m *Module) StorageWriteSites() []InstrSite {
	var out []InstrSite
	for i := range m.Functions {
		fn := &m.Functions[i]
		for j := range fn.Instructions {
			if fn.Instructions[j].Class == OpStorageWrite {
				out = append(out, InstrSite{Fn: fn, Instr: &fn.Instructions[j]})
			}
		}
	}
	return out
}

// HostCallSites returns every call into a host function of the given class.
func (m *Module) HostCallSites(class HostClass) []InstrSite {
	var out []InstrSite
	for i := range m.Functions {
		fn := &m.Functions[i]
		for j := range fn.Instructions {
			if fn.Instructions[j].Host == class {
				out = append(out, InstrSite{Fn: fn, Instr: &fn.Instructions[j]})
			}
		}
	}
	return out
}

// Location renders a stable "function" or "function @offset" location label.
func (s InstrSite) Location() string {
	name := s.Fn.Name
	if name == "" {
		name = fmt.Sprintf("func[%d]", s.Fn.Index)
	}
	if s.Instr.SrcLine > 0 {
		return fmt.Sprintf("%s:%d", name, s.Instr.SrcLine)
	}
	return fmt.Sprintf("%s@%d", name, s.Instr.Offset)
}

// DisplayName is the function's export name or a positional fallback.
func (f *Function) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("func[%d]", f.Index)
}
