package ir

import (
	"bytes"
	"fmt"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

var wasmMagic = []byte{0x00, 0x61, 0x73, 0x6d}

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secExport   = 7
	secCode     = 10
)

const (
	kindFunc = 0
)

// Parse decodes raw module bytes into an immutable Module. A malformed
// module yields a ParseError carrying the path and failing offset;
// unrecognized opcodes never fail, they classify as "other".
func Parse(path string, raw []byte) (*Module, error) {
	r := &reader{buf: raw}
	fail := func(cause error) (*Module, error) {
		return nil, &model.ParseError{Path: path, Offset: r.pos, Cause: cause}
	}

	magic, err := r.bytes(4)
	if err != nil || !bytes.Equal(magic, wasmMagic) {
		return fail(fmt.Errorf("not a wasm module"))
	}
	if _, err := r.bytes(4); err != nil { // version
		return fail(err)
	}

	m := &Module{Path: path, Calls: map[int][]int{}}
	var funcTypes []uint32
	var bodies [][]byte
	var bodyBase []int

	for !r.done() {
		id, err := r.byte()
		if err != nil {
			return fail(err)
		}
		size, err := r.u32()
		if err != nil {
			return fail(err)
		}
		payload, err := r.bytes(int(size))
		if err != nil {
			return fail(err)
		}
		sr := &reader{buf: payload}
		switch id {
		case secType:
			count, err := sr.u32()
			if err != nil {
				return fail(err)
			}
			for i := uint32(0); i < count; i++ {
				form, err := sr.byte()
				if err != nil {
					return fail(err)
				}
				if form != 0x60 {
					return fail(fmt.Errorf("unsupported type form 0x%02x", form))
				}
				var ft FuncType
				np, err := sr.u32()
				if err != nil {
					return fail(err)
				}
				if ft.Params, err = sr.bytes(int(np)); err != nil {
					return fail(err)
				}
				nr, err := sr.u32()
				if err != nil {
					return fail(err)
				}
				if ft.Results, err = sr.bytes(int(nr)); err != nil {
					return fail(err)
				}
				m.Types = append(m.Types, ft)
			}
		case secImport:
			count, err := sr.u32()
			if err != nil {
				return fail(err)
			}
			for i := uint32(0); i < count; i++ {
				mod, err := sr.name()
				if err != nil {
					return fail(err)
				}
				name, err := sr.name()
				if err != nil {
					return fail(err)
				}
				kind, err := sr.byte()
				if err != nil {
					return fail(err)
				}
				imp := Import{Module: mod, Name: name, Kind: kind}
				switch kind {
				case kindFunc:
					t, err := sr.u32()
					if err != nil {
						return fail(err)
					}
					imp.Type = int(t)
				case 1: // table: reftype + limits
					if err := skipTableType(sr); err != nil {
						return fail(err)
					}
				case 2: // memory: limits
					if err := skipLimits(sr); err != nil {
						return fail(err)
					}
				case 3: // global: valtype + mutability
					if _, err := sr.bytes(2); err != nil {
						return fail(err)
					}
				}
				m.Imports = append(m.Imports, imp)
			}
		case secFunction:
			count, err := sr.u32()
			if err != nil {
				return fail(err)
			}
			for i := uint32(0); i < count; i++ {
				t, err := sr.u32()
				if err != nil {
					return fail(err)
				}
				funcTypes = append(funcTypes, t)
			}
		case secExport:
			count, err := sr.u32()
			if err != nil {
				return fail(err)
			}
			for i := uint32(0); i < count; i++ {
				name, err := sr.name()
				if err != nil {
					return fail(err)
				}
				kind, err := sr.byte()
				if err != nil {
					return fail(err)
				}
				idx, err := sr.u32()
				if err != nil {
					return fail(err)
				}
				m.Exports = append(m.Exports, Export{Name: name, Kind: kind, Idx: int(idx)})
			}
		case secCode:
			count, err := sr.u32()
			if err != nil {
				return fail(err)
			}
			for i := uint32(0); i < count; i++ {
				n, err := sr.u32()
				if err != nil {
					return fail(err)
				}
				base := sr.pos
				body, err := sr.bytes(int(n))
				if err != nil {
					return fail(err)
				}
				bodies = append(bodies, body)
				bodyBase = append(bodyBase, base)
			}
		default:
			// memory, global, data, custom sections carry nothing the
			// analyzers need beyond what the tables above provide.
		}
	}

	// Assemble the function index space: imports first, then local bodies.
	for _, imp := range m.Imports {
		if imp.Kind != kindFunc {
			continue
		}
		m.Functions = append(m.Functions, Function{
			Index:        len(m.Functions),
			Name:         imp.Name,
			TypeIndex:    typeIndexOf(m, imp.Type),
			Imported:     true,
			ImportModule: imp.Module,
			ImportName:   imp.Name,
			Host:         classifyHost(imp.Module, imp.Name),
		})
	}
	m.NumImported = len(m.Functions)

	if len(bodies) != len(funcTypes) {
		return fail(fmt.Errorf("code section has %d bodies for %d declared functions", len(bodies), len(funcTypes)))
	}
	for i, body := range bodies {
		fn := Function{Index: len(m.Functions), TypeIndex: typeIndexOf(m, int(funcTypes[i]))}
		if err := decodeBody(&fn, body); err != nil {
			return nil, &model.ParseError{Path: path, Offset: bodyBase[i], Cause: err}
		}
		m.Functions = append(m.Functions, fn)
	}

	for _, exp := range m.Exports {
		if exp.Kind != kindFunc || exp.Idx >= len(m.Functions) {
			continue
		}
		m.Functions[exp.Idx].Exported = true
		if m.Functions[exp.Idx].Name == "" {
			m.Functions[exp.Idx].Name = exp.Name
		}
	}

	resolveCalls(m)
	return m, nil
}

// typeIndexOf validates a declared type index against the decoded table.
func typeIndexOf(m *Module, idx int) int {
	if idx < 0 || idx >= len(m.Types) {
		return -1
	}
	return idx
}

func skipLimits(r *reader) error {
	flags, err := r.byte()
	if err != nil {
		return err
	}
	if _, err := r.u32(); err != nil {
		return err
	}
	if flags&1 != 0 {
		if _, err := r.u32(); err != nil {
			return err
		}
	}
	return nil
}

func skipTableType(r *reader) error {
	if _, err := r.byte(); err != nil { // reftype
		return err
	}
	return skipLimits(r)
}

// decodeBody decodes locals and the instruction stream of one code entry.
func decodeBody(fn *Function, body []byte) error {
	r := &reader{buf: body}
	localGroups, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < localGroups; i++ {
		count, err := r.u32()
		if err != nil {
			return err
		}
		t, err := r.byte()
		if err != nil {
			return err
		}
		fn.Locals = append(fn.Locals, Local{Count: int(count), Type: t})
	}

	depth := 1
	for !r.done() && depth > 0 {
		offset := r.pos
		op, err := r.byte()
		if err != nil {
			return err
		}
		info := lookupOp(op)
		ins := Instruction{Offset: offset, Opcode: op, Mnemonic: info.mnemonic, Class: info.class, Callee: -1}

		switch op {
		case 0x02, 0x03, 0x04:
			depth++
		case 0x0b:
			depth--
			if depth == 0 {
				continue // implicit function end, not part of the stream
			}
		}

		switch info.imm {
		case immBlockType:
			// single-byte type or a signed type index
			if _, err := r.s64(); err != nil {
				return err
			}
		case immU32:
			v, err := r.u32()
			if err != nil {
				return err
			}
			ins.Operands = append(ins.Operands, int64(v))
			if op == 0x10 {
				ins.Callee = int(v)
			}
		case immTwoU32:
			a, err := r.u32()
			if err != nil {
				return err
			}
			b, err := r.u32()
			if err != nil {
				return err
			}
			ins.Operands = append(ins.Operands, int64(a), int64(b))
		case immBrTable:
			n, err := r.u32()
			if err != nil {
				return err
			}
			for j := uint32(0); j <= n; j++ {
				if _, err := r.u32(); err != nil {
					return err
				}
			}
		case immI32, immI64:
			v, err := r.s64()
			if err != nil {
				return err
			}
			ins.Operands = append(ins.Operands, v)
		case immF32:
			if _, err := r.bytes(4); err != nil {
				return err
			}
		case immF64:
			if _, err := r.bytes(8); err != nil {
				return err
			}
		case immByte:
			if _, err := r.byte(); err != nil {
				return err
			}
		case immMisc:
			if err := skipMisc(r, &ins); err != nil {
				return err
			}
		}

		fn.Instructions = append(fn.Instructions, ins)
	}
	return nil
}

func skipMisc(r *reader, ins *Instruction) error {
	sub, err := r.u32()
	if err != nil {
		return err
	}
	ins.Operands = append(ins.Operands, int64(sub))
	switch sub {
	case 8, 10: // memory.init, memory.copy
		if _, err := r.u32(); err != nil {
			return err
		}
		if _, err := r.u32(); err != nil {
			return err
		}
	case 9, 11: // data.drop, memory.fill
		if _, err := r.u32(); err != nil {
			return err
		}
	}
	return nil
}

// resolveCalls fills callee metadata and the module call graph. Calls into
// host imports are classified; storage calls pick up the durability class
// from a trailing literal argument when one is statically visible.
func resolveCalls(m *Module) {
	for i := m.NumImported; i < len(m.Functions); i++ {
		fn := &m.Functions[i]
		for j := range fn.Instructions {
			ins := &fn.Instructions[j]
			if ins.Opcode != 0x10 || ins.Callee < 0 || ins.Callee >= len(m.Functions) {
				continue
			}
			callee := &m.Functions[ins.Callee]
			if callee.Imported {
				ins.Host = callee.Host
				ins.Class = hostOpClass(callee.Host)
				if ins.Class == OpStorageWrite || ins.Class == OpStorageRead {
					ins.Storage = storageClassAt(fn.Instructions, j)
				}
			} else {
				m.Calls[i] = append(m.Calls[i], ins.Callee)
			}
		}
	}
}

// storageClassAt derives the durability class for the storage call at index
// idx from the nearest preceding constant, matching the host ABI where the
// storage type is the final argument.
func storageClassAt(ins []Instruction, idx int) StorageClass {
	for k := idx - 1; k >= 0 && k >= idx-3; k-- {
		if ins[k].Opcode == 0x41 || ins[k].Opcode == 0x42 {
			if len(ins[k].Operands) == 1 {
				switch ins[k].Operands[0] {
				case 0:
					return StorageTemporary
				case 1:
					return StoragePersistent
				case 2:
					return StorageInstance
				}
			}
		}
	}
	return StorageUnknown
}
