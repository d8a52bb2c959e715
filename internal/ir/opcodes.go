package ir

// opcode immediate encodings, enough to walk a function body without a full
// validator. Anything not listed decodes as "no immediates" and classifies
// as OpOther.
type immKind int

const (
	immNone immKind = iota
	immBlockType
	immU32
	immTwoU32
	immBrTable
	immI32
	immI64
	immF32
	immF64
	immByte
	immMisc // 0xfc prefixed
)

type opInfo struct {
	mnemonic string
	class    OpClass
	imm      immKind
}

var opTable = map[byte]opInfo{
	0x00: {"unreachable", OpAbort, immNone},
	0x01: {"nop", OpOther, immNone},
	0x02: {"block", OpControl, immBlockType},
	0x03: {"loop", OpControl, immBlockType},
	0x04: {"if", OpControl, immBlockType},
	0x05: {"else", OpControl, immNone},
	0x0b: {"end", OpControl, immNone},
	0x0c: {"br", OpControl, immU32},
	0x0d: {"br_if", OpControl, immU32},
	0x0e: {"br_table", OpControl, immBrTable},
	0x0f: {"return", OpControl, immNone},
	0x10: {"call", OpCall, immU32},
	0x11: {"call_indirect", OpCall, immTwoU32},
	0x1a: {"drop", OpOther, immNone},
	0x1b: {"select", OpOther, immNone},
	0x20: {"local.get", OpOther, immU32},
	0x21: {"local.set", OpOther, immU32},
	0x22: {"local.tee", OpOther, immU32},
	0x23: {"global.get", OpOther, immU32},
	0x24: {"global.set", OpOther, immU32},
	0x28: {"i32.load", OpOther, immTwoU32},
	0x29: {"i64.load", OpOther, immTwoU32},
	0x2a: {"f32.load", OpOther, immTwoU32},
	0x2b: {"f64.load", OpOther, immTwoU32},
	0x2c: {"i32.load8_s", OpOther, immTwoU32},
	0x2d: {"i32.load8_u", OpOther, immTwoU32},
	0x2e: {"i32.load16_s", OpOther, immTwoU32},
	0x2f: {"i32.load16_u", OpOther, immTwoU32},
	0x30: {"i64.load8_s", OpOther, immTwoU32},
	0x31: {"i64.load8_u", OpOther, immTwoU32},
	0x32: {"i64.load16_s", OpOther, immTwoU32},
	0x33: {"i64.load16_u", OpOther, immTwoU32},
	0x34: {"i64.load32_s", OpOther, immTwoU32},
	0x35: {"i64.load32_u", OpOther, immTwoU32},
	0x36: {"i32.store", OpOther, immTwoU32},
	0x37: {"i64.store", OpOther, immTwoU32},
	0x38: {"f32.store", OpOther, immTwoU32},
	0x39: {"f64.store", OpOther, immTwoU32},
	0x3a: {"i32.store8", OpOther, immTwoU32},
	0x3b: {"i32.store16", OpOther, immTwoU32},
	0x3c: {"i64.store8", OpOther, immTwoU32},
	0x3d: {"i64.store16", OpOther, immTwoU32},
	0x3e: {"i64.store32", OpOther, immTwoU32},
	0x3f: {"memory.size", OpOther, immByte},
	0x40: {"memory.grow", OpOther, immByte},
	0x41: {"i32.const", OpOther, immI32},
	0x42: {"i64.const", OpOther, immI64},
	0x43: {"f32.const", OpOther, immF32},
	0x44: {"f64.const", OpOther, immF64},
	0x6a: {"i32.add", OpArith, immNone},
	0x6b: {"i32.sub", OpArith, immNone},
	0x6c: {"i32.mul", OpArith, immNone},
	0x6d: {"i32.div_s", OpArith, immNone},
	0x6e: {"i32.div_u", OpArith, immNone},
	0x7c: {"i64.add", OpArith, immNone},
	0x7d: {"i64.sub", OpArith, immNone},
	0x7e: {"i64.mul", OpArith, immNone},
	0x7f: {"i64.div_s", OpArith, immNone},
	0x80: {"i64.div_u", OpArith, immNone},
	0xfc: {"misc", OpOther, immMisc},
}

func lookupOp(b byte) opInfo {
	if info, ok := opTable[b]; ok {
		return info
	}
	// Remaining single-byte numeric/comparison opcodes carry no immediates.
	return opInfo{mnemonic: "other", class: OpOther, imm: immNone}
}

// classifyHost maps an imported host symbol to its class. The table keys on
// the long field names only; imports using the short convention (single
// letter module and field) classify HostUnknown regardless of module.
var hostByName = map[string]HostClass{
	"put_contract_data":            HostStoragePut,
	"get_contract_data":            HostStorageGet,
	"has_contract_data":            HostStorageHas,
	"del_contract_data":            HostStorageDel,
	"require_auth":                 HostAuth,
	"require_auth_for_args":        HostAuth,
	"contract_event":               HostEvent,
	"publish_event":                HostEvent,
	"update_current_contract_wasm": HostUpgrade,
	"fail_with_error":              HostFail,
}

func classifyHost(module, name string) HostClass {
	if c, ok := hostByName[name]; ok {
		return c
	}
	return HostUnknown
}

// hostOpClass maps a host class onto the instruction classification used by
// analyzers.
func hostOpClass(h HostClass) OpClass {
	switch h {
	case HostStoragePut, HostStorageDel:
		return OpStorageWrite
	case HostStorageGet, HostStorageHas:
		return OpStorageRead
	case HostFail:
		return OpAbort
	default:
		return OpCall
	}
}
