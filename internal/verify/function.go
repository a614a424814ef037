package verify

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/diag"
	"github.com/davidbrazdil/minsfi-abiverify/internal/intrinsic"
	"github.com/davidbrazdil/minsfi-abiverify/internal/typeclass"
)

// functionChecker is the Function Checker of spec.md §4.4: it walks a
// defined function's basic blocks and instructions, consulting the Type
// Classifier and Intrinsic Registry, and reports into a shared Reporter.
type functionChecker struct {
	cfg config.Config
	reg *intrinsic.Registry
	rep *diag.Reporter
	fn  *ir.Func
}

// CheckFunction runs the Function Checker over fn's body. It is a no-op for
// declarations (no blocks) — the Module Checker is responsible for
// rejecting declarations outside streaming mode.
func CheckFunction(cfg config.Config, reg *intrinsic.Registry, rep *diag.Reporter, fn *ir.Func) {
	fc := &functionChecker{cfg: cfg, reg: reg, rep: rep, fn: fn}
	for _, block := range fn.Blocks {
		for _, inst := range block.Insts {
			fc.checkStep(inst)
		}
		if block.Term != nil {
			fc.checkStep(block.Term)
		}
	}
}

// step is either an ir.Instruction or the ir.Terminator of a block; both
// are value.Value-like enough (terminators that produce no value still
// carry a type and metadata) for the uniform four-phase check of
// spec.md §4.4.
func (fc *functionChecker) checkStep(step interface{}) {
	name := fc.fn.Name()

	// Phase (a)+(b): opcode classification and opcode-specific checks.
	// When an opcode-specific check fails, the later phases are skipped for
	// that instruction (extractelement/insertelement excepted: their index
	// check does not gate them). One instruction can still get more than
	// one diagnostic: some opcode-specific checks report every problem they
	// find (nuw and nsw, for example), and the generic-operand, result and
	// metadata phases each report on their own. Later instructions keep
	// being checked.
	switch inst := step.(type) {

	// Always forbidden.
	case *ir.InstGetElementPtr:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: getelementptr", name)
		return
	case *ir.InstVAArg:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: vaarg", name)
		return
	case *ir.TermInvoke:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: invoke", name)
		return
	case *ir.InstLandingPad:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: landingpad", name)
		return
	case *ir.TermResume:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: resume", name)
		return
	case *ir.TermIndirectBr:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: indirectbr", name)
		return
	case *ir.InstShuffleVector:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: shufflevector", name)
		return
	case *ir.InstExtractValue:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: extractvalue", name)
		return
	case *ir.InstInsertValue:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: insertvalue", name)
		return
	case *ir.InstCmpXchg:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: cmpxchg", name)
		return
	case *ir.InstAtomicRMW:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: atomicrmw", name)
		return
	case *ir.InstFence:
		fc.rep.Errorf("Function %s disallowed: bad instruction opcode: fence", name)
		return

	// Always allowed; only generic operand/result checks apply.
	case *ir.TermRet, *ir.TermBr, *ir.TermCondBr, *ir.TermUnreachable,
		*ir.InstFAdd, *ir.InstFSub, *ir.InstFMul, *ir.InstFDiv, *ir.InstFRem,
		*ir.InstAnd, *ir.InstOr, *ir.InstXor,
		*ir.InstTrunc, *ir.InstZExt, *ir.InstSExt,
		*ir.InstFPTrunc, *ir.InstFPExt, *ir.InstFPToUI, *ir.InstFPToSI,
		*ir.InstUIToFP, *ir.InstSIToFP,
		*ir.InstFCmp, *ir.InstPhi, *ir.InstSelect:
		fc.checkGenericOperands(step, nil)
		fc.checkResult(step)
		fc.checkMetadata(step)

	// Opcode-specific: integer arithmetic and icmp.
	case *ir.InstAdd:
		if fc.checkArithFlags(name, "add", inst.X.Type(), inst.OverflowFlags) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstSub:
		if fc.checkArithFlags(name, "sub", inst.X.Type(), inst.OverflowFlags) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstMul:
		if fc.checkArithFlags(name, "mul", inst.X.Type(), inst.OverflowFlags) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstShl:
		if fc.checkArithFlags(name, "shl", inst.X.Type(), inst.OverflowFlags) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstUDiv:
		if fc.checkNoI1(name, inst.X.Type()) && fc.checkExact(name, "udiv", inst.Exact) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstSDiv:
		if fc.checkNoI1(name, inst.X.Type()) && fc.checkExact(name, "sdiv", inst.Exact) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstURem:
		if fc.checkNoI1(name, inst.X.Type()) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstSRem:
		if fc.checkNoI1(name, inst.X.Type()) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstLShr:
		if fc.checkNoI1(name, inst.X.Type()) && fc.checkExact(name, "lshr", inst.Exact) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstAShr:
		if fc.checkNoI1(name, inst.X.Type()) && fc.checkExact(name, "ashr", inst.Exact) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}
	case *ir.InstICmp:
		if fc.checkNoI1(name, inst.X.Type()) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}

	case *ir.InstExtractElement:
		fc.checkExtractInsertIndex(name, inst.X.Type(), inst.Index)
		fc.checkGenericOperands(step, nil)
		fc.checkResult(step)
		fc.checkMetadata(step)

	case *ir.InstInsertElement:
		fc.checkExtractInsertIndex(name, inst.X.Type(), inst.Index)
		fc.checkGenericOperands(step, nil)
		fc.checkResult(step)
		fc.checkMetadata(step)

	case *ir.InstLoad:
		if fc.checkLoad(name, inst) {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}

	case *ir.InstStore:
		if fc.checkStore(name, inst) {
			fc.checkGenericOperands(step, nil)
			fc.checkMetadata(step)
		}

	case *ir.InstBitCast:
		ok := true
		if _, isPtr := inst.To.(*types.PointerType); isPtr {
			if !fc.isInherentPtr(inst.From) {
				fc.rep.Errorf("Function %s disallowed: operand not InherentPtr", name)
				ok = false
			}
		}
		if ok {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}

	case *ir.InstIntToPtr:
		if !typeclass.IsI32(inst.From.Type()) {
			fc.rep.Errorf("Function %s disallowed: non-i32 inttoptr", name)
		} else {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}

	case *ir.InstPtrToInt:
		ok := true
		if !fc.isInherentPtr(inst.From) {
			fc.rep.Errorf("Function %s disallowed: operand not InherentPtr", name)
			ok = false
		}
		if !typeclass.IsI32(inst.To) {
			fc.rep.Errorf("Function %s disallowed: non-i32 ptrtoint", name)
			ok = false
		}
		if ok {
			fc.checkGenericOperands(step, nil)
			fc.checkResult(step)
			fc.checkMetadata(step)
		}

	case *ir.InstAlloca:
		ok := true
		if it, isInt := inst.ElemType.(*types.IntType); !isInt || it.BitSize != 8 {
			fc.rep.Errorf("Function %s disallowed: bad result type", name)
			ok = false
		}
		// A missing count operand is LLVM's implicit i32 1.
		if inst.NElems != nil && !typeclass.IsI32(inst.NElems.Type()) {
			fc.rep.Errorf("Function %s disallowed: bad operand", name)
			ok = false
		}
		if ok {
			fc.checkMetadata(step)
		}

	case *ir.InstCall:
		fc.checkCall(name, inst)

	case *ir.TermSwitch:
		fc.checkSwitch(name, inst)

	default:
		fc.rep.Errorf("Function %s disallowed: unknown instruction opcode", name)
	}
}

func (fc *functionChecker) checkArithFlags(fname, op string, operandType types.Type, flags []enum.OverflowFlag) bool {
	ok := fc.checkNoI1(fname, operandType)
	for _, f := range flags {
		switch f {
		case enum.OverflowFlagNUW:
			fc.rep.Errorf(`Function %s disallowed: has "nuw" attribute`, fname)
			ok = false
		case enum.OverflowFlagNSW:
			fc.rep.Errorf(`Function %s disallowed: has "nsw" attribute`, fname)
			ok = false
		}
	}
	return ok
}

func (fc *functionChecker) checkExact(fname, op string, exact bool) bool {
	if exact {
		fc.rep.Errorf(`Function %s disallowed: has "exact" attribute`, fname)
		return false
	}
	return true
}

func (fc *functionChecker) checkNoI1(fname string, t types.Type) bool {
	if typeclass.IsI1Vector(t) {
		fc.rep.Errorf("Function %s disallowed: arithmetic on vector of i1", fname)
		return false
	}
	if typeclass.IsI1(t) {
		fc.rep.Errorf("Function %s disallowed: arithmetic on i1", fname)
		return false
	}
	return true
}

func (fc *functionChecker) checkExtractInsertIndex(fname string, vecType types.Type, index value.Value) {
	ci, ok := index.(*constant.Int)
	if !ok {
		fc.rep.Errorf("Function %s disallowed: non-constant vector insert/extract index", fname)
		return
	}
	v, ok := vecType.(*types.VectorType)
	if !ok {
		return
	}
	idx := ci.X.Int64()
	if idx < 0 || uint64(idx) >= v.Len {
		fc.rep.Errorf("Function %s disallowed: vector index %d out of range [0, %d)", fname, idx, v.Len)
	}
}

func (fc *functionChecker) checkLoad(fname string, inst *ir.InstLoad) bool {
	ok := true
	if inst.Atomic || inst.Volatile {
		fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
		ok = false
	}
	if !fc.isNormalizedPtr(fc.cfg, inst.Src) {
		fc.rep.Errorf("Function %s disallowed: bad pointer", fname)
		ok = false
	}
	if !fc.allowedAlignment(inst.ElemType, inst.Align) {
		fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
		ok = false
	}
	return ok
}

func (fc *functionChecker) checkStore(fname string, inst *ir.InstStore) bool {
	ok := true
	if inst.Atomic || inst.Volatile {
		fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
		ok = false
	}
	if !fc.isNormalizedPtr(fc.cfg, inst.Dst) {
		fc.rep.Errorf("Function %s disallowed: bad pointer", fname)
		ok = false
	}
	if !fc.allowedAlignment(inst.Src.Type(), inst.Align) {
		fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
		ok = false
	}
	return ok
}

// allowedAlignment implements spec.md §4.4.4.
func (fc *functionChecker) allowedAlignment(t types.Type, align ir.Align) bool {
	if align == ir.AlignNone {
		return false
	}
	a := uint64(align)
	if a > ^uint64(0)/8 {
		return false
	}
	if v, ok := t.(*types.VectorType); ok {
		if typeclass.IsI1(v.ElemType) {
			return false
		}
		return a == typeclass.ByteSize(v.ElemType)
	}
	if a == 1 {
		return true
	}
	if ft, ok := t.(*types.FloatType); ok {
		if ft.Kind == types.FloatKindDouble && a == 8 {
			return true
		}
		if ft.Kind == types.FloatKindFloat && a == 4 {
			return true
		}
	}
	return false
}

func (fc *functionChecker) checkCall(fname string, call *ir.InstCall) {
	if _, isAsm := call.Callee.(*ir.InlineAsm); isAsm {
		fc.rep.Errorf("Function %s disallowed: inline assembly", fname)
		return
	}
	if len(call.FuncAttrs) > 0 {
		fc.rep.Errorf("Function %s disallowed: bad call attributes", fname)
		return
	}
	if call.CallingConv != 0 {
		fc.rep.Errorf("Function %s disallowed: bad call attributes", fname)
		return
	}
	// Intrinsic callees are never InherentPtrs, so intrinsic calls are
	// dispatched before the callee-operand check.
	if kind, ok := fc.calleeIntrinsicKind(call); ok {
		fc.checkIntrinsicCall(fname, kind, call)
		return
	}

	if !fc.isNormalizedPtr(fc.cfg, call.Callee) {
		fc.rep.Errorf("Function %s disallowed: bad function callee operand", fname)
		return
	}

	fc.checkGenericOperands(call, nil)
	fc.checkResult(call)
	fc.checkMetadata(call)
}

// checkIntrinsicCall implements spec.md §4.4.5. Unlike a regular call, it
// returns immediately once validated: metadata operands are permitted here
// and nowhere else, so the generic operand-shape check is deliberately
// bypassed.
func (fc *functionChecker) checkIntrinsicCall(fname string, kind intrinsic.Kind, call *ir.InstCall) {
	for _, arg := range call.Args {
		if fc.validScalarOperand(arg) || fc.validVectorOperand(arg) || fc.isNormalizedPtr(fc.cfg, arg) {
			continue
		}
		if _, isMD := arg.(*metadata.Value); isMD {
			continue
		}
		fc.rep.Errorf("Function %s disallowed: bad intrinsic operand", fname)
		return
	}

	if kind.IsMemory() {
		if len(call.Args) < 5 {
			fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
			return
		}
		alignArg, ok := call.Args[3].(*constant.Int)
		if !ok || alignArg.X.Int64() != 1 {
			fc.rep.Errorf("Function %s disallowed: bad alignment", fname)
			return
		}
	}

	if kind.IsAtomic() {
		if !fc.checkAtomicParams(fname, kind, call) {
			return
		}
	}

	if kind == intrinsic.KindAtomicIsLockFree {
		sizeArg, ok := call.Args[0].(*constant.Int)
		if !ok {
			fc.rep.Errorf("Function %s disallowed: invalid atomic lock-free byte size", fname)
			return
		}
		switch sizeArg.X.Int64() {
		case 1, 2, 4, 8:
		default:
			fc.rep.Errorf("Function %s disallowed: invalid atomic lock-free byte size", fname)
			return
		}
		if !typeclass.ValidScalar(call.Type()) {
			fc.rep.Errorf("Function %s disallowed: bad result type", fname)
			return
		}
	}
}

// checkAtomicParams validates the memory-order / rmw-operation constant
// parameters of an atomic intrinsic call per spec.md §4.4.5 item 3, which
// calls for every order-shaped or operation-shaped positional parameter to
// be checked, not merely the last.
func (fc *functionChecker) checkAtomicParams(fname string, kind intrinsic.Kind, call *ir.InstCall) bool {
	if len(call.Args) == 0 {
		return true
	}
	// cmpxchg carries two trailing order params (success, failure); every
	// other atomic intrinsic carries at most one, in the last position.
	orderIdxs := []int{len(call.Args) - 1}
	if kind == intrinsic.KindAtomicCmpxchg && len(call.Args) >= 2 {
		orderIdxs = []int{len(call.Args) - 2, len(call.Args) - 1}
	}
	for _, idx := range orderIdxs {
		orderArg, ok := call.Args[idx].(*constant.Int)
		if !ok {
			fc.rep.Errorf("Function %s disallowed: invalid atomic memory order", fname)
			return false
		}
		if !fc.cfg.MemoryOrderOK(orderArg.X.Int64()) {
			fc.rep.Errorf("Function %s disallowed: invalid memory order", fname)
			return false
		}
	}
	if kind == intrinsic.KindAtomicRMW {
		opArg, ok := call.Args[0].(*constant.Int)
		if !ok {
			fc.rep.Errorf("Function %s disallowed: invalid atomicRMW operation", fname)
			return false
		}
		if !fc.cfg.RMWOperationOK(opArg.X.Int64()) {
			fc.rep.Errorf("Function %s disallowed: invalid atomicRMW operation", fname)
			return false
		}
	}
	return true
}

func (fc *functionChecker) checkSwitch(fname string, sw *ir.TermSwitch) {
	condType := sw.X.Type()
	it, ok := condType.(*types.IntType)
	if !ok || it.BitSize < 8 || !fc.validScalarOperand(sw.X) {
		fc.rep.Errorf("Function %s disallowed: bad switch condition", fname)
		return
	}
	for _, c := range sw.Cases {
		if c.X == nil || !fc.validScalarOperand(c.X) {
			fc.rep.Errorf("Function %s disallowed: bad switch case", fname)
			return
		}
	}
}

// checkGenericOperands implements spec.md §4.4.6: after opcode-specific
// checks, every remaining (non-pointer) operand must be a valid scalar or
// vector operand. extraSkip lists operands already validated as pointers by the
// opcode-specific phase.
func (fc *functionChecker) checkGenericOperands(step interface{}, extraSkip []value.Value) {
	fname := fc.fn.Name()
	for _, op := range operandsOf(step) {
		if op == nil {
			continue
		}
		if contains(extraSkip, op) {
			continue
		}
		// Pointer-typed operands are validated by the opcode-specific
		// phase (NormalizedPtr / InherentPtr), not here: spec.md §4.4.6
		// covers only "remaining (non-pointer) operand"s.
		if _, isPtr := op.Type().(*types.PointerType); isPtr {
			continue
		}
		if _, isBlock := op.(*ir.Block); isBlock {
			continue
		}
		if fc.validScalarOperand(op) || fc.validVectorOperand(op) {
			continue
		}
		fc.rep.Errorf("Function %s disallowed: bad operand", fname)
		return
	}
}

func contains(vs []value.Value, v value.Value) bool {
	for _, x := range vs {
		if x == v {
			return true
		}
	}
	return false
}

// validScalarOperand implements spec.md §4.4.6's valid-scalar-operand
// predicate.
func (fc *functionChecker) validScalarOperand(v value.Value) bool {
	switch v.(type) {
	case *ir.Param:
		return true
	case *ir.Block:
		return true
	case *constant.Int, *constant.Float:
		return typeclass.ValidScalar(v.Type())
	case *constant.Undef:
		return typeclass.ValidScalar(v.Type())
	default:
		return isInstructionResult(v)
	}
}

// validVectorOperand implements spec.md §4.4.6's valid-vector-operand
// predicate: constant vectors other than undef are forbidden.
func (fc *functionChecker) validVectorOperand(v value.Value) bool {
	switch v.(type) {
	case *ir.Param:
		return true
	case *constant.Undef:
		return typeclass.ValidVector(fc.cfg, v.Type())
	default:
		return isInstructionResult(v)
	}
}

func isInstructionResult(v value.Value) bool {
	switch v.(type) {
	case *ir.Param, *ir.Block, *ir.Global, *ir.Func:
		return false
	}
	if _, isConst := v.(constant.Constant); isConst {
		return false
	}
	return true
}

// checkResult implements spec.md §4.4.8.
func (fc *functionChecker) checkResult(step interface{}) {
	v, ok := step.(value.Value)
	if !ok {
		return
	}
	t := v.Type()
	if _, isVoid := t.(*types.VoidType); isVoid {
		return
	}
	if typeclass.ValidScalar(t) || typeclass.ValidVector(fc.cfg, t) {
		return
	}
	if typeclass.ValidPointer(fc.cfg, t) {
		switch step.(type) {
		case *ir.InstAlloca, *ir.InstBitCast, *ir.InstIntToPtr:
			return
		}
	}
	fc.rep.Errorf("Function %s disallowed: bad result type", fc.fn.Name())
}

// checkMetadata implements spec.md §4.4.9.
func (fc *functionChecker) checkMetadata(step interface{}) {
	attachments := metadataAttachmentsOf(step)
	for _, a := range attachments {
		if a.Name != "dbg" || !fc.cfg.AllowDebugMetadata {
			fc.rep.Errorf("Function %s disallowed: disallowed metadata attachment %q", fc.fn.Name(), a.Name)
		}
	}
}
