package verify

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"

	"github.com/davidbrazdil/minsfi-abiverify/internal/config"
	"github.com/davidbrazdil/minsfi-abiverify/internal/diag"
	"github.com/davidbrazdil/minsfi-abiverify/internal/intrinsic"
	"github.com/davidbrazdil/minsfi-abiverify/internal/typeclass"
)

// moduleChecker is the Module Checker of spec.md §4.3. It runs once per
// module and invokes the Function Checker itself on each admitted defined
// function as it visits that function, sharing one Reporter with it.
type moduleChecker struct {
	cfg config.Config
	reg *intrinsic.Registry
	rep *diag.Reporter

	entryCount int
}

// CheckModule runs the Module Checker over m: globals in declaration order,
// then aliases, then functions, then named metadata, then top-level inline
// assembly. A defined function's body is checked right after that
// function's own module-level checks, so its body diagnostics come before
// those of later functions, named metadata and inline assembly. The
// entry-point diagnostic is emitted last, after every global and function
// has been visited.
func CheckModule(cfg config.Config, reg *intrinsic.Registry, rep *diag.Reporter, m *ir.Module) {
	mc := &moduleChecker{cfg: cfg, reg: reg, rep: rep}

	for _, g := range m.Globals {
		mc.checkGlobal(g)
	}
	for _, a := range m.Aliases {
		mc.rep.Errorf("Variable %s is an alias (disallowed)", a.Name())
	}
	for _, fn := range m.Funcs {
		mc.checkFunc(fn)
	}
	mc.checkNamedMetadata(m)
	mc.checkModuleAsm(m)

	switch mc.entryCount {
	case 0:
		mc.rep.Errorf("Module has no entry point")
	default:
		if mc.entryCount > 1 {
			mc.rep.Errorf("Module has multiple entry points")
		}
	}
}

// checkGlobal implements the global-variable rules of spec.md §4.3.
func (mc *moduleChecker) checkGlobal(g *ir.Global) {
	name := g.Name()

	switch g.Linkage {
	case enum.LinkageNone, enum.LinkageExternal:
		if name != mc.cfg.RootEntryName {
			mc.rep.Errorf("Variable %s is not a valid external symbol", name)
		} else {
			mc.entryCount++
		}
	case enum.LinkageInternal:
		// admitted
	default:
		mc.rep.Errorf("Variable %s has disallowed linkage type", name)
	}

	if g.Visibility != enum.VisibilityNone && g.Visibility != enum.VisibilityDefault {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "visibility")
	}
	if g.Section != "" {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "section")
	}
	if uint64(g.AddrSpace) != 0 {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "addrspace")
	}
	if g.UnnamedAddr != enum.UnnamedAddrNone {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "unnamed_addr")
	}
	if g.TLSModel != enum.TLSModelNone {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "thread_local")
	}
	if g.ExternallyInitialized {
		mc.rep.Errorf("Variable %s has disallowed %q attribute", name, "externally_initialized")
	}

	if g.Init == nil {
		mc.rep.Errorf("Variable %s has non-flattened initializer", name)
		return
	}
	if !mc.isFlattenedInitializer(g.Init) {
		mc.rep.Errorf("Variable %s has non-flattened initializer", name)
	}
}

// isFlattenedInitializer implements spec.md §4.3's flattened-initializer
// grammar: a SimpleElement, or a packed anonymous struct of at least two
// SimpleElement fields.
func (mc *moduleChecker) isFlattenedInitializer(c constant.Constant) bool {
	if mc.isSimpleElement(c) {
		return true
	}
	return mc.isCompoundElement(c)
}

func (mc *moduleChecker) isSimpleElement(c constant.Constant) bool {
	switch cc := c.(type) {
	case *constant.CharArray:
		return true
	case *constant.ZeroInitializer:
		at, ok := cc.Typ.(*types.ArrayType)
		if !ok {
			return false
		}
		it, ok := at.ElemType.(*types.IntType)
		return ok && it.BitSize == 8
	case *constant.ExprPtrToInt:
		return typeclass.IsI32(cc.To) && isGlobalValueOperand(cc.From)
	case *constant.ExprAdd:
		return mc.isPtrToIntOfGlobal(cc.X) && isConstI32(cc.Y) || mc.isPtrToIntOfGlobal(cc.Y) && isConstI32(cc.X)
	default:
		return false
	}
}

func (mc *moduleChecker) isPtrToIntOfGlobal(c constant.Constant) bool {
	p, ok := c.(*constant.ExprPtrToInt)
	if !ok {
		return false
	}
	return typeclass.IsI32(p.To) && isGlobalValueOperand(p.From)
}

func isConstI32(c constant.Constant) bool {
	_, ok := c.(*constant.Int)
	return ok && typeclass.IsI32(c.Type())
}

func isGlobalValueOperand(v constant.Constant) bool {
	switch v.(type) {
	case *ir.Global, *ir.Func:
		return true
	default:
		return false
	}
}

func (mc *moduleChecker) isCompoundElement(c constant.Constant) bool {
	st, ok := c.(*constant.Struct)
	if !ok {
		return false
	}
	t, ok := st.Typ.(*types.StructType)
	if !ok || !t.Packed || t.TypeName != "" {
		return false
	}
	if len(st.Fields) < 2 {
		return false
	}
	for _, f := range st.Fields {
		if !mc.isSimpleElement(f) {
			return false
		}
	}
	return true
}

// checkFunc implements the function rules of spec.md §4.3.
func (mc *moduleChecker) checkFunc(fn *ir.Func) {
	name := fn.Name()

	if _, ok := mc.reg.Lookup(name, fn.Sig.Params, fn.Sig.RetType); ok {
		return
	}

	if !typeclass.ValidFuncType(mc.cfg, fn.Sig) {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "type")
		return
	}
	if len(fn.Blocks) == 0 && !mc.cfg.StreamingMode {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "declaration")
	}
	if len(fn.FuncAttrs) > 0 {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "attributes")
	}
	if fn.CallingConv != enum.CallingConvNone {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "callingconv")
	}

	switch fn.Linkage {
	case enum.LinkageNone, enum.LinkageExternal:
		if name != mc.cfg.EntryName {
			mc.rep.Errorf("Function %s is not a valid external symbol", name)
		} else {
			mc.entryCount++
		}
	case enum.LinkageInternal:
		// admitted
	default:
		mc.rep.Errorf("Function %s has disallowed linkage type", name)
	}

	if fn.Visibility != enum.VisibilityNone && fn.Visibility != enum.VisibilityDefault {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "visibility")
	}
	if fn.Section != "" {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "section")
	}
	if uint64(fn.AddrSpace) != 0 {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "addrspace")
	}
	if fn.UnnamedAddr != enum.UnnamedAddrNone {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "unnamed_addr")
	}
	if fn.GC != "" {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "gc")
	}
	if fn.Align != ir.AlignNone {
		mc.rep.Errorf("Function %s has disallowed %q attribute", name, "align")
	}

	if len(fn.Blocks) > 0 {
		CheckFunction(mc.cfg, mc.reg, mc.rep, fn)
	}
}

// checkNamedMetadata implements spec.md §4.3's named-metadata rule: admitted
// only under the llvm.dbg. namespace, and only when debug metadata is on.
func (mc *moduleChecker) checkNamedMetadata(m *ir.Module) {
	for _, nmd := range m.NamedMetadataDefs {
		if !mc.cfg.AllowDebugMetadata || !intrinsic.IsDebugNamedMetadata(nmd.Name) {
			mc.rep.Errorf("Module has disallowed named metadata %q", nmd.Name)
		}
	}
}

// checkModuleAsm implements spec.md §4.3's top-level inline-assembly rule.
func (mc *moduleChecker) checkModuleAsm(m *ir.Module) {
	if len(m.ModuleAsms) > 0 {
		mc.rep.Errorf("Module has disallowed top-level inline assembly")
	}
}
