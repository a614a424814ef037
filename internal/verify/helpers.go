package verify

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/metadata"
	"github.com/llir/llvm/ir/value"
)

// operandsOf returns the operand values of step that are subject to the
// generic operand-shape check of spec.md §4.4.6. Operands already
// validated by an opcode-specific phase (pointer operands of load/store/
// bitcast/call, switch conditions/cases) either arrive here pointer-typed
// (and are skipped automatically by checkGenericOperands) or are never
// routed through this function at all (switch is handled entirely by
// checkSwitch).
func operandsOf(step interface{}) []value.Value {
	switch s := step.(type) {
	case *ir.TermRet:
		if s.X == nil {
			return nil
		}
		return []value.Value{s.X}
	case *ir.TermBr:
		return []value.Value{s.Target}
	case *ir.TermCondBr:
		return []value.Value{s.Cond, s.TargetTrue, s.TargetFalse}
	case *ir.TermUnreachable:
		return nil
	case *ir.InstFAdd:
		return []value.Value{s.X, s.Y}
	case *ir.InstFSub:
		return []value.Value{s.X, s.Y}
	case *ir.InstFMul:
		return []value.Value{s.X, s.Y}
	case *ir.InstFDiv:
		return []value.Value{s.X, s.Y}
	case *ir.InstFRem:
		return []value.Value{s.X, s.Y}
	case *ir.InstAnd:
		return []value.Value{s.X, s.Y}
	case *ir.InstOr:
		return []value.Value{s.X, s.Y}
	case *ir.InstXor:
		return []value.Value{s.X, s.Y}
	case *ir.InstAdd:
		return []value.Value{s.X, s.Y}
	case *ir.InstSub:
		return []value.Value{s.X, s.Y}
	case *ir.InstMul:
		return []value.Value{s.X, s.Y}
	case *ir.InstShl:
		return []value.Value{s.X, s.Y}
	case *ir.InstUDiv:
		return []value.Value{s.X, s.Y}
	case *ir.InstSDiv:
		return []value.Value{s.X, s.Y}
	case *ir.InstURem:
		return []value.Value{s.X, s.Y}
	case *ir.InstSRem:
		return []value.Value{s.X, s.Y}
	case *ir.InstLShr:
		return []value.Value{s.X, s.Y}
	case *ir.InstAShr:
		return []value.Value{s.X, s.Y}
	case *ir.InstICmp:
		return []value.Value{s.X, s.Y}
	case *ir.InstFCmp:
		return []value.Value{s.X, s.Y}
	case *ir.InstTrunc:
		return []value.Value{s.From}
	case *ir.InstZExt:
		return []value.Value{s.From}
	case *ir.InstSExt:
		return []value.Value{s.From}
	case *ir.InstFPTrunc:
		return []value.Value{s.From}
	case *ir.InstFPExt:
		return []value.Value{s.From}
	case *ir.InstFPToUI:
		return []value.Value{s.From}
	case *ir.InstFPToSI:
		return []value.Value{s.From}
	case *ir.InstUIToFP:
		return []value.Value{s.From}
	case *ir.InstSIToFP:
		return []value.Value{s.From}
	case *ir.InstPhi:
		vals := make([]value.Value, 0, len(s.Incs))
		for _, inc := range s.Incs {
			vals = append(vals, inc.X)
		}
		return vals
	case *ir.InstSelect:
		return []value.Value{s.Cond, s.X, s.Y}
	case *ir.InstExtractElement:
		return []value.Value{s.X, s.Index}
	case *ir.InstInsertElement:
		return []value.Value{s.X, s.Elem, s.Index}
	case *ir.InstLoad:
		return []value.Value{s.Src}
	case *ir.InstStore:
		return []value.Value{s.Dst, s.Src}
	case *ir.InstBitCast:
		return []value.Value{s.From}
	case *ir.InstIntToPtr:
		return []value.Value{s.From}
	case *ir.InstPtrToInt:
		return []value.Value{s.From}
	case *ir.InstCall:
		vals := make([]value.Value, 0, len(s.Args)+1)
		vals = append(vals, s.Callee)
		vals = append(vals, s.Args...)
		return vals
	default:
		return nil
	}
}

// metadataAttachmentsOf returns the per-instruction metadata attachments
// of step, if it carries any (spec.md §4.4.9). Instructions that cannot
// carry attachments in this subset (terminators, for instance, rarely do
// in practice) simply return nil.
func metadataAttachmentsOf(step interface{}) []*metadata.Attachment {
	type withMetadata interface {
		MetadataAttachments() []*metadata.Attachment
	}
	if wm, ok := step.(withMetadata); ok {
		return wm.MetadataAttachments()
	}
	return nil
}
