package thrift

// SkipSource is the minimal set of primitives the iterative skip engine
// needs from a reader. Both the synchronous BinaryReader and the
// asynchronous reader in asyncthrift implement it; the engine itself is
// shared so the two readers can never drift on skip semantics.
type SkipSource interface {
	// SkipAdvance consumes exactly n bytes without materializing them.
	SkipAdvance(n int) error
	// SkipByte consumes and returns one byte, typically a type tag.
	SkipByte() (byte, error)
	// SkipI16 consumes a big-endian 16-bit value (map/list/set never need
	// this, but struct field ids do).
	SkipI16() (int16, error)
	// SkipI32 consumes a big-endian 32-bit value (string/binary lengths and
	// collection sizes).
	SkipI32() (int32, error)
}

type skipFrameKind uint8

const (
	frameOther skipFrameKind = iota
	frameCollection
)

// skipFrame is one entry of the skip engine's explicit work stack. Other
// frames consume exactly one value of type T; Collection frames consume
// `remaining` more elements whose types alternate between t0 and t1 (maps)
// or are both equal (lists/sets).
type skipFrame struct {
	kind      skipFrameKind
	other     TType
	remaining int32
	t0, t1    TType
}

// maxSkipDepth bounds the number of outstanding frames the engine will
// allocate for; this is independent of the inline stack capacity below and
// only guards against pathological input that would otherwise grow the
// stack without bound (e.g. a struct nested 10 million fields deep would
// still only ever hold O(d) frames, this just puts a hard ceiling on d).
const maxSkipDepth = 1 << 20

// Skip consumes exactly one value of type t from src without materializing
// it, using an iterative work stack so that adversarially deep nesting
// cannot overflow the host stack. Typical nesting is small, so the stack
// starts with inline capacity and spills to the heap only for deep input.
func Skip(src SkipSource, t TType) error {
	stack := make([]skipFrame, 0, 16)
	stack = append(stack, skipFrame{kind: frameOther, other: t})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.kind == frameCollection {
			if top.remaining == 0 {
				stack = stack[:len(stack)-1]
				continue
			}
			// remaining starts at 2*count for maps (t0=key, t1=value): an
			// even remaining means the next element is a key, odd means a
			// value, so keys and values alternate key,value,key,value,...
			// For lists/sets t0 == t1 so parity doesn't matter.
			var next TType
			if top.remaining%2 == 0 {
				next = top.t0
			} else {
				next = top.t1
			}
			top.remaining--
			if len(stack) >= maxSkipDepth {
				return errDepthLimitHit
			}
			stack = append(stack, skipFrame{kind: frameOther, other: next})
			continue
		}

		// frameOther
		t := top.other
		if !validSkipType(t) {
			return invalidDataf("unknown type tag %d in skip", t)
		}
		if w := typeToSize[t]; w > 0 {
			if err := src.SkipAdvance(int(w)); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			continue
		}
		switch t {
		case STRING:
			if err := skipString(src); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
		case STRUCT:
			ft, err := src.SkipByte()
			if err != nil {
				return err
			}
			if TType(ft) == STOP {
				stack = stack[:len(stack)-1]
				continue
			}
			if !ValidType(ft) {
				return invalidDataf("unknown field type tag %d", ft)
			}
			if _, err := src.SkipI16(); err != nil { // field id
				return err
			}
			// The struct frame stays on the stack (still walking its field
			// stream); push the field's own type as the next frame to consume.
			if len(stack) >= maxSkipDepth {
				return errDepthLimitHit
			}
			stack = append(stack, skipFrame{kind: frameOther, other: TType(ft)})
		case LIST, SET:
			et, err := src.SkipByte()
			if err != nil {
				return err
			}
			if !ValidType(et) {
				return invalidDataf("unknown element type tag %d", et)
			}
			sz, err := src.SkipI32()
			if err != nil {
				return err
			}
			if sz < 0 {
				return errNegativeSize
			}
			stack = stack[:len(stack)-1]
			if w := typeToSize[TType(et)]; w > 0 {
				if err := src.SkipAdvance(int(sz) * int(w)); err != nil {
					return err
				}
				continue
			}
			if sz == 0 {
				continue
			}
			if len(stack) >= maxSkipDepth {
				return errDepthLimitHit
			}
			stack = append(stack, skipFrame{kind: frameCollection, remaining: sz, t0: TType(et), t1: TType(et)})
		case MAP:
			kt, err := src.SkipByte()
			if err != nil {
				return err
			}
			vt, err := src.SkipByte()
			if err != nil {
				return err
			}
			if !ValidType(kt) || !ValidType(vt) {
				return invalidDataf("unknown map element type tag (%d,%d)", kt, vt)
			}
			sz, err := src.SkipI32()
			if err != nil {
				return err
			}
			if sz < 0 {
				return errNegativeSize
			}
			stack = stack[:len(stack)-1]
			kw, vw := typeToSize[TType(kt)], typeToSize[TType(vt)]
			if kw > 0 && vw > 0 {
				if err := src.SkipAdvance(int(sz) * int(kw+vw)); err != nil {
					return err
				}
				continue
			}
			if sz == 0 {
				continue
			}
			if len(stack) >= maxSkipDepth {
				return errDepthLimitHit
			}
			stack = append(stack, skipFrame{kind: frameCollection, remaining: 2 * sz, t0: TType(kt), t1: TType(vt)})
		default:
			return invalidDataf("unskippable type tag %d", t)
		}
	}
	return nil
}

func validSkipType(t TType) bool {
	return ValidType(byte(t))
}

func skipString(src SkipSource) error {
	n, err := src.SkipI32()
	if err != nil {
		return err
	}
	if n < 0 {
		return errNegativeSize
	}
	return src.SkipAdvance(int(n))
}
