package thrift

// Binary is the length-estimation value: a set of pure functions returning
// the wire byte count of a given identifier or value, with no side effects
// and no dependency on a reader or writer. Generated FastWrite-style code
// uses these to pre-size an output buffer before encoding into it with
// BinaryWriter, mirroring the BLength pattern generated Thrift Go code
// uses throughout this ecosystem.
var Binary binaryLengthCalculator

type binaryLengthCalculator struct{}

func (binaryLengthCalculator) BoolLength() int   { return 1 }
func (binaryLengthCalculator) ByteLength() int   { return 1 }
func (binaryLengthCalculator) I16Length() int    { return 2 }
func (binaryLengthCalculator) I32Length() int    { return 4 }
func (binaryLengthCalculator) I64Length() int    { return 8 }
func (binaryLengthCalculator) DoubleLength() int { return 8 }
func (binaryLengthCalculator) UUIDLength() int   { return 16 }

func (binaryLengthCalculator) StringLength(s string) int { return 4 + len(s) }

// StringLengthNocopy is identical to StringLength; the "Nocopy" name
// mirrors the generated-code convention that pairs a Length estimator with
// the matching WriteStringNocopy method, even though length estimation
// never touches the bytes either way.
func (binaryLengthCalculator) StringLengthNocopy(s string) int { return 4 + len(s) }

func (binaryLengthCalculator) BinaryLength(b []byte) int { return 4 + len(b) }

func (binaryLengthCalculator) MessageBeginLength(name string) int {
	return 4 + 4 + len(name) + 4
}
func (binaryLengthCalculator) MessageEndLength() int { return 0 }

func (binaryLengthCalculator) StructBeginLength() int { return 0 }
func (binaryLengthCalculator) StructEndLength() int   { return 0 }

func (binaryLengthCalculator) FieldBeginLength() int { return 1 + 2 }
func (binaryLengthCalculator) FieldEndLength() int   { return 0 }
func (binaryLengthCalculator) FieldStopLength() int  { return 1 }

func (binaryLengthCalculator) MapBeginLength() int { return 1 + 1 + 4 }
func (binaryLengthCalculator) MapEndLength() int   { return 0 }

func (binaryLengthCalculator) ListBeginLength() int { return 1 + 4 }
func (binaryLengthCalculator) ListEndLength() int   { return 0 }

func (binaryLengthCalculator) SetBeginLength() int { return 1 + 4 }
func (binaryLengthCalculator) SetEndLength() int   { return 0 }
