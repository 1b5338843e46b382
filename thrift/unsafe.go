package thrift

import "github.com/cloudwego/gopkg/unsafex"

// bytesToString performs a zero-copy cast. Only safe for the synchronous
// reader, whose returned views are documented as aliasing the input buffer.
func bytesToString(b []byte) string {
	return unsafex.BinaryToString(b)
}

// stringToBytes performs a zero-copy cast for writing s without an
// intermediate copy; the writer only reads from the result before it
// returns, so no aliasing hazard escapes to the caller.
func stringToBytes(s string) []byte {
	return unsafex.StringToBinary(s)
}
