// Package diag holds optional diagnostic logging for callers that want
// visibility into codec-level events that are not themselves failures
// (a header at its cap, a frame recycled under memory pressure). The
// codec packages (thrift, ttheader, framed) never import this package and
// never log on their own hot path; logging is the caller's choice, made by
// invoking these helpers explicitly around codec calls.
package diag

import "github.com/cloudwego/kitex/pkg/klog"

// WarnHeaderNearCap logs that a decoded TTHeader frame's header region is
// within slack bytes of limits.MaxHeaderSize.
func WarnHeaderNearCap(headerBytes, maxHeaderSize int) {
	klog.Warnf("ttheader: header size %d approaching cap %d", headerBytes, maxHeaderSize)
}

// WarnBufferRecycled logs that an async reader's internal buffer was
// recycled under pressure rather than grown further.
func WarnBufferRecycled(size int) {
	klog.Warnf("asyncthrift: recycled %d-byte refill buffer", size)
}

// DebugFrameDecoded logs a successfully decoded TTHeader frame's size, for
// tracing transport-level throughput.
func DebugFrameDecoded(seqID int32, totalBytes int) {
	klog.Debugf("ttheader: decoded frame seq=%d bytes=%d", seqID, totalBytes)
}
