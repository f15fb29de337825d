// Package buffer implements the buffering engine that sits between a stream
// and its device.
//
// The package offers two buffer types, one per direction:
//
//   - Sink: a write-side window over a fixed byte region. Written bytes
//     accumulate in the window and are handed to a flush function according
//     to a flush policy (Mode). The flush function may accept only a prefix of
//     the window; the remainder is shifted to the front of storage and kept.
//
//   - Source: a read-side pushback stack. Bytes pushed back are returned by
//     the next reads, most recently pushed first, before any request falls
//     through to the device.
//
// Neither type is safe for concurrent use; a stream owns its buffers.
//
// Example usage:
//
//	sink := buffer.NewSink(buffer.ModeLine, 4096)
//	n, err := sink.Write([]byte("hello\n"), dev.Write)
//
//	var src buffer.Source
//	src.Push([]byte("x"))
//	b, err := src.ReadByte(dev.Read)
package buffer
