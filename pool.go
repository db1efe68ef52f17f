package delimtools

import (
	"bytes"
	"sync"
)

// maxPooledBufferSize keeps buffers grown by unusually large encodes out of the pool
const maxPooledBufferSize = 1024 * 1024 // 1MB

// bufferPool recycles the buffers of in-memory encodes
var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// getBuffer returns an empty buffer from the pool
func getBuffer() *bytes.Buffer {
	buf, ok := bufferPool.Get().(*bytes.Buffer)
	if !ok {
		return new(bytes.Buffer)
	}
	buf.Reset()
	return buf
}

// putBuffer returns buf to the pool unless it grew too large
func putBuffer(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > maxPooledBufferSize {
		return
	}
	bufferPool.Put(buf)
}
