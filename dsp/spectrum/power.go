package spectrum

import (
	"sync"

	"github.com/cwbudde/algo-vecmath"
)

// scratchBuf holds pooled scratch memory for complex-to-real unpacking.
type scratchBuf struct {
	data []float64
}

var scratchPool = sync.Pool{
	New: func() any { return &scratchBuf{} },
}

// getScratch returns re, im and power views of length n.
func getScratch(n int) (re, im, pow []float64, buf *scratchBuf) {
	buf = scratchPool.Get().(*scratchBuf)
	need := 3 * n
	if cap(buf.data) < need {
		buf.data = make([]float64, need)
	} else {
		buf.data = buf.data[:need]
	}
	return buf.data[:n], buf.data[n : 2*n], buf.data[2*n:], buf
}

// PowerInPlace replaces every bin with |X[k]|^2 + 0i.
//
// Applied between a forward and an inverse transform it yields the circular
// autocorrelation of the transformed sequence.
func PowerInPlace(bins []complex128) {
	if len(bins) == 0 {
		return
	}

	re, im, pow, buf := getScratch(len(bins))
	for i, c := range bins {
		re[i] = real(c)
		im[i] = imag(c)
	}

	vecmath.Power(pow, re, im)

	for i, p := range pow {
		bins[i] = complex(p, 0)
	}
	scratchPool.Put(buf)
}
