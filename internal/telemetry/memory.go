package telemetry

import (
	"fmt"
	"runtime"

	"github.com/guptarohit/asciigraph"
)

// DefaultWindow is the number of samples kept for the plot.
const DefaultWindow = 60

// Memory keeps a sliding window of heap samples in MiB. It is not safe
// for concurrent use; the console samples from its update loop.
type Memory struct {
	buf  []float64
	next int
	full bool
}

func NewMemory(window int) *Memory {
	if window < 2 {
		window = DefaultWindow
	}
	return &Memory{buf: make([]float64, window)}
}

// ReadHeapMiB returns the live heap of this process.
func ReadHeapMiB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1 << 20)
}

// Sample records the current heap size and returns it.
func (m *Memory) Sample() float64 {
	v := ReadHeapMiB()
	m.Add(v)
	return v
}

func (m *Memory) Add(v float64) {
	m.buf[m.next] = v
	m.next = (m.next + 1) % len(m.buf)
	if m.next == 0 {
		m.full = true
	}
}

func (m *Memory) Len() int {
	if m.full {
		return len(m.buf)
	}
	return m.next
}

// Values returns samples oldest first.
func (m *Memory) Values() []float64 {
	if !m.full {
		return append([]float64(nil), m.buf[:m.next]...)
	}
	out := make([]float64, 0, len(m.buf))
	out = append(out, m.buf[m.next:]...)
	return append(out, m.buf[:m.next]...)
}

// Last returns the newest sample, or 0 before the first one.
func (m *Memory) Last() float64 {
	if m.Len() == 0 {
		return 0
	}
	return m.buf[(m.next-1+len(m.buf))%len(m.buf)]
}

// Label formats the newest sample the way the console prints it.
func (m *Memory) Label() string {
	return fmt.Sprintf("MEMORY USG: %04.1fmb", m.Last())
}

// Plot draws the window with asciigraph. Fewer than two samples yield an
// empty string.
func (m *Memory) Plot(width, height int) string {
	values := m.Values()
	if len(values) < 2 {
		return ""
	}
	return asciigraph.Plot(values,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(1),
		asciigraph.Caption("heap MiB"),
	)
}
