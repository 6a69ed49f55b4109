package ble

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopeace88/RunVision-Wear/internal/domain"
	"github.com/gopeace88/RunVision-Wear/internal/service/ble/hud"
)

// A write with no completion callback after this long is treated as a
// recoverable transport stall: the flag is cleared and draining resumes.
const writeTimeout = 2000 * time.Millisecond

// WriteQueue serializes outgoing frames over a single in-flight
// wireless channel. One snapshot becomes five frames, written one at a
// time, each awaiting its platform write-completion callback. Delivery
// is best-effort, at-most-once per tick: a snapshot arriving while a
// write is outstanding is dropped entirely and superseded by the next
// tick's call.
type WriteQueue struct {
	mu     sync.Mutex
	writer domain.FrameWriter

	timeout time.Duration

	queue    [][]byte
	inFlight bool
	seq      uint64 // identifies the outstanding write for its watchdog
}

func NewWriteQueue(writer domain.FrameWriter) *WriteQueue {
	return newWriteQueue(writer, writeTimeout)
}

func newWriteQueue(writer domain.FrameWriter, timeout time.Duration) *WriteQueue {
	return &WriteQueue{writer: writer, timeout: timeout}
}

// Send enqueues one snapshot as five frames in fixed priority order
// and begins draining. Dropped without merging if a write is still
// outstanding.
func (q *WriteQueue) Send(m domain.RunningMetrics) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight {
		return
	}

	q.queue = q.queue[:0]
	q.queue = append(q.queue,
		hud.EncodeSportTime(m.ElapsedSeconds),
		hud.EncodePace(m.Pace),
		hud.EncodeHeartRate(m.HeartRate),
		hud.EncodeCadence(m.Cadence),
		hud.EncodeDistance(m.Distance),
	)

	q.writeNext()
}

// writeNext pops the head frame and hands it to the transport.
// Caller holds q.mu. The write itself is submitted off the lock so a
// transport that completes synchronously cannot deadlock the queue.
func (q *WriteQueue) writeNext() {
	if len(q.queue) == 0 {
		return
	}

	frame := q.queue[0]
	q.queue = q.queue[1:]

	q.inFlight = true
	q.seq++
	seq := q.seq

	time.AfterFunc(q.timeout, func() { q.onStall(seq) })

	go func() {
		if err := q.writer.Write(frame, func(err error) { q.onComplete(seq, err) }); err != nil {
			// Transport refused the write outright; drop the rest of
			// this tick's frames. The next tick resends fresh data.
			slog.Warn("hud write rejected", "error", err)
			q.mu.Lock()
			if q.inFlight && seq == q.seq {
				q.queue = q.queue[:0]
				q.inFlight = false
			}
			q.mu.Unlock()
		}
	}()
}

func (q *WriteQueue) onComplete(seq uint64, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.inFlight || seq != q.seq {
		// Stale callback: the watchdog already recovered this write.
		return
	}

	q.inFlight = false
	if err != nil {
		slog.Warn("hud write failed", "error", err)
		q.queue = q.queue[:0]
		return
	}

	q.writeNext()
}

// onStall fires when a write's completion callback never arrived.
func (q *WriteQueue) onStall(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.inFlight || seq != q.seq {
		return
	}

	slog.Warn("hud write stalled, forcing drain")
	q.inFlight = false
	q.writeNext()
}

// Busy reports whether a write is currently outstanding.
func (q *WriteQueue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.inFlight
}
