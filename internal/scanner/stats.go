package scanner

import "sync/atomic"

// Stats holds the run's live counters. Workers and the writer update them
// atomically; the TUI and the metrics collector read snapshots.
type Stats struct {
	DirsScanned atomic.Int64
	DirsResumed atomic.Int64
	FilesHashed atomic.Int64
	BytesHashed atomic.Int64
	Symlinks    atomic.Int64
	Failures    atomic.Int64
	Writes      atomic.Int64
}

// Snapshot is a point-in-time copy of the counters plus queue depths.
type Snapshot struct {
	DirsScanned int64
	DirsResumed int64
	FilesHashed int64
	BytesHashed int64
	Symlinks    int64
	Failures    int64
	Writes      int64
	QueueLen    int
	SinkLen     int
}

func (s *Stats) snapshot() Snapshot {
	return Snapshot{
		DirsScanned: s.DirsScanned.Load(),
		DirsResumed: s.DirsResumed.Load(),
		FilesHashed: s.FilesHashed.Load(),
		BytesHashed: s.BytesHashed.Load(),
		Symlinks:    s.Symlinks.Load(),
		Failures:    s.Failures.Load(),
		Writes:      s.Writes.Load(),
	}
}
