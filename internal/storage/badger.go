package storage

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/supsim/internal/core/domain"
	"github.com/yndnr/supsim/internal/core/service"
)

var _ service.SnapshotRepository = (*BadgerStore)(nil)

// Key layout:
//
//	snap/meta/<slug>                  JSON metadata
//	snap/seq/<slug>                   8-byte insertion sequence
//	snap/order/<seq>                  slug, iterated for List
//	snap/gen/<slug>                   16-byte generation of the live chunks
//	snap/blob/<slug>/<gen><chunk>     archive bytes in chunkSize pieces
const (
	prefixMeta  = "snap/meta/"
	prefixSeq   = "snap/seq/"
	prefixOrder = "snap/order/"
	prefixGen   = "snap/gen/"
	prefixBlob  = "snap/blob/"

	// chunkSize keeps every value below badger's value threshold so
	// archives stay in the LSM tree in both disk and in-memory modes.
	chunkSize = 512 << 10

	genSize   = len(ulid.ULID{})
	chunkIdx  = 4
	blobTrail = genSize + chunkIdx

	// maxConflictRetries bounds the retries of a commit that lost a race
	// with a concurrent write to the same slug.
	maxConflictRetries = 16
)

// BadgerStore keeps snapshots in Badger.
//
// Archive bytes are staged under a fresh generation with a WriteBatch,
// which splits them over as many transactions as needed, so archive size
// is not bounded by badger's transaction limit. A small final transaction
// then publishes metadata, ordering and the generation pointer together;
// readers only follow the pointer, so a snapshot appears and vanishes
// atomically. Chunks of a replaced or deleted generation are dropped
// afterwards, and leftovers of an interrupted write are swept on open.
type BadgerStore struct {
	db     *badger.DB
	cfg    Config
	logger *slog.Logger
	seq    atomic.Uint64

	lastGCTime atomic.Int64 // Unix milliseconds

	metricsLSMSize      prometheus.GaugeFunc
	metricsValueLogSize prometheus.GaugeFunc

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewBadgerStore opens a badger database, in memory when cfg.Dir is empty.
func NewBadgerStore(cfg Config, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger: logger}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	s := &BadgerStore{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	if err := s.loadSequence(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.sweepOrphans(); err != nil {
		db.Close()
		return nil, err
	}

	go s.gcLoop()

	logger.Info("snapshot storage ready",
		"engine", EngineBadger,
		"dir", cfg.Dir,
		"in_memory", cfg.Dir == "")
	return s, nil
}

// loadSequence resumes the insertion counter after the last stored entry.
func (s *BadgerStore) loadSequence() error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixOrder)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			s.seq.Store(binary.BigEndian.Uint64(key[len(prefixOrder):]))
		}
		return nil
	})
}

// sweepOrphans drops chunks that no generation pointer references: the
// staged bytes of a write that never published, or a replaced generation
// whose cleanup did not run.
func (s *BadgerStore) sweepOrphans() error {
	live := make(map[string]string)
	var orphans [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixGen)
		it := txn.NewIterator(opts)
		for it.Rewind(); it.Valid(); it.Next() {
			gen, err := it.Item().ValueCopy(nil)
			if err != nil {
				it.Close()
				return err
			}
			live[string(it.Item().Key()[len(prefixGen):])] = string(gen)
		}
		it.Close()

		opts = badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixBlob)
		it = txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if len(key) < len(prefixBlob)+1+blobTrail {
				orphans = append(orphans, it.Item().KeyCopy(nil))
				continue
			}
			slug := string(key[len(prefixBlob) : len(key)-blobTrail-1])
			gen := string(key[len(key)-blobTrail : len(key)-chunkIdx])
			if live[slug] != gen {
				orphans = append(orphans, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger: sweep chunks: %w", err)
	}
	if len(orphans) == 0 {
		return nil
	}
	s.logger.Info("dropping orphaned snapshot chunks", "count", len(orphans))
	return s.deleteKeys(orphans)
}

// Put stores or replaces a snapshot. A replaced snapshot keeps its place.
func (s *BadgerStore) Put(_ context.Context, snapshot *domain.Snapshot, data []byte) error {
	if snapshot == nil || snapshot.Slug == "" {
		return domain.ErrBadRequest.WithDetails("snapshot slug is required")
	}
	meta, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("badger: marshal snapshot: %w", err)
	}
	slug := snapshot.Slug

	gen := ulid.Make()
	if err := s.stageChunks(chunkPrefix(slug, gen[:]), data); err != nil {
		s.dropChunks(slug, gen[:])
		return fmt.Errorf("badger: stage %s: %w", slug, err)
	}

	var previous []byte
	err = s.update(func(txn *badger.Txn) error {
		previous = nil

		_, err := txn.Get(seqKey(slug))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			seq := s.seq.Add(1)
			if err := txn.Set(seqKey(slug), encodeSeq(seq)); err != nil {
				return err
			}
			if err := txn.Set(orderKey(seq), []byte(slug)); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if previous, err = readGen(txn, slug); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		if err := txn.Set(metaKey(slug), meta); err != nil {
			return err
		}
		return txn.Set(genKey(slug), gen[:])
	})
	if err != nil {
		s.dropChunks(slug, gen[:])
		return err
	}

	if previous != nil {
		s.dropChunks(slug, previous)
	}
	return nil
}

// update runs fn in a read-write transaction, retrying when the commit
// conflicts with a concurrent write. fn must be safe to run again.
func (s *BadgerStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = s.db.Update(fn); !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (s *BadgerStore) stageChunks(prefix []byte, data []byte) error {
	wb := s.db.NewWriteBatch()
	for i := 0; i*chunkSize < len(data) || i == 0; i++ {
		end := min((i+1)*chunkSize, len(data))
		if err := wb.Set(chunkKey(prefix, uint32(i)), data[i*chunkSize:end]); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// dropChunks removes one generation of a slug's chunks. Failures only
// leave orphans behind, which the next open sweeps, so they are logged.
func (s *BadgerStore) dropChunks(slug string, gen []byte) {
	prefix := chunkPrefix(slug, gen)
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err == nil {
		err = s.deleteKeys(keys)
	}
	if err != nil {
		s.logger.Warn("badger: drop snapshot chunks", "slug", slug, "error", err)
	}
}

func (s *BadgerStore) deleteKeys(keys [][]byte) error {
	if len(keys) == 0 {
		return nil
	}
	wb := s.db.NewWriteBatch()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			wb.Cancel()
			return err
		}
	}
	return wb.Flush()
}

// Get retrieves snapshot metadata by slug.
func (s *BadgerStore) Get(_ context.Context, slug string) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		snapshot, err = readMeta(txn, slug)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Bytes reassembles the archive bytes of a snapshot.
func (s *BadgerStore) Bytes(_ context.Context, slug string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		gen, err := readGen(txn, slug)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrSnapshotNotFound
			}
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkPrefix(slug, gen)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			chunk, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			data = append(data, chunk...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Delete unpublishes metadata, ordering entry and generation pointer in
// one transaction, then drops the chunks.
func (s *BadgerStore) Delete(_ context.Context, slug string) error {
	var gen []byte
	err := s.update(func(txn *badger.Txn) error {
		item, err := txn.Get(seqKey(slug))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrSnapshotNotFound
			}
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if gen, err = readGen(txn, slug); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		for _, key := range [][]byte{orderKey(binary.BigEndian.Uint64(raw)), seqKey(slug), metaKey(slug), genKey(slug)} {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if gen != nil {
		s.dropChunks(slug, gen)
	}
	return nil
}

// List returns all snapshots in insertion order.
func (s *BadgerStore) List(_ context.Context) ([]*domain.Snapshot, error) {
	var out []*domain.Snapshot
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixOrder)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			slug, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			snapshot, err := readMeta(txn, string(slug))
			if err != nil {
				return err
			}
			out = append(out, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Snapshot{}
	}
	return out, nil
}

// Has reports whether the slug is taken.
func (s *BadgerStore) Has(_ context.Context, slug string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(seqKey(slug))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Stats sums the stored snapshot sizes.
func (s *BadgerStore) Stats(ctx context.Context) (domain.SnapshotStats, error) {
	var stats domain.SnapshotStats
	list, err := s.List(ctx)
	if err != nil {
		return stats, err
	}
	for _, snapshot := range list {
		stats.Count++
		stats.Bytes += snapshot.Size
	}
	return stats, nil
}

// GC runs value log garbage collection until nothing is left to rewrite.
// It is a no-op for an in-memory database.
func (s *BadgerStore) GC() error {
	if s.cfg.Dir == "" {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.cfg.GCThreshold)
		if errors.Is(err, badger.ErrNoRewrite) {
			break
		}
		if err != nil {
			return fmt.Errorf("badger: gc: %w", err)
		}
	}
	s.lastGCTime.Store(time.Now().UnixMilli())
	return nil
}

// Close stops the GC loop and closes the database.
func (s *BadgerStore) Close() error {
	close(s.stopCh)
	<-s.doneCh

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("badger: close db: %w", err)
	}
	s.logger.Info("badger snapshot storage closed")
	return nil
}

// RegisterMetrics registers the database size gauges with registry.
func (s *BadgerStore) RegisterMetrics(registry prometheus.Registerer) {
	s.metricsLSMSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "supsim",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	}, func() float64 {
		lsm, _ := s.db.Size()
		return float64(lsm)
	})
	s.metricsValueLogSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "supsim",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	}, func() float64 {
		_, vlog := s.db.Size()
		return float64(vlog)
	})
	registry.MustRegister(s.metricsLSMSize, s.metricsValueLogSize)
}

func (s *BadgerStore) gcLoop() {
	defer close(s.doneCh)

	interval := s.cfg.GCInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.GC(); err != nil {
				s.logger.Error("badger gc failed", "error", err)
			}
		case <-s.stopCh:
			return
		}
	}
}

func readMeta(txn *badger.Txn, slug string) (*domain.Snapshot, error) {
	item, err := txn.Get(metaKey(slug))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}
	var snapshot domain.Snapshot
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &snapshot)
	})
	if err != nil {
		return nil, fmt.Errorf("badger: decode snapshot %s: %w", slug, err)
	}
	return snapshot.Clone(), nil
}

func readGen(txn *badger.Txn, slug string) ([]byte, error) {
	item, err := txn.Get(genKey(slug))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func metaKey(slug string) []byte { return []byte(prefixMeta + slug) }
func seqKey(slug string) []byte  { return []byte(prefixSeq + slug) }
func genKey(slug string) []byte  { return []byte(prefixGen + slug) }

func chunkPrefix(slug string, gen []byte) []byte {
	return append([]byte(prefixBlob+slug+"/"), gen...)
}

func orderKey(seq uint64) []byte {
	return append([]byte(prefixOrder), encodeSeq(seq)...)
}

func chunkKey(prefix []byte, i uint32) []byte {
	return binary.BigEndian.AppendUint32(append([]byte(nil), prefix...), i)
}

func encodeSeq(seq uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, seq)
}

// badgerLogger adapts slog.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
