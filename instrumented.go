package recstore

import (
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cqkv/recstore/model"
	"github.com/cqkv/recstore/query"
)

var _ Store = (*Instrumented)(nil)

// Instrumented forwards every call to the wrapped Store and records the
// operation, its parameters and its duration.
type Instrumented struct {
	next   Store
	logger log.Logger

	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func NewInstrumented(next Store, logger log.Logger, registerer prometheus.Registerer) (*Instrumented, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	s := &Instrumented{
		next:   next,
		logger: logger,
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recstore",
			Name:      "operation_duration_seconds",
			Help:      "Duration of record store operations.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recstore",
			Name:      "operation_errors_total",
			Help:      "Record store operations that returned an error.",
		}, []string{"op"}),
	}
	if registerer != nil {
		for _, c := range []prometheus.Collector{s.duration, s.errors} {
			if err := registerer.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *Instrumented) observe(op string, start time.Time, err error, keyvals ...any) {
	elapsed := time.Since(start)
	s.duration.WithLabelValues(op).Observe(elapsed.Seconds())

	keyvals = append([]any{"op", op, "took", elapsed}, keyvals...)
	if err != nil {
		s.errors.WithLabelValues(op).Inc()
		level.Warn(s.logger).Log(append(keyvals, "err", err)...)
		return
	}
	level.Debug(s.logger).Log(keyvals...)
}

func (s *Instrumented) Create(fields model.Fields) (id int32, err error) {
	defer func(start time.Time) {
		s.observe("create", start, err, "id", id)
	}(time.Now())
	return s.next.Create(fields)
}

func (s *Instrumented) Insert(id int32, fields model.Fields) (_ int32, err error) {
	defer func(start time.Time) {
		s.observe("insert", start, err, "id", id)
	}(time.Now())
	return s.next.Insert(id, fields)
}

func (s *Instrumented) Edit(id int32, fields model.Fields) (err error) {
	defer func(start time.Time) {
		s.observe("edit", start, err, "id", id)
	}(time.Now())
	return s.next.Edit(id, fields)
}

func (s *Instrumented) Remove(id int32) (ok bool, err error) {
	defer func(start time.Time) {
		s.observe("remove", start, err, "id", id, "removed", ok)
	}(time.Now())
	return s.next.Remove(id)
}

func (s *Instrumented) DeleteWhere(field, value string) (ids []int32, err error) {
	defer func(start time.Time) {
		s.observe("delete_where", start, err, "field", field, "value", value, "removed", len(ids))
	}(time.Now())
	return s.next.DeleteWhere(field, value)
}

func (s *Instrumented) UpdateWhere(set query.Assignments, where query.Conditions) (n int, err error) {
	defer func(start time.Time) {
		s.observe("update_where", start, err, "set", len(set), "where", len(where), "updated", n)
	}(time.Now())
	return s.next.UpdateWhere(set, where)
}

func (s *Instrumented) Select(fields []string, where query.Conditions) (records []model.Record, err error) {
	defer func(start time.Time) {
		s.observe("select", start, err, "fields", len(fields), "where", len(where), "records", len(records))
	}(time.Now())
	return s.next.Select(fields, where)
}

func (s *Instrumented) FindBy(field, value string) (records []model.Record, err error) {
	defer func(start time.Time) {
		s.observe("find_by", start, err, "field", field, "value", value, "records", len(records))
	}(time.Now())
	return s.next.FindBy(field, value)
}

func (s *Instrumented) Exists(id int32) (ok bool, err error) {
	defer func(start time.Time) {
		s.observe("exists", start, err, "id", id)
	}(time.Now())
	return s.next.Exists(id)
}

func (s *Instrumented) Stat() (n int, err error) {
	defer func(start time.Time) {
		s.observe("stat", start, err, "records", n)
	}(time.Now())
	return s.next.Stat()
}

func (s *Instrumented) Purge() (n int, err error) {
	defer func(start time.Time) {
		s.observe("purge", start, err, "removed", n)
	}(time.Now())
	return s.next.Purge()
}

func (s *Instrumented) Snapshot() (snap *model.Snapshot, err error) {
	defer func(start time.Time) {
		var n int
		if snap != nil {
			n = snap.Len()
		}
		s.observe("snapshot", start, err, "records", n)
	}(time.Now())
	return s.next.Snapshot()
}

func (s *Instrumented) Restore(snapshot *model.Snapshot) (err error) {
	defer func(start time.Time) {
		s.observe("restore", start, err, "records", snapshot.Len())
	}(time.Now())
	return s.next.Restore(snapshot)
}

func (s *Instrumented) Close() (err error) {
	defer func(start time.Time) {
		s.observe("close", start, err)
	}(time.Now())
	return s.next.Close()
}
