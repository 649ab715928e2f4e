package recstore

import (
	"github.com/go-kit/log"

	"github.com/cqkv/recstore/codec"
	"github.com/cqkv/recstore/fio"
	"github.com/cqkv/recstore/validate"
)

type options struct {
	syncWrites  bool
	indexDegree int

	ioManagerCreator func(path string) (fio.IOManager, error)
	codec            codec.Codec
	validator        Validator
	logger           log.Logger
}

type Option func(*options)

var defaultIOManagerCreator = func(path string) (fio.IOManager, error) {
	return fio.NewFileIO(path)
}

func defaultOptions() options {
	return options{
		indexDegree:      32,
		ioManagerCreator: defaultIOManagerCreator,
		codec:            codec.NewSlotCodec(),
		validator:        validate.DefaultRules(),
		logger:           log.NewNopLogger(),
	}
}

func WithIOManagerCreator(fn func(path string) (fio.IOManager, error)) Option {
	return func(o *options) {
		o.ioManagerCreator = fn
	}
}

func WithCodec(codec codec.Codec) Option {
	return func(o *options) {
		o.codec = codec
	}
}

func WithValidator(v Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithIndexDegree sets the btree degree of the keydir and indices
func WithIndexDegree(degree int) Option {
	return func(o *options) {
		o.indexDegree = degree
	}
}

// WithSyncWrites syncs the backing file after every mutation
func WithSyncWrites(sync bool) Option {
	return func(o *options) {
		o.syncWrites = sync
	}
}
