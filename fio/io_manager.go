package fio

// IOManager can be custom in options
type IOManager interface {
	Read([]byte, int64) (int, error)
	Write([]byte, int64) (int, error)
	Size() (int64, error)
	Truncate(int64) error
	Sync() error
	Close() error
}
