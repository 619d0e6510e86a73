package store

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// SetDeleted sets or clears row i's delete flag with a synchronous
// single-byte overwrite. Field bytes are untouched, so clearing the
// flag makes the original values visible again. The handle is
// reopened read-write only for the mutation itself; write failures
// (for example a read-only filesystem) propagate to the caller.
func (t *Table) SetDeleted(i int, deleted bool) error {
	if i < 0 || i >= t.RecordCount() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrRange, i, t.RecordCount())
	}

	flag := byte(' ')
	if deleted {
		flag = '*'
	}

	defer t.cache.clear()
	err := t.withWritable(func(w *os.File) error {
		if _, werr := w.WriteAt([]byte{flag}, t.recordOffset(i)); werr != nil {
			return fmt.Errorf("write delete flag: %w", werr)
		}
		return nil
	})
	if err != nil {
		return err
	}
	t.log.WithFields(logrus.Fields{
		"row":     i,
		"deleted": deleted,
	}).Debug("delete flag updated")
	return nil
}
