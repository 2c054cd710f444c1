//go:build cgo

package graph

import "context"

// Open returns a KuzuDB-backed store, on disk at dbPath or in memory when
// dbPath is empty, with its schema initialized.
func Open(ctx context.Context, dbPath string) (Store, error) {
	var (
		s   *KuzuStore
		err error
	)
	if dbPath == "" {
		s, err = NewKuzuStore()
	} else {
		s, err = NewKuzuFileStore(dbPath)
	}
	if err != nil {
		return nil, err
	}
	if err := s.InitSchema(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
