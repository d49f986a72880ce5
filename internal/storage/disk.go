// Package storage provides disk usage helpers for the database files.
package storage

import "os"

// DatabaseSizeBytes returns the on-disk size in bytes of the SQLite
// database at dbPath, including the -wal and -shm sidecar files when
// present. Missing files contribute 0, so the result is usable before
// the first write.
func DatabaseSizeBytes(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if info.IsDir() {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
