// Package storage provides the key/value backends used to persist the
// click identifier between tracking calls.
//
// Every backend implements [Store]. A [Chain] tries its backends in order,
// mirroring the durable, then session-scoped, then nothing fallback of
// browser storage:
//
//	file, _ := storage.NewFileStore("/var/lib/app/attribution.json")
//	chain := storage.NewChain(file, storage.NewMemoryStore())
//
// Writes go to the first backend that accepts them. Reads return the first
// value found. When every backend fails, writes report a joined error and
// the caller decides whether to ignore it.
//
// Concurrent writers to a shared backend (several processes on one
// [FileStore], several hosts on one [RedisStore]) are last-write-wins.
package storage
