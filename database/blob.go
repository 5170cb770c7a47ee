// Copyright 2026 ARS Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

var ErrSubmissionNotFound = errors.New("submission not found")

// openBlobStore opens the badger store holding raw submission
// envelopes. An empty dataDir selects an in-memory store.
func openBlobStore(dataDir string, logger *slog.Logger) (*badger.DB, error) {
	var opts badger.Options
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dataDir, "blob"))
	}
	opts = opts.WithLogger(badgerSlogger{logger: logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	return db, nil
}

func submissionKey(hash []byte) []byte {
	return append([]byte("submission_"), hash...)
}

// StoreSubmission writes a raw submission envelope into the blob txn,
// keyed by its content hash. It commits with the enclosing Txn.
func StoreSubmission(txn *Txn, hash []byte, raw []byte) error {
	if err := txn.Blob().Set(submissionKey(hash), raw); err != nil {
		return fmt.Errorf("failed to store submission: %w", err)
	}
	return nil
}

// GetSubmission reads a raw submission envelope by content hash.
func GetSubmission(txn *Txn, hash []byte) ([]byte, error) {
	item, err := txn.Blob().Get(submissionKey(hash))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

// badgerSlogger adapts badger's logger interface onto slog. Badger is
// chatty at info level, so info goes to debug.
type badgerSlogger struct {
	logger *slog.Logger
}

func (b badgerSlogger) Errorf(format string, args ...any) {
	b.logger.Error(fmt.Sprintf(format, args...))
}

func (b badgerSlogger) Warningf(format string, args ...any) {
	b.logger.Warn(fmt.Sprintf(format, args...))
}

func (b badgerSlogger) Infof(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}

func (b badgerSlogger) Debugf(format string, args ...any) {
	b.logger.Debug(fmt.Sprintf(format, args...))
}
