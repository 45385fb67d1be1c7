/*
 * Copyright (C) 2023 Ahton
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package datafile appends vacancy records to the flat data file and writes
// dictionary snapshots next to it.
package datafile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	RecordTimeLayout   = "2006-01-02 15:04:05"
	SnapshotTimeLayout = "20060102_150405"
)

type File struct {
	mu        sync.Mutex
	file      *os.File
	lowercase bool
}

func Open(path string, lowercase bool) (*File, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	return &File{
		file:      file,
		lowercase: lowercase,
	}, nil
}

func (f *File) Name() string {
	return f.file.Name()
}

// Append writes one record line: "<stamp> Vacancy: <body>". Lowercasing applies to the body only.
// The whole line goes out in a single write so concurrent callers never interleave.
func (f *File) Append(stamp time.Time, body []byte) error {
	record := singleLine(body)
	if f.lowercase {
		record = bytes.ToLower(record)
	}

	line := make([]byte, 0, len(record)+len(RecordTimeLayout)+11)
	line = append(line, stamp.Format(RecordTimeLayout)...)
	line = append(line, " Vacancy: "...)
	line = append(line, record...)
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	_, err := f.file.Write(line)
	return err
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.file.Close()
}

// WriteSnapshot stores a dictionary dump as <dir>/<stamp>_<Name>.txt and returns its path.
func WriteSnapshot(dir, name string, stamp time.Time, body []byte) (string, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", stamp.Format(SnapshotTimeLayout), title(name)))

	err = os.WriteFile(path, body, 0o644)
	if err != nil {
		return "", err
	}

	return path, nil
}

// singleLine keeps a record on one line: json gets compacted, anything else gets its line breaks flattened.
func singleLine(body []byte) []byte {
	compacted := new(bytes.Buffer)
	if err := json.Compact(compacted, body); err == nil {
		return compacted.Bytes()
	}

	flat := bytes.ReplaceAll(body, []byte("\r\n"), []byte(" "))
	flat = bytes.ReplaceAll(flat, []byte("\n"), []byte(" "))
	return bytes.ReplaceAll(flat, []byte("\r"), []byte(" "))
}

func title(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
