////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package logging configures jwalterweatherman logging for the client. All
// packages log through jww; this package sets the threshold, the stdout
// output, and an in-memory log file that can be attached to bug reports.
package logging

import (
	"log"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// DefaultMaxLogFileSize is the maximum size, in bytes, of the in-memory log
// file kept by InitLog when no size is specified.
const DefaultMaxLogFileSize = 5_000_000

// logListeners contains a map of all registered log listeners keyed on a
// unique ID that can be used to remove the listener once it has been added.
var logListeners = struct {
	listeners map[uint64]jww.LogListener
	currentID uint64
	sync.Mutex
}{listeners: make(map[uint64]jww.LogListener)}

// AddLogListener registers the log listener with jwalterweatherman. Returns a
// unique ID that can be used to remove the listener.
func AddLogListener(ll jww.LogListener) uint64 {
	logListeners.Lock()
	defer logListeners.Unlock()

	id := logListeners.currentID
	logListeners.currentID++
	logListeners.listeners[id] = ll
	jww.SetLogListeners(listenerSlice()...)
	return id
}

// RemoveLogListener unregisters the log listener with the ID from
// jwalterweatherman.
func RemoveLogListener(id uint64) {
	logListeners.Lock()
	defer logListeners.Unlock()

	delete(logListeners.listeners, id)
	jww.SetLogListeners(listenerSlice()...)
}

// listenerSlice converts the map of listeners to a slice of listeners so that
// it can be registered with jwalterweatherman.SetLogListeners. Callers must
// hold the logListeners lock.
func listenerSlice() []jww.LogListener {
	listeners := make([]jww.LogListener, 0, len(logListeners.listeners))
	for _, l := range logListeners.listeners {
		listeners = append(listeners, l)
	}
	return listeners
}

// LogLevel sets level of logging. All logs at the set level and below will be
// displayed (e.g., when log level is ERROR, only ERROR, CRITICAL, and FATAL
// messages will be printed).
//
// The default log level without updates is INFO.
func LogLevel(threshold jww.Threshold) error {
	if threshold < jww.LevelTrace || threshold > jww.LevelFatal {
		return errors.Errorf("log level is not valid: log level: %d", threshold)
	}

	jww.SetLogThreshold(threshold)
	jww.SetStdoutThreshold(threshold)
	jww.SetFlags(log.LstdFlags | log.Lmicroseconds)

	jww.INFO.Printf("Log level set to: %s", threshold)
	return nil
}

// InitLog sets the log level and attaches a new in-memory log file of the
// given maximum size that records every entry at or above the threshold.
// Returns the [LogFile] so the caller can retrieve its contents.
func InitLog(threshold jww.Threshold, maxLogFileSize int) (*LogFile, error) {
	if err := LogLevel(threshold); err != nil {
		return nil, err
	}

	if maxLogFileSize <= 0 {
		maxLogFileSize = DefaultMaxLogFileSize
	}

	lf, err := NewLogFile("eclassroom.log", threshold, maxLogFileSize)
	if err != nil {
		return nil, errors.Wrap(err, "could not create log file")
	}
	AddLogListener(lf.Listen)

	jww.FEEDBACK.Printf("[LOG] Outputting log to file of max size %d at "+
		"level %s", maxLogFileSize, threshold)
	return lf, nil
}
