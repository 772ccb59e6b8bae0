// SPDX-License-Identifier: ISC
// Copyright (c) 2021-2026 Esvgate Developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package background - run processes in the background
//
// Each process is started in its own goroutine and runs until its
// shutdown channel is closed; Stop blocks until every process has
// acknowledged the shutdown.
package background

// the shutdown and completed channels for a background process
type shutdown struct {
	shutdown chan struct{}
	finished chan struct{}
}

// T - handle for the stop function
type T struct {
	s []shutdown
}

// Process - interface to form a background process
type Process interface {
	Run(args interface{}, shutdown <-chan struct{})
}

// Processes - list of processes to start
type Processes []Process

// Start - start up a set of background processes
// all with the same arg value
func Start(processes Processes, args interface{}) *T {

	register := new(T)
	register.s = make([]shutdown, len(processes))

	// start each background
	for i, p := range processes {
		shutdownChannel := make(chan struct{})
		finishedChannel := make(chan struct{})
		register.s[i].shutdown = shutdownChannel
		register.s[i].finished = finishedChannel
		go func(p Process, shutdown <-chan struct{}, finished chan<- struct{}) {
			// pass the shutdown to the Run loop for shutdown signalling
			p.Run(args, shutdown)
			// flag for the stop routine to wait for shutdown
			close(finished)
		}(p, shutdownChannel, finishedChannel)
	}
	return register
}

// Stop - stop a set of background processes
func (t *T) Stop() {

	if nil == t {
		return
	}

	// shutdown all background tasks
	for _, shutdown := range t.s {
		close(shutdown.shutdown)
	}

	// wait for finished
	for _, shutdown := range t.s {
		<-shutdown.finished
	}
}
