////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package alert implements the process-wide toast presenter. Every component
// reports transient outcomes (upload finished, call connected, submission
// failed) through a single [Presenter]; entries dismiss themselves after a
// fixed delay or when dismissed explicitly.
package alert

import (
	"sync"
	"time"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/utils"
)

// DefaultExpiry is how long an alert stays visible before it dismisses
// itself.
const DefaultExpiry = 5 * time.Second

// Level indicates the visual style of an alert.
type Level int

const (
	Info Level = iota
	Success
	Warning
	Danger
)

// String returns the human-readable name of the Level.
func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Danger:
		return "danger"
	default:
		return "unknown"
	}
}

// Alert is a single dismissible message.
type Alert struct {
	ID      string
	Level   Level
	Message string
	Posted  time.Time
}

// Subscriber receives alert lifecycle events. Show is called when an alert is
// posted and Dismiss when it expires or is dismissed early. Both are called
// from timer goroutines and must be safe for concurrent use.
type Subscriber interface {
	Show(a Alert)
	Dismiss(id string)
}

// Presenter renders dismissible, auto-expiring messages. It is safe for
// concurrent use.
type Presenter struct {
	expiry time.Duration
	subs   []Subscriber
	timers map[string]*time.Timer
	closed bool
	mux    sync.Mutex
}

// NewPresenter creates a Presenter whose alerts expire after the given
// duration. A non-positive expiry selects [DefaultExpiry].
func NewPresenter(expiry time.Duration) *Presenter {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Presenter{
		expiry: expiry,
		timers: make(map[string]*time.Timer),
	}
}

// Subscribe registers a subscriber for all future alerts.
func (p *Presenter) Subscribe(s Subscriber) {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.subs = append(p.subs, s)
}

// Show posts a new alert and returns its ID. The alert dismisses itself after
// the presenter's expiry.
func (p *Presenter) Show(level Level, message string) string {
	a := Alert{
		ID:      utils.NewUUID(),
		Level:   level,
		Message: message,
		Posted:  time.Now(),
	}

	p.mux.Lock()
	if p.closed {
		p.mux.Unlock()
		return a.ID
	}
	subs := append([]Subscriber{}, p.subs...)
	p.timers[a.ID] = time.AfterFunc(p.expiry, func() { p.Dismiss(a.ID) })
	p.mux.Unlock()

	jww.DEBUG.Printf("[ALERT] %s: %s", level, message)
	for _, s := range subs {
		s.Show(a)
	}
	return a.ID
}

// Dismiss removes the alert with the given ID before its expiry. Dismissing
// an unknown or already-dismissed ID does nothing.
func (p *Presenter) Dismiss(id string) {
	p.mux.Lock()
	timer, exists := p.timers[id]
	if exists {
		timer.Stop()
		delete(p.timers, id)
	}
	subs := append([]Subscriber{}, p.subs...)
	p.mux.Unlock()

	if !exists {
		return
	}
	for _, s := range subs {
		s.Dismiss(id)
	}
}

// Info posts an info alert.
func (p *Presenter) Info(message string) string {
	return p.Show(Info, message)
}

// Success posts a success alert.
func (p *Presenter) Success(message string) string {
	return p.Show(Success, message)
}

// Warning posts a warning alert.
func (p *Presenter) Warning(message string) string {
	return p.Show(Warning, message)
}

// Error posts a danger alert.
func (p *Presenter) Error(message string) string {
	return p.Show(Danger, message)
}

// Close stops every pending expiry timer. Alerts posted after Close are
// dropped.
func (p *Presenter) Close() {
	p.mux.Lock()
	defer p.mux.Unlock()
	p.closed = true
	for id, timer := range p.timers {
		timer.Stop()
		delete(p.timers, id)
	}
}
