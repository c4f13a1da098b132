////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package notify keeps the unread-notification badge current by polling the
// server on a fixed interval. The badge count is always the length of the
// latest successful poll; it is never accumulated client-side.
package notify

import (
	"context"
	"sync"
	"time"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/eclassroom/eclassroom-client/api"
)

// DefaultPollInterval is how often the unread notifications are refetched.
const DefaultPollInterval = 30 * time.Second

// BadgeCallback receives the unread count after every successful poll.
type BadgeCallback func(count int, notifications []api.Notification)

// Poller periodically fetches unread notifications and reports the count.
type Poller struct {
	client   *api.Client
	interval time.Duration
	badge    BadgeCallback

	quit     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a Poller that reports unread counts to badge. A
// non-positive interval selects [DefaultPollInterval].
func NewPoller(
	client *api.Client, interval time.Duration, badge BadgeCallback) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   client,
		interval: interval,
		badge:    badge,
		quit:     make(chan struct{}),
	}
}

// Start polls once immediately and then on every interval tick until Stop is
// called or the context is cancelled.
func (p *Poller) Start(ctx context.Context) {
	go func() {
		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.poll(ctx)
			case <-p.quit:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// poll fetches the unread notifications and pushes the new badge count. A
// failed poll keeps the previous badge.
func (p *Poller) poll(ctx context.Context) {
	notifications, err := p.client.Notifications(ctx)
	if err != nil {
		jww.ERROR.Printf("[NOTIF] Failed to fetch notifications: %+v", err)
		return
	}
	p.badge(len(notifications), notifications)
}

// MarkRead marks a notification as read and, on success, refetches so the
// badge reflects the server's view.
func (p *Poller) MarkRead(ctx context.Context, id int) error {
	if err := p.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	p.poll(ctx)
	return nil
}

// Stop ends polling. It is safe to call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.quit) })
}
