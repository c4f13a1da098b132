////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// CacheName is the current asset generation. Bumping it makes the next
// activation discard every previously cached asset.
const CacheName = "e-classroom-v1"

// precachedAssets are fetched during installation so the core pages work
// offline.
var precachedAssets = []string{
	"/",
	"/static/css/style.css",
	"/static/js/app.js",
	"/static/images/school.svg",
	"/static/images/bell.svg",
}

// Push notification presentation constants.
const (
	pushIcon  = "/static/images/school.svg"
	pushBadge = "/static/images/bell.svg"
)

// pushVibration is the vibration pattern for push notifications, in
// milliseconds of on/off/on.
var pushVibration = []int{200, 100, 200}

// Notification is a rendered push notification.
type Notification struct {
	Title     string
	Body      string
	Icon      string
	Badge     string
	Vibration []int
	URL       string
}

// NotificationPresenter shows push notifications and reacts to their
// dismissal. It is the headless analogue of the system notification tray.
type NotificationPresenter interface {
	// ShowNotification displays the notification until it is clicked or
	// dismissed.
	ShowNotification(n Notification) error
}

// pushPayload is the body of a push event.
type pushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// ServiceWorker implements the offline and push behavior: core assets are
// precached at install time, fetches are answered cache first, and pushes
// become notifications that open the app when clicked.
type ServiceWorker struct {
	store     *Store
	client    *http.Client
	baseURL   string
	presenter NotificationPresenter

	// OpenURL navigates the app to a path when a notification is clicked.
	OpenURL func(url string)

	cache *Cache
	mux   sync.Mutex
}

// NewServiceWorker creates a worker serving from the given store and
// fetching misses from baseURL over client.
func NewServiceWorker(store *Store, baseURL string, client *http.Client,
	presenter NotificationPresenter) *ServiceWorker {
	if client == nil {
		client = http.DefaultClient
	}
	return &ServiceWorker{
		store:     store,
		client:    client,
		baseURL:   baseURL,
		presenter: presenter,
	}
}

// Install precaches every core asset into the current generation's cache.
// Installation is all or nothing: if any asset fails to fetch, the partial
// cache is discarded and the previous generation keeps serving.
func (sw *ServiceWorker) Install(ctx context.Context) error {
	cache, err := sw.store.Open(CacheName)
	if err != nil {
		return err
	}

	for _, asset := range precachedAssets {
		entry, err := sw.fetchNetwork(ctx, asset)
		if err != nil {
			if deleteErr := sw.store.Delete(CacheName); deleteErr != nil {
				jww.ERROR.Printf("[SW] Failed to discard partial cache: %+v",
					deleteErr)
			}
			return errors.Wrapf(err, "could not precache %q", asset)
		}
		if err = cache.Put(entry); err != nil {
			if deleteErr := sw.store.Delete(CacheName); deleteErr != nil {
				jww.ERROR.Printf("[SW] Failed to discard partial cache: %+v",
					deleteErr)
			}
			return err
		}
	}

	sw.mux.Lock()
	sw.cache = cache
	sw.mux.Unlock()

	jww.INFO.Printf("[SW] Installed cache %q with %d assets.",
		CacheName, len(precachedAssets))
	return nil
}

// Activate deletes every cache generation other than the current one.
func (sw *ServiceWorker) Activate() error {
	names, err := sw.store.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if name == CacheName {
			continue
		}
		if err = sw.store.Delete(name); err != nil {
			return err
		}
		jww.INFO.Printf("[SW] Deleted stale cache %q.", name)
	}
	return nil
}

// Fetch answers a request cache first: a cached response is returned even
// when the network is up, and only misses go to the network. Network
// responses are never written back; the cache holds exactly what Install put
// there.
func (sw *ServiceWorker) Fetch(ctx context.Context, url string) (Entry, error) {
	sw.mux.Lock()
	cache := sw.cache
	sw.mux.Unlock()

	if cache == nil {
		var err error
		cache, err = sw.store.Open(CacheName)
		if err != nil {
			return Entry{}, err
		}
		sw.mux.Lock()
		sw.cache = cache
		sw.mux.Unlock()
	}

	entry, err := cache.Match(url)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		jww.WARN.Printf("[SW] Cache lookup failed for %q: %+v", url, err)
	}

	return sw.fetchNetwork(ctx, url)
}

// fetchNetwork fetches the path from the app server.
func (sw *ServiceWorker) fetchNetwork(
	ctx context.Context, url string) (Entry, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, sw.baseURL+url, nil)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "could not build request for %q", url)
	}

	rsp, err := sw.client.Do(req)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "could not fetch %q", url)
	}
	defer func() { _ = rsp.Body.Close() }()

	if rsp.StatusCode != http.StatusOK {
		return Entry{}, errors.Errorf(
			"fetch of %q returned %s", url, rsp.Status)
	}

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "could not read body of %q", url)
	}

	return Entry{
		URL:         url,
		ContentType: rsp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// HandlePush turns a push event into a notification. A payload that is not
// JSON becomes a plain notification with the payload as its body.
func (sw *ServiceWorker) HandlePush(data []byte) error {
	var payload pushPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		payload = pushPayload{Title: "eClassroom", Body: string(data)}
	}
	if payload.Title == "" {
		payload.Title = "eClassroom"
	}
	if payload.URL == "" {
		payload.URL = "/"
	}

	return sw.presenter.ShowNotification(Notification{
		Title:     payload.Title,
		Body:      payload.Body,
		Icon:      pushIcon,
		Badge:     pushBadge,
		Vibration: pushVibration,
		URL:       payload.URL,
	})
}

// HandleNotificationClick opens the notification's target page.
func (sw *ServiceWorker) HandleNotificationClick(n Notification) {
	if sw.OpenURL == nil {
		return
	}
	url := n.URL
	if url == "" {
		url = "/"
	}
	sw.OpenURL(url)
}
