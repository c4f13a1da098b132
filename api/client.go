////////////////////////////////////////////////////////////////////////////////
// Copyright © 2025 eClassroom                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package api is the HTTP client for the eClassroom server. It covers only
// the endpoints the client layer calls: unread notifications, marking a
// notification read, file upload, quiz creation, and quiz submission. The
// server itself (authentication, persistence, scoring) is an external
// collaborator reached exclusively through these request/response contracts.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ServerError is a rejection message the server returned in an otherwise
// well-formed response body. Callers can use it to show the server's own
// wording instead of a generic failure message.
type ServerError struct {
	msg string
}

func (e *ServerError) Error() string { return e.msg }

// defaultTimeout bounds every request round trip when the caller supplies no
// http.Client of its own.
const defaultTimeout = 30 * time.Second

// Client calls the eClassroom HTTP API.
type Client struct {
	base *url.URL
	hc   *http.Client
}

// NewClient creates a Client for the server at baseURL. A nil hc selects a
// default client with a 30 second timeout.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{base: base, hc: hc}, nil
}

// Notification is one unread notification returned by the server.
type Notification struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Notifications returns the viewer's unread notifications.
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/notifications", nil, "")
	if err != nil {
		return nil, err
	}

	var notifications []Notification
	if err = c.do(req, &notifications); err != nil {
		return nil, errors.Wrap(err, "could not fetch notifications")
	}
	return notifications, nil
}

// MarkNotificationRead marks a single notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int) error {
	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/mark_notification_read/%d", id), nil,
		"application/json")
	if err != nil {
		return err
	}

	var res struct {
		Success bool `json:"success"`
	}
	if err = c.do(req, &res); err != nil {
		return errors.Wrapf(err, "could not mark notification %d read", id)
	}
	if !res.Success {
		return errors.Errorf("server refused to mark notification %d read", id)
	}
	return nil
}

// UploadFile uploads a file shared in the classroom session and returns the
// URL it can be downloaded from. The caller is responsible for enforcing the
// upload size limit before reading r.
func (c *Client) UploadFile(ctx context.Context, sessionID, filename string,
	r io.Reader) (string, error) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)

	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrap(err, "could not create multipart file field")
	}
	if _, err = io.Copy(fw, r); err != nil {
		return "", errors.Wrap(err, "could not read file contents")
	}
	if err = mw.WriteField("session_id", sessionID); err != nil {
		return "", errors.Wrap(err, "could not write session_id field")
	}
	if err = mw.Close(); err != nil {
		return "", errors.Wrap(err, "could not finalise multipart body")
	}

	req, err := c.newRequest(
		ctx, http.MethodPost, "/upload_file", body, mw.FormDataContentType())
	if err != nil {
		return "", err
	}

	var res struct {
		Success bool   `json:"success"`
		FileURL string `json:"file_url"`
		Error   string `json:"error"`
	}
	if err = c.do(req, &res); err != nil {
		return "", errors.Wrap(err, "could not upload file")
	}
	if !res.Success {
		if res.Error != "" {
			return "", &ServerError{msg: res.Error}
		}
		return "", errors.New("file upload failed")
	}
	return res.FileURL, nil
}

// CreateQuiz posts a new quiz definition. On rejection, the server-provided
// message is returned as the error text.
func (c *Client) CreateQuiz(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "could not marshal quiz payload")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/create_quiz",
		bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}

	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err = c.do(req, &res); err != nil {
		return errors.Wrap(err, "could not create quiz")
	}
	if !res.Success {
		if res.Message != "" {
			return &ServerError{msg: res.Message}
		}
		return errors.New("failed to create quiz")
	}
	return nil
}

// SubmitResult is the server's grading of a quiz attempt.
type SubmitResult struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// SubmitQuiz posts the answer map (question id → selected option) for the
// quiz and returns the score.
func (c *Client) SubmitQuiz(ctx context.Context, quizID string,
	answers map[string]string) (SubmitResult, error) {
	body, err := json.Marshal(answers)
	if err != nil {
		return SubmitResult{}, errors.Wrap(err, "could not marshal answers")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/submit_quiz/"+quizID,
		bytes.NewReader(body), "application/json")
	if err != nil {
		return SubmitResult{}, err
	}

	var res struct {
		Success bool   `json:"success"`
		Score   int    `json:"score"`
		Total   int    `json:"total"`
		Error   string `json:"error"`
	}
	if err = c.do(req, &res); err != nil {
		return SubmitResult{}, errors.Wrap(err, "could not submit quiz")
	}
	if !res.Success {
		if res.Error != "" {
			return SubmitResult{}, &ServerError{msg: res.Error}
		}
		return SubmitResult{}, errors.New("failed to submit quiz")
	}
	return SubmitResult{Score: res.Score, Total: res.Total}, nil
}

// TakeQuizURL returns the page a student navigates to when starting the quiz.
func (c *Client) TakeQuizURL(quizID string) string {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/take_quiz/" + quizID
	return u.String()
}

// newRequest builds a request for the path relative to the client's base URL.
func (c *Client) newRequest(ctx context.Context, method, path string,
	body io.Reader, contentType string) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "could not build %s %s request",
			method, path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do executes the request and decodes the JSON response into out. Responses
// with an error status are decoded anyway so the caller sees the server's
// message fields; a body that is not JSON becomes a plain status error.
func (c *Client) do(req *http.Request, out any) error {
	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, "could not read response body")
	}

	if err = json.Unmarshal(body, out); err != nil {
		if res.StatusCode < 200 || res.StatusCode > 299 {
			return errors.Errorf("server returned %s", res.Status)
		}
		return errors.Wrap(err, "could not decode response body")
	}
	return nil
}
