package dsb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"school_dashboard/internal/domain/substitution"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultEndpoint = "https://app.dsbcontrol.de/JsonHandler.ashx/GetData"

const (
	appVersion = "2.5.9"
	language   = "de"
	osVersion  = "28 8.0"
	device     = "SM-G930F"
	bundleID   = "de.heinekingmedia.dsbmobile"
	timeLayout = "2006-01-02T15:04:05.000-0700"

	menuContents   = "Inhalte"
	menuTimeTables = "Pläne"
	menuNews       = "News"
)

var ErrMenuNotFound = errors.New("dsb menu entry not found")

// ResultError is returned when DSBmobile answers with a non-zero result code,
// usually because of wrong credentials.
type ResultError struct {
	Code   int
	Status string
}

func (e *ResultError) Error() string {
	return fmt.Sprintf("dsb result code %d: %s", e.Code, e.Status)
}

type innerRequest struct {
	UserID     string `json:"UserId"`
	UserPw     string `json:"UserPw"`
	AppVersion string `json:"AppVersion"`
	Language   string `json:"Language"`
	OsVersion  string `json:"OsVersion"`
	AppID      string `json:"AppId"`
	Device     string `json:"Device"`
	BundleID   string `json:"BundleId"`
	Date       string `json:"Date"`
	LastUpdate string `json:"LastUpdate"`
}

type envelope struct {
	Req struct {
		Data     string `json:"Data"`
		DataType int    `json:"DataType"`
	} `json:"req"`
}

type node struct {
	ID     string `json:"Id"`
	Title  string `json:"Title"`
	Date   string `json:"Date"`
	Detail string `json:"Detail"`
	Childs []node `json:"Childs"`
	Root   *node  `json:"Root"`
}

type result struct {
	Code      int    `json:"Resultcode"`
	Status    string `json:"ResultStatusInfo"`
	MenuItems []node `json:"ResultMenuItems"`
}

// Client talks to the DSBmobile JSON handler.
type Client struct {
	endpoint   string
	username   string
	password   string
	httpClient *http.Client
	now        func() time.Time
	log        *logrus.Entry
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(username, password string, log *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
		log:        log.WithField("component", "dsb_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TimeTables returns one entry per plan page, in menu order.
func (c *Client) TimeTables(ctx context.Context) ([]substitution.TimeTable, error) {
	root, err := c.menuRoot(ctx, menuTimeTables)
	if err != nil {
		return nil, err
	}
	tables := make([]substitution.TimeTable, 0)
	for _, group := range root.Childs {
		id, err := uuid.Parse(group.ID)
		if err != nil {
			c.log.WithField("id", group.ID).Warn("Skipping timetable group with invalid id")
			continue
		}
		for _, page := range group.Childs {
			tables = append(tables, substitution.TimeTable{
				UUID:      id,
				GroupName: group.Title,
				Date:      group.Date,
				Title:     page.Title,
				Detail:    page.Detail,
			})
		}
	}
	return tables, nil
}

func (c *Client) News(ctx context.Context) ([]substitution.News, error) {
	root, err := c.menuRoot(ctx, menuNews)
	if err != nil {
		return nil, err
	}
	news := make([]substitution.News, 0, len(root.Childs))
	for _, item := range root.Childs {
		news = append(news, substitution.News{ID: item.ID, Date: item.Date, Title: item.Title, Detail: item.Detail})
	}
	return news, nil
}

func (c *Client) menuRoot(ctx context.Context, title string) (*node, error) {
	res, err := c.pull(ctx)
	if err != nil {
		return nil, err
	}
	contents := findByTitle(res.MenuItems, menuContents)
	if contents == nil {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, menuContents)
	}
	entry := findByTitle(contents.Childs, title)
	if entry == nil || entry.Root == nil {
		return nil, fmt.Errorf("%w: %s", ErrMenuNotFound, title)
	}
	return entry.Root, nil
}

func findByTitle(nodes []node, title string) *node {
	for i := range nodes {
		if nodes[i].Title == title {
			return &nodes[i]
		}
	}
	return nil
}

func (c *Client) pull(ctx context.Context) (*result, error) {
	now := c.now().Format(timeLayout)
	data, err := Encode(innerRequest{
		UserID:     c.username,
		UserPw:     c.password,
		AppVersion: appVersion,
		Language:   language,
		OsVersion:  osVersion,
		AppID:      uuid.NewString(),
		Device:     device,
		BundleID:   bundleID,
		Date:       now,
		LastUpdate: now,
	})
	if err != nil {
		return nil, err
	}
	var env envelope
	env.Req.Data = data
	env.Req.DataType = 1
	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build dsb request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dsb request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("dsb request: unexpected status %d", resp.StatusCode)
	}

	var outer struct {
		D string `json:"d"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&outer); err != nil {
		return nil, fmt.Errorf("decode dsb envelope: %w", err)
	}
	var res result
	if err := Decode(outer.D, &res); err != nil {
		return nil, err
	}
	if res.Code != 0 {
		return nil, &ResultError{Code: res.Code, Status: res.Status}
	}
	return &res, nil
}
