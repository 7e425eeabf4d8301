// Package remote implementa el port recordstore contra un store de
// colecciones hospedado (API estilo PocketBase). El handle se crea una
// sola vez por proceso y se inyecta en los repositorios; el token de
// sesión viaja por llamada.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"farm-records/internal/platform/httpclient"
	"farm-records/internal/ports/recordstore"
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote: base url required")
	}
	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: base, http: hc}, nil
}

func (c *Client) List(ctx context.Context, token, collection string, opts recordstore.ListOptions) (recordstore.Page, error) {
	q := url.Values{}
	if opts.Filter != "" {
		q.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.Expand != "" {
		q.Set("expand", opts.Expand)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		q.Set("perPage", strconv.Itoa(opts.PerPage))
	}

	path := recordsPath(collection)
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page recordstore.Page
	if err := c.http.DoJSON(ctx, http.MethodGet, path, authHeader(token), nil, &page); err != nil {
		return recordstore.Page{}, shapeErr(err)
	}
	return page, nil
}

func (c *Client) Get(ctx context.Context, token, collection, id, expand string) (json.RawMessage, error) {
	path := recordsPath(collection) + "/" + url.PathEscape(id)
	if expand != "" {
		path += "?expand=" + url.QueryEscape(expand)
	}

	var out json.RawMessage
	if err := c.http.DoJSON(ctx, http.MethodGet, path, authHeader(token), nil, &out); err != nil {
		return nil, shapeErr(err)
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, token, collection string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPost, recordsPath(collection), token, data, files)
}

func (c *Client) Update(ctx context.Context, token, collection, id string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	return c.write(ctx, http.MethodPatch, recordsPath(collection)+"/"+url.PathEscape(id), token, data, files)
}

func (c *Client) Delete(ctx context.Context, token, collection, id string) error {
	path := recordsPath(collection) + "/" + url.PathEscape(id)
	if err := c.http.DoJSON(ctx, http.MethodDelete, path, authHeader(token), nil, nil); err != nil {
		return shapeErr(err)
	}
	return nil
}

func (c *Client) FileURL(collection, recordID, filename string) string {
	return c.baseURL + "/api/files/" +
		url.PathEscape(collection) + "/" +
		url.PathEscape(recordID) + "/" +
		url.PathEscape(filename)
}

// write: JSON salvo que haya adjuntos; con adjuntos, todo el payload
// (campos normales incluidos) va en un único multipart.
func (c *Client) write(ctx context.Context, method, path, token string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	var out json.RawMessage
	var err error
	if len(files) > 0 {
		ff := make([]httpclient.FormFile, 0, len(files))
		for _, f := range files {
			ff = append(ff, httpclient.FormFile{Field: f.Field, Name: f.Name, Content: f.Content})
		}
		err = c.http.DoForm(ctx, method, path, authHeader(token), data, ff, &out)
	} else {
		err = c.http.DoJSON(ctx, method, path, authHeader(token), data, &out)
	}
	if err != nil {
		return nil, shapeErr(err)
	}
	return out, nil
}

func recordsPath(collection string) string {
	return "/api/collections/" + url.PathEscape(collection) + "/records"
}

func authHeader(token string) map[string]string {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// storeErrBody es la forma de error que devuelve el store:
// {code, message, data: {campo: {message}}}.
type storeErrBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    map[string]struct {
		Message string `json:"message"`
	} `json:"data"`
}

func shapeErr(err error) error {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return &recordstore.RemoteError{Message: err.Error()}
	}
	if he.StatusCode == http.StatusNotFound {
		return recordstore.ErrNotFound
	}

	re := &recordstore.RemoteError{Status: he.StatusCode, Message: he.Body}
	var body storeErrBody
	if jsonErr := json.Unmarshal([]byte(he.Body), &body); jsonErr == nil && body.Message != "" {
		re.Message = body.Message
		if len(body.Data) > 0 {
			re.Fields = make(map[string]string, len(body.Data))
			for field, d := range body.Data {
				re.Fields[field] = d.Message
			}
		}
	}
	return re
}
