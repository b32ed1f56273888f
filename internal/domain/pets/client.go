package pets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pets-gateway/internal/platform/httpclient"
)

// Client ofrece las operaciones del Service contra un gateway remoto por HTTP.
// Los identificadores se resuelven localmente con matcher; errores de forma y
// de id no llegan a la red.
type Client struct {
	http    *httpclient.Client
	matcher *Matcher
}

func NewClient(hc *httpclient.Client, matcher *Matcher) *Client {
	return &Client{http: hc, matcher: matcher}
}

func (c *Client) Matcher() *Matcher { return c.matcher }

func (c *Client) Type(uri string) (string, error) {
	return c.matcher.Type(uri)
}

// Fetch devuelve las filas ya leídas. Un item inexistente es una lista vacía.
func (c *Client) Fetch(ctx context.Context, uri string, q Query) ([]Row, error) {
	m, err := c.resolve(uri, "fetch")
	if err != nil {
		return nil, err
	}

	v := url.Values{}
	if len(q.Projection) > 0 {
		v.Set("projection", strings.Join(q.Projection, ","))
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	if m.Kind == KindCollection {
		addFilter(v, q.Filter)
	}

	if m.Kind == KindItem {
		var row Row
		err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: itemPath(m.ID), Query: v, Out: &row})
		var he *httpclient.HTTPError
		if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
			return []Row{}, nil
		}
		if err != nil {
			return nil, c.remoteError(err, uri, "fetch")
		}
		return []Row{normalizeRow(row)}, nil
	}

	var rows []Row
	if err := c.http.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: collectionPath, Query: v, Out: &rows}); err != nil {
		return nil, c.remoteError(err, uri, "fetch")
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizeRow(r))
	}
	return out, nil
}

// Create devuelve "" sin error si el servidor reporta el soft failure.
func (c *Client) Create(ctx context.Context, uri string, fs FieldSet) (string, error) {
	m, err := c.resolve(uri, "create")
	if err != nil {
		return "", err
	}
	if m.Kind != KindCollection {
		return "", &UnsupportedIdentifierError{URI: uri, Op: "create"}
	}

	var resp createdResponse
	err = c.http.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: collectionPath, Body: fs, Out: &resp})
	var he *httpclient.HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusInternalServerError && errorBody(he).Error == insertFailed {
		return "", nil
	}
	if err != nil {
		return "", c.remoteError(err, uri, "create")
	}
	return c.matcher.ItemURI(resp.ID), nil
}

func (c *Client) Modify(ctx context.Context, uri string, fs FieldSet, filter Filter) (int64, error) {
	return c.write(ctx, http.MethodPatch, "modify", uri, fs, filter)
}

func (c *Client) Remove(ctx context.Context, uri string, filter Filter) (int64, error) {
	return c.write(ctx, http.MethodDelete, "remove", uri, nil, filter)
}

func (c *Client) write(ctx context.Context, method, op, uri string, fs FieldSet, filter Filter) (int64, error) {
	m, err := c.resolve(uri, op)
	if err != nil {
		return 0, err
	}

	req := httpclient.Request{Method: method, Path: collectionPath, Query: url.Values{}}
	if m.Kind == KindItem {
		req.Path = itemPath(m.ID)
	} else {
		addFilter(req.Query, filter)
	}
	if method != http.MethodDelete {
		if fs == nil {
			fs = FieldSet{}
		}
		req.Body = fs
	}

	var resp rowsAffectedResponse
	req.Out = &resp
	if err := c.http.Do(ctx, req); err != nil {
		return 0, c.remoteError(err, uri, op)
	}
	return resp.RowsAffected, nil
}

func (c *Client) resolve(uri, op string) (Match, error) {
	m, err := c.matcher.Match(uri)
	if err != nil {
		return m, err
	}
	if m.Kind == KindNoMatch {
		return m, &UnsupportedIdentifierError{URI: uri, Op: op}
	}
	return m, nil
}

// remoteError reconstruye el error tipado a partir de la respuesta del servidor.
func (c *Client) remoteError(err error, uri, op string) error {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) {
		return &StorageError{URI: uri, Op: op, Err: err}
	}
	body := errorBody(he)
	switch {
	case he.StatusCode == http.StatusBadRequest && body.Field != "":
		return &FieldError{URI: uri, Field: body.Field, Reason: body.Reason}
	case he.StatusCode == http.StatusNotFound:
		return &UnsupportedIdentifierError{URI: uri, Op: op}
	default:
		return &StorageError{URI: uri, Op: op, Err: err}
	}
}

const collectionPath = "/pets"

func itemPath(id int64) string {
	return collectionPath + "/" + strconv.FormatInt(id, 10)
}

func addFilter(v url.Values, f Filter) {
	if f.Empty() {
		return
	}
	v.Set("where", f.Where)
	for _, a := range f.Args {
		v.Add("arg", argString(a))
	}
}

func argString(a any) string {
	switch t := a.(type) {
	case string:
		return t
	}
	if n, ok := AsInt(a); ok {
		return strconv.FormatInt(n, 10)
	}
	b, _ := json.Marshal(a)
	return string(b)
}

func errorBody(he *httpclient.HTTPError) errorResponse {
	var body errorResponse
	_ = he.Decode(&body)
	return body
}

// normalizeRow deja los números como int64, igual que los engines locales.
func normalizeRow(r Row) Row {
	for k, v := range r {
		if n, ok := v.(json.Number); ok {
			if i, err := n.Int64(); err == nil {
				r[k] = i
			}
		}
	}
	return r
}
