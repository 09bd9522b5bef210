package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/csvlens/internal/dataset"
	"github.com/KaramelBytes/csvlens/internal/render"
	"github.com/KaramelBytes/csvlens/internal/session"
)

const salesCSV = "region,product,units\nNorth,apple,3\nSouth,pear,5\nNorth,plum,2\n"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	opt := Options{
		MaxUploadBytes: 1 << 20,
		PreviewRows:    5,
		Load:           dataset.DefaultOptions(),
		Render:         render.Options{Width: 480, Height: 320},
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	ts := httptest.NewServer(New(session.NewStore(time.Hour), opt).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func upload(t *testing.T, c *http.Client, base, name, body string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	resp, err := c.Post(base+"/upload", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

type planJSON struct {
	Name         string `json:"name"`
	FilterStatus string `json:"filter_status"`
	FilteredRows int    `json:"filtered_rows"`
	Request      *struct {
		Title  string `json:"title"`
		Totals []struct {
			Category string  `json:"category"`
			Total    float64 `json:"total"`
		} `json:"totals"`
	} `json:"request"`
	Messages []struct {
		Level string `json:"level"`
		Text  string `json:"text"`
	} `json:"messages"`
}

func getPlan(t *testing.T, c *http.Client, base string, q url.Values) planJSON {
	t.Helper()
	resp, err := c.Get(base + "/api/plan?" + q.Encode())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var p planJSON
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &p))
	return p
}

func TestIndexWithoutDataset(t *testing.T) {
	ts := newTestServer(t)
	resp, err := newClient(t).Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Upload a CSV file to get started")
	assert.NotEmpty(t, resp.Cookies())
}

func TestUploadThenPlanAndChart(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	resp := upload(t, c, ts.URL, "sales.csv", salesCSV)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, "File uploaded successfully: sales.csv")
	assert.Contains(t, body, "<th>region</th>")
	assert.Contains(t, body, "/chart?")

	p := getPlan(t, c, ts.URL, url.Values{"kind": {"bar"}, "filter_column": {"region"}, "values_for": {"region"}, "filter_values": {"North"}})
	assert.Equal(t, "sales.csv", p.Name)
	assert.Equal(t, "applied", p.FilterStatus)
	assert.Equal(t, 2, p.FilteredRows)
	require.NotNil(t, p.Request)
	assert.Equal(t, "Total units per region", p.Request.Title)
	require.Len(t, p.Request.Totals, 1)
	assert.Equal(t, 5.0, p.Request.Totals[0].Total)

	img, err := c.Get(ts.URL + "/chart?kind=pie")
	require.NoError(t, err)
	png := readBody(t, img)
	assert.Equal(t, http.StatusOK, img.StatusCode)
	assert.Equal(t, "image/png", img.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(png, "\x89PNG"))

	svg, err := c.Get(ts.URL + "/chart?kind=histogram&format=svg")
	require.NoError(t, err)
	assert.Contains(t, readBody(t, svg), "<svg")
	assert.Equal(t, "image/svg+xml", svg.Header.Get("Content-Type"))
}

func TestEmptySelectionReportsNoRows(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	readBody(t, upload(t, c, ts.URL, "sales.csv", salesCSV))

	q := url.Values{"kind": {"bar"}, "filter_column": {"region"}, "values_for": {"region"}}
	p := getPlan(t, c, ts.URL, q)
	assert.Equal(t, "empty", p.FilterStatus)
	assert.Equal(t, 0, p.FilteredRows)

	resp, err := c.Get(ts.URL + "/chart?" + q.Encode())
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestFailedUploadKeepsPreviousDataset(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	readBody(t, upload(t, c, ts.URL, "sales.csv", salesCSV))

	for _, bad := range []string{"", "a,b\n1,2,3\n"} {
		resp := upload(t, c, ts.URL, "broken.csv", bad)
		body := readBody(t, resp)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "empty or could not be parsed")
		assert.Contains(t, body, "Data preview: sales.csv")
	}
	p := getPlan(t, c, ts.URL, url.Values{})
	assert.Equal(t, "sales.csv", p.Name)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	a, b := newClient(t), newClient(t)
	readBody(t, upload(t, a, ts.URL, "sales.csv", salesCSV))
	readBody(t, upload(t, b, ts.URL, "other.csv", "x,y\n1,2\n"))

	assert.Equal(t, "sales.csv", getPlan(t, a, ts.URL, url.Values{}).Name)
	assert.Equal(t, "other.csv", getPlan(t, b, ts.URL, url.Values{}).Name)

	resp, err := newClient(t).Get(ts.URL + "/api/plan")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChartValidationError(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	readBody(t, upload(t, c, ts.URL, "names.csv", "name\nalpha\nbeta\n"))
	resp, err := c.Get(ts.URL + "/chart?kind=histogram")
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "numeric")

	resp, err = c.Get(ts.URL + "/chart?format=gif")
	require.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	big := "a,b\n" + strings.Repeat("1,2\n", 400_000)
	resp := upload(t, c, ts.URL, "big.csv", big)
	readBody(t, resp)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	var h map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &h))
	assert.Equal(t, "healthy", h["status"])
}

func TestSwitchingKindResetsFields(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	readBody(t, upload(t, c, ts.URL, "sales.csv", salesCSV))

	q := url.Values{"kind": {"bar"}, "fields_for": {"histogram"}, "x": {"units"}}
	p := getPlan(t, c, ts.URL, q)
	require.NotNil(t, p.Request)
	assert.Equal(t, "Total units per region", p.Request.Title)
	for _, m := range p.Messages {
		assert.NotEqual(t, "warning", m.Level, m.Text)
	}

	resp, err := c.Get(ts.URL + "/?" + q.Encode())
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.NotContains(t, body, "not a valid choice")
	assert.Contains(t, body, `name="fields_for" value="bar"`)

	q.Set("fields_for", "bar")
	p = getPlan(t, c, ts.URL, q)
	assert.Nil(t, p.Request, "fields picked for the same kind are still validated")
}

func TestFilteredPreviewOnPage(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	readBody(t, upload(t, c, ts.URL, "sales.csv", salesCSV))

	q := url.Values{"filter_column": {"region"}, "values_for": {"region"}, "filter_values": {"South"}}
	resp, err := c.Get(ts.URL + "/?" + q.Encode())
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Contains(t, body, "Data preview after filter")
	assert.Contains(t, body, "1 of 3 rows match region")
}

func TestParseSelection(t *testing.T) {
	q := url.Values{
		"filter_column": {"region"},
		"filter_values": {"North", "North", "South"},
		"values_for":    {"product"},
		"kind":          {"Scatter Plot"},
		"x":             {"a"},
	}
	sel := parseSelection(q, 3)
	assert.Equal(t, []string{"North", "South"}, sel.FilterValues)
	assert.False(t, sel.ValuesChosen, "values picked for another column do not count")
	assert.Equal(t, "scatter", string(sel.Chart.Kind))
	assert.Equal(t, "a", sel.Chart.X)
	assert.Equal(t, 3, sel.PreviewRows)

	q.Set("fields_for", "scatter")
	assert.Equal(t, "a", parseSelection(q, 3).Chart.X)
	q.Set("fields_for", "line")
	assert.Empty(t, parseSelection(q, 3).Chart.X)
}
