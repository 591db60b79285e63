package web_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/draftboard/internal/factory"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/sleeper"
	"github.com/mcoot/draftboard/internal/testutil"
	"github.com/mcoot/draftboard/internal/web"
)

const testDraft = "1266518936610930688"

// webTestServer provides a test server for web interface testing
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	fake    *testutil.FakeSleeperServer
	cookies *cookieJar
}

// newWebTestServer creates a new test server with all dependencies wired
// and the test roster and rankings loaded
func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	ts := newBareWebTestServer(t)
	require.NoError(t, ts.app.LoadTestData())
	return ts
}

// newBareWebTestServer creates a test server with no static data loaded
func newBareWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	fake := testutil.NewFakeSleeperServer()
	app := factory.NewTestApp(sleeper.NewForTest(fake.URL()), "Bijan Robinson")
	require.NoError(t, app.DraftController.Start(testContext(t)))
	t.Cleanup(func() {
		app.DraftController.Stop()
		fake.Close()
	})

	router := web.NewRouter(web.RouterConfig{
		Logger:          testutil.NopLogger(),
		DraftController: app.DraftController,
		HubManager:      app.HubManager,
		DefaultDraftID:  testDraft,
	})

	return &webTestServer{
		t:       t,
		handler: router,
		app:     app,
		fake:    fake,
		cookies: newCookieJar(),
	}
}

// request makes an HTTP request and returns the response
func (ts *webTestServer) request(method, path string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	ts.cookies.addTo(req)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.cookies.extract(rr)

	return rr
}

// get makes a GET request
func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil, false)
}

// post makes a POST request with form data (non-HTMX)
func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, false)
}

// postHTMX makes a POST request with form data as an HTMX request
func (ts *webTestServer) postHTMX(path string, form url.Values) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, path, form, true)
}

// parseHTML parses the response body as HTML
func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

// cookieJar maintains cookies across requests (like a browser would)
type cookieJar struct {
	cookies map[string]*http.Cookie
}

func newCookieJar() *cookieJar {
	return &cookieJar{
		cookies: make(map[string]*http.Cookie),
	}
}

// addTo adds all cookies to the request
func (j *cookieJar) addTo(req *http.Request) {
	for _, cookie := range j.cookies {
		req.AddCookie(cookie)
	}
}

// extract extracts Set-Cookie headers from response
func (j *cookieJar) extract(rr *httptest.ResponseRecorder) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.MaxAge < 0 {
			delete(j.cookies, cookie.Name)
		} else {
			j.cookies[cookie.Name] = cookie
		}
	}
}

// Helper functions for common test operations

// createBoard opens a board through the form and returns its code
func (ts *webTestServer) createBoard(code, draftID, position string) string {
	ts.t.Helper()
	ts.app.MockRandom.QueueCodes(code)

	form := url.Values{"draft_id": {draftID}, "position": {position}}
	rr := ts.post("/board", form)
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "Expected redirect after board creation")

	location := rr.Header().Get("Location")
	require.Equal(ts.t, "/board/"+code, location)
	return code
}

// waitForRefresh blocks until the board has applied at least gen fetches
func (ts *webTestServer) waitForRefresh(code string, gen uint64) {
	ts.t.Helper()
	require.Eventually(ts.t, func() bool {
		b, err := ts.app.DraftController.Board(testContext(ts.t), model.SessionCode(code))
		return err == nil && b.Generation >= gen && b.State == model.RefreshStateIdle
	}, 2*time.Second, 10*time.Millisecond)
}

// followRedirect follows a redirect and returns the response
// Works with both traditional Location headers and HTMX HX-Redirect headers
func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("HX-Redirect")
	if location == "" {
		location = rr.Header().Get("Location")
	}
	require.NotEmpty(ts.t, location, "Expected Location or HX-Redirect header for redirect")
	return ts.get(location)
}

// Assertion helpers

// assertContainsElement asserts that the document contains an element matching the selector
func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
	}
}

// assertNotContainsElement asserts that the document does not contain an element matching the selector
func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	if doc.Find(selector).Length() > 0 {
		t.Errorf("Expected NOT to find element matching %q, but found %d", selector, doc.Find(selector).Length())
	}
}

// assertContainsText asserts that the element matching the selector contains the text
func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	el := doc.Find(selector)
	if el.Length() == 0 {
		t.Errorf("Expected to find element matching %q, but none found", selector)
		return
	}
	if !strings.Contains(el.Text(), text) {
		t.Errorf("Expected element %q to contain %q, but got %q", selector, text, el.Text())
	}
}

// columnTexts returns the trimmed text of every cell matching selector
func columnTexts(doc *goquery.Document, selector string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}
