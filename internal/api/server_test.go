package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/meur/wakfudex/internal/catalog"
	"github.com/meur/wakfudex/internal/changelog"
	"github.com/meur/wakfudex/internal/dungeons"
	"github.com/meur/wakfudex/internal/models"
	"github.com/meur/wakfudex/internal/session"
	"github.com/xuri/excelize/v2"
)

const testTable = `
brackets:
  - level: 20
    dungeons: ["Grandmeow's House", "Gobball Pastures"]
  - level: 35
    dungeons: ["Treechnee Dungeon", "Hoola Hoopiwi"]
`

// testServer loads the catalog from a primary source answering 404, so the fallback data is served
func testServer(t *testing.T) *Server {
	t.Helper()
	return testServerWithSessions(t, session.NewMemoryStore[session.Visitor]())
}

func testServerWithSessions(t *testing.T, sessions session.Store[session.Visitor]) *Server {
	t.Helper()
	primary := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(primary.Close)

	loader := &catalog.Loader{Source: catalog.HTTPSource{URL: primary.URL + "/sublimations.json"}}
	c, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dirs, err := dungeons.Load([]byte(testTable))
	if err != nil {
		t.Fatalf("dungeons.Load: %v", err)
	}
	entries, err := changelog.Load([]byte("entries:\n  - date: 2025-06-14\n    title: Sublimation levels\n"))
	if err != nil {
		t.Fatalf("changelog.Load: %v", err)
	}

	return New(Options{
		Catalog:    c,
		References: catalog.NewReferenceIndex([]models.ReferenceItem{{ID: 27091, Title: "Ambition"}}, ""),
		Sessions:   sessions,
		Dungeons:   dirs,
		Changelog:  entries,
	})
}

func do(t *testing.T, srv *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, srv *Server, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(t, srv, req)
}

func postLevel(t *testing.T, srv *Server, name, level string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"name": {name}, "level": {level}}
	req := httptest.NewRequest(http.MethodPost, "/sublimations/level", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return do(t, srv, req)
}

func parseDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

func cardNames(doc *goquery.Document) []string {
	var names []string
	doc.Find("article.sublimation-card").Each(func(_ int, s *goquery.Selection) {
		names = append(names, s.AttrOr("data-name", ""))
	})
	return names
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHealth(t *testing.T) {
	rec := get(t, testServer(t), "/health")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("Expected 200 OK, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHome(t *testing.T) {
	rec := get(t, testServer(t), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if doc.Find("#guides").Length() != 1 || doc.Find("#community").Length() != 1 {
		t.Error("Expected guides and community sections")
	}
	if doc.Find("a.nav-link.active").Text() != "Home" {
		t.Errorf("Expected Home to be the active nav link, got %q", doc.Find("a.nav-link.active").Text())
	}
}

func TestSublimations_FallbackRendered(t *testing.T) {
	rec := get(t, testServer(t), "/sublimations")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)

	names := cardNames(doc)
	want := []string{"Influence", "Length", "Inflexibility II", "Ambition"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("Expected cards %v, got %v", want, names)
	}
	if doc.Find(".fallback-note").Length() != 1 {
		t.Error("Expected the offline data note")
	}
	if doc.Find("input[name=category][value=all][checked]").Length() != 1 {
		t.Error("Expected the 'all' category tab to be active")
	}
	if got := doc.Find("#sub-length .card-source").Text(); got != "Runic Mimic" {
		t.Errorf("Expected Length to show Runic Mimic, got %q", got)
	}
}

func TestSublimations_SpecialCardHasNoLevelControl(t *testing.T) {
	doc := parseDoc(t, get(t, testServer(t), "/sublimations"))

	relic := doc.Find("#sub-ambition")
	if relic.Length() != 1 {
		t.Fatal("Expected the Ambition card")
	}
	if relic.Find("input[type=range]").Length() != 0 {
		t.Error("Expected no level control on a Relic card")
	}
	if relic.Find(".level-readout").Length() != 0 {
		t.Error("Expected no level readout on a Relic card")
	}
	link, ok := relic.Find(".card-name a").Attr("href")
	if !ok || !strings.HasSuffix(link, "/27091") {
		t.Errorf("Expected reference link to item 27091, got %q", link)
	}

	slider := doc.Find("#sub-influence input[type=range]")
	if slider.Length() != 1 {
		t.Fatal("Expected a level control on Influence")
	}
	if slider.AttrOr("min", "") != "1" || slider.AttrOr("max", "") != "6" || slider.AttrOr("value", "") != "1" {
		t.Errorf("Unexpected slider attributes min=%s max=%s value=%s",
			slider.AttrOr("min", ""), slider.AttrOr("max", ""), slider.AttrOr("value", ""))
	}
	if got := strings.TrimSpace(doc.Find("#sub-influence .card-description").Text()); got != "3% Critical Hit" {
		t.Errorf("Expected '3%% Critical Hit', got %q", got)
	}
	if doc.Find("#sub-length .card-name a").Length() != 0 {
		t.Error("Expected no reference link on a non-special card")
	}
}

func TestCards_Filter(t *testing.T) {
	srv := testServer(t)

	doc := parseDoc(t, get(t, srv, "/sublimations/cards?category="+url.QueryEscape("Crit %")))
	names := cardNames(doc)
	if strings.Join(names, ",") != "Influence,Ambition" {
		t.Errorf("Expected [Influence Ambition], got %v", names)
	}
	if doc.Find("aside.sidebar").Length() != 0 {
		t.Error("Expected a fragment without the layout")
	}

	doc = parseDoc(t, get(t, srv, "/sublimations/cards?rarity=Relic&rarity=Epic"))
	if names := cardNames(doc); strings.Join(names, ",") != "Inflexibility II,Ambition" {
		t.Errorf("Expected special records, got %v", names)
	}

	doc = parseDoc(t, get(t, srv, "/sublimations/cards?q=runic+mimic"))
	if names := cardNames(doc); len(names) != 2 {
		t.Errorf("Expected 2 cards from source search, got %v", names)
	}
}

func TestCards_NoMatch(t *testing.T) {
	rec := get(t, testServer(t), "/sublimations/cards?q=zzzz")
	if !strings.Contains(rec.Body.String(), "No sublimation matches your search criteria.") {
		t.Error("Expected the empty-state message")
	}
}

func TestSetLevel_PersistsAcrossFilters(t *testing.T) {
	srv := testServer(t)

	rec := postLevel(t, srv, "Influence", "3")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	doc := parseDoc(t, rec)
	if got := strings.TrimSpace(doc.Find("#sub-influence-dynamic .card-description").Text()); got != "9% Critical Hit" {
		t.Errorf("Expected '9%% Critical Hit', got %q", got)
	}
	if got := doc.Find(".level-readout").Text(); got != "Level 3" {
		t.Errorf("Expected 'Level 3', got %q", got)
	}

	sid := cookieNamed(rec, sessionCookie)
	if sid == nil {
		t.Fatal("Expected a session cookie")
	}

	// hide Influence, then show it again
	doc = parseDoc(t, get(t, srv, "/sublimations/cards?category="+url.QueryEscape("Damage %"), sid))
	if doc.Find("#sub-influence").Length() != 0 {
		t.Fatal("Expected Influence to be filtered out")
	}
	doc = parseDoc(t, get(t, srv, "/sublimations/cards", sid))
	if v := doc.Find("#sub-influence input[type=range]").AttrOr("value", ""); v != "3" {
		t.Errorf("Expected remembered level 3, got %q", v)
	}
	if got := strings.TrimSpace(doc.Find("#sub-influence .card-description").Text()); got != "9% Critical Hit" {
		t.Errorf("Expected '9%% Critical Hit', got %q", got)
	}

	// other visitors keep the default level
	doc = parseDoc(t, get(t, srv, "/sublimations/cards"))
	if v := doc.Find("#sub-influence input[type=range]").AttrOr("value", ""); v != "1" {
		t.Errorf("Expected default level 1 for a new visitor, got %q", v)
	}
}

func TestSetLevel_Clamps(t *testing.T) {
	srv := testServer(t)
	rec := postLevel(t, srv, "Length", "99")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "12% Damage Inflicted") {
		t.Errorf("Expected level 6 value, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Level 6") {
		t.Error("Expected readout clamped to 6")
	}
}

func TestSetLevel_Errors(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		name, level string
		code        int
	}{
		{"Ambition", "2", http.StatusBadRequest},
		{"Nope", "2", http.StatusNotFound},
		{"Influence", "two", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if rec := postLevel(t, srv, tt.name, tt.level); rec.Code != tt.code {
			t.Errorf("%s/%s: expected %d, got %d", tt.name, tt.level, tt.code, rec.Code)
		}
	}
}

func TestSublimations_LoadFailure(t *testing.T) {
	srv := New(Options{LoadErr: errors.New("failed to load fallback data: boom")})

	rec := get(t, srv, "/sublimations")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 with error panel, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if got := doc.Find(".error-panel .error-message").Text(); !strings.Contains(got, "boom") {
		t.Errorf("Expected error message in panel, got %q", got)
	}
	if doc.Find("article.sublimation-card").Length() != 0 {
		t.Error("Expected no cards")
	}

	if rec := get(t, srv, "/api/sublimations"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from API, got %d", rec.Code)
	}
	if rec := postLevel(t, srv, "Influence", "2"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 from level update, got %d", rec.Code)
	}
}

func TestAPI_Sublimations(t *testing.T) {
	rec := get(t, testServer(t), "/api/sublimations?category="+url.QueryEscape("Crit %"))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Items []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Level    int    `json:"level"`
			Computed string `json:"computed_description"`
			Special  bool   `json:"special"`
			Link     string `json:"link"`
		} `json:"items"`
		TotalCount int  `json:"total_count"`
		Fallback   bool `json:"fallback"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalCount != 2 || !body.Fallback {
		t.Errorf("Expected 2 fallback items, got %d (fallback=%v)", body.TotalCount, body.Fallback)
	}
	if body.Items[0].Computed != "3% Critical Hit" || body.Items[0].Level != 1 {
		t.Errorf("Unexpected first item %+v", body.Items[0])
	}
	if !body.Items[1].Special || body.Items[1].Link == "" {
		t.Errorf("Expected Ambition to be special with a link, got %+v", body.Items[1])
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected JSON content type, got %q", rec.Header().Get("Content-Type"))
	}
}

func TestAPI_Facets(t *testing.T) {
	rec := get(t, testServer(t), "/api/facets")
	var facets models.FacetSet
	if err := json.Unmarshal(rec.Body.Bytes(), &facets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if facets.TotalCount != 4 || !facets.Fallback {
		t.Errorf("Unexpected facets %+v", facets)
	}
	if len(facets.Filters) == 0 {
		t.Error("Expected filter configs")
	}
}

func TestExport(t *testing.T) {
	srv := testServer(t)
	sid := cookieNamed(postLevel(t, srv, "Influence", "4"), sessionCookie)

	rec := get(t, srv, "/sublimations/export.xlsx?category="+url.QueryEscape("Crit %"), sid)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "sublimations.xlsx") {
		t.Errorf("Unexpected Content-Disposition %q", rec.Header().Get("Content-Disposition"))
	}

	book, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Influence" || rows[1][4] != "4" || rows[1][8] != "12% Critical Hit" {
		t.Errorf("Unexpected Influence row %v", rows[1])
	}
	if rows[2][0] != "Ambition" || rows[2][4] != "" {
		t.Errorf("Expected Ambition without level, got %v", rows[2])
	}
}

func TestExportBook_InvalidSheet(t *testing.T) {
	srv := testServer(t)
	cards := srv.catalog.Cards(catalog.Filter{}, nil, nil)
	book, err := srv.exportBook("bad:sheet[name]", cards)
	if err == nil {
		t.Fatal("Expected error for an invalid sheet name")
	}
	if book != nil {
		t.Error("Expected no workbook on error")
	}
}

func TestSublimations_LevelRangeLabels(t *testing.T) {
	doc := parseDoc(t, get(t, testServer(t), "/sublimations"))
	var labels []string
	doc.Find(".level-range-tabs label").Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.Text()))
	})
	if strings.Join(labels, ",") != "All Levels,Level 1-20" {
		t.Errorf("Expected [All Levels Level 1-20], got %v", labels)
	}
}

func TestDungeons_Search(t *testing.T) {
	srv := testServer(t)

	doc := parseDoc(t, get(t, srv, "/dungeons"))
	if n := doc.Find("section.bracket").Length(); n != 2 {
		t.Errorf("Expected 2 brackets, got %d", n)
	}

	doc = parseDoc(t, get(t, srv, "/dungeons?q=TREE"))
	brackets := doc.Find("section.bracket")
	if brackets.Length() != 1 || brackets.AttrOr("data-level", "") != "35" {
		t.Fatalf("Expected only bracket 35, got %d", brackets.Length())
	}
	if n := brackets.Find(".dungeon-item").Length(); n != 1 {
		t.Errorf("Expected 1 dungeon, got %d", n)
	}
	if got := brackets.Find(".bracket-count").Text(); got != "2 dungeons" {
		t.Errorf("Expected bracket count '2 dungeons', got %q", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/dungeons?q=zzz", http.NoBody)
	req.Header.Set("HX-Request", "true")
	rec := do(t, srv, req)
	if strings.Contains(rec.Body.String(), "<aside") {
		t.Error("Expected htmx search to return the bracket fragment only")
	}
	if !strings.Contains(rec.Body.String(), "No dungeon matches your search.") {
		t.Error("Expected empty-state message")
	}
}

func TestDungeon_Stub(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/dungeons/grandmeows-house")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	doc := parseDoc(t, rec)
	if got := doc.Find("h1.page-title").Text(); got != "Grandmeow's House" {
		t.Errorf("Expected dungeon title, got %q", got)
	}
	if !strings.Contains(doc.Find(".coming-soon").Text(), "Coming soon") {
		t.Error("Expected coming soon section")
	}

	if rec := get(t, srv, "/dungeons/unknown"); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestChangelog(t *testing.T) {
	doc := parseDoc(t, get(t, testServer(t), "/changelog"))
	if got := doc.Find(".changelog-item time").Text(); got != "June 14, 2025" {
		t.Errorf("Expected long-form date, got %q", got)
	}
}

func TestSidebarPreference(t *testing.T) {
	srv := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/prefs/sidebar", http.NoBody)
	req.Header.Set("Referer", "/dungeons")
	rec := do(t, srv, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dungeons" {
		t.Errorf("Expected redirect to /dungeons, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	pref := cookieNamed(rec, sidebarCookie)
	if pref == nil || pref.Value != "true" {
		t.Fatalf("Expected collapsed preference, got %+v", pref)
	}

	doc := parseDoc(t, get(t, srv, "/", pref))
	if doc.Find("aside.sidebar.collapsed").Length() != 1 {
		t.Error("Expected collapsed sidebar")
	}

	req = httptest.NewRequest(http.MethodPost, "/prefs/sidebar", http.NoBody)
	req.Header.Set("HX-Request", "true")
	req.AddCookie(pref)
	rec = do(t, srv, req)
	if c := cookieNamed(rec, sidebarCookie); c == nil || c.Value != "false" {
		t.Errorf("Expected expanded preference, got %+v", c)
	}
	doc = parseDoc(t, rec)
	if doc.Find("aside.sidebar").Length() != 1 || doc.Find("aside.sidebar.collapsed").Length() != 0 {
		t.Error("Expected an expanded sidebar fragment")
	}
}

func TestCORS_API(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/facets", http.NoBody)
	req.Header.Set("Origin", "https://example.com")
	rec := do(t, testServer(t), req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected wildcard CORS origin, got %q", got)
	}
}

func TestSetLevel_UntrustedSessionCookies(t *testing.T) {
	store := session.NewMemoryStoreWithLimits[session.Visitor](time.Hour, 50)
	srv := testServerWithSessions(t, store)

	for i := 0; i < 500; i++ {
		forged := &http.Cookie{Name: sessionCookie, Value: "forged-" + strconv.Itoa(i)}
		rec := postLevel(t, srv, "Influence", "2", forged)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		issued := cookieNamed(rec, sessionCookie)
		if issued == nil || issued.Value == forged.Value {
			t.Fatalf("Expected a fresh session id instead of %q", forged.Value)
		}
		if _, err := uuid.Parse(issued.Value); err != nil {
			t.Fatalf("Expected a UUID session id, got %q", issued.Value)
		}
	}
	if store.Len() > 50 {
		t.Errorf("Expected at most 50 sessions, got %d", store.Len())
	}

	// a well-formed id the server never issued is replaced too
	unknown := &http.Cookie{Name: sessionCookie, Value: uuid.NewString()}
	rec := postLevel(t, srv, "Influence", "2", unknown)
	if issued := cookieNamed(rec, sessionCookie); issued == nil || issued.Value == unknown.Value {
		t.Error("Expected an unknown session id to be replaced")
	}

	// an issued id is kept
	sid := cookieNamed(postLevel(t, srv, "Influence", "3"), sessionCookie)
	rec = postLevel(t, srv, "Influence", "4", sid)
	if cookieNamed(rec, sessionCookie) != nil {
		t.Error("Expected no new cookie for a known session")
	}
	doc := parseDoc(t, get(t, srv, "/sublimations/cards", sid))
	if v := doc.Find("#sub-influence input[type=range]").AttrOr("value", ""); v != "4" {
		t.Errorf("Expected level 4 on the known session, got %q", v)
	}
}
