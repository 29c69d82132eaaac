package collector

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestSelectReturnsFirstNonEmptyStrategy(t *testing.T) {
	doc := mustDoc(t, `<html><body>
		<div class="views-row"><a href="/a">Row A title long enough</a></div>
		<div class="views-row"><a href="/b">Row B title long enough</a></div>
		<h2><a href="/c">Heading C</a></h2>
	</body></html>`)

	name, found := Select(doc, HTMLStrategies([]string{".missing", ".views-row", "h2"}))
	if name != ".views-row" {
		t.Fatalf("strategy = %q, want .views-row", name)
	}
	// 只用第一个命中的策略，h2 不应被合并进来
	if len(found) != 2 {
		t.Fatalf("found %d elements, want 2", len(found))
	}
}

func TestSelectAllEmpty(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>nothing here</p></body></html>`)
	name, found := Select(doc, HTMLStrategies([]string{".a", ".b"}))
	if name != "" || found != nil {
		t.Fatalf("expected empty result, got %q %d", name, len(found))
	}
}

func TestSelectSkipsLaterStrategies(t *testing.T) {
	calls := 0
	strategies := []Strategy[int, int]{
		{Name: "first", Find: func(int) []int { calls++; return []int{1} }},
		{Name: "second", Find: func(int) []int { calls++; return []int{2} }},
	}
	name, found := Select(0, strategies)
	if name != "first" || len(found) != 1 || found[0] != 1 {
		t.Fatalf("unexpected result %q %v", name, found)
	}
	if calls != 1 {
		t.Fatalf("later strategies should not run, calls = %d", calls)
	}
}

func TestCSSStrategyInvalidSelectorMatchesNothing(t *testing.T) {
	doc := mustDoc(t, `<html><body><a href="/x">x</a></body></html>`)
	_, found := Select(doc, HTMLStrategies([]string{"a[", "a"}))
	if len(found) != 1 {
		t.Fatalf("invalid selector should fall through to next strategy, got %d", len(found))
	}
}
