package collector

import (
	"errors"
	"testing"
)

func TestExtractElementFromAnchor(t *testing.T) {
	doc := mustDoc(t, `<ul class="list"><li><a href="/n1/2024.html">  国家移民局发布
		出入境新政  </a></li></ul>`)
	c := ExtractElement(doc.Find(".list li a").First(), FieldRules{})
	if c.Title != "国家移民局发布 出入境新政" {
		t.Fatalf("title = %q", c.Title)
	}
	if c.Link != "/n1/2024.html" {
		t.Fatalf("link = %q", c.Link)
	}
}

func TestExtractElementFromContainer(t *testing.T) {
	doc := mustDoc(t, `<div class="views-row">
		<a href="/img"><img src="x.png"></a>
		<a href="/news/visa-update">New visa rules announced for students</a>
		<time datetime="2024-03-05T10:00:00Z">March 5, 2024</time>
	</div>`)
	c := ExtractElement(doc.Find(".views-row").First(), FieldRules{})
	if c.Title != "New visa rules announced for students" {
		t.Fatalf("title = %q", c.Title)
	}
	// 跳过没有文字的图片链接
	if c.Link != "/news/visa-update" {
		t.Fatalf("link = %q", c.Link)
	}
	if c.DateText != "2024-03-05T10:00:00Z" {
		t.Fatalf("date = %q", c.DateText)
	}
}

func TestExtractElementHeadingInsideLink(t *testing.T) {
	doc := mustDoc(t, `<a href="/story"><h2>Migration report released today</h2></a>`)
	c := ExtractElement(doc.Find("h2").First(), FieldRules{})
	if c.Link != "/story" {
		t.Fatalf("link = %q, want /story", c.Link)
	}
	if c.Title != "Migration report released today" {
		t.Fatalf("title = %q", c.Title)
	}
}

func TestExtractElementFieldOverrides(t *testing.T) {
	doc := mustDoc(t, `<div class="item">
		<span class="t">Override title here</span>
		<a class="more" href="/more">Read more</a>
		<span class="d">2024-01-02</span>
	</div>`)
	c := ExtractElement(doc.Find(".item").First(), FieldRules{
		TitleSelector: ".t",
		LinkSelector:  "a.more",
		DateSelector:  ".d",
	})
	if c.Title != "Override title here" || c.Link != "/more" || c.DateText != "2024-01-02" {
		t.Fatalf("unexpected candidate %+v", c)
	}
}

func TestExtractElementWithoutLink(t *testing.T) {
	doc := mustDoc(t, `<h2>Just a heading with no link</h2>`)
	c := ExtractElement(doc.Find("h2").First(), FieldRules{})
	if c.Link != "" {
		t.Fatalf("link should be empty, got %q", c.Link)
	}
	if c.Title == "" {
		t.Fatalf("title should fall back to element text")
	}
}

func TestRelevanceCheck(t *testing.T) {
	rel := Relevance{MinTitleLen: 15, Keywords: []string{"visa", "border"}}

	cases := []struct {
		name  string
		c     Candidate
		keep  bool
		field string
	}{
		{"keyword match", Candidate{Title: "New VISA policy for workers", Link: "/a"}, true, ""},
		{"too short", Candidate{Title: "Visa news", Link: "/a"}, false, "title"},
		{"no keyword", Candidate{Title: "Secretary visits flood zone", Link: "/a"}, false, "title"},
		{"javascript link", Candidate{Title: "Border security update today", Link: "javascript:void(0)"}, false, "link"},
		{"mailto link", Candidate{Title: "Border security update today", Link: "mailto:a@b.c"}, false, "link"},
		{"anchor link", Candidate{Title: "Border security update today", Link: "#top"}, false, "link"},
		{"empty title", Candidate{Title: "", Link: "/a"}, false, "title"},
	}
	for _, tc := range cases {
		err := rel.Check(tc.c)
		if tc.keep {
			if err != nil {
				t.Fatalf("%s: expected keep, got %v", tc.name, err)
			}
			continue
		}
		var ge *GapError
		if !errors.As(err, &ge) {
			t.Fatalf("%s: expected *GapError, got %v", tc.name, err)
		}
		if ge.Field != tc.field {
			t.Fatalf("%s: field = %q, want %q", tc.name, ge.Field, tc.field)
		}
	}
}

func TestRelevanceCountsRunesNotBytes(t *testing.T) {
	rel := Relevance{MinTitleLen: 5}
	// 5 个汉字 15 个字节，应按 5 个字符计
	if err := rel.Check(Candidate{Title: "移民新政策", Link: "/a"}); err != nil {
		t.Fatalf("5 CJK runes should pass min length 5: %v", err)
	}
	if err := rel.Check(Candidate{Title: "移民新政", Link: "/a"}); err == nil {
		t.Fatalf("4 CJK runes should fail min length 5")
	}
}

func TestRelevanceNoKeywordsKeepsAll(t *testing.T) {
	rel := Relevance{MinTitleLen: 1}
	if err := rel.Check(Candidate{Title: "anything at all", Link: "/x"}); err != nil {
		t.Fatalf("dedicated source without keywords should keep item: %v", err)
	}
}

func TestExtractEntryTrimsPublisherSuffix(t *testing.T) {
	c := ExtractEntry(FeedEntry{Title: "Local bakery wins award - Border Report", Publisher: "Border Report"})
	if c.Title != "Local bakery wins award" || c.Publisher != "Border Report" {
		t.Fatalf("candidate = %+v", c)
	}
	if err := (Relevance{Keywords: []string{"border"}}).Check(c); err == nil {
		t.Fatalf("publisher name must not satisfy keywords")
	}

	// 没有 publisher 时标题原样保留
	c = ExtractEntry(FeedEntry{Title: "Visa update - Part 2"})
	if c.Title != "Visa update - Part 2" {
		t.Fatalf("title = %q", c.Title)
	}
}
