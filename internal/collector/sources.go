package collector

var (
	// 泛新闻源需要命中其一才算移民政策相关
	migrationKeywords = []string{
		"immigration", "immigrant", "migrant", "migration",
		"border", "citizenship", "naturali", "visa",
		"asylum", "refugee", "deport", "green card",
	}

	niaKeywords = []string{
		"移民", "出入境", "签证", "护照", "边检", "口岸", "外国人", "居留",
	}
)

// DefaultSources 内置数据源，顺序即优先级（去重时先出现的保留）
func DefaultSources() []Source {
	return []Source{
		{
			Code:   "IOM",
			Name:   "国际移民组织(IOM)",
			Kind:   KindHTML,
			URL:    "https://www.iom.int/news",
			Origin: "https://www.iom.int",
			Selectors: []string{
				"article[class*='news']",
				".node--type-news",
				".views-row",
				"h2",
			},
			MinTitleLen: 15,
			MaxItems:    5,
		},
		{
			Code:   "DHS",
			Name:   "美国国土安全部",
			Kind:   KindHTML,
			URL:    "https://www.dhs.gov/news",
			Origin: "https://www.dhs.gov",
			Selectors: []string{
				".views-row",
				".node--type-news",
				"h3",
			},
			MinTitleLen: 15,
			Keywords:    migrationKeywords,
			MaxItems:    5,
		},
		{
			Code:     "NIA",
			Name:     "中国国家移民管理局",
			Kind:     KindHTML,
			URL:      "https://www.nia.gov.cn/n741440/n741547/index.html",
			Origin:   "https://www.nia.gov.cn",
			Encoding: "utf-8",
			Headers:  map[string]string{"Accept-Language": "zh-CN,zh;q=0.9"},
			Selectors: []string{
				".news-list li a",
				".list li a",
			},
			DateLayouts: []string{"2006-01-02"},
			MinTitleLen: 5,
			Keywords:    niaKeywords,
			MaxItems:    3,
		},
		{
			Code:        "IRCC",
			Name:        "加拿大移民、难民及公民部(IRCC)",
			Kind:        KindFeed,
			URL:         "https://api.io.canada.ca/io-server/gc/news/en/v2?dept=departmentofcitizenshipandimmigration&sort=publishedDate&orderBy=desc&pick=50&format=atom&atomtitle=Immigration,%20Refugees%20and%20Citizenship%20Canada",
			MinTitleLen: 10,
			MaxItems:    5,
		},
		{
			Code:        "UKHO",
			Name:        "英国内政部",
			Kind:        KindFeed,
			URL:         "https://www.gov.uk/government/organisations/home-office.atom",
			MinTitleLen: 15,
			Keywords:    migrationKeywords,
			MaxItems:    5,
		},
		{
			Code:             "GNEWS",
			Name:             "谷歌新闻",
			Kind:             KindFeed,
			URL:              "https://news.google.com/rss/search?q=immigration+policy&hl=en-US&gl=US&ceid=US:en",
			MinTitleLen:      10,
			Keywords:         migrationKeywords,
			MaxItems:         10,
			IncludePublisher: true,
		},
	}
}
