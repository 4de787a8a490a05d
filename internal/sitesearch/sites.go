// Package sitesearch fans a stock discussion search out across Chinese
// finance platforms and merges the per-site results into one
// deduplicated, time-sorted response with a per-site summary.
package sitesearch

// Site categories.
const (
	CategorySocial = "social"
	CategoryNews   = "news"
)

// Site is one searchable platform.
type Site struct {
	Name     string   `json:"name" mapstructure:"name"`
	Category string   `json:"category" mapstructure:"category"`
	Domains  []string `json:"domains" mapstructure:"domains"`
}

// DefaultSites returns the built-in platform table: five social
// discussion platforms and five financial news outlets.
func DefaultSites() []Site {
	return []Site{
		{Name: "东方财富股吧", Category: CategorySocial, Domains: []string{"guba.eastmoney.com"}},
		{Name: "百度贴吧", Category: CategorySocial, Domains: []string{"tieba.baidu.com"}},
		{Name: "知乎", Category: CategorySocial, Domains: []string{"zhihu.com", "zhuanlan.zhihu.com"}},
		{Name: "微博", Category: CategorySocial, Domains: []string{"weibo.com", "s.weibo.com"}},
		{Name: "雪球", Category: CategorySocial, Domains: []string{"xueqiu.com"}},
		{Name: "新浪财经", Category: CategoryNews, Domains: []string{"finance.sina.com.cn"}},
		{Name: "华尔街见闻", Category: CategoryNews, Domains: []string{"wallstreetcn.com"}},
		{Name: "同花顺", Category: CategoryNews, Domains: []string{"10jqka.com.cn"}},
		{Name: "东方财富新闻", Category: CategoryNews, Domains: []string{"finance.eastmoney.com"}},
		{Name: "财联社", Category: CategoryNews, Domains: []string{"cls.cn"}},
	}
}
