package api

import (
	"net/url"
	"strconv"
)

// values はページ指定をクエリパラメータに変換する。
func (q PageQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

// values は検索条件をクエリパラメータに変換する。
func (q AttractionQuery) values() url.Values {
	v := q.PageQuery.values()
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	return v
}

// idPath はprefixにIDを連結したパスを返す。
func idPath(prefix string, id int64, suffix ...string) string {
	p := prefix + "/" + strconv.FormatInt(id, 10)
	for _, s := range suffix {
		p += s
	}
	return p
}
