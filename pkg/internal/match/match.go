// Package match 实现搜索使用的宽松模糊匹配.
//
// 匹配规则（全部先转小写），任一成立即匹配:
//  1. value 包含 query，或 query 包含 value
//  2. 去掉所有空白后，二者互相包含
//  3. 以字母 "s" 切分为片段，query 的每个片段都被某个 value 片段包含或包含它
//
// 第 3 条按字面量 "s" 切分而不是按空白切分，这是保留下来的历史行为.
// 空片段被任何 query 片段包含，因此以 "s" 开头或结尾、或含 "ss" 的 value 匹配任意 query.
// 整个 value 为空（或只有空白）时只匹配空 query.
package match

import (
	"strings"
)

// fragmentSep 片段切分字符.
const fragmentSep = "s"

// Matches 判断 value 是否与 query 模糊匹配.
func Matches(value, query string) bool {
	v := strings.ToLower(value)
	q := strings.ToLower(query)

	if strings.TrimSpace(v) == "" {
		return q == ""
	}

	if either(v, q) {
		return true
	}

	if either(stripSpace(v), stripSpace(q)) {
		return true
	}

	return fragments(v, q)
}

// either 二者互相包含.
func either(v, q string) bool {
	return strings.Contains(v, q) || strings.Contains(q, v)
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func fragments(v, q string) bool {
	vFrags := strings.Split(v, fragmentSep)
	qFrags := strings.Split(q, fragmentSep)

	for _, qf := range qFrags {
		found := false

		for _, vf := range vFrags {
			if either(vf, qf) {
				found = true
				break
			}
		}

		if !found {
			return false
		}
	}

	return true
}
