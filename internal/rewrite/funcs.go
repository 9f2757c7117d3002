package rewrite

import (
	"strings"

	"github.com/sells-group/fundaudit/internal/textnorm"
)

// DefaultFuncs is the attribute dispatch table for INNER_REPLACE. Keys are
// the func names referenced by rule definitions.
var DefaultFuncs = map[string]AttrFunc{
	"get_fund_name":        answerFunc("基金名称"),
	"get_manager_name":     answerFunc("基金管理人"),
	"get_trustee_name":     answerFunc("基金托管人"),
	"get_registrar_name":   answerFunc("登记机构"),
	"get_fund_bourse_name": getFundBourseName,
	"get_raise_limit":      answerFunc("募集期限"),
	"get_operate_mode":     answerFunc("运作方式"),
}

func answerFunc(field string) AttrFunc {
	return func(env *Env) string {
		return textnorm.CleanText(env.Answers.Get(field).Value)
	}
}

// getFundBourseName maps the listing-exchange answer to the city name used
// inside contract boilerplate.
func getFundBourseName(env *Env) string {
	v := textnorm.CleanText(env.Answers.Get("上市交易所").Value)
	switch {
	case strings.Contains(v, "上交所"), strings.Contains(v, "上海证券交易所"):
		return "上海"
	case strings.Contains(v, "深交所"), strings.Contains(v, "深圳证券交易所"):
		return "深圳"
	case strings.Contains(v, "北交所"), strings.Contains(v, "北京证券交易所"):
		return "北京"
	}
	return v
}
