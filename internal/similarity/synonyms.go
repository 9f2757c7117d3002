package similarity

import "go.uber.org/zap"

// namedClasses are the equivalence classes templates reference by name.
// Each class folds its members to one diff token, so swapping a long form
// for its short form diffs EQUAL.
var namedClasses = map[string]*SynonymClass{
	"管理人":   NewSynonymClass("管理人", "基金管理人", "管理人"),
	"托管人":   NewSynonymClass("托管人", "基金托管人", "托管人"),
	"基金法":   NewSynonymClass("基金法", "《中华人民共和国证券投资基金法》", "《证券投资基金法》", "《基金法》"),
	"证监会":   NewSynonymClass("证监会", "中国证券监督管理委员会", "中国证监会"),
	"招募说明书": NewSynonymClass("招募说明书", "基金招募说明书", "招募说明书"),
	"销售机构":  NewSynonymClass("销售机构", "基金销售机构", "销售机构"),
}

// Named resolves class names to synonym classes, dropping unknown names
// with a log line.
func Named(names []string) []*SynonymClass {
	var out []*SynonymClass
	for _, name := range names {
		cls, ok := namedClasses[name]
		if !ok {
			zap.L().Warn("similarity: unknown synonym class", zap.String("name", name))
			continue
		}
		out = append(out, cls)
	}
	return out
}
