// Package schema holds the hand-written compliance checks that do not fit
// the template machinery: catalog integrity, cross-document name
// consistency, and the numeric policy checks over extracted answers.
package schema

import (
	"github.com/sells-group/fundaudit/internal/docreader"
	"github.com/sells-group/fundaudit/internal/model"
)

// Ctx is the read-only document view a checker runs against.
type Ctx struct {
	Reader  docreader.Reader
	Answers *docreader.Manager
	Cls     model.Classification
	Mold    model.Mold
}

// Checker is one hand-written check. Labels are stable external
// identifiers like rule labels, schema_NNN.
type Checker interface {
	Label() string
	Name() string
	Check(ctx *Ctx) []model.Reason
}

// ForMold returns the checkers registered for a document mold, in run
// order.
func ForMold(mold model.Mold) []Checker {
	switch mold {
	case model.MoldContract:
		return []Checker{
			&catalogChecker{},
			&nameChecker{},
			&investRatioChecker{},
			&openDayChecker{},
			&itemChecker{spec: holderMeetingItems},
			&itemChecker{spec: costItems},
		}
	case model.MoldCustody:
		return []Checker{
			&nameChecker{},
			&itemChecker{spec: orderPactItems},
			&itemChecker{spec: valuationItems},
		}
	case model.MoldAssetPlan:
		return []Checker{
			&nameChecker{},
			&raisePeriodChecker{},
			&subscribeAmountChecker{},
		}
	}
	return nil
}

func matchFailed(text string, page int) model.Reason {
	return model.Reason{Kind: model.ReasonMatchFailed, Text: text, Page: page}
}

func matched(text string, page int) model.Reason {
	return model.Reason{Kind: model.ReasonMatch, Text: text, Page: page, Matched: true}
}
