package fea

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/fontfeatures"
)

// arrange splits a routine into routines an OpenType lookup can hold: rules
// of one kind, one lookup type, and one set of languages. Single and multiple
// substitutions share a lookup. A routine which needs no split is returned
// as is.
func arrange(r *fontfeatures.Routine) []*fontfeatures.Routine {
	chainType := chainLookupType(r)
	var keys []string
	groups := make(map[string]*fontfeatures.Routine)
	for _, rule := range r.Rules {
		langs := r.Languages
		if l := ruleLanguages(rule); len(l) > 0 {
			langs = l
		}
		key := arrangementKey(rule, chainType, langs)
		part, ok := groups[key]
		if !ok {
			part = &fontfeatures.Routine{
				Flags:               r.Flags,
				MarkFilteringSet:    r.MarkFilteringSet,
				MarkAttachmentClass: r.MarkAttachmentClass,
				Languages:           langs,
				Comments:            r.Comments,
				Address:             r.Address,
			}
			groups[key] = part
			keys = append(keys, key)
		}
		part.AddRule(rule)
	}
	if len(keys) <= 1 {
		if len(keys) == 1 && !slices.Equal(groups[keys[0]].Languages, r.Languages) {
			part := groups[keys[0]]
			part.Name = r.Name
			return []*fontfeatures.Routine{part}
		}
		return []*fontfeatures.Routine{r}
	}
	parts := make([]*fontfeatures.Routine, len(keys))
	for i, key := range keys {
		parts[i] = groups[key]
		parts[i].Name = fmt.Sprintf("%s_%d", r.Name, i+1)
	}
	tracer().Debugf("routine %s split into %d lookups", r.Name, len(parts))
	return parts
}

func arrangementKey(rule fontfeatures.Rule, chainType int, langs []fontfeatures.LangSys) string {
	var kind string
	lookupType := rule.LookupType()
	switch rule := rule.(type) {
	case *fontfeatures.Substitution:
		kind = "sub"
		if lookupType == 1 {
			lookupType = 2
		}
	case *fontfeatures.Positioning:
		kind = "pos"
	case *fontfeatures.Attachment:
		kind = "attach"
	case *fontfeatures.Chaining:
		kind = "chain"
		if rule.IsIgnore() && chainType != 0 {
			lookupType = chainType
		}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s%d", kind, lookupType)
	for _, ls := range langs {
		sb.WriteString(" " + ls.String())
	}
	return sb.String()
}

// chainLookupType is the lookup type of the first chaining rule which applies
// routines. Ignore rules join it.
func chainLookupType(r *fontfeatures.Routine) int {
	for _, rule := range r.Rules {
		if ch, ok := rule.(*fontfeatures.Chaining); ok && !ch.IsIgnore() {
			return ch.LookupType()
		}
	}
	return 0
}

func ruleLanguages(rule fontfeatures.Rule) []fontfeatures.LangSys {
	switch rule := rule.(type) {
	case *fontfeatures.Substitution:
		return rule.Languages
	case *fontfeatures.Positioning:
		return rule.Languages
	case *fontfeatures.Chaining:
		return rule.Languages
	}
	return nil
}
