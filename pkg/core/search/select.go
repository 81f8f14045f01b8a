package search

import "github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"

// FindByKey returns a copy of the model whose key equals key exactly.
func FindByKey(models []domain.Model, key string) (domain.Model, bool) {
	for i := range models {
		if models[i].Key == key {
			return copyModel(models[i]), true
		}
	}
	return domain.Model{}, false
}

// SelectByKeys returns copies of the models whose keys are in keys, in store
// order. Unknown keys are skipped.
func SelectByKeys(models []domain.Model, keys []string) []domain.Model {
	want := toSet(keys)
	out := []domain.Model{}
	if len(want) == 0 {
		return out
	}
	for i := range models {
		if _, ok := want[models[i].Key]; ok {
			out = append(out, copyModel(models[i]))
		}
	}
	return out
}

// SelectVariants returns every model holding at least one of ids, with its
// variants trimmed to those ids. Variants without an id never match.
func SelectVariants(models []domain.Model, ids []string) []domain.Model {
	want := toSet(ids)
	out := []domain.Model{}
	if len(want) == 0 {
		return out
	}
	for i := range models {
		var kept []domain.Variant
		for _, v := range models[i].Variants {
			if v.ID == "" {
				continue
			}
			if _, ok := want[v.ID]; ok {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			out = append(out, models[i].WithVariants(kept))
		}
	}
	return out
}

func copyModel(m domain.Model) domain.Model {
	vs := make([]domain.Variant, len(m.Variants))
	copy(vs, m.Variants)
	return m.WithVariants(vs)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
