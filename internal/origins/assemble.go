package origins

import (
	"log/slog"

	"github.com/roach88/vrorigins/internal/ir"
)

// nameSet holds the localized names collected for one resolution and
// combines them with binding info into output records.
type nameSet interface {
	assemble(q *request, origins []ir.OriginHandle, infos []ir.InputBindingInfo) ([]ir.BindingOriginData, error)
}

// keyedNames stores names by origin value, so a failed query for one origin
// cannot shift the names of another.
type keyedNames struct {
	names  map[ir.OriginHandle]*ir.LocalizedNames
	failed map[ir.OriginHandle]bool
	logger *slog.Logger
}

func (k *keyedNames) put(o ir.OriginHandle, kind ir.InputString, name string) {
	n, ok := k.names[o]
	if !ok {
		n = &ir.LocalizedNames{}
		k.names[o] = n
	}
	switch kind {
	case ir.InputStringControllerType:
		n.ControllerType = name
	case ir.InputStringHand:
		n.Hand = name
	case ir.InputStringInputSource:
		n.InputSource = name
	}
}

// assemble pairs origin i with binding info i. Binding info has no origin
// key, so its length must match the origin list exactly.
func (k *keyedNames) assemble(q *request, origins []ir.OriginHandle, infos []ir.InputBindingInfo) ([]ir.BindingOriginData, error) {
	if len(infos) != len(origins) {
		return nil, newMisalignedError(q, map[string]int{
			"origins":      len(origins),
			"binding_info": len(infos),
		})
	}

	records := make([]ir.BindingOriginData, 0, len(origins))
	for i, o := range origins {
		if k.failed[o] {
			k.logger.Warn("origin omitted: localized names incomplete",
				"action", q.actionKey,
				"origin", uint64(o),
			)
			continue
		}
		rec, err := ir.NewBindingOriginData(*k.names[o], &infos[i])
		if err != nil {
			return nil, newDecodeError(q, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// positionalNames keeps one list per name kind, dropping failed entries.
type positionalNames struct {
	controllerTypes []string
	hands           []string
	inputSources    []string
}

func (p *positionalNames) set(kind ir.InputString, list []string) {
	switch kind {
	case ir.InputStringControllerType:
		p.controllerTypes = list
	case ir.InputStringHand:
		p.hands = list
	case ir.InputStringInputSource:
		p.inputSources = list
	}
}

// assemble zips the four lists by index. All of them must have exactly one
// entry per origin; anything else is reported instead of indexed.
func (p *positionalNames) assemble(q *request, origins []ir.OriginHandle, infos []ir.InputBindingInfo) ([]ir.BindingOriginData, error) {
	n := len(origins)
	if len(p.controllerTypes) != n || len(p.hands) != n || len(p.inputSources) != n || len(infos) != n {
		return nil, newMisalignedError(q, map[string]int{
			"origins":          n,
			"controller_types": len(p.controllerTypes),
			"hands":            len(p.hands),
			"input_sources":    len(p.inputSources),
			"binding_info":     len(infos),
		})
	}

	records := make([]ir.BindingOriginData, 0, n)
	for i := 0; i < n; i++ {
		rec, err := ir.NewBindingOriginData(ir.LocalizedNames{
			ControllerType: p.controllerTypes[i],
			Hand:           p.hands[i],
			InputSource:    p.inputSources[i],
		}, &infos[i])
		if err != nil {
			return nil, newDecodeError(q, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
