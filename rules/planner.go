// ABOUTME: PlacementPlanner: assigns resolved pod instances to SocketSlots
// ABOUTME: Honors socket-affinity, co-location, anti-affinity, and capacity; deterministic, no cross-pod backtracking

package rules

import (
	"fmt"
	"sort"

	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/models"
)

// PlacementPlanner assigns each pod instance in a feasibility-confirmed
// workload to a (server, socket) pair.
type PlacementPlanner struct {
	Catalog *catalog.RuleCatalog
}

// NewPlacementPlanner constructs a PlacementPlanner bound to the given catalog.
func NewPlacementPlanner(c *catalog.RuleCatalog) *PlacementPlanner {
	return &PlacementPlanner{Catalog: c}
}

// instance is one unit of a ResolvedPod's quantity, expanded for placement.
type instance struct {
	key            string
	kind           models.PodKind
	vcores         float64
	socketAffinity *int
	antiAffinityTag string
	coLocationTag   string
}

// planState carries the planner's mutable working set across one Plan call.
type planState struct {
	remaining       map[string]float64 // slot key -> remaining vcores
	slotByKey       map[string]models.SocketSlot
	antiUsed        map[string]map[string]bool // anti-affinity tag -> slot key -> used
	groupSlot       map[string]string          // co-location tag -> chosen slot key
	assignments     []models.Assignment
}

// Plan expands w into pod instances and assigns each to a socket under the
// requested strategy. It returns the plan built so far (partial on failure)
// and any PLACEMENT_INFEASIBLE violations (one per instance/group that could
// not be placed); the caller decides whether a partial plan is acceptable.
func (p *PlacementPlanner) Plan(w models.ResolvedWorkload, slots []models.SocketSlot, strategy models.PlacementStrategy) (models.PlacementPlan, []models.Violation) {
	orderedSlots := append([]models.SocketSlot{}, slots...)
	sort.Slice(orderedSlots, func(i, j int) bool { return orderedSlots[i].Less(orderedSlots[j]) })

	st := &planState{
		remaining: map[string]float64{},
		slotByKey: map[string]models.SocketSlot{},
		antiUsed:  map[string]map[string]bool{},
		groupSlot: map[string]string{},
	}
	for _, s := range orderedSlots {
		st.remaining[s.Key()] = s.VcoresAvailable
		st.slotByKey[s.Key()] = s
	}

	instances := p.expandInstances(w)

	var violations []models.Violation

	grouped := map[string][]instance{}
	var groupOrder []string
	var ungrouped []instance
	for _, inst := range instances {
		if inst.coLocationTag != "" {
			if _, seen := grouped[inst.coLocationTag]; !seen {
				groupOrder = append(groupOrder, inst.coLocationTag)
			}
			grouped[inst.coLocationTag] = append(grouped[inst.coLocationTag], inst)
		} else {
			ungrouped = append(ungrouped, inst)
		}
	}

	for _, tag := range groupOrder {
		members := grouped[tag]
		if v := p.placeGroup(st, orderedSlots, tag, members); v != nil {
			violations = append(violations, *v)
		}
	}

	for _, inst := range ungrouped {
		if v := p.placeOne(st, orderedSlots, inst, strategy); v != nil {
			violations = append(violations, *v)
		}
	}

	usage := make([]models.SlotUsage, 0, len(orderedSlots))
	for _, s := range orderedSlots {
		usage = append(usage, models.SlotUsage{
			Slot:            s,
			VcoresUsed:      s.VcoresAvailable - st.remaining[s.Key()],
			VcoresRemaining: st.remaining[s.Key()],
		})
	}

	plan := models.PlacementPlan{
		Strategy:    strategy,
		Assignments: st.assignments,
		SlotUsage:   usage,
	}
	return plan, violations
}

// expandInstances flattens a ResolvedWorkload's pods (each with a quantity)
// into individually-addressable instances, tagging anti-affinity and
// co-location groups from the catalog plus the synthetic RMP/DPP pairing
// the vdu_ru_switch_connection flag requires (M3; see DESIGN.md's
// notes on rmp-dpp-pair tags).
func (p *PlacementPlanner) expandInstances(w models.ResolvedWorkload) []instance {
	antiAffinity := p.Catalog.AntiAffinityGroups(w.Input.FeatureFlags)
	coLocation := p.Catalog.CoLocationGroups(w.Input.FeatureFlags, w.Input.Operator)

	kindAntiTag := map[models.PodKind]string{}
	for tag, kinds := range antiAffinity {
		for _, k := range kinds {
			kindAntiTag[k] = tag
		}
	}
	kindCoTag := map[models.PodKind]string{}
	for tag, kinds := range coLocation {
		for _, k := range kinds {
			kindCoTag[k] = tag
		}
	}

	var instances []instance
	dppIndex, rmpIndex := 0, 0
	for _, pod := range w.Pods {
		for i := 0; i < pod.Quantity; i++ {
			inst := instance{
				key:             pod.InstanceKey(i),
				kind:            pod.Kind,
				vcores:          pod.Vcores,
				socketAffinity:  pod.SocketAffinity,
				antiAffinityTag: kindAntiTag[pod.Kind],
				coLocationTag:   kindCoTag[pod.Kind],
			}
			instances = append(instances, inst)
		}
	}

	if w.Input.FeatureFlags.VDURUSwitchConnection {
		for i := range instances {
			switch instances[i].kind {
			case models.DPP:
				if instances[i].coLocationTag == "" {
					instances[i].coLocationTag = fmt.Sprintf("rmp-dpp-pair-%d", dppIndex)
				}
				dppIndex++
			case models.RMP:
				if instances[i].coLocationTag == "" {
					instances[i].coLocationTag = fmt.Sprintf("rmp-dpp-pair-%d", rmpIndex)
				}
				rmpIndex++
			}
		}
	}

	return instances
}

// placeGroup places every member of a co-location group atomically on the
// first eligible slot (tie-break order) with sufficient combined capacity,
// per spec §4.7. Strategy selection does not apply to group placement.
func (p *PlacementPlanner) placeGroup(st *planState, slots []models.SocketSlot, tag string, members []instance) *models.Violation {
	total := 0.0
	for _, m := range members {
		total += m.vcores
	}

	for _, s := range slots {
		key := s.Key()
		if st.remaining[key] < total {
			continue
		}
		if p.antiAffinityConflicts(st, key, members) {
			continue
		}
		st.remaining[key] -= total
		st.groupSlot[tag] = key
		for _, m := range members {
			p.recordAssignment(st, m, s)
		}
		return nil
	}

	return &models.Violation{
		RuleID:   models.PlacementInfeasibleRuleID,
		Category: models.CategoryPlacement,
		Detail:   fmt.Sprintf("co-location group %q (%.1f combined vcores) has no eligible socket", tag, total),
	}
}

// placeOne places a single ungrouped instance using strategy, falling back
// through the fixed first-fit -> best-fit -> worst-fit sequence (a
// single-level retry for this instance only; spec §4.7/§9 disallow
// cross-pod backtracking).
func (p *PlacementPlanner) placeOne(st *planState, slots []models.SocketSlot, inst instance, strategy models.PlacementStrategy) *models.Violation {
	tryOrder := []models.PlacementStrategy{strategy}
	for _, fallback := range models.FallbackOrder() {
		if fallback != strategy {
			tryOrder = append(tryOrder, fallback)
		}
	}

	for _, s := range tryOrder {
		if slot, ok := p.selectSlot(st, slots, inst, s); ok {
			st.remaining[slot.Key()] -= inst.vcores
			p.recordAssignment(st, inst, slot)
			return nil
		}
	}

	return &models.Violation{
		RuleID:   models.PlacementInfeasibleRuleID,
		Category: models.CategoryPlacement,
		Detail:   fmt.Sprintf("pod %s (instance %s, %.1f vcores) has no eligible socket under any strategy", inst.kind, inst.key, inst.vcores),
	}
}

// selectSlot picks one eligible slot for inst under strategy.
func (p *PlacementPlanner) selectSlot(st *planState, slots []models.SocketSlot, inst instance, strategy models.PlacementStrategy) (models.SocketSlot, bool) {
	var eligible []models.SocketSlot
	for _, s := range slots {
		if inst.socketAffinity != nil && s.SocketIndex != *inst.socketAffinity {
			continue
		}
		key := s.Key()
		if st.remaining[key] < inst.vcores {
			continue
		}
		if p.antiAffinityConflicts(st, key, []instance{inst}) {
			continue
		}
		eligible = append(eligible, s)
	}
	if len(eligible) == 0 {
		return models.SocketSlot{}, false
	}

	switch strategy {
	case models.StrategyFirstFit:
		return eligible[0], true
	case models.StrategyBestFit:
		best := eligible[0]
		for _, s := range eligible[1:] {
			if st.remaining[s.Key()]-inst.vcores < st.remaining[best.Key()]-inst.vcores {
				best = s
			}
		}
		return best, true
	case models.StrategyWorstFit:
		worst := eligible[0]
		for _, s := range eligible[1:] {
			if st.remaining[s.Key()] > st.remaining[worst.Key()] {
				worst = s
			}
		}
		return worst, true
	default: // StrategyBalanced
		mean := 0.0
		for _, s := range eligible {
			mean += st.remaining[s.Key()] - inst.vcores
		}
		mean /= float64(len(eligible))
		best := eligible[0]
		bestDist := dist(st.remaining[best.Key()]-inst.vcores, mean)
		for _, s := range eligible[1:] {
			d := dist(st.remaining[s.Key()]-inst.vcores, mean)
			if d < bestDist {
				best, bestDist = s, d
			}
		}
		return best, true
	}
}

func dist(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// antiAffinityConflicts reports whether placing members at slotKey would put
// two members of the same anti-affinity group on one socket.
func (p *PlacementPlanner) antiAffinityConflicts(st *planState, slotKey string, members []instance) bool {
	seen := map[string]bool{}
	for _, m := range members {
		if m.antiAffinityTag == "" {
			continue
		}
		if st.antiUsed[m.antiAffinityTag][slotKey] || seen[m.antiAffinityTag] {
			return true
		}
		seen[m.antiAffinityTag] = true
	}
	return false
}

func (p *PlacementPlanner) recordAssignment(st *planState, inst instance, slot models.SocketSlot) {
	st.assignments = append(st.assignments, models.Assignment{
		InstanceKey: inst.key,
		Kind:        inst.kind,
		Vcores:      inst.vcores,
		ServerIndex: slot.ServerIndex,
		SocketIndex: slot.SocketIndex,
	})
	if inst.antiAffinityTag != "" {
		if st.antiUsed[inst.antiAffinityTag] == nil {
			st.antiUsed[inst.antiAffinityTag] = map[string]bool{}
		}
		st.antiUsed[inst.antiAffinityTag][slot.Key()] = true
	}
}
