// ABOUTME: RuleCatalog: immutable in-memory Deterministic Rule catalog loaded from JSON
// ABOUTME: Constructed once at startup and thereafter read-only; see models.DeploymentInput lifecycle

package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/singleflight"

	"github.com/asquaree/pod-placement-ai/models"
)

//go:embed default_rules.json
var defaultRulesJSON []byte

// CatalogError reports that the rule catalog itself is malformed at load
// time. It is fatal to the engine instance (spec §7: CatalogError).
type CatalogError struct {
	Path string
	Err  error
}

func (e *CatalogError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("catalog: %v", e.Err)
	}
	return fmt.Sprintf("catalog %s: %v", e.Path, e.Err)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// vcsrEntry is one flavor's vCSR support record.
type vcsrEntry struct {
	supported bool
	vcores    float64
}

// RuleCatalog is the parsed, read-only representation of a DR rules document.
// Every accessor is a pure function of the loaded document; there is no
// mutable state after Load returns.
type RuleCatalog struct {
	raw []byte

	caasCoresPerSocketPcores   map[models.Operator]float64
	sharedCoresPerSocketPcores map[models.Operator]float64
	operatorMandatoryPods      map[models.Operator][]models.PodKind
	antiAffinityGroups         map[string]map[string][]models.PodKind // flag name -> group tag -> kinds
	coLocationGroups           map[string]map[string][]models.PodKind // flag name -> group tag -> kinds
	specialFlavors             map[string]bool
	knownFlavors               map[string]bool
	vcuVcoresByFlavor          map[string]float64
	vcsrVcoresByFlavor         map[string]vcsrEntry
	allowedSockets             map[int]bool

	// rule-summary bookkeeping for the supplemented introspection API
	rulesByCategory map[models.Category][]string
	rulesByOperator map[models.Operator][]string
	rulesByFeature  map[string][]string
}

var loadGroup singleflight.Group

// Load reads a DR rules document from path, falling back to the embedded
// default catalog when path is empty. Concurrent Load calls for the same
// path are collapsed into a single disk read via singleflight, mirroring
// how the JWKS client in this codebase's lineage dedupes concurrent
// refreshes of the same remote resource.
func Load(path string) (*RuleCatalog, error) {
	key := path
	if key == "" {
		key = "<embedded>"
	}

	v, err, _ := loadGroup.Do(key, func() (interface{}, error) {
		data := defaultRulesJSON
		if path != "" {
			read, err := os.ReadFile(path)
			if err != nil {
				return nil, &CatalogError{Path: path, Err: fmt.Errorf("read catalog file: %w", err)}
			}
			data = read
		}
		return parse(path, data)
	})
	if err != nil {
		return nil, err
	}
	return v.(*RuleCatalog), nil
}

// LoadDefault loads the embedded default catalog.
func LoadDefault() (*RuleCatalog, error) {
	return Load("")
}

func parse(path string, data []byte) (*RuleCatalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("invalid JSON")}
	}
	doc := gjson.ParseBytes(data)

	c := &RuleCatalog{
		raw:                        data,
		caasCoresPerSocketPcores:   map[models.Operator]float64{},
		sharedCoresPerSocketPcores: map[models.Operator]float64{},
		operatorMandatoryPods:      map[models.Operator][]models.PodKind{},
		antiAffinityGroups:         map[string]map[string][]models.PodKind{},
		coLocationGroups:           map[string]map[string][]models.PodKind{},
		specialFlavors:             map[string]bool{},
		knownFlavors:               map[string]bool{},
		vcuVcoresByFlavor:          map[string]float64{},
		vcsrVcoresByFlavor:         map[string]vcsrEntry{},
		allowedSockets:             map[int]bool{},
		rulesByCategory:            map[models.Category][]string{},
		rulesByOperator:            map[models.Operator][]string{},
		rulesByFeature:             map[string][]string{},
	}

	capacity := doc.Get("capacity_rules")
	if !capacity.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("missing required section capacity_rules")}
	}
	caas := capacity.Get("caas_cores_per_socket_pcores")
	shared := capacity.Get("shared_cores_per_socket_pcores")
	if !caas.Exists() || !shared.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("capacity_rules missing caas/shared_cores_per_socket_pcores")}
	}
	for _, op := range models.KnownOperators() {
		caasVal := caas.Get(string(op))
		sharedVal := shared.Get(string(op))
		if !caasVal.Exists() || !sharedVal.Exists() {
			return nil, &CatalogError{Path: path, Err: fmt.Errorf("capacity_rules missing entry for operator %s", op)}
		}
		c.caasCoresPerSocketPcores[op] = caasVal.Float()
		c.sharedCoresPerSocketPcores[op] = sharedVal.Float()
		c.recordRule("C3", models.CategoryCapacity, op, "")
		c.recordRule("C4", models.CategoryCapacity, op, "")
	}

	operatorRules := doc.Get("operator_rules")
	if !operatorRules.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("missing required section operator_rules")}
	}
	mandatory := operatorRules.Get("mandatory_pods")
	for _, op := range models.KnownOperators() {
		entry := mandatory.Get(string(op))
		var kinds []models.PodKind
		entry.ForEach(func(_, v gjson.Result) bool {
			kind, err := models.ParsePodKind(v.String())
			if err == nil {
				kinds = append(kinds, kind)
			}
			return true
		})
		c.operatorMandatoryPods[op] = kinds
		c.recordRule("O1", models.CategoryOperator, op, "")
	}

	coLoc := operatorRules.Get("co_location_groups")
	coLoc.ForEach(func(flag, groups gjson.Result) bool {
		groupMap := map[string][]models.PodKind{}
		groups.ForEach(func(tag, kinds gjson.Result) bool {
			var parsed []models.PodKind
			kinds.ForEach(func(_, v gjson.Result) bool {
				if k, err := models.ParsePodKind(v.String()); err == nil {
					parsed = append(parsed, k)
				}
				return true
			})
			groupMap[tag.String()] = parsed
			return true
		})
		c.coLocationGroups[flag.String()] = groupMap
		c.recordRule("O4", models.CategoryOperator, "", flag.String())
		return true
	})

	vcu := operatorRules.Get("vcu_vcores_by_flavor")
	vcu.ForEach(func(flavor, v gjson.Result) bool {
		c.vcuVcoresByFlavor[flavor.String()] = v.Float()
		if flavor.String() != "default" {
			c.knownFlavors[flavor.String()] = true
		}
		return true
	})

	vcsr := operatorRules.Get("vcsr_vcores_by_flavor")
	vcsr.ForEach(func(flavor, v gjson.Result) bool {
		c.vcsrVcoresByFlavor[flavor.String()] = vcsrEntry{
			supported: v.Get("supported").Bool(),
			vcores:    v.Get("vcores").Float(),
		}
		if flavor.String() != "default" {
			c.knownFlavors[flavor.String()] = true
		}
		return true
	})

	placementRules := doc.Get("placement_rules")
	if !placementRules.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("missing required section placement_rules")}
	}
	antiAffinity := placementRules.Get("anti_affinity_groups")
	antiAffinity.ForEach(func(flag, groups gjson.Result) bool {
		groupMap := map[string][]models.PodKind{}
		groups.ForEach(func(tag, kinds gjson.Result) bool {
			var parsed []models.PodKind
			kinds.ForEach(func(_, v gjson.Result) bool {
				if k, err := models.ParsePodKind(v.String()); err == nil {
					parsed = append(parsed, k)
				}
				return true
			})
			groupMap[tag.String()] = parsed
			return true
		})
		c.antiAffinityGroups[flag.String()] = groupMap
		ruleID := "M4"
		if flag.String() == "in_service_upgrade" {
			ruleID = "M2"
		}
		c.recordRule(ruleID, models.CategoryPlacement, "", flag.String())
		return true
	})

	validationRules := doc.Get("validation_rules")
	if !validationRules.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("missing required section validation_rules")}
	}
	validationRules.Get("special_vdu_flavors").ForEach(func(_, v gjson.Result) bool {
		c.specialFlavors[v.String()] = true
		c.knownFlavors[v.String()] = true
		c.recordRule("O3", models.CategoryOperator, "", "")
		return true
	})

	serverConfigs := doc.Get("server_configurations")
	if !serverConfigs.Exists() {
		return nil, &CatalogError{Path: path, Err: fmt.Errorf("missing required section server_configurations")}
	}
	serverConfigs.Get("allowed_sockets").ForEach(func(_, v gjson.Result) bool {
		c.allowedSockets[int(v.Int())] = true
		return true
	})
	if len(c.allowedSockets) == 0 {
		c.allowedSockets[1] = true
		c.allowedSockets[2] = true
	}

	return c, nil
}

func (c *RuleCatalog) recordRule(ruleID string, category models.Category, op models.Operator, feature string) {
	c.rulesByCategory[category] = appendUnique(c.rulesByCategory[category], ruleID)
	if op != "" {
		c.rulesByOperator[op] = appendUnique(c.rulesByOperator[op], ruleID)
	}
	if feature != "" {
		c.rulesByFeature[feature] = appendUnique(c.rulesByFeature[feature], ruleID)
	}
}

func appendUnique(list []string, item string) []string {
	for _, v := range list {
		if v == item {
			return list
		}
	}
	return append(list, item)
}

// CaaSCoresPerSocket returns the physical-core CaaS deduction per socket for
// an operator (spec §4.1); callers apply the ×2 pcore→vcore conversion (C3).
func (c *RuleCatalog) CaaSCoresPerSocket(op models.Operator) (float64, error) {
	v, ok := c.caasCoresPerSocketPcores[op]
	if !ok {
		return 0, fmt.Errorf("unknown operator %q", op)
	}
	return v, nil
}

// SharedCoresPerSocket returns the physical-core shared-cores deduction per
// socket for an operator (spec §4.1); callers apply ×2 (C4).
func (c *RuleCatalog) SharedCoresPerSocket(op models.Operator) (float64, error) {
	v, ok := c.sharedCoresPerSocketPcores[op]
	if !ok {
		return 0, fmt.Errorf("unknown operator %q", op)
	}
	return v, nil
}

// MandatoryPods returns the full mandatory pod set for op: the fixed global
// set from models.MandatoryPodKinds plus any operator-specific additions
// (VOS adds IPP).
func (c *RuleCatalog) MandatoryPods(op models.Operator) ([]models.PodKind, error) {
	extra, ok := c.operatorMandatoryPods[op]
	if !ok {
		return nil, fmt.Errorf("unknown operator %q", op)
	}
	kinds := append([]models.PodKind{}, models.MandatoryPodKinds()...)
	kinds = append(kinds, extra...)
	return kinds, nil
}

// ImplicitPodsForFlavor returns the flavor-implicit pod kinds for
// vduFlavorName (e.g. IIP for designated special flavors).
func (c *RuleCatalog) ImplicitPodsForFlavor(vduFlavorName string) []models.PodKind {
	if c.specialFlavors[vduFlavorName] {
		return []models.PodKind{models.IIP}
	}
	return nil
}

// IsSpecialFlavor reports whether vduFlavorName is a catalog-designated
// special vDU flavor (O3).
func (c *RuleCatalog) IsSpecialFlavor(vduFlavorName string) bool {
	return c.specialFlavors[vduFlavorName]
}

// IsKnownFlavor reports whether vduFlavorName is recognized by the catalog
// at all (V3: unknown flavors are a validation violation, not silently
// defaulted).
func (c *RuleCatalog) IsKnownFlavor(vduFlavorName string) bool {
	return c.knownFlavors[vduFlavorName]
}

// CoLocationGroups returns the co-location groups active under the given
// flags for op, keyed by group tag.
func (c *RuleCatalog) CoLocationGroups(flags models.FeatureFlags, op models.Operator) map[string][]models.PodKind {
	result := map[string][]models.PodKind{}
	if flags.DirectX2Required {
		for tag, kinds := range c.coLocationGroups["directx2_required"] {
			result[tag] = kinds
		}
	}
	return result
}

// AntiAffinityGroups returns the anti-affinity groups active under the given
// flags, keyed by group tag.
func (c *RuleCatalog) AntiAffinityGroups(flags models.FeatureFlags) map[string][]models.PodKind {
	result := map[string][]models.PodKind{}
	if flags.InServiceUpgrade {
		for tag, kinds := range c.antiAffinityGroups["in_service_upgrade"] {
			result[tag] = kinds
		}
	}
	if flags.HAEnabled {
		for tag, kinds := range c.antiAffinityGroups["ha_enabled"] {
			result[tag] = kinds
		}
	}
	return result
}

// VCUVcores returns the vCU pod's vcore cost for vduFlavorName, falling back
// to the catalog's default entry when the flavor has no specific override.
func (c *RuleCatalog) VCUVcores(vduFlavorName string) float64 {
	if v, ok := c.vcuVcoresByFlavor[vduFlavorName]; ok {
		return v
	}
	return c.vcuVcoresByFlavor["default"]
}

// VCSRVcores returns the vCSR pod's vcore cost for vduFlavorName and whether
// vCSR is supported at all for that flavor (supplemented feature; see
// SPEC_FULL.md §12).
func (c *RuleCatalog) VCSRVcores(vduFlavorName string) (vcores float64, supported bool) {
	entry, ok := c.vcsrVcoresByFlavor[vduFlavorName]
	if !ok {
		entry = c.vcsrVcoresByFlavor["default"]
	}
	return entry.vcores, entry.supported
}

// AllowedSocketCounts returns the catalog-permitted sockets-per-server values.
func (c *RuleCatalog) AllowedSocketCounts() []int {
	var out []int
	for k := range c.allowedSockets {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// Summary returns a stable, sorted listing of every rule id the loaded
// catalog carries, grouped by category (supplemented introspection; see
// rule_models.DRRulesParser.get_rule_summary in the retrieval pack's
// original source).
func (c *RuleCatalog) Summary() map[models.Category][]string {
	out := make(map[models.Category][]string, len(c.rulesByCategory))
	for cat, rules := range c.rulesByCategory {
		sorted := append([]string{}, rules...)
		sort.Strings(sorted)
		out[cat] = sorted
	}
	return out
}

// RulesByCategory returns the sorted rule ids for the given category.
func (c *RuleCatalog) RulesByCategory(category models.Category) []string {
	sorted := append([]string{}, c.rulesByCategory[category]...)
	sort.Strings(sorted)
	return sorted
}

// RulesByOperator returns the sorted rule ids that mention the given operator.
func (c *RuleCatalog) RulesByOperator(op models.Operator) []string {
	sorted := append([]string{}, c.rulesByOperator[op]...)
	sort.Strings(sorted)
	return sorted
}

// RulesByFeature returns the sorted rule ids gated by the given feature flag.
func (c *RuleCatalog) RulesByFeature(feature string) []string {
	sorted := append([]string{}, c.rulesByFeature[feature]...)
	sort.Strings(sorted)
	return sorted
}

// ExportJSON round-trips the loaded document through sjson, applying patches
// along the way; used by the `vducli catalog dump` command and by tests that
// need to mutate a loaded catalog's raw document before re-parsing it.
func (c *RuleCatalog) ExportJSON(patches map[string]interface{}) ([]byte, error) {
	out := c.raw
	var err error
	for path, value := range patches {
		out, err = sjson.SetBytes(out, path, value)
		if err != nil {
			return nil, fmt.Errorf("apply patch %s: %w", path, err)
		}
	}
	return out, nil
}
