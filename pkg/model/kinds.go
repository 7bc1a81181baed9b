package model

import (
	"sort"
	"strings"
	"sync"
)

// Built-in component type identifiers exposed by the registry. The set mirrors
// the widget palette of the visual builder; unknown types are tolerated by the
// evaluators but rejected by ValidateTree when strict checking is requested.
const (
	TypeInput          ComponentType = "input"
	TypeTextarea       ComponentType = "textarea"
	TypePassword       ComponentType = "password"
	TypeNumberInput    ComponentType = "numberInput"
	TypeSelect         ComponentType = "select"
	TypeMultiSelect    ComponentType = "multiSelect"
	TypeAutocomplete   ComponentType = "autocomplete"
	TypeCascader       ComponentType = "cascader"
	TypeCheckbox       ComponentType = "checkbox"
	TypeCheckboxGroup  ComponentType = "checkboxGroup"
	TypeSwitch         ComponentType = "switch"
	TypeRadioGroup     ComponentType = "radioGroup"
	TypeSegmented      ComponentType = "segmented"
	TypeDatePicker     ComponentType = "datePicker"
	TypeTimePicker     ComponentType = "timePicker"
	TypeDateTimePicker ComponentType = "dateTimePicker"
	TypeDateRange      ComponentType = "dateRange"
	TypeSlider         ComponentType = "slider"
	TypeRating         ComponentType = "rating"
	TypeColorPicker    ComponentType = "colorPicker"
	TypeFileUpload     ComponentType = "fileUpload"
	TypeImageUpload    ComponentType = "imageUpload"
	TypeSignature      ComponentType = "signature"
	TypeRichText       ComponentType = "richText"
	TypeMarkdown       ComponentType = "markdown"
	TypeCodeEditor     ComponentType = "codeEditor"
	TypeJSONEditor     ComponentType = "jsonEditor"
	TypeKeyValue       ComponentType = "keyValue"
	TypeChips          ComponentType = "chips"
	TypeTransfer       ComponentType = "transfer"
	TypeTreeSelect     ComponentType = "treeSelect"
	TypeButton         ComponentType = "button"
	TypeButtonGroup    ComponentType = "buttonGroup"
	TypeLabel          ComponentType = "label"
	TypeHeading        ComponentType = "heading"
	TypeParagraph      ComponentType = "paragraph"
	TypeDivider        ComponentType = "divider"
	TypeSpacer         ComponentType = "spacer"
	TypeIcon           ComponentType = "icon"
	TypeImage          ComponentType = "image"
	TypeProgress       ComponentType = "progress"
	TypeStatistic      ComponentType = "statistic"
	TypeTag            ComponentType = "tag"
	TypeAlert          ComponentType = "alert"
	TypeQRCode         ComponentType = "qrCode"
	TypeForm           ComponentType = "form"
	TypeCard           ComponentType = "card"
	TypePanel          ComponentType = "panel"
	TypeFieldset       ComponentType = "fieldset"
	TypeGrid           ComponentType = "grid"
	TypeGridColumn     ComponentType = "gridColumn"
	TypeTabs           ComponentType = "tabs"
	TypeTabPane        ComponentType = "tabPane"
	TypeSteps          ComponentType = "steps"
	TypeStep           ComponentType = "step"
	TypeRepeater       ComponentType = "repeater"
	TypeTable          ComponentType = "table"
	TypeModal          ComponentType = "modal"
	TypeDrawer         ComponentType = "drawer"
)

// DataKind is the simplified value kind a component binds to the data store.
type DataKind string

const (
	DataString  DataKind = "string"
	DataNumber  DataKind = "number"
	DataBoolean DataKind = "boolean"
	DataDate    DataKind = "date"
	DataArray   DataKind = "array"
	DataObject  DataKind = "object"
	DataNone    DataKind = ""
)

// TypeSpec describes runtime behaviour shared by all components of a type.
type TypeSpec struct {
	Container bool
	DataKind  DataKind
	// Default is the type-level default value, the lowest rung of the
	// value-precedence ladder (dependency value > literal default > this).
	Default any
}

// Registry maps component types to their specs. It is safe for concurrent
// use; the built-in palette is registered on construction.
type Registry struct {
	mu    sync.RWMutex
	specs map[ComponentType]TypeSpec
}

// NewRegistry constructs a registry with the built-in component palette.
func NewRegistry() *Registry {
	reg := &Registry{specs: make(map[ComponentType]TypeSpec)}
	reg.registerBuiltins()
	return reg
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the shared registry with the built-in palette.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds or replaces a component type spec.
func (r *Registry) Register(t ComponentType, spec TypeSpec) {
	if r == nil {
		return
	}
	name := ComponentType(strings.TrimSpace(string(t)))
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[name] = spec
}

// Lookup returns the spec for a component type.
func (r *Registry) Lookup(t ComponentType) (TypeSpec, bool) {
	if r == nil {
		return TypeSpec{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.specs[t]
	return spec, ok
}

// Names returns the registered type names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

func (r *Registry) registerBuiltins() {
	inputs := map[ComponentType]TypeSpec{
		TypeInput:          {DataKind: DataString, Default: ""},
		TypeTextarea:       {DataKind: DataString, Default: ""},
		TypePassword:       {DataKind: DataString, Default: ""},
		TypeNumberInput:    {DataKind: DataNumber, Default: float64(0)},
		TypeSelect:         {DataKind: DataString, Default: ""},
		TypeMultiSelect:    {DataKind: DataArray, Default: []any{}},
		TypeAutocomplete:   {DataKind: DataString, Default: ""},
		TypeCascader:       {DataKind: DataArray, Default: []any{}},
		TypeCheckbox:       {DataKind: DataBoolean, Default: false},
		TypeCheckboxGroup:  {DataKind: DataArray, Default: []any{}},
		TypeSwitch:         {DataKind: DataBoolean, Default: false},
		TypeRadioGroup:     {DataKind: DataString, Default: ""},
		TypeSegmented:      {DataKind: DataString, Default: ""},
		TypeDatePicker:     {DataKind: DataDate},
		TypeTimePicker:     {DataKind: DataString, Default: ""},
		TypeDateTimePicker: {DataKind: DataDate},
		TypeDateRange:      {DataKind: DataArray, Default: []any{}},
		TypeSlider:         {DataKind: DataNumber, Default: float64(0)},
		TypeRating:         {DataKind: DataNumber, Default: float64(0)},
		TypeColorPicker:    {DataKind: DataString, Default: ""},
		TypeFileUpload:     {DataKind: DataArray, Default: []any{}},
		TypeImageUpload:    {DataKind: DataArray, Default: []any{}},
		TypeSignature:      {DataKind: DataString, Default: ""},
		TypeRichText:       {DataKind: DataString, Default: ""},
		TypeMarkdown:       {DataKind: DataString, Default: ""},
		TypeCodeEditor:     {DataKind: DataString, Default: ""},
		TypeJSONEditor:     {DataKind: DataObject},
		TypeKeyValue:       {DataKind: DataObject},
		TypeChips:          {DataKind: DataArray, Default: []any{}},
		TypeTransfer:       {DataKind: DataArray, Default: []any{}},
		TypeTreeSelect:     {DataKind: DataString, Default: ""},
	}
	for name, spec := range inputs {
		r.Register(name, spec)
	}

	static := []ComponentType{
		TypeButton, TypeButtonGroup, TypeLabel, TypeHeading, TypeParagraph,
		TypeDivider, TypeSpacer, TypeIcon, TypeImage, TypeProgress,
		TypeStatistic, TypeTag, TypeAlert, TypeQRCode,
	}
	for _, name := range static {
		r.Register(name, TypeSpec{DataKind: DataNone})
	}

	containers := []ComponentType{
		TypeForm, TypeCard, TypePanel, TypeFieldset, TypeGrid, TypeGridColumn,
		TypeTabs, TypeTabPane, TypeSteps, TypeStep, TypeModal, TypeDrawer,
	}
	for _, name := range containers {
		r.Register(name, TypeSpec{Container: true})
	}

	// repeater and table own row collections bound to the store
	r.Register(TypeRepeater, TypeSpec{Container: true, DataKind: DataArray, Default: []any{}})
	r.Register(TypeTable, TypeSpec{Container: true, DataKind: DataArray, Default: []any{}})
}
