package schema

// Kind classifies the scalar shape of an entity field.
type Kind uint8

// Field kinds.
const (
	KindInt Kind = iota + 1
	KindString
	KindBool
	KindJSON
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	}
	return "invalid"
}

// FieldID is the primary-key field every entity type carries.
const FieldID = "id"

// fieldCatalog declares the named fields of each entity type. The id
// field is implicit and not repeated here.
var fieldCatalog = map[EntityType]map[string]Kind{
	Module: {
		"name": KindString,
		"path": KindString,
	},
	Function: {
		"name":                 KindString,
		"function_signature":   KindString,
		"raw_string":           KindString,
		"src_loc":              KindString,
		"module_name":          KindString,
		"line_number_start":    KindInt,
		"line_number_end":      KindInt,
		"type_enum":            KindString,
		"instances_used":       KindString,
		"module_id":            KindInt,
		"impl_block_id":        KindInt,
		"fully_qualified_path": KindString,
		"is_method":            KindBool,
		"self_type":            KindJSON,
		"input_types":          KindJSON,
		"output_types":         KindJSON,
		"types_used":           KindJSON,
		"literals_used":        KindJSON,
		"methods_called":       KindJSON,
		"visibility":           KindString,
		"doc_comments":         KindString,
		"attributes":           KindJSON,
		"crate_name":           KindString,
		"module_path":          KindString,
		"function_input":       KindJSON,
		"function_output":      KindJSON,
	},
	WhereFunction: {
		"name":                 KindString,
		"function_signature":   KindString,
		"raw_string":           KindString,
		"src_loc":              KindString,
		"parent_function_id":   KindInt,
		"fully_qualified_path": KindString,
		"input_types":          KindJSON,
		"output_types":         KindJSON,
		"types_used":           KindJSON,
		"literals_used":        KindJSON,
		"methods_called":       KindJSON,
		"is_method":            KindBool,
		"self_type":            KindJSON,
		"visibility":           KindString,
		"doc_comments":         KindString,
		"attributes":           KindJSON,
	},
	FunctionCalled: {
		"module_name":          KindString,
		"name":                 KindString,
		"package_name":         KindString,
		"src_loc":              KindString,
		"_type":                KindString,
		"function_name":        KindString,
		"function_signature":   KindString,
		"type_enum":            KindString,
		"function_id":          KindInt,
		"where_function_id":    KindInt,
		"fully_qualified_path": KindString,
		"is_method":            KindBool,
		"receiver_type":        KindJSON,
		"input_types":          KindJSON,
		"output_types":         KindJSON,
		"line_number":          KindInt,
		"column_number":        KindInt,
		"origin_crate":         KindString,
		"origin_module":        KindString,
		"call_type":            KindString,
	},
	Import: {
		"module_name":       KindString,
		"package_name":      KindString,
		"src_loc":           KindString,
		"is_boot_source":    KindBool,
		"is_safe":           KindBool,
		"is_implicit":       KindBool,
		"as_module_name":    KindString,
		"qualified_style":   KindString,
		"is_hiding":         KindBool,
		"hiding_specs":      KindJSON,
		"line_number_start": KindInt,
		"line_number_end":   KindInt,
		"module_id":         KindInt,
		"path":              KindString,
		"visibility":        KindString,
	},
	TypeDef: {
		"type_name":            KindString,
		"raw_code":             KindString,
		"src_loc":              KindString,
		"type_of_type":         KindString,
		"line_number_start":    KindInt,
		"line_number_end":      KindInt,
		"module_id":            KindInt,
		"fully_qualified_path": KindString,
		"fields":               KindJSON,
		"visibility":           KindString,
		"doc_comments":         KindString,
		"attributes":           KindJSON,
		"crate_name":           KindString,
		"module_path":          KindString,
	},
	Constructor: {
		"name":    KindString,
		"type_id": KindInt,
	},
	Field: {
		"field_name":           KindString,
		"field_type_raw":       KindString,
		"field_type_structure": KindJSON,
		"constructor_id":       KindInt,
	},
	Class: {
		"class_name":        KindString,
		"class_definition":  KindString,
		"src_location":      KindString,
		"line_number_start": KindInt,
		"line_number_end":   KindInt,
		"module_id":         KindInt,
	},
	Instance: {
		"instance_definition": KindString,
		"instance_signature":  KindString,
		"src_loc":             KindString,
		"line_number_start":   KindInt,
		"line_number_end":     KindInt,
		"module_id":           KindInt,
	},
	InstanceFunction: {
		"instance_id": KindInt,
		"function_id": KindInt,
	},
	Trait: {
		"name":                 KindString,
		"fully_qualified_path": KindString,
		"src_location":         KindString,
		"module_name":          KindString,
		"module_path":          KindString,
		"crate_name":           KindString,
		"module_id":            KindInt,
	},
	ImplBlock: {
		"struct_name":       KindString,
		"struct_fqp":        KindString,
		"trait_name":        KindString,
		"trait_fqp":         KindString,
		"src_location":      KindString,
		"line_number_start": KindInt,
		"line_number_end":   KindInt,
		"crate_name":        KindString,
		"module_path":       KindString,
		"module_name":       KindString,
		"module_id":         KindInt,
		"trait_id":          KindInt,
	},
	Constant: {
		"name":                 KindString,
		"fully_qualified_path": KindString,
		"const_type":           KindJSON,
		"src_location":         KindString,
		"src_code":             KindString,
		"line_number_start":    KindInt,
		"line_number_end":      KindInt,
		"crate_name":           KindString,
		"module_path":          KindString,
		"visibility":           KindString,
		"doc_comments":         KindString,
		"attributes":           KindJSON,
		"is_static":            KindBool,
		"module_id":            KindInt,
	},
	TraitMethodSignature: {
		"name":                 KindString,
		"fully_qualified_path": KindString,
		"input_types":          KindJSON,
		"output_types":         KindJSON,
		"src_location":         KindString,
		"src_code":             KindString,
		"line_number_start":    KindInt,
		"line_number_end":      KindInt,
		"crate_name":           KindString,
		"module_path":          KindString,
		"module_name":          KindString,
		"visibility":           KindString,
		"doc_comments":         KindString,
		"attributes":           KindJSON,
		"is_async":             KindBool,
		"is_unsafe":            KindBool,
		"module_id":            KindInt,
		"trait_id":             KindInt,
	},
}

// LookupField returns the declared kind of a field on an entity type.
// The id field resolves to KindInt for every valid type.
func LookupField(t EntityType, name string) (Kind, bool) {
	fields, ok := fieldCatalog[t]
	if !ok {
		return 0, false
	}
	if name == FieldID {
		return KindInt, true
	}
	k, ok := fields[name]
	return k, ok
}

// FieldNames returns the declared field names of an entity type, id
// included, in no particular order.
func FieldNames(t EntityType) []string {
	fields, ok := fieldCatalog[t]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(fields)+1)
	names = append(names, FieldID)
	for name := range fields {
		names = append(names, name)
	}
	return names
}
