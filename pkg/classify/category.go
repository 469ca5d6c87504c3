// Package classify implements the grammar-driven syntax classification engine:
// an immutable rule table partitioned into feature groups, a structural
// pattern matcher, a tree classifier, and a category resolver producing
// non-overlapping span annotations.
package classify

// Category is a closed-enumeration presentation tag assigned to a span.
type Category string

// Presentation categories.
const (
	CategoryComment     Category = "comment"
	CategoryDoc         Category = "doc"
	CategoryString      Category = "string"
	CategoryEscape      Category = "escape"
	CategoryNumber      Category = "number"
	CategoryBoolean     Category = "boolean"
	CategoryKeyword     Category = "keyword"
	CategoryOperator    Category = "operator"
	CategoryFunction    Category = "function"
	CategoryConstructor Category = "constructor"
	CategoryType        Category = "type"
	CategoryModule      Category = "module"
	CategoryVariable    Category = "variable"
	CategoryConstant    Category = "constant"
	CategoryParameter   Category = "parameter"
	CategoryProperty    Category = "property"
	CategoryLabel       Category = "label"
	CategoryAnnotation  Category = "annotation"
	CategoryDelimiter   Category = "delimiter"
	CategoryBracket     Category = "bracket"
	CategoryError       Category = "error"
)

// allCategories lists the closed enumeration in stable presentation order.
//
//nolint:gochecknoglobals // Closed enumeration, never mutated.
var allCategories = []Category{
	CategoryComment,
	CategoryDoc,
	CategoryString,
	CategoryEscape,
	CategoryNumber,
	CategoryBoolean,
	CategoryKeyword,
	CategoryOperator,
	CategoryFunction,
	CategoryConstructor,
	CategoryType,
	CategoryModule,
	CategoryVariable,
	CategoryConstant,
	CategoryParameter,
	CategoryProperty,
	CategoryLabel,
	CategoryAnnotation,
	CategoryDelimiter,
	CategoryBracket,
	CategoryError,
}

// knownCategories indexes the enumeration for membership checks.
//
//nolint:gochecknoglobals // Derived from allCategories at init, read-only after.
var knownCategories = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(allCategories))
	for _, category := range allCategories {
		set[category] = struct{}{}
	}

	return set
}()

// Known reports whether the category belongs to the closed enumeration.
func (category Category) Known() bool {
	_, ok := knownCategories[category]

	return ok
}

// String returns the category tag.
func (category Category) String() string {
	return string(category)
}

// Categories returns the closed enumeration in stable order. The returned
// slice is a copy.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)

	return out
}
