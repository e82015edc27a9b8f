// Package loam exposes a directory of rule documents managed by Loam as a rule source.
//
// A rule document is Markdown with YAML frontmatter (or plain JSON/YAML):
//
//	---
//	name: Adult customers
//	conditions:
//	  - field: user.age
//	    operator: ">="
//	    value: 18
//	input_schema:
//	  user.age: number
//	---
//	Optional prose becomes the rule description.
package loam
