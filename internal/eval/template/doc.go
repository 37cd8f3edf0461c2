// Package template provides a Handlebars template engine for frame titles.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	title, err := engine.RenderTitle("Level curve: N = {{fixed level}}", template.FrameData{
//	    Expression: "x^2 + y^2",
//	    Level:      4,
//	})
//	// title == "Level curve: N = 4.00"
//
// Built-in helpers:
//   - fixed - Format a number with two decimals
//   - round - Format a number with the given decimals: {{round level 3}}
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - default - Return default value if first arg is empty
//   - inc - Add one (frame index to frame number)
//
// Example with helpers:
//
//	{{inc index}}/{{frames}}                   # "3/21"
//	{{#if absent}}no curve{{else}}N = {{fixed level}}{{/if}}
package template
