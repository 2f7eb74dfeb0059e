package rules

import "go.klb.dev/clipfmt/internal/transform"

// PipelineTag marks output that went through the notebook pipeline.
const PipelineTag = "%pyspark\n"

// Default rule names.
const (
	FormatRule = "format"
	IsortRule  = "isort"
)

// Defaults returns the built-in table: notebook-paragraph markers
// (%pyspark-*) re-tag their output, plain comment markers (#%*) do not.
func Defaults(format, isort transform.Func) Set {
	return Set{
		{
			Name: FormatRule,
			Markers: []Marker{
				{Prefix: "%pyspark-format", Tag: PipelineTag},
				{Prefix: "#%format"},
			},
			Transform: format,
		},
		{
			Name: IsortRule,
			Markers: []Marker{
				{Prefix: "%pyspark-isort", Tag: PipelineTag},
				{Prefix: "#%isort"},
			},
			Transform: isort,
		},
	}
}
