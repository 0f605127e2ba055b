package ai

// IntentLabels are the valid values for QueryAnalysis.Intent.
var IntentLabels = []string{
	"general",
	"discovery",
	"deep_dive",
}

// DepthLabels are the valid values for QueryAnalysis.Depth.
var DepthLabels = []string{
	"auto",
	"shallow",
	"deep",
}

// TemporalLabels are the valid values for QueryAnalysis.Temporal.
var TemporalLabels = []string{
	"none",
	"recent",
	"historical",
}
