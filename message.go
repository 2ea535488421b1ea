package main

import (
	"fmt"

	"github.com/plantpal/plant-analysis-service/analysis"
)

const (
	MsgNotConfigured = "vision model is not configured"

	MsgStorageNotConfigured = "object storage is not configured"

	MsgUnidentified = "We couldn't identify this plant from the photo. Try a closer, well-lit shot of the leaves or flowers."
)

// getAnalysisMessage turns the extracted fields into a human-readable
// summary for the app to display alongside the structured result.
func getAnalysisMessage(result analysis.Result) string {
	common := result["commonName"]
	scientific := result["scientificName"]

	switch {
	case common == analysis.UnknownValue && scientific == analysis.UnknownValue:
		return MsgUnidentified
	case scientific == analysis.UnknownValue:
		return fmt.Sprintf("Identified as %s.", common)
	case common == analysis.UnknownValue:
		return fmt.Sprintf("Identified as %s.", scientific)
	default:
		return fmt.Sprintf("Identified as %s (%s).", common, scientific)
	}
}
